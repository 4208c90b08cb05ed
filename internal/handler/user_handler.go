package handler

import (
	"net/http"

	"github.com/ti-assistant/server/internal/auth"
	"github.com/ti-assistant/server/internal/repository"
)

// UserHandler handles account profile endpoints.
type UserHandler struct {
	accountRepo repository.AccountRepository
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(accountRepo repository.AccountRepository) *UserHandler {
	return &UserHandler{accountRepo: accountRepo}
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	account, err := h.accountRepo.FindByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// GetUser handles GET /api/v1/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	account, err := h.accountRepo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, account)
}
