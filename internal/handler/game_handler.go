package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ti-assistant/server/internal/auth"
	"github.com/ti-assistant/server/internal/catalog"
	"github.com/ti-assistant/server/internal/gameid"
	"github.com/ti-assistant/server/internal/service"
	"github.com/ti-assistant/server/pkg/ti4"
)

// GameHandler handles lobby CRUD and event-application endpoints. Every
// in-game action — joining, starting, picking a strategy card, casting a
// vote — goes through one endpoint as a ti4.Event envelope rather than a
// bespoke route per action, since the reducer is already the single place
// those rules live.
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// CreateGame handles POST /api/v1/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Name       string             `json:"name"`
		MaxPoints  int                `json:"max_points"`
		Expansions catalog.Expansions `json:"expansions"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.MaxPoints == 0 {
		req.MaxPoints = 10
	}

	settings := ti4.GameSettings{
		MaxPoints:  req.MaxPoints,
		Expansions: req.Expansions,
	}

	id, err := h.gameSvc.CreateGame(r.Context(), req.Name, userID, settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// ListGames handles GET /api/v1/games
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameSvc.ListGames(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if games == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// GetGame handles GET /api/v1/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, err := gameid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	state, err := h.gameSvc.GetState(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// DeleteGame handles DELETE /api/v1/games/{id}
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := gameid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	userID := auth.UserIDFromContext(r.Context())

	if err := h.gameSvc.DeleteGame(r.Context(), id, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, service.ErrNotCreator) {
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ApplyEvent handles POST /api/v1/games/{id}/events. The request body is
// the same {kind,payload} envelope ti4.MarshalEvent produces, so the wire
// format and the storage format never drift.
func (h *GameHandler) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	id, err := gameid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := ti4.UnmarshalEvent(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unrecognized event: "+err.Error())
		return
	}

	state, err := h.gameSvc.ApplyEvent(r.Context(), id, event, time.Now())
	if err != nil {
		if rej, ok := ti4.AsRejection(err); ok {
			writeRejection(w, id.String(), rej)
			return
		}
		if errors.Is(err, service.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Undo handles POST /api/v1/games/{id}/undo
func (h *GameHandler) Undo(w http.ResponseWriter, r *http.Request) {
	id, err := gameid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	state, err := h.gameSvc.Undo(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}
