package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	userIDKey      contextKey = "user_id"
	displayNameKey contextKey = "display_name"
)

// Middleware returns an HTTP middleware that validates access tokens.
// Extracts the token from the Authorization header (Bearer scheme) and
// stores the account id and display name in the request context. A refresh
// token on this surface is rejected like any other invalid token.
func Middleware(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization format"}`, http.StatusUnauthorized)
				return
			}

			claims, err := jwtMgr.ValidateAccess(parts[1])
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, displayNameKey, claims.DisplayName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated account id from the request
// context.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// DisplayNameFromContext extracts the authenticated account's display name
// from the request context.
func DisplayNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(displayNameKey).(string)
	return name
}
