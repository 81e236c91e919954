package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flocknet/flocknet-backend/internal/models"
	"github.com/flocknet/flocknet-backend/internal/store"
	"github.com/flocknet/flocknet-backend/internal/token"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext extracts the authenticated user from the request context.
// Returns nil if no user is authenticated. The attached record never
// carries the password digest.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// Protected gates a handler behind cookie authentication: missing token is
// 401, invalid or expired token is 401 with the verification reason, a
// token for a deleted user is 404, and otherwise the sanitized user record
// is attached to the request context.
func Protected(tokens *token.Service, users store.UserStore, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(token.CookieName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized. Token missing.")
			return
		}

		userID, err := tokens.Verify(cookie.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized. "+err.Error())
			return
		}

		user, err := users.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "User not found.")
				return
			}
			writeError(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user.Sanitized())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error_message": message})
}
