package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flocknet/flocknet-backend/internal/handlers"
	"github.com/flocknet/flocknet-backend/internal/middleware"
	"github.com/flocknet/flocknet-backend/internal/store"
	"github.com/flocknet/flocknet-backend/internal/token"
)

// SetupRoutes wires all routes. The auth gate wraps every route except
// signup, login and logout.
func SetupRoutes(r chi.Router, h *handlers.Handler, tokens *token.Service, users store.UserStore) {
	gate := func(next http.Handler) http.Handler {
		return middleware.Protected(tokens, users, next)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(gate).Get("/get-me", h.GetMe)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(gate)
		r.Get("/get-user-profile/{username}", h.GetUserProfile)
		r.Post("/follow-unfollow-user/{id}", h.FollowUnfollowUser)
		r.Get("/get-suggested-users", h.GetSuggestedUsers)
		r.Post("/update-profile", h.UpdateProfile)
	})

	r.With(gate).Get("/api/notifications", h.GetNotifications)
	r.With(gate).Post("/api/upload", h.UploadFile)
}
