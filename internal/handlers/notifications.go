package handlers

import (
	"net/http"

	"github.com/flocknet/flocknet-backend/internal/middleware"
	"github.com/flocknet/flocknet-backend/internal/models"
)

// GetNotifications handles GET /api/notifications: returns the caller's
// notifications, newest first, and marks them all read.
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	currentUser := middleware.UserFromContext(r.Context())

	notifications, err := h.notifications.ListForUser(r.Context(), currentUser.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	if err := h.notifications.MarkAllRead(r.Context(), currentUser.ID); err != nil {
		writeInternalError(w, err)
		return
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}
