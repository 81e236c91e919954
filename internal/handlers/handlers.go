package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/flocknet/flocknet-backend/internal/services"
	"github.com/flocknet/flocknet-backend/internal/store"
	"github.com/flocknet/flocknet-backend/internal/token"
)

// Handler carries the dependencies every route handler needs. It is
// constructed once at startup; there is no package-level state.
type Handler struct {
	users         store.UserStore
	notifications store.NotificationStore
	tokens        *token.Service
	uploader      services.Uploader
}

func New(users store.UserStore, notifications store.NotificationStore, tokens *token.Service, uploader services.Uploader) *Handler {
	return &Handler{
		users:         users,
		notifications: notifications,
		tokens:        tokens,
		uploader:      uploader,
	}
}

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("write JSON response: %v", err)
	}
}

// writeError sends the wire error shape: {"error_message": "..."}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error_message": message})
}

// writeInternalError logs the failure and reports it as a 500. The message
// includes the underlying error text.
func writeInternalError(w http.ResponseWriter, err error) {
	log.Printf("internal error: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
}

// readJSON decodes the request body into dst.
func readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
