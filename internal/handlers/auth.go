package handlers

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/flocknet/flocknet-backend/internal/middleware"
	"github.com/flocknet/flocknet-backend/internal/models"
	"github.com/flocknet/flocknet-backend/internal/store"
	"github.com/flocknet/flocknet-backend/pkg/utils"
)

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the flat public-field body returned by signup and login.
type authResponse struct {
	SuccessMessage string               `json:"success_message"`
	ID             primitive.ObjectID   `json:"_id"`
	Username       string               `json:"username"`
	Email          string               `json:"email"`
	Followers      []primitive.ObjectID `json:"followers"`
	Following      []primitive.ObjectID `json:"following"`
	ProfileImage   string               `json:"profile_image"`
	CoverImage     string               `json:"cover_image"`
}

func newAuthResponse(message string, user *models.User) authResponse {
	return authResponse{
		SuccessMessage: message,
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Followers:      user.Followers,
		Following:      user.Following,
		ProfileImage:   user.ProfileImage,
		CoverImage:     user.CoverImage,
	}
}

// Signup handles POST /api/auth/signup. Validation short-circuits on the
// first failing field, in order: username, email, password.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := utils.ValidateUsername(req.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Check for existing username or email. Either collision yields the
	// same generic message.
	if taken, err := h.credentialTaken(r, req.Username, req.Email); err != nil {
		writeInternalError(w, err)
		return
	} else if taken {
		writeError(w, http.StatusBadRequest, "Username or email already taken.")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashedPassword,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		// Two concurrent signups can both pass the pre-check; the unique
		// index rejects the loser, which is still a taken error, not a 500.
		if errors.Is(err, store.ErrDuplicateKey) {
			writeError(w, http.StatusBadRequest, "Username or email already taken.")
			return
		}
		writeInternalError(w, err)
		return
	}

	if err := h.tokens.Issue(w, user.ID); err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAuthResponse("User Created", user))
}

func (h *Handler) credentialTaken(r *http.Request, username, email string) (bool, error) {
	if _, err := h.users.FindByUsername(r.Context(), username); err == nil {
		return true, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	if _, err := h.users.FindByEmail(r.Context(), email); err == nil {
		return true, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	return false, nil
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required.")
		return
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found.")
			return
		}
		writeInternalError(w, err)
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid Credentials.")
		return
	}

	if err := h.tokens.Issue(w, user.ID); err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAuthResponse("Login successful", user))
}

// Logout handles POST /api/auth/logout. It clears the cookie without any
// identity check and is idempotent. The old token stays valid until its
// natural expiry.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.tokens.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"success_message": "Logout successful."})
}

// GetMe handles GET /api/auth/get-me behind the auth gate.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized. Token missing.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success_message": "User retrieved successfully.",
		"user":            user,
	})
}
