package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/flocknet/flocknet-backend/internal/middleware"
	"github.com/flocknet/flocknet-backend/internal/models"
	"github.com/flocknet/flocknet-backend/internal/services"
	"github.com/flocknet/flocknet-backend/internal/store"
	"github.com/flocknet/flocknet-backend/pkg/utils"
)

const suggestedUsersLimit = 10

// GetUserProfile handles GET /api/users/get-user-profile/{username}.
func (h *Handler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.users.FindByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Sanitized())
}

// FollowUnfollowUser handles POST /api/users/follow-unfollow-user/{id}.
// It toggles the follow edge between the caller and the target user and
// records a follow or unfollow notification.
func (h *Handler) FollowUnfollowUser(w http.ResponseWriter, r *http.Request) {
	currentUser := middleware.UserFromContext(r.Context())

	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if targetID == currentUser.ID {
		writeError(w, http.StatusBadRequest, "You cannot follow/unfollow yourself")
		return
	}

	target, err := h.users.FindByID(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeInternalError(w, err)
		return
	}

	var notificationType, successMessage string
	if currentUser.IsFollowing(target.ID) {
		if err := h.users.Unfollow(r.Context(), currentUser.ID, target.ID); err != nil {
			writeInternalError(w, err)
			return
		}
		notificationType = models.NotificationUnfollow
		successMessage = "User unfollowed successfully"
	} else {
		if err := h.users.Follow(r.Context(), currentUser.ID, target.ID); err != nil {
			writeInternalError(w, err)
			return
		}
		notificationType = models.NotificationFollow
		successMessage = "User followed successfully"
	}

	notification := &models.Notification{
		From: currentUser.ID,
		To:   target.ID,
		Type: notificationType,
	}
	if err := h.notifications.Create(r.Context(), notification); err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"success_message": successMessage})
}

// GetSuggestedUsers handles GET /api/users/get-suggested-users: up to 10
// random users the caller does not already follow.
func (h *Handler) GetSuggestedUsers(w http.ResponseWriter, r *http.Request) {
	currentUser := middleware.UserFromContext(r.Context())

	exclude := append([]primitive.ObjectID{currentUser.ID}, currentUser.Following...)
	suggested, err := h.users.Suggested(r.Context(), exclude, suggestedUsersLimit)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	if len(suggested) == 0 {
		writeError(w, http.StatusNotFound, "No suggested users found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"suggestedUsers": suggested})
}

type UpdateProfileRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	ProfileImage    string `json:"profile_image"`
	CoverImage      string `json:"cover_image"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	Bio             string `json:"bio"`
	Link            string `json:"link"`
}

// UpdateProfile handles POST /api/users/update-profile. Every field is
// optional; empty fields leave the current value in place.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	currentUser := middleware.UserFromContext(r.Context())

	var req UpdateProfileRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.users.FindByID(r.Context(), currentUser.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeInternalError(w, err)
		return
	}

	// A changed username or email must not collide with another account.
	if req.Username != "" && req.Username != user.Username {
		if other, err := h.users.FindByUsername(r.Context(), req.Username); err == nil && other.ID != user.ID {
			writeError(w, http.StatusBadRequest, "Username is already taken")
			return
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			writeInternalError(w, err)
			return
		}
	}
	if req.Email != "" && req.Email != user.Email {
		if other, err := h.users.FindByEmail(r.Context(), req.Email); err == nil && other.ID != user.ID {
			writeError(w, http.StatusBadRequest, "Email is already taken")
			return
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			writeInternalError(w, err)
			return
		}
	}

	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			writeError(w, http.StatusBadRequest, "Current password is required to update the password")
			return
		}
		if len(req.NewPassword) < 6 {
			writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
			return
		}
		if !utils.CheckPassword(req.CurrentPassword, user.Password) {
			writeError(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}

		hashed, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		user.Password = hashed
	}

	if req.ProfileImage != "" {
		url, err := h.replaceImage(r, user.ProfileImage, req.ProfileImage)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		user.ProfileImage = url
	}
	if req.CoverImage != "" {
		url, err := h.replaceImage(r, user.CoverImage, req.CoverImage)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		user.CoverImage = url
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Link != "" {
		user.Link = req.Link
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		// The pre-checks above are racy; a unique-index rejection here
		// names the field that could still have collided.
		if errors.Is(err, store.ErrDuplicateKey) {
			usernameChanged := req.Username != "" && req.Username != currentUser.Username
			emailChanged := req.Email != "" && req.Email != currentUser.Email
			switch {
			case usernameChanged && !emailChanged:
				writeError(w, http.StatusBadRequest, "Username is already taken")
			case emailChanged && !usernameChanged:
				writeError(w, http.StatusBadRequest, "Email is already taken")
			default:
				writeError(w, http.StatusBadRequest, "Username or email already taken.")
			}
			return
		}
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success_message": "Profile updated successfully",
		"user":            user.Sanitized(),
	})
}

// replaceImage deletes the previously stored asset, if any, then uploads
// the new source and returns its delivery URL.
func (h *Handler) replaceImage(r *http.Request, oldURL, source string) (string, error) {
	if h.uploader == nil {
		return "", errors.New("image upload service not available")
	}
	if oldURL != "" {
		if err := h.uploader.Destroy(r.Context(), services.PublicIDFromURL(oldURL)); err != nil {
			return "", err
		}
	}
	return h.uploader.UploadImage(r.Context(), source, "")
}
