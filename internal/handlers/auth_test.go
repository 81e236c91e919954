package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flocknet/flocknet-backend/internal/store"
	"github.com/flocknet/flocknet-backend/pkg/utils"
)

func TestSignup(t *testing.T) {
	srv := newTestServer(t)

	body, cookie := srv.signup(t, "alice_01", "a@b.com", "Abcdef1!")

	assert.NotEmpty(t, body["_id"])
	assert.Equal(t, "User Created", body["success_message"])
	assert.Equal(t, "alice_01", body["username"])
	assert.Equal(t, "a@b.com", body["email"])
	assert.Empty(t, body["profile_image"])
	assert.Empty(t, body["cover_image"])
	assert.Empty(t, body["followers"])
	assert.Empty(t, body["following"])
	assert.NotContains(t, body, "password")

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	// The stored digest is never the plaintext and verifies against it.
	stored, err := srv.store.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, "Abcdef1!", stored.Password)
	assert.True(t, utils.CheckPassword("Abcdef1!", stored.Password))
}

func TestSignupValidationOrder(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		payload map[string]string
		message string
	}{
		{
			"bad username",
			map[string]string{"username": "a!", "email": "bad", "password": "short"},
			"Username must be 3-15 characters",
		},
		{
			"bad email",
			map[string]string{"username": "valid_01", "email": "not-an-email", "password": "short"},
			"Invalid email format.",
		},
		{
			"bad password",
			map[string]string{"username": "valid_01", "email": "v@b.com", "password": "weak"},
			"Password must be at least 6 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, http.MethodPost, "/api/auth/signup", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}

	// No record was created by any of the rejected requests.
	_, err := srv.store.FindByUsername(context.Background(), "valid_01")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSignupDuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	srv.signup(t, "alice_01", "a@b.com", "Abcdef1!")

	w := srv.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "alice_01",
		"email":    "other@b.com",
		"password": "Abcdef1!",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username or email already taken.")

	// Exactly one stored record: the second email never landed.
	_, err := srv.store.FindByEmail(context.Background(), "other@b.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSignupDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	srv.signup(t, "alice_01", "a@b.com", "Abcdef1!")

	w := srv.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "bob_02",
		"email":    "a@b.com",
		"password": "Abcdef1!",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	// Same generic message for either collision.
	assert.Contains(t, w.Body.String(), "Username or email already taken.")
}

func TestSignupInsertRaceReportsTaken(t *testing.T) {
	// Two concurrent signups can both pass the uniqueness pre-check; the
	// loser's insert is rejected by the unique index and must surface as
	// the taken error, not a 500.
	mem := store.NewMemoryStore()
	racing := &racingStore{MemoryStore: mem, createErr: store.ErrDuplicateKey}
	srv := newTestServerWithStore(t, mem, racing)

	w := srv.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "alice_01",
		"email":    "a@b.com",
		"password": "Abcdef1!",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username or email already taken.")
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	srv.signup(t, "alice_01", "a@b.com", "Abcdef1!")

	w := srv.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "a@b.com",
		"password": "Abcdef1!",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "Login successful", body["success_message"])
	assert.Equal(t, "alice_01", body["username"])

	cookie := sessionCookie(t, w)
	assert.NotEmpty(t, cookie.Value)
}

func TestLoginMissingFields(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email and password are required.")
}

func TestLoginInvalidEmailFormat(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "not-an-email",
		"password": "Abcdef1!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email format.")
}

func TestLoginUnknownEmail(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nobody@b.com",
		"password": "Abcdef1!",
	})

	// Unknown email is a 404, not a 500 and not a 401.
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User not found.")
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	srv.signup(t, "alice_01", "a@b.com", "Abcdef1!")

	w := srv.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "a@b.com",
		"password": "Wrongpw1!",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid Credentials.")
}

func TestGetMe(t *testing.T) {
	srv := newTestServer(t)
	body, cookie := srv.signup(t, "alice_01", "a@b.com", "Abcdef1!")

	w := srv.do(t, http.MethodGet, "/api/auth/get-me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decodeBody(t, w)
	assert.Equal(t, "User retrieved successfully.", got["success_message"])

	user, ok := got["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, body["_id"], user["_id"])
	assert.Equal(t, "alice_01", user["username"])
	assert.NotContains(t, user, "password")
}

func TestGetMeWithoutToken(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/auth/get-me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized. Token missing.")
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	_, cookie := srv.signup(t, "alice_01", "a@b.com", "Abcdef1!")

	w := srv.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Logout successful.")

	cleared := sessionCookie(t, w)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)

	// Logout is idempotent: no identity check, works without a cookie.
	w = srv.do(t, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutDoesNotRevokeToken(t *testing.T) {
	srv := newTestServer(t)
	_, cookie := srv.signup(t, "alice_01", "a@b.com", "Abcdef1!")

	w := srv.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	// A client that kept the old token can still authenticate until the
	// token's natural expiry: there is no server-side revocation list.
	w = srv.do(t, http.MethodGet, "/api/auth/get-me", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
}
