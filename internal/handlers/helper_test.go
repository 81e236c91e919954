package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/flocknet/flocknet-backend/internal/handlers"
	"github.com/flocknet/flocknet-backend/internal/models"
	"github.com/flocknet/flocknet-backend/internal/routes"
	"github.com/flocknet/flocknet-backend/internal/store"
	"github.com/flocknet/flocknet-backend/internal/token"
)

const testSecret = "handler-test-secret"

// fakeUploader records Cloudinary calls instead of making them.
type fakeUploader struct {
	uploaded  []string
	destroyed []string
}

func (f *fakeUploader) UploadImage(_ context.Context, source, _ string) (string, error) {
	f.uploaded = append(f.uploaded, source)
	return "https://res.cloudinary.test/image/upload/v1/asset_" + strconv.Itoa(len(f.uploaded)) + ".png", nil
}

func (f *fakeUploader) UploadFile(_ context.Context, _ multipart.File, folder, publicID string) (string, error) {
	f.uploaded = append(f.uploaded, publicID)
	return "https://res.cloudinary.test/image/upload/v1/" + folder + "/" + publicID + ".png", nil
}

func (f *fakeUploader) Destroy(_ context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

// racingStore wraps the memory store to simulate a concurrent writer that
// wins between the uniqueness pre-check and the insert or update: the
// pre-check still passes, but the write hits the unique index.
type racingStore struct {
	*store.MemoryStore
	createErr error
	updateErr error
}

func (s *racingStore) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	return s.MemoryStore.Create(ctx, user)
}

func (s *racingStore) Update(ctx context.Context, user *models.User) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.MemoryStore.Update(ctx, user)
}

type testServer struct {
	store    *store.MemoryStore
	tokens   *token.Service
	uploader *fakeUploader
	router   http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mem := store.NewMemoryStore()
	return newTestServerWithStore(t, mem, mem)
}

// newTestServerWithStore wires the routes against a UserStore double while
// keeping the memory store for notifications and direct inspection.
func newTestServerWithStore(t *testing.T, mem *store.MemoryStore, users store.UserStore) *testServer {
	t.Helper()

	tokens := token.NewService(testSecret, time.Hour, false)
	up := &fakeUploader{}
	h := handlers.New(users, mem.Notifications(), tokens, up)

	r := chi.NewRouter()
	routes.SetupRoutes(r, h, tokens, users)

	return &testServer{store: mem, tokens: tokens, uploader: up, router: r}
}

// do performs a JSON request against the router, attaching cookies if any.
func (s *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// signup creates a user through the real endpoint and returns the response
// body plus the session cookie it set.
func (s *testServer) signup(t *testing.T, username, email, password string) (map[string]any, *http.Cookie) {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return decodeBody(t, w), sessionCookie(t, w)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == token.CookieName {
			return c
		}
	}
	t.Fatal("no token cookie in response")
	return nil
}
