package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// newUserTestRouter mounts the Me endpoint the way the server router does,
// injecting userID into the request context like the auth middleware would.
func newUserTestRouter(svc *mockUserService, userID int64) http.Handler {
	handler := NewAuthHandler(svc, nil, 15, slog.Default())

	r := chi.NewRouter()
	if userID != 0 {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}

	r.Get("/users/me", handler.Me)
	return r
}

func TestMeHandler(t *testing.T) {
	t.Parallel()

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()

		router := newUserTestRouter(&mockUserService{}, 0)
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("returns the authenticated user's profile", func(t *testing.T) {
		t.Parallel()

		svc := &mockUserService{}
		svc.On("GetUser", mock.Anything, int64(42)).Return(&domain.User{
			ID:           42,
			Email:        "alice@example.com",
			Name:         "Alice",
			PasswordHash: "bcrypt-hash",
			Timezone:     "UTC",
		}, nil)

		router := newUserTestRouter(svc, 42)
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, int64(42), got.ID)
		assert.Equal(t, "alice@example.com", got.Email)
		assert.NotContains(t, rec.Body.String(), "bcrypt-hash",
			"password hash must never be serialized")
		svc.AssertExpectations(t)
	})

	t.Run("missing account maps to 404", func(t *testing.T) {
		t.Parallel()

		svc := &mockUserService{}
		svc.On("GetUser", mock.Anything, int64(42)).Return(nil, store.ErrUserNotFound)

		router := newUserTestRouter(svc, 42)
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
