package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"project not found", store.ErrProjectNotFound, http.StatusNotFound},
		{"version conflict", store.ErrVersionConflict, http.StatusConflict},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"duplicate", store.ErrDuplicate, http.StatusConflict},
		{"missing reference", store.NewReferenceNotFoundError(store.ReferenceKindUser, []int64{7}), http.StatusBadRequest},
		{"empty patch", service.ErrEmptyPatch, http.StatusBadRequest},
		{"empty title", domain.ErrEmptyTaskTitle, http.StatusBadRequest},
		{"bad priority", domain.ErrInvalidTaskPriority, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{
			"wrapped sentinel survives",
			service.NewTaskServiceError("update_task", "failed", store.ErrVersionConflict),
			http.StatusConflict,
		},
		{
			"wrapped reference error survives",
			fmt.Errorf("create: %w", store.NewReferenceNotFoundError(store.ReferenceKindTag, []int64{3})),
			http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("reference errors expose the missing IDs", func(t *testing.T) {
		t.Parallel()

		err := store.NewReferenceNotFoundError(store.ReferenceKindUser, []int64{9, 7})
		assert.Equal(t, "users not found: [7, 9]", GetSafeErrorMessage(err))

		wrapped := service.NewTaskServiceError("create_task", "failed", err)
		assert.Equal(t, "users not found: [7, 9]", GetSafeErrorMessage(wrapped))
	})

	t.Run("version conflict message", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			"Task was modified by another request",
			GetSafeErrorMessage(store.ErrVersionConflict))
	})

	t.Run("unknown errors stay generic", func(t *testing.T) {
		t.Parallel()

		msg := GetSafeErrorMessage(errors.New("pq: connection to 10.0.0.5 refused"))
		assert.Equal(t, "An unexpected error occurred", msg)
		assert.NotContains(t, msg, "10.0.0.5")
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})
}
