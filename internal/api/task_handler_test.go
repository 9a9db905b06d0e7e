package api

import (
	"bytes"
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
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/store"
)

// newTaskTestRouter mounts the handler on a chi router with the task routes,
// injecting userID into the request context the way the auth middleware would.
func newTaskTestRouter(svc service.TaskService, userID int64) http.Handler {
	handler := NewTaskHandler(svc, slog.Default())

	r := chi.NewRouter()
	if userID != 0 {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}

	r.Post("/tasks", handler.CreateTask)
	r.Get("/tasks", handler.ListTasks)
	r.Get("/tasks/{id}", handler.GetTask)
	r.Patch("/tasks/{id}", handler.UpdateTask)
	r.Delete("/tasks/{id}", handler.DeleteTask)
	r.Put("/tasks/{id}/assignees", handler.AssignUsers)
	return r
}

func TestCreateTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()

		router := newTaskTestRouter(&mockTaskService{}, 0)
		req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(`{"title":"x"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		router := newTaskTestRouter(&mockTaskService{}, 1)
		req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(`{not json`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		t.Parallel()

		router := newTaskTestRouter(&mockTaskService{}, 1)
		req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(`{"description":"no title"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("creates task and returns 201", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		created := &domain.Task{ID: 10, Title: "Ship v1", Version: 1}
		svc.On("CreateTask", mock.Anything, int64(42), mock.MatchedBy(func(in service.CreateTaskInput) bool {
			return in.Title == "Ship v1" && len(in.AssigneeIDs) == 1 && in.AssigneeIDs[0] == 7
		})).Return(created, nil)

		router := newTaskTestRouter(svc, 42)
		body := `{"title":"Ship v1","assignee_ids":[7]}`
		req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var got domain.Task
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, int64(10), got.ID)
		assert.Equal(t, 1, got.Version)
		svc.AssertExpectations(t)
	})

	t.Run("missing reference yields 400 with the missing set", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		refErr := store.NewReferenceNotFoundError(store.ReferenceKindUser, []int64{9, 7})
		svc.On("CreateTask", mock.Anything, int64(42), mock.Anything).Return(nil, refErr)

		router := newTaskTestRouter(svc, 42)
		body := `{"title":"Ship v1","assignee_ids":[7,9]}`
		req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "users not found: [7, 9]", resp.Error)
	})
}

func TestUpdateTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("passes version through as conditional update", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		updated := &domain.Task{ID: 5, Title: "Ship v1", Status: "done", Version: 2}
		svc.On("UpdateTask", mock.Anything, int64(5), mock.MatchedBy(func(p store.TaskPatch) bool {
			return p.Status != nil && *p.Status == "done"
		}), mock.MatchedBy(func(v *int) bool {
			return v != nil && *v == 1
		})).Return(updated, nil)

		router := newTaskTestRouter(svc, 42)
		body := `{"status":"done","version":1}`
		req := httptest.NewRequest(http.MethodPatch, "/tasks/5", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("version conflict maps to 409", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		svc.On("UpdateTask", mock.Anything, int64(5), mock.Anything, mock.Anything).
			Return(nil, store.ErrVersionConflict)

		router := newTaskTestRouter(svc, 42)
		body := `{"status":"archived","version":1}`
		req := httptest.NewRequest(http.MethodPatch, "/tasks/5", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("empty patch maps to 400", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		svc.On("UpdateTask", mock.Anything, int64(5), mock.Anything, mock.Anything).
			Return(nil, service.ErrEmptyPatch)

		router := newTaskTestRouter(svc, 42)
		req := httptest.NewRequest(http.MethodPatch, "/tasks/5", bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid id in path", func(t *testing.T) {
		t.Parallel()

		router := newTaskTestRouter(&mockTaskService{}, 42)
		req := httptest.NewRequest(http.MethodPatch, "/tasks/abc", bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("not found maps to 404", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		svc.On("GetTask", mock.Anything, int64(404)).Return(nil, store.ErrTaskNotFound)

		router := newTaskTestRouter(svc, 42)
		req := httptest.NewRequest(http.MethodGet, "/tasks/404", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		svc.On("GetTask", mock.Anything, int64(5)).
			Return(&domain.Task{ID: 5, Title: "Ship v1"}, nil)

		router := newTaskTestRouter(svc, 42)
		req := httptest.NewRequest(http.MethodGet, "/tasks/5", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAssignUsersHandler(t *testing.T) {
	t.Parallel()

	t.Run("replaces assignees", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		after := &domain.Task{ID: 5, Title: "Ship v1", Version: 1}
		svc.On("AssignUsers", mock.Anything, int64(5), []int64{7, 9}, int64(42)).Return(after, nil)

		router := newTaskTestRouter(svc, 42)
		body := `{"user_ids":[7,9]}`
		req := httptest.NewRequest(http.MethodPut, "/tasks/5/assignees", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("empty body clears assignees", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		after := &domain.Task{ID: 5, Title: "Ship v1"}
		svc.On("AssignUsers", mock.Anything, int64(5), []int64{}, int64(42)).Return(after, nil)

		router := newTaskTestRouter(svc, 42)
		req := httptest.NewRequest(http.MethodPut, "/tasks/5/assignees", bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestDeleteTaskHandler(t *testing.T) {
	t.Parallel()

	svc := &mockTaskService{}
	svc.On("DeleteTask", mock.Anything, int64(5)).Return(nil)

	router := newTaskTestRouter(svc, 42)
	req := httptest.NewRequest(http.MethodDelete, "/tasks/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}
