package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

func newTestTaskService(t *testing.T) (TaskService, *mockTaskRepository, *mockReferenceRepository, *mockReferenceRepository) {
	t.Helper()

	taskRepo := &mockTaskRepository{}
	userRepo := &mockReferenceRepository{}
	tagRepo := &mockReferenceRepository{}

	svc, err := NewTaskService(taskRepo, userRepo, tagRepo, slog.Default())
	require.NoError(t, err)

	return svc, taskRepo, userRepo, tagRepo
}

func TestNewTaskService_Validation(t *testing.T) {
	t.Parallel()

	taskRepo := &mockTaskRepository{}
	userRepo := &mockReferenceRepository{}
	tagRepo := &mockReferenceRepository{}

	tests := []struct {
		name     string
		taskRepo TaskRepository
		userRepo ReferenceRepository
		tagRepo  ReferenceRepository
	}{
		{"nil task repository", nil, userRepo, tagRepo},
		{"nil user repository", taskRepo, nil, tagRepo},
		{"nil tag repository", taskRepo, userRepo, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewTaskService(tc.taskRepo, tc.userRepo, tc.tagRepo, slog.Default())
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()

		svc, err := NewTaskService(taskRepo, userRepo, tagRepo, nil)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestCreateTask_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	svc, taskRepo, _, _ := newTestTaskService(t)

	t.Run("empty title", func(t *testing.T) {
		_, err := svc.CreateTask(context.Background(), 1, CreateTaskInput{Title: "  "})
		assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
	})

	t.Run("priority out of range", func(t *testing.T) {
		priority := 9
		_, err := svc.CreateTask(context.Background(), 1, CreateTaskInput{
			Title:    "valid",
			Priority: &priority,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTaskPriority)
	})

	// Validation failures must never reach the store.
	taskRepo.AssertNotCalled(t, "Create")
	taskRepo.AssertNotCalled(t, "DB")
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	t.Run("returns materialized task", func(t *testing.T) {
		t.Parallel()

		svc, taskRepo, _, _ := newTestTaskService(t)
		want := &domain.Task{ID: 5, Title: "Ship v1", Version: 2}
		taskRepo.On("GetByID", context.Background(), int64(5)).Return(want, nil)

		got, err := svc.GetTask(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		taskRepo.AssertExpectations(t)
	})

	t.Run("not found passes through unchanged", func(t *testing.T) {
		t.Parallel()

		svc, taskRepo, _, _ := newTestTaskService(t)
		taskRepo.On("GetByID", context.Background(), int64(404)).Return(nil, store.ErrTaskNotFound)

		_, err := svc.GetTask(context.Background(), 404)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	svc, taskRepo, _, _ := newTestTaskService(t)
	want := []*domain.Task{{ID: 1}, {ID: 2}}
	taskRepo.On("List", context.Background(), 0, 50).Return(want, nil)

	got, err := svc.ListTasks(context.Background(), 0, 50)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUpdateTask_RejectsEmptyPatch(t *testing.T) {
	t.Parallel()

	svc, taskRepo, _, _ := newTestTaskService(t)

	version := 1
	_, err := svc.UpdateTask(context.Background(), 1, store.TaskPatch{}, &version)
	assert.ErrorIs(t, err, ErrEmptyPatch)

	// An empty patch must not open a transaction or touch the store.
	taskRepo.AssertNotCalled(t, "DB")
	taskRepo.AssertNotCalled(t, "UpdateWithVersion")
	taskRepo.AssertNotCalled(t, "Update")
}

func TestTaskServiceError_PreservesSentinels(t *testing.T) {
	t.Parallel()

	err := NewTaskServiceError("update_task", "failed to update task", store.ErrVersionConflict)
	assert.ErrorIs(t, err, store.ErrVersionConflict)
	assert.Contains(t, err.Error(), "task service update_task failed")
}
