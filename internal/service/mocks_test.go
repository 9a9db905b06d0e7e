package service

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// mockTaskRepository is a testify mock for the TaskRepository interface.
type mockTaskRepository struct {
	mock.Mock
}

func (m *mockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockTaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskRepository) List(ctx context.Context, skip, limit int) ([]*domain.Task, error) {
	args := m.Called(ctx, skip, limit)
	if tasks, ok := args.Get(0).([]*domain.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskRepository) UpdateWithVersion(
	ctx context.Context,
	id int64,
	patch store.TaskPatch,
	expectedVersion int,
) error {
	args := m.Called(ctx, id, patch, expectedVersion)
	return args.Error(0)
}

func (m *mockTaskRepository) Update(ctx context.Context, id int64, patch store.TaskPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *mockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTaskRepository) ReplaceAssignees(
	ctx context.Context,
	taskID int64,
	userIDs []int64,
	assignedBy *int64,
) error {
	args := m.Called(ctx, taskID, userIDs, assignedBy)
	return args.Error(0)
}

func (m *mockTaskRepository) ReplaceTags(ctx context.Context, taskID int64, tagIDs []int64) error {
	args := m.Called(ctx, taskID, tagIDs)
	return args.Error(0)
}

func (m *mockTaskRepository) WithTx(tx *sql.Tx) TaskRepository {
	m.Called(tx)
	return m
}

func (m *mockTaskRepository) DB() *sql.DB {
	args := m.Called()
	if db, ok := args.Get(0).(*sql.DB); ok {
		return db
	}
	return nil
}

// mockReferenceRepository is a testify mock for the ReferenceRepository interface.
type mockReferenceRepository struct {
	mock.Mock
}

func (m *mockReferenceRepository) FilterExisting(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	if found, ok := args.Get(0).([]int64); ok {
		return found, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReferenceRepository) WithTx(tx *sql.Tx) ReferenceRepository {
	m.Called(tx)
	return m
}
