package api

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/store"
)

// mockTaskService is a testify mock for the service.TaskService interface.
type mockTaskService struct {
	mock.Mock
}

var _ service.TaskService = (*mockTaskService)(nil)

func (m *mockTaskService) CreateTask(
	ctx context.Context,
	creatorID int64,
	input service.CreateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, creatorID, input)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskService) GetTask(ctx context.Context, taskID int64) (*domain.Task, error) {
	args := m.Called(ctx, taskID)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskService) ListTasks(ctx context.Context, skip, limit int) ([]*domain.Task, error) {
	args := m.Called(ctx, skip, limit)
	if tasks, ok := args.Get(0).([]*domain.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskService) UpdateTask(
	ctx context.Context,
	taskID int64,
	patch store.TaskPatch,
	expectedVersion *int,
) (*domain.Task, error) {
	args := m.Called(ctx, taskID, patch, expectedVersion)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskService) AssignUsers(
	ctx context.Context,
	taskID int64,
	userIDs []int64,
	assignedBy int64,
) (*domain.Task, error) {
	args := m.Called(ctx, taskID, userIDs, assignedBy)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, taskID int64) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

// mockUserService is a testify mock for the service.UserService interface.
type mockUserService struct {
	mock.Mock
}

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) Register(
	ctx context.Context,
	email, name, password string,
) (*domain.User, error) {
	args := m.Called(ctx, email, name, password)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserService) Authenticate(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}
