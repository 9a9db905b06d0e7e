package service

import (
	"context"
	"database/sql"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// NewTaskRepositoryAdapter creates a new adapter that allows a store.TaskStore
// to be used where a TaskRepository is expected.
func NewTaskRepositoryAdapter(taskStore store.TaskStore, db *sql.DB) TaskRepository {
	return &taskRepositoryAdapter{
		taskStore: taskStore,
		db:        db,
	}
}

// taskRepositoryAdapter adapts a store.TaskStore to the TaskRepository interface
type taskRepositoryAdapter struct {
	taskStore store.TaskStore
	db        *sql.DB
}

// Create implements TaskRepository.Create
func (a *taskRepositoryAdapter) Create(ctx context.Context, task *domain.Task) error {
	return a.taskStore.Create(ctx, task)
}

// GetByID implements TaskRepository.GetByID
func (a *taskRepositoryAdapter) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return a.taskStore.GetByID(ctx, id)
}

// List implements TaskRepository.List
func (a *taskRepositoryAdapter) List(ctx context.Context, skip, limit int) ([]*domain.Task, error) {
	return a.taskStore.List(ctx, skip, limit)
}

// UpdateWithVersion implements TaskRepository.UpdateWithVersion
func (a *taskRepositoryAdapter) UpdateWithVersion(
	ctx context.Context,
	id int64,
	patch store.TaskPatch,
	expectedVersion int,
) error {
	return a.taskStore.UpdateWithVersion(ctx, id, patch, expectedVersion)
}

// Update implements TaskRepository.Update
func (a *taskRepositoryAdapter) Update(ctx context.Context, id int64, patch store.TaskPatch) error {
	return a.taskStore.Update(ctx, id, patch)
}

// Delete implements TaskRepository.Delete
func (a *taskRepositoryAdapter) Delete(ctx context.Context, id int64) error {
	return a.taskStore.Delete(ctx, id)
}

// ReplaceAssignees implements TaskRepository.ReplaceAssignees
func (a *taskRepositoryAdapter) ReplaceAssignees(
	ctx context.Context,
	taskID int64,
	userIDs []int64,
	assignedBy *int64,
) error {
	return a.taskStore.ReplaceAssignees(ctx, taskID, userIDs, assignedBy)
}

// ReplaceTags implements TaskRepository.ReplaceTags
func (a *taskRepositoryAdapter) ReplaceTags(ctx context.Context, taskID int64, tagIDs []int64) error {
	return a.taskStore.ReplaceTags(ctx, taskID, tagIDs)
}

// WithTx implements TaskRepository.WithTx
func (a *taskRepositoryAdapter) WithTx(tx *sql.Tx) TaskRepository {
	return &taskRepositoryAdapter{
		taskStore: a.taskStore.WithTx(tx),
		db:        a.db,
	}
}

// DB implements TaskRepository.DB
func (a *taskRepositoryAdapter) DB() *sql.DB {
	return a.db
}

// NewUserReferenceAdapter creates a ReferenceRepository backed by a store.UserStore.
func NewUserReferenceAdapter(userStore store.UserStore) ReferenceRepository {
	return &userReferenceAdapter{userStore: userStore}
}

// userReferenceAdapter adapts a store.UserStore to the ReferenceRepository interface
type userReferenceAdapter struct {
	userStore store.UserStore
}

// FilterExisting implements ReferenceRepository.FilterExisting
func (a *userReferenceAdapter) FilterExisting(ctx context.Context, ids []int64) ([]int64, error) {
	return a.userStore.FilterExisting(ctx, ids)
}

// WithTx implements ReferenceRepository.WithTx
func (a *userReferenceAdapter) WithTx(tx *sql.Tx) ReferenceRepository {
	return &userReferenceAdapter{userStore: a.userStore.WithTx(tx)}
}

// NewTagReferenceAdapter creates a ReferenceRepository backed by a store.TagStore.
func NewTagReferenceAdapter(tagStore store.TagStore) ReferenceRepository {
	return &tagReferenceAdapter{tagStore: tagStore}
}

// tagReferenceAdapter adapts a store.TagStore to the ReferenceRepository interface
type tagReferenceAdapter struct {
	tagStore store.TagStore
}

// FilterExisting implements ReferenceRepository.FilterExisting
func (a *tagReferenceAdapter) FilterExisting(ctx context.Context, ids []int64) ([]int64, error) {
	return a.tagStore.FilterExisting(ctx, ids)
}

// WithTx implements ReferenceRepository.WithTx
func (a *tagReferenceAdapter) WithTx(tx *sql.Tx) ReferenceRepository {
	return &tagReferenceAdapter{tagStore: a.tagStore.WithTx(tx)}
}
