package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskhub/taskhub-api/internal/domain"
)

// TaskPatch is the closed set of task attributes a caller may change.
// A nil field is left untouched; a non-nil field is written. Identity,
// creator and version are deliberately absent: they are immutable from the
// caller's point of view (version is advanced by the store itself).
//
// AssigneeIDs and TagIDs describe full replacement membership for the task's
// assignee and tag relations. A nil pointer leaves the relation untouched;
// a pointer to an empty slice clears it.
type TaskPatch struct {
	Title            *string
	Description      *string
	Status           *string
	Priority         *int
	DueAt            *time.Time
	StartAt          *time.Time
	EstimatedMinutes *int
	ParentTaskID     *int64
	Position         *int

	AssigneeIDs *[]int64
	TagIDs      *[]int64
}

// HasFieldChanges reports whether the patch touches any task row column
// (as opposed to only association membership).
func (p TaskPatch) HasFieldChanges() bool {
	return p.Title != nil ||
		p.Description != nil ||
		p.Status != nil ||
		p.Priority != nil ||
		p.DueAt != nil ||
		p.StartAt != nil ||
		p.EstimatedMinutes != nil ||
		p.ParentTaskID != nil ||
		p.Position != nil
}

// HasAssociationChanges reports whether the patch replaces assignee or tag membership.
func (p TaskPatch) HasAssociationChanges() bool {
	return p.AssigneeIDs != nil || p.TagIDs != nil
}

// IsEmpty reports whether the patch changes nothing at all.
func (p TaskPatch) IsEmpty() bool {
	return !p.HasFieldChanges() && !p.HasAssociationChanges()
}

// TaskStore defines the interface for task data persistence.
//
// Methods that touch more than one row (Create with associations, Delete,
// the Replace* methods) MUST be run within a transaction for atomicity.
// Use WithTx together with store.RunInTransaction:
//
//	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
//	    txStore := taskStore.WithTx(tx)
//	    return txStore.ReplaceAssignees(ctx, taskID, userIDs, &assignerID)
//	})
type TaskStore interface {
	// Create inserts a new task row with version 1 and fills the task's
	// store-assigned identity and timestamps on success.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID, with assignee and tag
	// membership populated. Soft-deleted tasks are treated as absent.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// List returns a page of non-deleted tasks ordered by ID, with
	// associations populated.
	List(ctx context.Context, skip, limit int) ([]*domain.Task, error)

	// UpdateWithVersion applies the patch's field changes to the task row as
	// a single conditional write: columns are set and version is incremented
	// by exactly 1, but only if the stored version equals expectedVersion.
	// It is one atomic statement, never a read-then-write, so two concurrent
	// callers with the same expectedVersion cannot both succeed.
	// Returns ErrVersionConflict if the stored version differs, or
	// ErrTaskNotFound if the task does not exist or is soft-deleted.
	// Association fields on the patch are ignored here; replace membership
	// with ReplaceAssignees/ReplaceTags inside the same transaction.
	UpdateWithVersion(ctx context.Context, id int64, patch TaskPatch, expectedVersion int) error

	// Update applies the patch's field changes without a version predicate.
	// The version is still incremented by 1, but a concurrent writer is not
	// detected: this bypasses optimistic concurrency control and exists only
	// for flows that do not need it.
	// Returns ErrTaskNotFound if the task does not exist or is soft-deleted.
	Update(ctx context.Context, id int64, patch TaskPatch) error

	// Delete soft-deletes the task, detaches its child tasks (their parent
	// reference is cleared, the children survive) and removes the task's
	// assignment and tag rows. Must run within a caller transaction.
	// Returns ErrTaskNotFound if the task does not exist or is already deleted.
	Delete(ctx context.Context, id int64) error

	// ReplaceAssignees removes every assignment row for the task and inserts
	// exactly one row per user ID, stamped with the assigner when non-nil.
	// An empty set clears the task's assignees. It never commits or rolls
	// back on its own, and it assumes the IDs were already validated.
	ReplaceAssignees(ctx context.Context, taskID int64, userIDs []int64, assignedBy *int64) error

	// ReplaceTags removes every tag row for the task and inserts exactly one
	// row per tag ID. Same contract as ReplaceAssignees.
	ReplaceTags(ctx context.Context, taskID int64, tagIDs []int64) error

	// WithTx returns a new TaskStore instance bound to the provided
	// transaction, so multiple operations can share one transaction.
	WithTx(tx *sql.Tx) TaskStore
}
