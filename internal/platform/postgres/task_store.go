package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/store"
)

// taskColumns is the select list shared by every task row read.
const taskColumns = `id, project_id, creator_id, title, description, status, priority,
	due_at, start_at, estimated_minutes, parent_task_id, position, version,
	is_deleted, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It inserts the task row with version 1 and fills the store-assigned
// identity and timestamps.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO tasks (project_id, creator_id, title, description, status,
			priority, due_at, start_at, estimated_minutes, parent_task_id,
			position, version, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, FALSE, $12, $12)
		RETURNING id, version, created_at, updated_at
	`

	now := time.Now().UTC()
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.ProjectID,
		task.CreatorID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueAt,
		task.StartAt,
		task.EstimatedMinutes,
		task.ParentTaskID,
		task.Position,
		now,
	).Scan(&task.ID, &task.Version, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.Int64("task_id", task.ID),
		slog.String("title", task.Title))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Soft-deleted tasks are treated as absent.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE id = $1 AND NOT is_deleted
	`, taskColumns)

	task, err := s.scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, MapError(err)
	}

	if err := s.loadAssociations(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, skip, limit int) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE NOT is_deleted
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, taskColumns)

	rows, err := s.db.QueryContext(ctx, query, limit, skip)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	for _, task := range tasks {
		if err := s.loadAssociations(ctx, task); err != nil {
			return nil, err
		}
	}

	log.Debug("listed tasks", slog.Int("count", len(tasks)))
	return tasks, nil
}

// UpdateWithVersion implements store.TaskStore.UpdateWithVersion
// The write is a single conditional UPDATE: patched columns are set and the
// version advances by 1 only when the stored version still equals
// expectedVersion. Two concurrent callers carrying the same expected version
// therefore cannot both succeed; the loser sees zero affected rows.
func (s *PostgresTaskStore) UpdateWithVersion(
	ctx context.Context,
	id int64,
	patch store.TaskPatch,
	expectedVersion int,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	setClause, args := buildTaskUpdateSet(patch, 1)
	if setClause != "" {
		setClause += ", "
	}
	next := len(args) + 1

	query := fmt.Sprintf(`
		UPDATE tasks
		SET %sversion = version + 1, updated_at = $%d
		WHERE id = $%d AND version = $%d AND NOT is_deleted
	`, setClause, next, next+1, next+2)
	args = append(args, time.Now().UTC(), id, expectedVersion)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to execute conditional task update",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id),
			slog.Int("expected_version", expectedVersion))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return err
	}

	if rowsAffected == 0 {
		// Distinguish a stale version from a missing task. The existence
		// check runs on the same DBTX, so inside a transaction it observes
		// the transaction's own snapshot.
		var exists bool
		checkErr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1 AND NOT is_deleted)`,
			id,
		).Scan(&exists)
		if checkErr != nil {
			log.Error("failed to check task existence after conditional update",
				slog.String("error", checkErr.Error()),
				slog.Int64("task_id", id))
			return MapError(checkErr)
		}
		if !exists {
			log.Debug("task not found for conditional update",
				slog.Int64("task_id", id))
			return store.ErrTaskNotFound
		}
		log.Debug("version conflict on conditional update",
			slog.Int64("task_id", id),
			slog.Int("expected_version", expectedVersion))
		return store.ErrVersionConflict
	}

	log.Info("task updated with version check",
		slog.Int64("task_id", id),
		slog.Int("expected_version", expectedVersion))
	return nil
}

// Update implements store.TaskStore.Update
// Unconditional mode: no version predicate, so a concurrent writer is not
// detected. The version still advances by 1.
func (s *PostgresTaskStore) Update(ctx context.Context, id int64, patch store.TaskPatch) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	setClause, args := buildTaskUpdateSet(patch, 1)
	if setClause != "" {
		setClause += ", "
	}
	next := len(args) + 1

	query := fmt.Sprintf(`
		UPDATE tasks
		SET %sversion = version + 1, updated_at = $%d
		WHERE id = $%d AND NOT is_deleted
	`, setClause, next, next+1)
	args = append(args, time.Now().UTC(), id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found for update", slog.Int64("task_id", id))
		}
		return err
	}

	log.Info("task updated", slog.Int64("task_id", id))
	return nil
}

// Delete implements store.TaskStore.Delete
// The task row is soft-deleted; children are detached rather than deleted,
// and the task's association rows are removed. Must run within a caller
// transaction so the three writes are atomic.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET is_deleted = TRUE, updated_at = $1
		WHERE id = $2 AND NOT is_deleted
	`, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found for delete", slog.Int64("task_id", id))
		}
		return err
	}

	// Detach children instead of cascading the delete.
	if _, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET parent_task_id = NULL WHERE parent_task_id = $1`, id); err != nil {
		log.Error("failed to detach child tasks",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return MapError(err)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM task_assignments WHERE task_id = $1`, id); err != nil {
		log.Error("failed to delete task assignments",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return MapError(err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM task_tags WHERE task_id = $1`, id); err != nil {
		log.Error("failed to delete task tags",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return MapError(err)
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	return nil
}

// ReplaceAssignees implements store.TaskStore.ReplaceAssignees
// Replace-all semantics: every existing assignment row for the task is
// removed, then exactly one row per target user is inserted. An empty target
// set clears the task's assignees. Runs on whatever DBTX the store is bound
// to and never commits on its own.
func (s *PostgresTaskStore) ReplaceAssignees(
	ctx context.Context,
	taskID int64,
	userIDs []int64,
	assignedBy *int64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM task_assignments WHERE task_id = $1`, taskID); err != nil {
		log.Error("failed to clear task assignments",
			slog.String("error", err.Error()),
			slog.Int64("task_id", taskID))
		return MapError(err)
	}

	now := time.Now().UTC()
	for _, userID := range userIDs {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO task_assignments (task_id, user_id, assigned_by, assigned_at)
			VALUES ($1, $2, $3, $4)
		`, taskID, userID, assignedBy, now)
		if err != nil {
			log.Error("failed to insert task assignment",
				slog.String("error", err.Error()),
				slog.Int64("task_id", taskID),
				slog.Int64("user_id", userID))
			return MapError(err)
		}
	}

	log.Debug("replaced task assignees",
		slog.Int64("task_id", taskID),
		slog.Int("count", len(userIDs)))
	return nil
}

// ReplaceTags implements store.TaskStore.ReplaceTags
func (s *PostgresTaskStore) ReplaceTags(ctx context.Context, taskID int64, tagIDs []int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM task_tags WHERE task_id = $1`, taskID); err != nil {
		log.Error("failed to clear task tags",
			slog.String("error", err.Error()),
			slog.Int64("task_id", taskID))
		return MapError(err)
	}

	for _, tagID := range tagIDs {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO task_tags (task_id, tag_id)
			VALUES ($1, $2)
		`, taskID, tagID)
		if err != nil {
			log.Error("failed to insert task tag",
				slog.String("error", err.Error()),
				slog.Int64("task_id", taskID),
				slog.Int64("tag_id", tagID))
			return MapError(err)
		}
	}

	log.Debug("replaced task tags",
		slog.Int64("task_id", taskID),
		slog.Int("count", len(tagIDs)))
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans one task row from the taskColumns select list.
func (s *PostgresTaskStore) scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.CreatorID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueAt,
		&task.StartAt,
		&task.EstimatedMinutes,
		&task.ParentTaskID,
		&task.Position,
		&task.Version,
		&task.IsDeleted,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// loadAssociations populates the task's assignee and tag membership.
func (s *PostgresTaskStore) loadAssociations(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	assignRows, err := s.db.QueryContext(ctx, `
		SELECT task_id, user_id, assigned_by, assigned_at
		FROM task_assignments
		WHERE task_id = $1
		ORDER BY user_id
	`, task.ID)
	if err != nil {
		log.Error("failed to load task assignments",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return MapError(err)
	}
	defer func() {
		if err := assignRows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	task.Assignees = []domain.Assignment{}
	for assignRows.Next() {
		var a domain.Assignment
		if err := assignRows.Scan(&a.TaskID, &a.UserID, &a.AssignedBy, &a.AssignedAt); err != nil {
			return err
		}
		task.Assignees = append(task.Assignees, a)
	}
	if err := assignRows.Err(); err != nil {
		return err
	}

	tagRows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.owner_id, t.created_at
		FROM tags t
		JOIN task_tags tt ON tt.tag_id = t.id
		WHERE tt.task_id = $1
		ORDER BY t.id
	`, task.ID)
	if err != nil {
		log.Error("failed to load task tags",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return MapError(err)
	}
	defer func() {
		if err := tagRows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	task.Tags = []domain.Tag{}
	for tagRows.Next() {
		var t domain.Tag
		if err := tagRows.Scan(&t.ID, &t.Name, &t.OwnerID, &t.CreatedAt); err != nil {
			return err
		}
		task.Tags = append(task.Tags, t)
	}
	return tagRows.Err()
}
