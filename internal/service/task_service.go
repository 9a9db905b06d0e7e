package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/store"
)

// TaskRepository defines the repository interface the task service needs.
// This is aligned with store.TaskStore to keep the service decoupled from
// the concrete persistence implementation.
type TaskRepository interface {
	// Create inserts a new task row with version 1.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a materialized task (row plus associations).
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// List returns a page of non-deleted tasks ordered by ID.
	List(ctx context.Context, skip, limit int) ([]*domain.Task, error)

	// UpdateWithVersion applies field changes as one atomic conditional write.
	UpdateWithVersion(ctx context.Context, id int64, patch store.TaskPatch, expectedVersion int) error

	// Update applies field changes without a version predicate.
	Update(ctx context.Context, id int64, patch store.TaskPatch) error

	// Delete soft-deletes the task, detaches children and clears associations.
	Delete(ctx context.Context, id int64) error

	// ReplaceAssignees replaces the task's assignee membership.
	ReplaceAssignees(ctx context.Context, taskID int64, userIDs []int64, assignedBy *int64) error

	// ReplaceTags replaces the task's tag membership.
	ReplaceTags(ctx context.Context, taskID int64, tagIDs []int64) error

	// WithTx returns a new repository instance bound to the transaction.
	WithTx(tx *sql.Tx) TaskRepository

	// DB returns the underlying database connection.
	DB() *sql.DB
}

// ReferenceRepository is the read-only view the task service uses to validate
// candidate foreign-key IDs before committing a mutation.
type ReferenceRepository interface {
	// FilterExisting returns the subset of the candidate IDs that exist.
	FilterExisting(ctx context.Context, ids []int64) ([]int64, error)

	// WithTx returns a new repository instance bound to the transaction.
	WithTx(tx *sql.Tx) ReferenceRepository
}

// CreateTaskInput carries the attributes of a task creation request.
// Optional attributes are pointers; nil means "use the default".
type CreateTaskInput struct {
	Title            string
	Description      string
	ProjectID        *int64
	Status           *string
	Priority         *int
	DueAt            *time.Time
	StartAt          *time.Time
	EstimatedMinutes *int
	ParentTaskID     *int64
	Position         *int
	AssigneeIDs      []int64
	TagIDs           []int64
}

// TaskService orchestrates creation and mutation of tasks: it validates
// referenced entities, writes the task row, synchronizes many-to-many
// membership and enforces optimistic concurrency, all within a single
// transaction per operation.
type TaskService interface {
	// CreateTask creates a task with version 1 and its initial assignee/tag
	// membership atomically. A missing assignee or tag ID aborts the whole
	// transaction with a store.ReferenceNotFoundError; no task row or
	// association rows survive a failed create.
	CreateTask(ctx context.Context, creatorID int64, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a materialized task.
	// Returns store.ErrTaskNotFound when absent or deleted.
	GetTask(ctx context.Context, taskID int64) (*domain.Task, error)

	// ListTasks returns a page of tasks ordered by ID.
	ListTasks(ctx context.Context, skip, limit int) ([]*domain.Task, error)

	// UpdateTask applies a partial field patch to the task.
	//
	// When expectedVersion is non-nil the row write is conditional: it only
	// succeeds if the stored version still equals expectedVersion, and the
	// version advances by exactly 1. A stale version fails with
	// store.ErrVersionConflict; the caller should reload and retry. When the
	// patch also replaces assignee or tag membership, the membership writes
	// share the row write's transaction, so a version conflict aborts them too.
	//
	// When expectedVersion is nil the write is unconditional and bypasses
	// conflict detection (the version still advances when fields change).
	UpdateTask(ctx context.Context, taskID int64, patch store.TaskPatch, expectedVersion *int) (*domain.Task, error)

	// AssignUsers replaces the task's assignee set with exactly the given
	// users, stamping assignedBy on each new row. Membership replacement is
	// treated as an independent sub-resource: it does not check or advance
	// the task's version, so it can interleave with concurrent field patches.
	// Callers that need membership changes under the version check should
	// send them through UpdateTask's patch instead.
	AssignUsers(ctx context.Context, taskID int64, userIDs []int64, assignedBy int64) (*domain.Task, error)

	// DeleteTask soft-deletes the task, detaches its children and removes
	// its association rows atomically.
	DeleteTask(ctx context.Context, taskID int64) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	taskRepo TaskRepository
	userRepo ReferenceRepository
	tagRepo  ReferenceRepository
	logger   *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	taskRepo TaskRepository,
	userRepo ReferenceRepository,
	tagRepo ReferenceRepository,
	logger *slog.Logger,
) (TaskService, error) {
	if taskRepo == nil {
		return nil, domain.NewValidationError("taskRepo", "cannot be nil", domain.ErrValidation)
	}
	if userRepo == nil {
		return nil, domain.NewValidationError("userRepo", "cannot be nil", domain.ErrValidation)
	}
	if tagRepo == nil {
		return nil, domain.NewValidationError("tagRepo", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskRepo: taskRepo,
		userRepo: userRepo,
		tagRepo:  tagRepo,
		logger:   logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	creatorID int64,
	input CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(&creatorID, input.Title)
	if err != nil {
		log.Warn("invalid task creation input",
			slog.String("error", err.Error()),
			slog.Int64("creator_id", creatorID))
		return nil, NewTaskServiceError("create_task", "invalid task data", err)
	}
	applyCreateInput(task, input)
	if err := task.Validate(); err != nil {
		log.Warn("invalid task creation input",
			slog.String("error", err.Error()),
			slog.Int64("creator_id", creatorID))
		return nil, NewTaskServiceError("create_task", "invalid task data", err)
	}

	err = store.RunInTransaction(ctx, s.taskRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txTaskRepo := s.taskRepo.WithTx(tx)

		if err := txTaskRepo.Create(ctx, task); err != nil {
			log.Error("failed to create task in transaction",
				slog.String("error", err.Error()),
				slog.Int64("creator_id", creatorID))
			return NewTaskServiceError("create_task", "failed to save task", err)
		}

		if len(input.AssigneeIDs) > 0 {
			if err := s.checkReferences(ctx, s.userRepo.WithTx(tx), store.ReferenceKindUser, input.AssigneeIDs); err != nil {
				return err
			}
			if err := txTaskRepo.ReplaceAssignees(ctx, task.ID, input.AssigneeIDs, &creatorID); err != nil {
				log.Error("failed to set task assignees in transaction",
					slog.String("error", err.Error()),
					slog.Int64("task_id", task.ID))
				return NewTaskServiceError("create_task", "failed to set assignees", err)
			}
		}

		if len(input.TagIDs) > 0 {
			if err := s.checkReferences(ctx, s.tagRepo.WithTx(tx), store.ReferenceKindTag, input.TagIDs); err != nil {
				return err
			}
			if err := txTaskRepo.ReplaceTags(ctx, task.ID, input.TagIDs); err != nil {
				log.Error("failed to set task tags in transaction",
					slog.String("error", err.Error()),
					slog.Int64("task_id", task.ID))
				return NewTaskServiceError("create_task", "failed to set tags", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task created successfully",
		slog.Int64("task_id", task.ID),
		slog.Int64("creator_id", creatorID))

	return s.materialize(ctx, task.ID)
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, err
		}
		log.Error("failed to retrieve task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", taskID))
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context, skip, limit int) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks, err := s.taskRepo.List(ctx, skip, limit)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	taskID int64,
	patch store.TaskPatch,
	expectedVersion *int,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if patch.IsEmpty() {
		return nil, NewTaskServiceError("update_task", "nothing to update", ErrEmptyPatch)
	}

	err := store.RunInTransaction(ctx, s.taskRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txTaskRepo := s.taskRepo.WithTx(tx)

		// The conditional write distinguishes a missing task from a stale
		// version itself; only the unconditional path needs the existence
		// check up front.
		switch {
		case expectedVersion != nil:
			err := txTaskRepo.UpdateWithVersion(ctx, taskID, patch, *expectedVersion)
			if err != nil {
				if errors.Is(err, store.ErrVersionConflict) {
					log.Debug("task update lost the version race",
						slog.Int64("task_id", taskID),
						slog.Int("expected_version", *expectedVersion))
					return err
				}
				if errors.Is(err, store.ErrTaskNotFound) {
					return err
				}
				log.Error("failed conditional task update",
					slog.String("error", err.Error()),
					slog.Int64("task_id", taskID))
				return NewTaskServiceError("update_task", "failed to update task", err)
			}
		case patch.HasFieldChanges():
			err := txTaskRepo.Update(ctx, taskID, patch)
			if err != nil {
				if errors.Is(err, store.ErrTaskNotFound) {
					return err
				}
				log.Error("failed unconditional task update",
					slog.String("error", err.Error()),
					slog.Int64("task_id", taskID))
				return NewTaskServiceError("update_task", "failed to update task", err)
			}
		default:
			// Association-only patch without a version check: confirm the
			// task exists before touching membership.
			if _, err := txTaskRepo.GetByID(ctx, taskID); err != nil {
				if errors.Is(err, store.ErrTaskNotFound) {
					return err
				}
				return NewTaskServiceError("update_task", "failed to load task", err)
			}
		}

		if patch.AssigneeIDs != nil {
			ids := *patch.AssigneeIDs
			if err := s.checkReferences(ctx, s.userRepo.WithTx(tx), store.ReferenceKindUser, ids); err != nil {
				return err
			}
			if err := txTaskRepo.ReplaceAssignees(ctx, taskID, ids, nil); err != nil {
				log.Error("failed to replace assignees in transaction",
					slog.String("error", err.Error()),
					slog.Int64("task_id", taskID))
				return NewTaskServiceError("update_task", "failed to replace assignees", err)
			}
		}

		if patch.TagIDs != nil {
			ids := *patch.TagIDs
			if err := s.checkReferences(ctx, s.tagRepo.WithTx(tx), store.ReferenceKindTag, ids); err != nil {
				return err
			}
			if err := txTaskRepo.ReplaceTags(ctx, taskID, ids); err != nil {
				log.Error("failed to replace tags in transaction",
					slog.String("error", err.Error()),
					slog.Int64("task_id", taskID))
				return NewTaskServiceError("update_task", "failed to replace tags", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task updated successfully", slog.Int64("task_id", taskID))
	return s.materialize(ctx, taskID)
}

// AssignUsers implements TaskService.AssignUsers
func (s *taskServiceImpl) AssignUsers(
	ctx context.Context,
	taskID int64,
	userIDs []int64,
	assignedBy int64,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.taskRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txTaskRepo := s.taskRepo.WithTx(tx)

		if _, err := txTaskRepo.GetByID(ctx, taskID); err != nil {
			if errors.Is(err, store.ErrTaskNotFound) {
				return err
			}
			return NewTaskServiceError("assign_users", "failed to load task", err)
		}

		if err := s.checkReferences(ctx, s.userRepo.WithTx(tx), store.ReferenceKindUser, userIDs); err != nil {
			return err
		}

		if err := txTaskRepo.ReplaceAssignees(ctx, taskID, userIDs, &assignedBy); err != nil {
			log.Error("failed to replace assignees in transaction",
				slog.String("error", err.Error()),
				slog.Int64("task_id", taskID))
			return NewTaskServiceError("assign_users", "failed to replace assignees", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task assignees replaced",
		slog.Int64("task_id", taskID),
		slog.Int("assignee_count", len(userIDs)),
		slog.Int64("assigned_by", assignedBy))
	return s.materialize(ctx, taskID)
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.taskRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		if err := s.taskRepo.WithTx(tx).Delete(ctx, taskID); err != nil {
			if errors.Is(err, store.ErrTaskNotFound) {
				return err
			}
			log.Error("failed to delete task in transaction",
				slog.String("error", err.Error()),
				slog.Int64("task_id", taskID))
			return NewTaskServiceError("delete_task", "failed to delete task", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("task deleted successfully", slog.Int64("task_id", taskID))
	return nil
}

// checkReferences validates candidate reference IDs against the repository
// and fails with a ReferenceNotFoundError carrying the exact missing set.
func (s *taskServiceImpl) checkReferences(
	ctx context.Context,
	repo ReferenceRepository,
	kind store.ReferenceKind,
	ids []int64,
) error {
	if len(ids) == 0 {
		return nil
	}

	found, err := repo.FilterExisting(ctx, ids)
	if err != nil {
		return NewTaskServiceError("validate_references", "failed to resolve references", err)
	}
	if missing := store.MissingReferences(kind, ids, found); missing != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("mutation references missing entities",
			slog.String("kind", string(kind)),
			slog.Any("missing", missing.Missing))
		return missing
	}
	return nil
}

// materialize reads the task back from the store with associations populated.
func (s *taskServiceImpl) materialize(ctx context.Context, taskID int64) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewTaskServiceError("materialize_task", "failed to read task back", err)
	}
	return task, nil
}

// applyCreateInput copies the optional creation attributes onto the task.
func applyCreateInput(task *domain.Task, input CreateTaskInput) {
	task.Description = input.Description
	task.ProjectID = input.ProjectID
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	task.DueAt = input.DueAt
	task.StartAt = input.StartAt
	task.EstimatedMinutes = input.EstimatedMinutes
	task.ParentTaskID = input.ParentTaskID
	if input.Position != nil {
		task.Position = *input.Position
	}
}
