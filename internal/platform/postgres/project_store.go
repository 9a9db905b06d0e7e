package postgres

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

// PostgresProjectStore implements the store.ProjectStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProjectStore creates a new PostgreSQL implementation of the
// ProjectStore interface.
func NewPostgresProjectStore(db store.DBTX, logger *slog.Logger) *PostgresProjectStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "project_store")),
	}
}

// Ensure PostgresProjectStore implements store.ProjectStore interface
var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// WithTx implements store.ProjectStore.WithTx
func (s *PostgresProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &PostgresProjectStore{db: tx, logger: s.logger}
}

// Create implements store.ProjectStore.Create
func (s *PostgresProjectStore) Create(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		log.Warn("project validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO projects (owner_id, name, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(
		ctx,
		query,
		project.OwnerID,
		project.Name,
		project.Visibility,
		time.Now().UTC(),
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		log.Error("failed to create project", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("project created successfully",
		slog.Int64("project_id", project.ID),
		slog.Int64("owner_id", project.OwnerID))
	return nil
}

// GetByID implements store.ProjectStore.GetByID
func (s *PostgresProjectStore) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var project domain.Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, visibility, created_at, updated_at
		FROM projects
		WHERE id = $1
	`, id).Scan(
		&project.ID,
		&project.OwnerID,
		&project.Name,
		&project.Visibility,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("project not found", slog.Int64("project_id", id))
			return nil, store.ErrProjectNotFound
		}
		log.Error("failed to get project by ID",
			slog.String("error", err.Error()),
			slog.Int64("project_id", id))
		return nil, MapError(err)
	}

	return &project, nil
}

// ListForOwner implements store.ProjectStore.ListForOwner
func (s *PostgresProjectStore) ListForOwner(
	ctx context.Context,
	ownerID int64,
	skip, limit int,
) ([]*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, visibility, created_at, updated_at
		FROM projects
		WHERE owner_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`, ownerID, limit, skip)
	if err != nil {
		log.Error("failed to list projects",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", ownerID))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	projects := []*domain.Project{}
	for rows.Next() {
		var project domain.Project
		err := rows.Scan(
			&project.ID,
			&project.OwnerID,
			&project.Name,
			&project.Visibility,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, &project)
	}
	return projects, rows.Err()
}

// Update implements store.ProjectStore.Update
func (s *PostgresProjectStore) Update(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		log.Warn("project validation failed during update",
			slog.String("error", err.Error()))
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET name = $1, visibility = $2, updated_at = $3
		WHERE id = $4
	`, project.Name, project.Visibility, time.Now().UTC(), project.ID)
	if err != nil {
		log.Error("failed to update project",
			slog.String("error", err.Error()),
			slog.Int64("project_id", project.ID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrProjectNotFound); err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			log.Debug("project not found for update", slog.Int64("project_id", project.ID))
		}
		return err
	}

	log.Info("project updated", slog.Int64("project_id", project.ID))
	return nil
}

// Delete implements store.ProjectStore.Delete
// Tasks referencing the project keep their rows; the schema's ON DELETE SET
// NULL clears their project reference.
func (s *PostgresProjectStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete project",
			slog.String("error", err.Error()),
			slog.Int64("project_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrProjectNotFound); err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			log.Debug("project not found for delete", slog.Int64("project_id", id))
		}
		return err
	}

	log.Info("project deleted", slog.Int64("project_id", id))
	return nil
}
