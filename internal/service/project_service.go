package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// ProjectService provides project management operations.
// Mutating operations are restricted to the project owner.
type ProjectService interface {
	// CreateProject creates a new project owned by the given user.
	CreateProject(ctx context.Context, ownerID int64, name, visibility string) (*domain.Project, error)

	// GetProject retrieves a project by its ID.
	// Private projects are only visible to their owner; other requesters
	// receive ErrNotOwned.
	GetProject(ctx context.Context, id, requesterID int64) (*domain.Project, error)

	// ListProjects lists the projects owned by the given user.
	ListProjects(ctx context.Context, ownerID int64, skip, limit int) ([]*domain.Project, error)

	// UpdateProject updates a project's name and visibility.
	// Returns ErrNotOwned if the requester does not own the project.
	UpdateProject(ctx context.Context, id, requesterID int64, name, visibility string) (*domain.Project, error)

	// DeleteProject deletes a project. Tasks in the project are kept and
	// detached from it. Returns ErrNotOwned if the requester does not own
	// the project.
	DeleteProject(ctx context.Context, id, requesterID int64) error
}

// ProjectServiceImpl implements the ProjectService interface
type ProjectServiceImpl struct {
	projectStore store.ProjectStore
	db           *sql.DB
	logger       *slog.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectStore store.ProjectStore,
	db *sql.DB,
	logger *slog.Logger,
) ProjectService {
	return &ProjectServiceImpl{
		projectStore: projectStore,
		db:           db,
		logger:       logger.With("component", "project_service"),
	}
}

// CreateProject creates a new project owned by the given user.
func (s *ProjectServiceImpl) CreateProject(
	ctx context.Context,
	ownerID int64,
	name, visibility string,
) (*domain.Project, error) {
	project, err := domain.NewProject(ownerID, name, visibility)
	if err != nil {
		s.logger.Debug("project validation failed during create",
			"error", err,
			"owner_id", ownerID)
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.projectStore.WithTx(tx).Create(ctx, project)
	})
	if err != nil {
		s.logger.Error("failed to create project",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created",
		"project_id", project.ID,
		"owner_id", ownerID)

	return project, nil
}

// GetProject retrieves a project by its ID, enforcing visibility.
func (s *ProjectServiceImpl) GetProject(
	ctx context.Context,
	id, requesterID int64,
) (*domain.Project, error) {
	project, err := s.projectStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return nil, err
		}
		s.logger.Error("failed to retrieve project",
			"error", err,
			"project_id", id)
		return nil, fmt.Errorf("failed to retrieve project: %w", err)
	}

	if project.Visibility == domain.ProjectVisibilityPrivate && project.OwnerID != requesterID {
		s.logger.Debug("private project access denied",
			"project_id", id,
			"requester_id", requesterID)
		return nil, ErrNotOwned
	}

	return project, nil
}

// ListProjects lists the projects owned by the given user.
func (s *ProjectServiceImpl) ListProjects(
	ctx context.Context,
	ownerID int64,
	skip, limit int,
) ([]*domain.Project, error) {
	projects, err := s.projectStore.ListForOwner(ctx, ownerID, skip, limit)
	if err != nil {
		s.logger.Error("failed to list projects",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// UpdateProject updates a project's name and visibility within a transaction.
// The ownership check and the update share the transaction so a concurrent
// owner change cannot slip between them.
func (s *ProjectServiceImpl) UpdateProject(
	ctx context.Context,
	id, requesterID int64,
	name, visibility string,
) (*domain.Project, error) {
	var updated *domain.Project

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.projectStore.WithTx(tx)

		project, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if project.OwnerID != requesterID {
			return ErrNotOwned
		}

		project.Name = name
		if visibility != "" {
			project.Visibility = visibility
		}

		if err := txStore.Update(ctx, project); err != nil {
			return err
		}

		updated = project
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) || errors.Is(err, ErrNotOwned) {
			s.logger.Debug("project update rejected",
				"error", err,
				"project_id", id,
				"requester_id", requesterID)
			return nil, err
		}
		s.logger.Error("failed to update project",
			"error", err,
			"project_id", id)
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.logger.Info("project updated",
		"project_id", id,
		"requester_id", requesterID)

	return updated, nil
}

// DeleteProject deletes a project after verifying ownership.
func (s *ProjectServiceImpl) DeleteProject(ctx context.Context, id, requesterID int64) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.projectStore.WithTx(tx)

		project, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if project.OwnerID != requesterID {
			return ErrNotOwned
		}

		return txStore.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) || errors.Is(err, ErrNotOwned) {
			s.logger.Debug("project delete rejected",
				"error", err,
				"project_id", id,
				"requester_id", requesterID)
			return err
		}
		s.logger.Error("failed to delete project",
			"error", err,
			"project_id", id)
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.logger.Info("project deleted",
		"project_id", id,
		"requester_id", requesterID)

	return nil
}
