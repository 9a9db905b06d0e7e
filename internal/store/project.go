package store

import (
	"context"
	"database/sql"

	"github.com/taskhub/taskhub-api/internal/domain"
)

// ProjectStore defines the interface for project data persistence.
type ProjectStore interface {
	// Create saves a new project to the store and fills its store-assigned ID.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Project, error)

	// ListForOwner returns a page of the owner's projects ordered by ID.
	ListForOwner(ctx context.Context, ownerID int64, skip, limit int) ([]*domain.Project, error)

	// Update saves changes to an existing project.
	// Returns ErrProjectNotFound if the project does not exist.
	Update(ctx context.Context, project *domain.Project) error

	// Delete removes a project. Tasks referencing it keep their rows; the
	// schema clears their project reference.
	// Returns ErrProjectNotFound if the project does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a new ProjectStore instance bound to the provided transaction.
	WithTx(tx *sql.Tx) ProjectStore
}
