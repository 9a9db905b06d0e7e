package store

import (
	"context"
	"database/sql"

	"github.com/taskhub/taskhub-api/internal/domain"
)

// TagStore defines the interface for tag data persistence.
type TagStore interface {
	// Create saves a new tag to the store and fills its store-assigned ID.
	Create(ctx context.Context, tag *domain.Tag) error

	// List returns a page of tags ordered by ID.
	List(ctx context.Context, skip, limit int) ([]*domain.Tag, error)

	// FilterExisting returns the subset of the candidate IDs that exist.
	// It is a pure read with no side effects.
	FilterExisting(ctx context.Context, ids []int64) ([]int64, error)

	// WithTx returns a new TagStore instance bound to the provided transaction.
	WithTx(tx *sql.Tx) TagStore
}
