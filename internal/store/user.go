package store

import (
	"context"
	"database/sql"

	"github.com/taskhub/taskhub-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store and fills its store-assigned ID.
	// Returns ErrEmailExists if a user with the same email already exists.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	// Returns ErrUserNotFound if no user has that email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// FilterExisting returns the subset of the candidate IDs that exist.
	// It is a pure read with no side effects; callers compute the missing
	// set and decide how to fail.
	FilterExisting(ctx context.Context, ids []int64) ([]int64, error)

	// WithTx returns a new UserStore instance bound to the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
