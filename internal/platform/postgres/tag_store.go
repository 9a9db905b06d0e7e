package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/store"
)

// PostgresTagStore implements the store.TagStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTagStore creates a new PostgreSQL implementation of the TagStore interface.
func NewPostgresTagStore(db store.DBTX, logger *slog.Logger) *PostgresTagStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

// Ensure PostgresTagStore implements store.TagStore interface
var _ store.TagStore = (*PostgresTagStore)(nil)

// WithTx implements store.TagStore.WithTx
func (s *PostgresTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return &PostgresTagStore{db: tx, logger: s.logger}
}

// Create implements store.TagStore.Create
func (s *PostgresTagStore) Create(ctx context.Context, tag *domain.Tag) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tags (name, owner_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, tag.Name, tag.OwnerID, tag.CreatedAt).
		Scan(&tag.ID, &tag.CreatedAt)
	if err != nil {
		log.Error("failed to create tag",
			slog.String("error", err.Error()),
			slog.String("name", tag.Name))
		return MapError(err)
	}

	log.Info("tag created successfully",
		slog.Int64("tag_id", tag.ID),
		slog.String("name", tag.Name))
	return nil
}

// List implements store.TagStore.List
func (s *PostgresTagStore) List(ctx context.Context, skip, limit int) ([]*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, owner_id, created_at
		FROM tags
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, skip)
	if err != nil {
		log.Error("failed to list tags", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tags := []*domain.Tag{}
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.OwnerID, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}
	return tags, rows.Err()
}

// FilterExisting implements store.TagStore.FilterExisting
func (s *PostgresTagStore) FilterExisting(ctx context.Context, ids []int64) ([]int64, error) {
	return filterExistingIDs(ctx, s.db, s.logger, "tags", ids)
}
