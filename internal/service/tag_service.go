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

// TagService provides tag management operations.
type TagService interface {
	// CreateTag creates a new tag. Returns store.ErrDuplicate if a tag with
	// the same name already exists.
	CreateTag(ctx context.Context, name string, ownerID *int64) (*domain.Tag, error)

	// ListTags returns a page of tags ordered by ID.
	ListTags(ctx context.Context, skip, limit int) ([]*domain.Tag, error)
}

// TagServiceImpl implements the TagService interface
type TagServiceImpl struct {
	tagStore store.TagStore
	db       *sql.DB
	logger   *slog.Logger
}

// NewTagService creates a new TagService
func NewTagService(tagStore store.TagStore, db *sql.DB, logger *slog.Logger) TagService {
	return &TagServiceImpl{
		tagStore: tagStore,
		db:       db,
		logger:   logger.With("component", "tag_service"),
	}
}

// CreateTag creates a new tag within a transaction.
func (s *TagServiceImpl) CreateTag(
	ctx context.Context,
	name string,
	ownerID *int64,
) (*domain.Tag, error) {
	tag, err := domain.NewTag(name, ownerID)
	if err != nil {
		s.logger.Debug("tag validation failed during create",
			"error", err)
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.tagStore.WithTx(tx).Create(ctx, tag)
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			s.logger.Debug("attempted to create duplicate tag",
				"name", tag.Name)
			return nil, err
		}
		s.logger.Error("failed to create tag",
			"error", err,
			"name", tag.Name)
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	s.logger.Info("tag created",
		"tag_id", tag.ID,
		"name", tag.Name)

	return tag, nil
}

// ListTags returns a page of tags ordered by ID.
func (s *TagServiceImpl) ListTags(ctx context.Context, skip, limit int) ([]*domain.Tag, error) {
	tags, err := s.tagStore.List(ctx, skip, limit)
	if err != nil {
		s.logger.Error("failed to list tags",
			"error", err)
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}
