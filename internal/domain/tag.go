package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyTagName is returned when a tag is created without a name.
var ErrEmptyTagName = errors.New("tag name cannot be empty")

// Tag is a label that can be attached to any number of tasks.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   *int64    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTag creates a new Tag. The ID is assigned by the store on insert.
func NewTag(name string, ownerID *int64) (*Tag, error) {
	tag := &Tag{
		Name:      strings.TrimSpace(name),
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if tag.Name == "" {
		return nil, ErrEmptyTagName
	}
	return tag, nil
}
