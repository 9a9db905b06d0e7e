package domain

import (
	"errors"
	"strings"
	"time"
)

// Project visibility values.
const (
	ProjectVisibilityPrivate = "private"
	ProjectVisibilityPublic  = "public"
)

// Common validation errors for Project
var (
	ErrEmptyProjectName         = errors.New("project name cannot be empty")
	ErrInvalidProjectVisibility = errors.New("invalid project visibility")
)

// Project groups tasks under an owner.
type Project struct {
	ID         int64     `json:"id"`
	OwnerID    int64     `json:"owner_id"`
	Name       string    `json:"name"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewProject creates a new Project owned by the given user.
// Visibility defaults to private when empty.
func NewProject(ownerID int64, name, visibility string) (*Project, error) {
	if visibility == "" {
		visibility = ProjectVisibilityPrivate
	}
	now := time.Now().UTC()
	project := &Project{
		OwnerID:    ownerID,
		Name:       strings.TrimSpace(name),
		Visibility: visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

// Validate checks if the Project has valid data.
func (p *Project) Validate() error {
	if p.Name == "" {
		return ErrEmptyProjectName
	}
	if p.Visibility != ProjectVisibilityPrivate && p.Visibility != ProjectVisibilityPublic {
		return ErrInvalidProjectVisibility
	}
	return nil
}
