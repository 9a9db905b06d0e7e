package api

import (
	"time"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"max=200"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID int64 `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	// RefreshToken is the JWT refresh token to be used to obtain a new token pair
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	// AccessToken is the new JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the new JWT token used to obtain future access tokens
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// CreateTaskRequest defines the payload for the task creation endpoint.
// Status is free-form; missing attributes take the documented defaults.
type CreateTaskRequest struct {
	Title            string     `json:"title"             validate:"required"`
	Description      string     `json:"description"`
	ProjectID        *int64     `json:"project_id"`
	Status           *string    `json:"status"`
	Priority         *int       `json:"priority"          validate:"omitempty,min=1,max=5"`
	DueAt            *time.Time `json:"due_at"`
	StartAt          *time.Time `json:"start_at"`
	EstimatedMinutes *int       `json:"estimated_minutes" validate:"omitempty,min=0"`
	ParentTaskID     *int64     `json:"parent_task_id"`
	Position         *int       `json:"position"`
	AssigneeIDs      []int64    `json:"assignee_ids"`
	TagIDs           []int64    `json:"tag_ids"`
}

// UpdateTaskRequest defines the payload for the task patch endpoint.
// Every field is optional; absent fields are left untouched. AssigneeIDs and
// TagIDs replace the whole membership when present (an empty list clears it).
// Version, when present, makes the update conditional on the task still being
// at that version.
type UpdateTaskRequest struct {
	Title            *string    `json:"title"             validate:"omitempty,min=1"`
	Description      *string    `json:"description"`
	Status           *string    `json:"status"`
	Priority         *int       `json:"priority"          validate:"omitempty,min=1,max=5"`
	DueAt            *time.Time `json:"due_at"`
	StartAt          *time.Time `json:"start_at"`
	EstimatedMinutes *int       `json:"estimated_minutes" validate:"omitempty,min=0"`
	ParentTaskID     *int64     `json:"parent_task_id"`
	Position         *int       `json:"position"`
	AssigneeIDs      *[]int64   `json:"assignee_ids"`
	TagIDs           *[]int64   `json:"tag_ids"`
	Version          *int       `json:"version"           validate:"omitempty,min=1"`
}

// AssignUsersRequest defines the payload for the assignee replacement endpoint.
// The given set replaces the current assignees entirely; an empty list clears
// the task's assignees.
type AssignUsersRequest struct {
	UserIDs []int64 `json:"user_ids"`
}

// CreateProjectRequest defines the payload for the project creation endpoint.
type CreateProjectRequest struct {
	Name       string `json:"name"       validate:"required"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=private public"`
}

// UpdateProjectRequest defines the payload for the project update endpoint.
type UpdateProjectRequest struct {
	Name       string `json:"name"       validate:"required"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=private public"`
}

// CreateTagRequest defines the payload for the tag creation endpoint.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required"`
}
