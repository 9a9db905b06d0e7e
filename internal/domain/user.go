package domain

import (
	"errors"
	"strings"
	"time"
)

// Common validation errors for User
var (
	ErrEmptyUserEmail = errors.New("user email cannot be empty")
)

// User represents an account that can create, own and be assigned tasks.
// The password hash is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Timezone     string    `json:"timezone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email, name and password hash.
// The ID is assigned by the store on insert.
// Returns an error if validation fails.
func NewUser(email, name, passwordHash string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: passwordHash,
		Timezone:     "UTC",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrEmptyUserEmail
	}
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}
