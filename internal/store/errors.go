package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrTaskNotFound, ErrUserNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrVersionConflict is returned when a conditional update finds that the
	// stored version no longer matches the caller's expected version. The
	// caller should reload the entity and retry with the current version.
	ErrVersionConflict = errors.New("version conflict")

	// ErrReferenceNotFound is the sentinel matched (via errors.Is) by
	// ReferenceNotFoundError values. It indicates that one or more referenced
	// entity IDs in a mutation request do not exist.
	ErrReferenceNotFound = errors.New("referenced entities not found")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrTaskNotFound indicates that the requested task does not exist in the store.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrTagNotFound indicates that the requested tag does not exist in the store.
	ErrTagNotFound = fmt.Errorf("%w: tag", ErrNotFound)

	// ErrProjectNotFound indicates that the requested project does not exist in the store.
	ErrProjectNotFound = fmt.Errorf("%w: project", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// ReferenceKind names the entity kind a set of candidate reference IDs points at.
type ReferenceKind string

const (
	ReferenceKindUser ReferenceKind = "user"
	ReferenceKindTag  ReferenceKind = "tag"
)

// ReferenceNotFoundError reports the exact set of referenced IDs that do not
// exist, so callers can surface a precise message. It matches
// ErrReferenceNotFound via errors.Is.
type ReferenceNotFoundError struct {
	Kind    ReferenceKind
	Missing []int64
}

// NewReferenceNotFoundError builds a ReferenceNotFoundError with a sorted,
// stable copy of the missing ID set.
func NewReferenceNotFoundError(kind ReferenceKind, missing []int64) *ReferenceNotFoundError {
	ids := make([]int64, len(missing))
	copy(ids, missing)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return &ReferenceNotFoundError{Kind: kind, Missing: ids}
}

// Error implements the error interface for ReferenceNotFoundError.
func (e *ReferenceNotFoundError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%ss not found: [%s]", e.Kind, strings.Join(parts, ", "))
}

// Is reports whether this error matches ErrReferenceNotFound, supporting
// errors.Is checks without exposing the concrete type.
func (e *ReferenceNotFoundError) Is(target error) bool {
	return target == ErrReferenceNotFound
}

// MissingReferences computes candidate − found and returns a
// ReferenceNotFoundError when the difference is non-empty, nil otherwise.
func MissingReferences(kind ReferenceKind, candidates, found []int64) *ReferenceNotFoundError {
	existing := make(map[int64]struct{}, len(found))
	for _, id := range found {
		existing[id] = struct{}{}
	}
	var missing []int64
	seen := make(map[int64]struct{}, len(candidates))
	for _, id := range candidates {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return NewReferenceNotFoundError(kind, missing)
}

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "task", "user")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
