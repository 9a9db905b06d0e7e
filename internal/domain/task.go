package domain

import (
	"errors"
	"strings"
	"time"
)

// Default task attribute values applied on creation.
const (
	DefaultTaskStatus   = "todo"
	DefaultTaskPriority = 3
)

// Common validation errors for Task
var (
	ErrEmptyTaskTitle      = errors.New("task title cannot be empty")
	ErrInvalidTaskPriority = errors.New("task priority must be between 1 and 5")
)

// Task is the mutable root entity of the system. Its identity is assigned by
// the store on creation and never changes afterwards, as does the creator
// reference. Version starts at 1 and is incremented by exactly 1 on every
// successful update of the task row; it never decreases and never skips.
type Task struct {
	ID               int64      `json:"id"`
	ProjectID        *int64     `json:"project_id"`
	CreatorID        *int64     `json:"creator_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	Priority         int        `json:"priority"`
	DueAt            *time.Time `json:"due_at"`
	StartAt          *time.Time `json:"start_at"`
	EstimatedMinutes *int       `json:"estimated_minutes"`
	ParentTaskID     *int64     `json:"parent_task_id"`
	Position         int        `json:"position"`
	Version          int        `json:"version"`
	IsDeleted        bool       `json:"is_deleted"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Associations, populated when the task is materialized from the store.
	Assignees []Assignment `json:"assignees"`
	Tags      []Tag        `json:"tags"`
}

// Assignment relates a task to a user. The (task, user) pair is unique at any
// point in time; replacing a task's assignee set removes prior rows first.
type Assignment struct {
	TaskID     int64     `json:"task_id"`
	UserID     int64     `json:"user_id"`
	AssignedBy *int64    `json:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at"`
}

// NewTask creates a new Task with the given creator and title, applying the
// default status, priority and version. The ID is left zero: it is assigned
// by the store on insert.
// Returns an error if validation fails.
func NewTask(creatorID *int64, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		CreatorID: creatorID,
		Title:     title,
		Status:    DefaultTaskStatus,
		Priority:  DefaultTaskPriority,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTaskTitle
	}
	if t.Priority < 1 || t.Priority > 5 {
		return ErrInvalidTaskPriority
	}
	return nil
}

// AssigneeIDs returns the user IDs of the task's current assignees,
// in association order.
func (t *Task) AssigneeIDs() []int64 {
	ids := make([]int64, len(t.Assignees))
	for i, a := range t.Assignees {
		ids[i] = a.UserID
	}
	return ids
}

// TagIDs returns the IDs of the task's current tags, in association order.
func (t *Task) TagIDs() []int64 {
	ids := make([]int64, len(t.Tags))
	for i, tag := range t.Tags {
		ids[i] = tag.ID
	}
	return ids
}
