package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	creatorID := int64(42)

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()

		task, err := NewTask(&creatorID, "Write report")
		require.NoError(t, err)

		assert.Equal(t, int64(0), task.ID, "identity is store-assigned")
		assert.Equal(t, DefaultTaskStatus, task.Status)
		assert.Equal(t, DefaultTaskPriority, task.Priority)
		assert.Equal(t, 1, task.Version)
		assert.False(t, task.IsDeleted)
		assert.Equal(t, &creatorID, task.CreatorID)
		assert.WithinDuration(t, time.Now().UTC(), task.CreatedAt, time.Second)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		t.Parallel()

		_, err := NewTask(&creatorID, "")
		assert.ErrorIs(t, err, ErrEmptyTaskTitle)

		_, err = NewTask(&creatorID, "   ")
		assert.ErrorIs(t, err, ErrEmptyTaskTitle)
	})

	t.Run("nil creator is allowed", func(t *testing.T) {
		t.Parallel()

		task, err := NewTask(nil, "Orphan task")
		require.NoError(t, err)
		assert.Nil(t, task.CreatorID)
	})
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		title    string
		priority int
		wantErr  error
	}{
		{"valid", "Do the thing", 3, nil},
		{"priority lower bound", "Do the thing", 1, nil},
		{"priority upper bound", "Do the thing", 5, nil},
		{"priority too low", "Do the thing", 0, ErrInvalidTaskPriority},
		{"priority too high", "Do the thing", 6, ErrInvalidTaskPriority},
		{"empty title", "", 3, ErrEmptyTaskTitle},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			task := Task{Title: tc.title, Priority: tc.priority}
			err := task.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestTaskAssociationIDHelpers(t *testing.T) {
	t.Parallel()

	task := Task{
		Assignees: []Assignment{
			{TaskID: 1, UserID: 7},
			{TaskID: 1, UserID: 9},
		},
		Tags: []Tag{
			{ID: 3, Name: "urgent"},
			{ID: 5, Name: "backend"},
		},
	}

	assert.Equal(t, []int64{7, 9}, task.AssigneeIDs())
	assert.Equal(t, []int64{3, 5}, task.TagIDs())

	empty := Task{}
	assert.Empty(t, empty.AssigneeIDs())
	assert.Empty(t, empty.TagIDs())
}
