package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("normalizes email", func(t *testing.T) {
		t.Parallel()

		user, err := NewUser("  Alice@Example.COM ", "Alice", "hashed")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "UTC", user.Timezone)
	})

	t.Run("rejects empty email", func(t *testing.T) {
		t.Parallel()

		_, err := NewUser("", "Alice", "hashed")
		assert.ErrorIs(t, err, ErrEmptyUserEmail)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		t.Parallel()

		_, err := NewUser("not-an-email", "Alice", "hashed")
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})
}

func TestNewProject(t *testing.T) {
	t.Parallel()

	t.Run("defaults to private visibility", func(t *testing.T) {
		t.Parallel()

		project, err := NewProject(1, "  Roadmap  ", "")
		require.NoError(t, err)
		assert.Equal(t, "Roadmap", project.Name)
		assert.Equal(t, ProjectVisibilityPrivate, project.Visibility)
	})

	t.Run("rejects unknown visibility", func(t *testing.T) {
		t.Parallel()

		_, err := NewProject(1, "Roadmap", "secret")
		assert.ErrorIs(t, err, ErrInvalidProjectVisibility)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		_, err := NewProject(1, "   ", "public")
		assert.ErrorIs(t, err, ErrEmptyProjectName)
	})
}

func TestNewTag(t *testing.T) {
	t.Parallel()

	ownerID := int64(7)

	tag, err := NewTag(" urgent ", &ownerID)
	require.NoError(t, err)
	assert.Equal(t, "urgent", tag.Name)
	assert.Equal(t, &ownerID, tag.OwnerID)

	_, err = NewTag("  ", nil)
	assert.ErrorIs(t, err, ErrEmptyTagName)
}
