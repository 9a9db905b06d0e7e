package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/postgres"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/store"
)

// setupIntegrationDB opens the test database and applies migrations.
// Tests are skipped when DATABASE_URL is not set.
func setupIntegrationDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test - requires DATABASE_URL environment variable")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, db.Ping())
	require.NoError(t, postgres.MigrateUp(context.Background(), db))

	return db
}

// newIntegrationTaskService wires a TaskService against the real stores.
func newIntegrationTaskService(t *testing.T, db *sql.DB) service.TaskService {
	t.Helper()

	logger := slog.Default()
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	userStore := postgres.NewPostgresUserStore(db, logger)
	tagStore := postgres.NewPostgresTagStore(db, logger)

	svc, err := service.NewTaskService(
		service.NewTaskRepositoryAdapter(taskStore, db),
		service.NewUserReferenceAdapter(userStore),
		service.NewTagReferenceAdapter(tagStore),
		logger,
	)
	require.NoError(t, err)

	return svc
}

// createTestUser inserts a user and returns its ID.
func createTestUser(t *testing.T, db *sql.DB, emailSuffix string) int64 {
	t.Helper()

	userStore := postgres.NewPostgresUserStore(db, slog.Default())
	user, err := domain.NewUser(
		fmt.Sprintf("it-%s-%d@example.com", emailSuffix, os.Getpid()),
		"Test User",
		"not-a-real-hash",
	)
	require.NoError(t, err)
	require.NoError(t, userStore.Create(context.Background(), user))

	t.Cleanup(func() {
		_, _ = db.Exec("DELETE FROM users WHERE id = $1", user.ID)
	})
	return user.ID
}

// createTestTag inserts a tag and returns its ID.
func createTestTag(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()

	tagStore := postgres.NewPostgresTagStore(db, slog.Default())
	tag, err := domain.NewTag(fmt.Sprintf("it-%s-%d", name, os.Getpid()), nil)
	require.NoError(t, err)
	require.NoError(t, tagStore.Create(context.Background(), tag))

	t.Cleanup(func() {
		_, _ = db.Exec("DELETE FROM tags WHERE id = $1", tag.ID)
	})
	return tag.ID
}

func TestTaskLifecycle_Integration(t *testing.T) {
	db := setupIntegrationDB(t)
	svc := newIntegrationTaskService(t, db)
	ctx := context.Background()

	creator := createTestUser(t, db, "creator")
	assignee := createTestUser(t, db, "assignee")

	// Create with an initial assignee.
	task, err := svc.CreateTask(ctx, creator, service.CreateTaskInput{
		Title:       "Ship v1",
		AssigneeIDs: []int64{assignee},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, task.Version)
	assert.Equal(t, []int64{assignee}, task.AssigneeIDs())

	// First conditional update succeeds and advances the version by exactly 1.
	status := "done"
	updated, err := svc.UpdateTask(ctx, task.ID, store.TaskPatch{Status: &status}, intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "done", updated.Status)

	// A second update with the now-stale version must fail and change nothing.
	stale := "archived"
	_, err = svc.UpdateTask(ctx, task.ID, store.TaskPatch{Status: &stale}, intPtr(1))
	assert.ErrorIs(t, err, store.ErrVersionConflict)

	current, err := svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "done", current.Status)
	assert.Equal(t, 2, current.Version)

	// Delete hides the task from reads.
	require.NoError(t, svc.DeleteTask(ctx, task.ID))
	_, err = svc.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestConditionalUpdate_TwoRacersOneWinner(t *testing.T) {
	db := setupIntegrationDB(t)
	svc := newIntegrationTaskService(t, db)
	ctx := context.Background()

	creator := createTestUser(t, db, "race-creator")

	task, err := svc.CreateTask(ctx, creator, service.CreateTaskInput{Title: "Contested"})
	require.NoError(t, err)

	// Both goroutines carry expectedVersion=1; the conditional write decides
	// the winner atomically, so exactly one must succeed.
	statuses := []string{"done", "archived"}
	errs := make([]error, len(statuses))

	var wg sync.WaitGroup
	for i := range statuses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.UpdateTask(ctx, task.ID, store.TaskPatch{Status: &statuses[i]}, intPtr(1))
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, store.ErrVersionConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one racer must win")
	assert.Equal(t, 1, conflicts, "the other racer must observe a version conflict")

	// The stored state reflects only the winner's patch.
	current, err := svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, current.Version)
	assert.Contains(t, statuses, current.Status)
}

func TestConditionalUpdate_VersionAdvancesByOneEachTime(t *testing.T) {
	db := setupIntegrationDB(t)
	svc := newIntegrationTaskService(t, db)
	ctx := context.Background()

	creator := createTestUser(t, db, "counter-creator")

	task, err := svc.CreateTask(ctx, creator, service.CreateTaskInput{Title: "Counter"})
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		title := fmt.Sprintf("Counter rev %d", i)
		updated, err := svc.UpdateTask(ctx, task.ID, store.TaskPatch{Title: &title}, intPtr(i))
		require.NoError(t, err)
		assert.Equal(t, i+1, updated.Version)
	}
}

func TestCreateTask_RollsBackOnMissingReference(t *testing.T) {
	db := setupIntegrationDB(t)
	svc := newIntegrationTaskService(t, db)
	ctx := context.Background()

	creator := createTestUser(t, db, "rollback-creator")

	var before int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM tasks").Scan(&before))

	_, err := svc.CreateTask(ctx, creator, service.CreateTaskInput{
		Title:       "Doomed task",
		AssigneeIDs: []int64{999999999},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrReferenceNotFound)

	var refErr *store.ReferenceNotFoundError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, []int64{999999999}, refErr.Missing)

	// The task row inserted before reference validation must not survive.
	var after int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM tasks").Scan(&after))
	assert.Equal(t, before, after)
}

func TestReplaceAssignees_ReplacesNotMerges(t *testing.T) {
	db := setupIntegrationDB(t)
	svc := newIntegrationTaskService(t, db)
	ctx := context.Background()

	creator := createTestUser(t, db, "replace-creator")
	userA := createTestUser(t, db, "replace-a")
	userB := createTestUser(t, db, "replace-b")
	userC := createTestUser(t, db, "replace-c")

	task, err := svc.CreateTask(ctx, creator, service.CreateTaskInput{
		Title:       "Membership",
		AssigneeIDs: []int64{userA, userB},
	})
	require.NoError(t, err)

	// The new set replaces the old entirely; userA is gone afterwards.
	after, err := svc.AssignUsers(ctx, task.ID, []int64{userB, userC}, creator)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{userB, userC}, after.AssigneeIDs())

	// Replacement does not advance the version.
	assert.Equal(t, task.Version, after.Version)

	// Replacing with the same set is idempotent.
	again, err := svc.AssignUsers(ctx, task.ID, []int64{userB, userC}, creator)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{userB, userC}, again.AssigneeIDs())
	assert.Equal(t, after.Version, again.Version)

	// The empty set clears membership.
	cleared, err := svc.AssignUsers(ctx, task.ID, []int64{}, creator)
	require.NoError(t, err)
	assert.Empty(t, cleared.AssigneeIDs())
}

func TestUpdateTask_AssociationPatchSharesTransaction(t *testing.T) {
	db := setupIntegrationDB(t)
	svc := newIntegrationTaskService(t, db)
	ctx := context.Background()

	creator := createTestUser(t, db, "tx-creator")
	tagID := createTestTag(t, db, "tx-tag")

	task, err := svc.CreateTask(ctx, creator, service.CreateTaskInput{Title: "Tagged"})
	require.NoError(t, err)

	// Field change and tag replacement ride the same conditional write.
	title := "Tagged and renamed"
	tags := []int64{tagID}
	updated, err := svc.UpdateTask(ctx, task.ID, store.TaskPatch{
		Title:  &title,
		TagIDs: &tags,
	}, intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, []int64{tagID}, updated.TagIDs())

	// A stale version aborts the membership change along with the row write.
	otherTitle := "Should not stick"
	empty := []int64{}
	_, err = svc.UpdateTask(ctx, task.ID, store.TaskPatch{
		Title:  &otherTitle,
		TagIDs: &empty,
	}, intPtr(1))
	assert.ErrorIs(t, err, store.ErrVersionConflict)

	current, err := svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tagged and renamed", current.Title)
	assert.Equal(t, []int64{tagID}, current.TagIDs(), "tag membership must survive the failed update")
}

func intPtr(v int) *int {
	return &v
}
