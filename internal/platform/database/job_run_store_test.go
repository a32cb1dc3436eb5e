package database_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/jobs"
	"github.com/phrazzld/taskflow-api/internal/platform/database"
	"github.com/phrazzld/taskflow-api/internal/service/notify"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/phrazzld/taskflow-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRunStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := testutils.OpenSQLite(t)
	runs := database.NewJobRunStore(db, nil)

	first := &jobs.Run{
		ID:        uuid.New(),
		Type:      jobs.TypeDueNotifications,
		Payload:   json.RawMessage(`{"windowSeconds":86400}`),
		Status:    jobs.StatusPending,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
	second := &jobs.Run{
		ID:        uuid.New(),
		Type:      jobs.TypeDueNotifications,
		Status:    jobs.StatusPending,
		CreatedAt: baseTime.Add(time.Minute),
		UpdatedAt: baseTime.Add(time.Minute),
	}
	require.NoError(t, runs.CreateRun(ctx, first))
	require.NoError(t, runs.CreateRun(ctx, second))

	t.Run("duplicate id", func(t *testing.T) {
		err := runs.CreateRun(ctx, first)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("get round trips", func(t *testing.T) {
		got, err := runs.GetRun(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Type, got.Type)
		assert.JSONEq(t, `{"windowSeconds":86400}`, string(got.Payload))
		assert.Equal(t, jobs.StatusPending, got.Status)
		assert.Nil(t, got.Result)
		assert.Empty(t, got.ErrorMessage)
		assert.True(t, baseTime.Equal(got.CreatedAt))

		defaulted, err := runs.GetRun(ctx, second.ID)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(defaulted.Payload))
	})

	t.Run("missing run", func(t *testing.T) {
		_, err := runs.GetRun(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrJobRunNotFound)

		err = runs.UpdateRunStatus(ctx, uuid.New(), jobs.StatusFailed, nil, "x", baseTime)
		assert.ErrorIs(t, err, store.ErrJobRunNotFound)
	})

	t.Run("lifecycle keeps result and error", func(t *testing.T) {
		id := first.ID
		require.NoError(t, runs.UpdateRunStatus(ctx, id, jobs.StatusProcessing, nil, "", baseTime.Add(time.Second)))
		require.NoError(t, runs.UpdateRunStatus(ctx, id, jobs.StatusCompleted,
			json.RawMessage(`{"created":2}`), "", baseTime.Add(2*time.Second)))

		got, err := runs.GetRun(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, jobs.StatusCompleted, got.Status)
		assert.JSONEq(t, `{"created":2}`, string(got.Result))
		assert.True(t, baseTime.Add(2*time.Second).Equal(got.UpdatedAt))

		require.NoError(t, runs.UpdateRunStatus(ctx, second.ID, jobs.StatusFailed, nil, "boom", baseTime))
		failed, err := runs.GetRun(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "boom", failed.ErrorMessage)
	})

	t.Run("list by status oldest first", func(t *testing.T) {
		third := &jobs.Run{ID: uuid.New(), Type: "x", Status: jobs.StatusPending, CreatedAt: baseTime.Add(time.Hour), UpdatedAt: baseTime}
		fourth := &jobs.Run{ID: uuid.New(), Type: "x", Status: jobs.StatusPending, CreatedAt: baseTime.Add(-time.Hour), UpdatedAt: baseTime}
		require.NoError(t, runs.CreateRun(ctx, third))
		require.NoError(t, runs.CreateRun(ctx, fourth))

		pending, err := runs.ListRunsByStatus(ctx, jobs.StatusPending)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, fourth.ID, pending[0].ID)
		assert.Equal(t, third.ID, pending[1].ID)
	})

	t.Run("invalid status violates check", func(t *testing.T) {
		err := runs.CreateRun(ctx, &jobs.Run{ID: uuid.New(), Type: "x", Status: "unknown", CreatedAt: baseTime, UpdatedAt: baseTime})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestJobRunStoreWithRunner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	runs := database.NewJobRunStore(testutils.OpenSQLite(t), nil)
	runner, err := jobs.NewRunner(runs, jobs.DefaultRunnerConfig(), nil)
	require.NoError(t, err)

	repo, ws := testutils.SeedMemoryWorkspace(baseTime)
	due := baseTime.Add(time.Hour)
	repo.AddTask(ws.NewTask(baseTime, testutils.WithAssignee(ws.Member), testutils.WithDueAt(due)))

	log, _ := testutils.NewTestLogger()
	scheduler, err := notify.NewScheduler(repo, notify.DefaultDueSoonWindow, log)
	require.NoError(t, err)

	result, err := runner.RunNow(ctx, jobs.NewDueNotificationJob(scheduler, nil, &baseTime, 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"scanned":1,"candidates":1,"created":1,"skipped":0}`, string(result))

	completed, err := runs.ListRunsByStatus(ctx, jobs.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.JSONEq(t, string(result), string(completed[0].Result))
}
