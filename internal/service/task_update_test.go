package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("changes supplied fields only", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		repo, ws := testutils.SeedMemoryWorkspace(now)
		task := ws.NewTask(now.Add(-time.Hour), testutils.WithAssignee(ws.Owner), testutils.WithDueAt(now))
		repo.AddTask(task)
		svc := newTaskService(t, repo)

		updated, err := svc.UpdateTask(ctx, ws.Owner, task.ID, service.UpdateTaskInput{
			Title:    service.Some("  Renamed  "),
			Priority: service.Some(domain.PriorityLow),
			DueAt:    service.Null[time.Time](),
			IsToday:  service.Some(true),
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Nil(t, updated.DueAt)
		assert.True(t, updated.IsToday)
		assert.Equal(t, now, updated.UpdatedAt)

		stored, err := repo.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", stored.Title)
		require.NotNil(t, stored.Priority)
		assert.Equal(t, domain.PriorityLow, *stored.Priority)
		assert.Nil(t, stored.DueAt)
		require.NotNil(t, stored.AssigneeID)
		assert.Equal(t, ws.Owner, *stored.AssigneeID, "assignee untouched")
		assert.Equal(t, task.StatusID, stored.StatusID)

		events := repo.ActivityEvents()
		require.Len(t, events, 1)
		assert.Equal(t, domain.ActivityTaskUpdated, events[0].EventType)
		assert.JSONEq(t, `{"fields":["title","dueAt","priority","isToday"]}`, string(events[0].Payload))
		assert.Empty(t, repo.Notifications())
	})

	t.Run("reassignment notifies the new assignee", func(t *testing.T) {
		t.Parallel()

		repo, ws := testutils.SeedMemoryWorkspace(now)
		task := ws.NewTask(now, testutils.WithAssignee(ws.Owner), testutils.WithTitle("Prune roses"))
		repo.AddTask(task)
		svc := newTaskService(t, repo)

		_, err := svc.UpdateTask(context.Background(), ws.Owner, task.ID, service.UpdateTaskInput{
			AssigneeID: service.Some(ws.Member),
		})
		require.NoError(t, err)

		notifications := repo.Notifications()
		require.Len(t, notifications, 1)
		n := notifications[0]
		assert.Equal(t, ws.Member, n.UserID)
		assert.Equal(t, domain.NotificationAssignment, n.Type)
		assert.Equal(t, domain.EntityTask, n.EntityType)
		assert.Equal(t, task.ID, n.EntityID)
		assert.Equal(t, ws.Workspace.ID, n.WorkspaceID)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(n.Payload, &payload))
		assert.Equal(t, ws.Owner.String(), payload["actorId"])
		assert.Equal(t, "Prune roses", payload["title"])
	})

	testCases := []struct {
		name     string
		current  *uuid.UUID
		actor    func(testutils.Workspace) uuid.UUID
		assignee func(testutils.Workspace) service.Optional[uuid.UUID]
	}{
		{
			name:     "same assignee",
			actor:    func(ws testutils.Workspace) uuid.UUID { return ws.Owner },
			assignee: func(ws testutils.Workspace) service.Optional[uuid.UUID] { return service.Some(ws.Member) },
		},
		{
			name:     "self assignment",
			actor:    func(ws testutils.Workspace) uuid.UUID { return ws.Member },
			assignee: func(ws testutils.Workspace) service.Optional[uuid.UUID] { return service.Some(ws.Member) },
		},
		{
			name:     "unassign",
			actor:    func(ws testutils.Workspace) uuid.UUID { return ws.Owner },
			assignee: func(testutils.Workspace) service.Optional[uuid.UUID] { return service.Null[uuid.UUID]() },
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run("no notification for "+tc.name, func(t *testing.T) {
			t.Parallel()

			repo, ws := testutils.SeedMemoryWorkspace(now)
			task := ws.NewTask(now, testutils.WithAssignee(ws.Member))
			if tc.name == "self assignment" {
				task.AssigneeID = &ws.Owner
			}
			repo.AddTask(task)
			svc := newTaskService(t, repo)

			_, err := svc.UpdateTask(context.Background(), tc.actor(ws), task.ID, service.UpdateTaskInput{
				AssigneeID: tc.assignee(ws),
			})
			require.NoError(t, err)
			assert.Empty(t, repo.Notifications())
		})
	}
}

func TestUpdateTaskErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   func(testutils.Workspace) service.UpdateTaskInput
		actor   func(testutils.Workspace) uuid.UUID
		taskID  func(domain.Task) uuid.UUID
		wantErr error
	}{
		{
			name:    "empty update",
			input:   func(testutils.Workspace) service.UpdateTaskInput { return service.UpdateTaskInput{} },
			wantErr: service.ErrEmptyUpdate,
		},
		{
			name: "negative sort order",
			input: func(testutils.Workspace) service.UpdateTaskInput {
				return service.UpdateTaskInput{SortOrder: service.Some(-1)}
			},
			wantErr: service.ErrInvalidSortOrder,
		},
		{
			name: "blank title",
			input: func(testutils.Workspace) service.UpdateTaskInput {
				return service.UpdateTaskInput{Title: service.Some("   ")}
			},
			wantErr: domain.ErrEmptyTaskTitle,
		},
		{
			name: "assignee outside workspace",
			input: func(testutils.Workspace) service.UpdateTaskInput {
				return service.UpdateTaskInput{AssigneeID: service.Some(uuid.New())}
			},
			wantErr: service.ErrAssigneeNotMember,
		},
		{
			name: "actor outside workspace",
			input: func(testutils.Workspace) service.UpdateTaskInput {
				return service.UpdateTaskInput{IsToday: service.Some(true)}
			},
			actor:   func(testutils.Workspace) uuid.UUID { return uuid.New() },
			wantErr: service.ErrNotMember,
		},
		{
			name: "unknown task",
			input: func(testutils.Workspace) service.UpdateTaskInput {
				return service.UpdateTaskInput{IsToday: service.Some(true)}
			},
			taskID:  func(domain.Task) uuid.UUID { return uuid.New() },
			wantErr: service.ErrTaskNotFound,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			repo, ws := testutils.SeedMemoryWorkspace(now)
			task := ws.NewTask(now, testutils.WithTitle("Original"))
			repo.AddTask(task)
			svc := newTaskService(t, repo)

			actor := ws.Owner
			if tc.actor != nil {
				actor = tc.actor(ws)
			}
			taskID := task.ID
			if tc.taskID != nil {
				taskID = tc.taskID(task)
			}

			_, err := svc.UpdateTask(ctx, actor, taskID, tc.input(ws))
			assert.ErrorIs(t, err, tc.wantErr)

			stored, err := repo.GetTask(ctx, task.ID)
			require.NoError(t, err)
			assert.Equal(t, "Original", stored.Title)
			assert.Empty(t, repo.ActivityEvents())
			assert.Empty(t, repo.Notifications())
		})
	}

	t.Run("notification failure rolls back the update", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		repo, ws := testutils.SeedMemoryWorkspace(now)
		task := ws.NewTask(now, testutils.WithAssignee(ws.Owner))
		repo.AddTask(task)
		errStore := errors.New("disk full")
		repo.FailOn("InsertNotifications", errStore)
		svc := newTaskService(t, repo)

		_, err := svc.UpdateTask(ctx, ws.Owner, task.ID, service.UpdateTaskInput{AssigneeID: service.Some(ws.Member)})
		assert.ErrorIs(t, err, errStore)

		stored, err := repo.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, ws.Owner, *stored.AssigneeID)
		assert.Empty(t, repo.ActivityEvents())
	})
}

func TestMoveTask(t *testing.T) {
	t.Parallel()

	t.Run("moves and records activity", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		repo, ws := testutils.SeedMemoryWorkspace(now)
		task := ws.NewTask(now)
		repo.AddTask(task)
		svc := newTaskService(t, repo)

		moved, err := svc.MoveTask(ctx, ws.Member, task.ID, service.MoveTaskInput{
			StatusID:  ws.DoneStatus.ID,
			SectionID: &ws.Section.ID,
			SortOrder: 4,
		})
		require.NoError(t, err)
		assert.Equal(t, ws.DoneStatus.ID, moved.StatusID)
		assert.Equal(t, 4, moved.SortOrder)

		stored, err := repo.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, ws.DoneStatus.ID, stored.StatusID)
		require.NotNil(t, stored.SectionID)
		assert.Equal(t, ws.Section.ID, *stored.SectionID)
		assert.Nil(t, stored.CompletedAt, "moving does not complete")

		events := repo.ActivityEvents()
		require.Len(t, events, 1)
		assert.Equal(t, domain.ActivityTaskMoved, events[0].EventType)
		assert.JSONEq(t, `{"statusId":"`+ws.DoneStatus.ID.String()+`","sectionId":"`+ws.Section.ID.String()+`"}`,
			string(events[0].Payload))
	})

	t.Run("nil section clears it", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		repo, ws := testutils.SeedMemoryWorkspace(now)
		task := ws.NewTask(now)
		task.SectionID = &ws.Section.ID
		repo.AddTask(task)
		svc := newTaskService(t, repo)

		_, err := svc.MoveTask(ctx, ws.Owner, task.ID, service.MoveTaskInput{StatusID: ws.OpenStatus.ID})
		require.NoError(t, err)

		stored, err := repo.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.SectionID)
		assert.JSONEq(t, `{"statusId":"`+ws.OpenStatus.ID.String()+`","sectionId":null}`,
			string(repo.ActivityEvents()[0].Payload))
	})
}

func TestMoveTaskErrors(t *testing.T) {
	t.Parallel()

	other := testutils.NewWorkspace(now)

	testCases := []struct {
		name    string
		input   func(testutils.Workspace) service.MoveTaskInput
		wantErr error
	}{
		{
			name: "status from another project",
			input: func(testutils.Workspace) service.MoveTaskInput {
				return service.MoveTaskInput{StatusID: other.OpenStatus.ID}
			},
			wantErr: service.ErrInvalidStatus,
		},
		{
			name: "unknown status",
			input: func(testutils.Workspace) service.MoveTaskInput {
				return service.MoveTaskInput{StatusID: uuid.New()}
			},
			wantErr: service.ErrInvalidStatus,
		},
		{
			name: "section from another project",
			input: func(ws testutils.Workspace) service.MoveTaskInput {
				return service.MoveTaskInput{StatusID: ws.OpenStatus.ID, SectionID: &other.Section.ID}
			},
			wantErr: service.ErrInvalidSection,
		},
		{
			name: "unknown section",
			input: func(ws testutils.Workspace) service.MoveTaskInput {
				id := uuid.New()
				return service.MoveTaskInput{StatusID: ws.OpenStatus.ID, SectionID: &id}
			},
			wantErr: service.ErrInvalidSection,
		},
		{
			name: "negative sort order",
			input: func(ws testutils.Workspace) service.MoveTaskInput {
				return service.MoveTaskInput{StatusID: ws.OpenStatus.ID, SortOrder: -2}
			},
			wantErr: service.ErrInvalidSortOrder,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			repo, ws := testutils.SeedMemoryWorkspace(now)
			other.Seed(repo)
			task := ws.NewTask(now)
			repo.AddTask(task)
			svc := newTaskService(t, repo)

			_, err := svc.MoveTask(ctx, ws.Owner, task.ID, tc.input(ws))
			assert.ErrorIs(t, err, tc.wantErr)

			stored, err := repo.GetTask(ctx, task.ID)
			require.NoError(t, err)
			assert.Equal(t, ws.OpenStatus.ID, stored.StatusID)
			assert.Empty(t, repo.ActivityEvents())
		})
	}
}
