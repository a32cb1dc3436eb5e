package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/mocks"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleTask(projectID, creatorID uuid.UUID) *domain.Task {
	due := now.Add(48 * time.Hour)
	priority := domain.PriorityHigh
	return &domain.Task{
		ID:         uuid.New(),
		ProjectID:  projectID,
		StatusID:   uuid.New(),
		Title:      "Ship release notes",
		AssigneeID: &creatorID,
		CreatorID:  creatorID,
		DueAt:      &due,
		Priority:   &priority,
		SortOrder:  3,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestCreateTaskHandler(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	projectID := uuid.New()

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		svc := &mocks.TestifyMockTaskService{}
		task := sampleTask(projectID, userID)
		svc.On("CreateTask", mock.Anything, userID, mock.MatchedBy(func(in service.CreateTaskInput) bool {
			return in.ProjectID == projectID &&
				in.Title == "Ship release notes" &&
				in.Priority != nil && *in.Priority == domain.PriorityHigh &&
				in.StatusID == nil
		})).Return(task, nil)

		router := newTaskRouter(api.NewTaskHandler(svc, discardLogger()), nil, userID)
		rec := serve(t, router, http.MethodPost, "/api/tasks",
			`{"project_id":"`+projectID.String()+`","title":"Ship release notes","priority":"high"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp api.TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, task.ID.String(), resp.ID)
		assert.Equal(t, projectID.String(), resp.ProjectID)
		require.NotNil(t, resp.Priority)
		assert.Equal(t, "high", *resp.Priority)
		require.NotNil(t, resp.AssigneeID)
		assert.Equal(t, userID.String(), *resp.AssigneeID)
		assert.Nil(t, resp.CompletedAt)
		svc.AssertExpectations(t)
	})

	tests := []struct {
		name           string
		userID         uuid.UUID
		body           string
		serviceErr     error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "unauthenticated",
			body:           `{"project_id":"` + projectID.String() + `","title":"x"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "User ID not found or invalid",
		},
		{
			name:           "malformed project id",
			userID:         userID,
			body:           `{"project_id":"nope","title":"x"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request format",
		},
		{
			name:           "missing title",
			userID:         userID,
			body:           `{"project_id":"` + projectID.String() + `"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid title: required field",
		},
		{
			name:           "unknown priority",
			userID:         userID,
			body:           `{"project_id":"` + projectID.String() + `","title":"x","priority":"urgent"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid priority: invalid value",
		},
		{
			name:           "not a member",
			userID:         userID,
			body:           `{"project_id":"` + projectID.String() + `","title":"x"}`,
			serviceErr:     service.NewServiceError("create_task", "project access denied", service.ErrNotMember),
			expectedStatus: http.StatusForbidden,
			expectedError:  "You are not a member of this workspace",
		},
		{
			name:           "unknown project",
			userID:         userID,
			body:           `{"project_id":"` + projectID.String() + `","title":"x"}`,
			serviceErr:     service.NewServiceError("create_task", "project access denied", service.ErrProjectNotFound),
			expectedStatus: http.StatusNotFound,
			expectedError:  "Project not found",
		},
		{
			name:           "project without statuses",
			userID:         userID,
			body:           `{"project_id":"` + projectID.String() + `","title":"x"}`,
			serviceErr:     service.NewServiceError("create_task", "failed to resolve status", service.ErrMissingDefaultStatus),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Project is not configured correctly",
		},
		{
			name:           "store failure",
			userID:         userID,
			body:           `{"project_id":"` + projectID.String() + `","title":"x"}`,
			serviceErr:     errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Failed to create task",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mocks.TestifyMockTaskService{}
			if tt.serviceErr != nil {
				svc.On("CreateTask", mock.Anything, tt.userID, mock.Anything).Return(nil, tt.serviceErr)
			}

			router := newTaskRouter(api.NewTaskHandler(svc, discardLogger()), nil, tt.userID)
			rec := serve(t, router, http.MethodPost, "/api/tasks", tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedError, resp["error"])
			if tt.serviceErr == nil {
				svc.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestCompleteTaskHandler(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	projectID := uuid.New()

	t.Run("chains a successor", func(t *testing.T) {
		t.Parallel()

		task := sampleTask(projectID, userID)
		completed := now
		task.CompletedAt = &completed
		successor := sampleTask(projectID, userID)
		successor.ParentTaskID = &task.ID

		svc := &mocks.TestifyMockTaskService{}
		svc.On("CompleteTask", mock.Anything, userID, task.ID).
			Return(&service.CompletionResult{Task: task, Successor: successor}, nil)

		router := newTaskRouter(api.NewTaskHandler(svc, discardLogger()), nil, userID)
		rec := serve(t, router, http.MethodPost, "/api/tasks/"+task.ID.String()+"/complete", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp api.CompleteTaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.AlreadyCompleted)
		require.NotNil(t, resp.Task.CompletedAt)
		assert.True(t, now.Equal(*resp.Task.CompletedAt))
		require.NotNil(t, resp.Successor)
		require.NotNil(t, resp.Successor.ParentTaskID)
		assert.Equal(t, task.ID.String(), *resp.Successor.ParentTaskID)
		svc.AssertExpectations(t)
	})

	t.Run("already completed", func(t *testing.T) {
		t.Parallel()

		task := sampleTask(projectID, userID)
		svc := &mocks.TestifyMockTaskService{}
		svc.On("CompleteTask", mock.Anything, userID, task.ID).
			Return(&service.CompletionResult{Task: task, AlreadyCompleted: true}, nil)

		router := newTaskRouter(api.NewTaskHandler(svc, discardLogger()), nil, userID)
		rec := serve(t, router, http.MethodPost, "/api/tasks/"+task.ID.String()+"/complete", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"already_completed":true`)
		assert.Contains(t, rec.Body.String(), `"successor":null`)
	})

	tests := []struct {
		name           string
		path           string
		serviceErr     error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "malformed id",
			path:           "/api/tasks/123/complete",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid Task ID format",
		},
		{
			name:           "not found",
			path:           "/api/tasks/" + uuid.NewString() + "/complete",
			serviceErr:     service.NewServiceError("complete_task", "failed to load task", service.ErrTaskNotFound),
			expectedStatus: http.StatusNotFound,
			expectedError:  "Task not found",
		},
		{
			name:           "missing done status",
			path:           "/api/tasks/" + uuid.NewString() + "/complete",
			serviceErr:     service.NewServiceError("complete_task", "project is misconfigured", service.ErrMissingDoneStatus),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Project is not configured correctly",
		},
		{
			name:           "recurrence anchor missing",
			path:           "/api/tasks/" + uuid.NewString() + "/complete",
			serviceErr:     service.NewServiceError("complete_task", "failed to generate next occurrence", service.ErrRecurrenceAnchorMissing),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Project is not configured correctly",
		},
		{
			name:           "store failure",
			path:           "/api/tasks/" + uuid.NewString() + "/complete",
			serviceErr:     errors.New("deadlock detected"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Failed to complete task",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mocks.TestifyMockTaskService{}
			if tt.serviceErr != nil {
				svc.On("CompleteTask", mock.Anything, userID, mock.Anything).Return(nil, tt.serviceErr)
			}

			router := newTaskRouter(api.NewTaskHandler(svc, discardLogger()), nil, userID)
			rec := serve(t, router, http.MethodPost, tt.path, "")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedError, resp["error"])
			svc.AssertExpectations(t)
		})
	}
}

func TestAddCommentHandler(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskID := uuid.New()

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		comment := &domain.Comment{ID: uuid.New(), TaskID: taskID, UserID: userID, Body: "ping @sam", CreatedAt: now}
		svc := &mocks.TestifyMockTaskService{}
		svc.On("AddComment", mock.Anything, userID, taskID, "ping @sam").
			Return(&service.CommentResult{
				Comment:       comment,
				Notifications: make([]domain.Notification, 2),
			}, nil)

		router := newTaskRouter(api.NewTaskHandler(svc, discardLogger()), nil, userID)
		rec := serve(t, router, http.MethodPost, "/api/tasks/"+taskID.String()+"/comments", `{"body":"ping @sam"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp api.CommentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, comment.ID.String(), resp.ID)
		assert.Equal(t, "ping @sam", resp.Body)
		assert.Equal(t, 2, resp.NotificationCount)
		svc.AssertExpectations(t)
	})

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "empty body field",
			body:           `{"body":""}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid body: required field",
		},
		{
			name:           "whitespace body rejected by domain",
			body:           `{"body":"   "}`,
			serviceErr:     service.NewServiceError("add_comment", "invalid comment", domain.ErrEmptyCommentBody),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Comment body is required",
		},
		{
			name:           "not a member",
			body:           `{"body":"hello"}`,
			serviceErr:     service.NewServiceError("add_comment", "project access denied", service.ErrNotMember),
			expectedStatus: http.StatusForbidden,
			expectedError:  "You are not a member of this workspace",
		},
		{
			name:           "store failure",
			body:           `{"body":"hello"}`,
			serviceErr:     errors.New("insert failed"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Failed to add comment",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mocks.TestifyMockTaskService{}
			if tt.serviceErr != nil {
				svc.On("AddComment", mock.Anything, userID, taskID, mock.Anything).Return(nil, tt.serviceErr)
			}

			router := newTaskRouter(api.NewTaskHandler(svc, discardLogger()), nil, userID)
			rec := serve(t, router, http.MethodPost, "/api/tasks/"+taskID.String()+"/comments", tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedError, resp["error"])
			svc.AssertExpectations(t)
		})
	}
}

func TestNewTaskHandler_NilDependencies(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { api.NewTaskHandler(nil, discardLogger()) })
	assert.Panics(t, func() { api.NewTaskHandler(&mocks.TestifyMockTaskService{}, nil) })
}
