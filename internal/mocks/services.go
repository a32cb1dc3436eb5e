package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/stretchr/testify/mock"
)

var (
	_ service.TaskService    = (*TestifyMockTaskService)(nil)
	_ service.InboxService   = (*TestifyMockInboxService)(nil)
	_ service.ProjectService = (*TestifyMockProjectService)(nil)
)

// TestifyMockTaskService is a testify mock of service.TaskService.
type TestifyMockTaskService struct {
	mock.Mock
}

// CreateTask is a mock implementation of service.TaskService.CreateTask
func (m *TestifyMockTaskService) CreateTask(
	ctx context.Context,
	actorID uuid.UUID,
	in service.CreateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, actorID, in)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// CompleteTask is a mock implementation of service.TaskService.CompleteTask
func (m *TestifyMockTaskService) CompleteTask(
	ctx context.Context,
	actorID, taskID uuid.UUID,
) (*service.CompletionResult, error) {
	args := m.Called(ctx, actorID, taskID)
	if res, ok := args.Get(0).(*service.CompletionResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateTask is a mock implementation of service.TaskService.UpdateTask
func (m *TestifyMockTaskService) UpdateTask(
	ctx context.Context,
	actorID, taskID uuid.UUID,
	in service.UpdateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, actorID, taskID, in)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// MoveTask is a mock implementation of service.TaskService.MoveTask
func (m *TestifyMockTaskService) MoveTask(
	ctx context.Context,
	actorID, taskID uuid.UUID,
	in service.MoveTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, actorID, taskID, in)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// AddComment is a mock implementation of service.TaskService.AddComment
func (m *TestifyMockTaskService) AddComment(
	ctx context.Context,
	actorID, taskID uuid.UUID,
	body string,
) (*service.CommentResult, error) {
	args := m.Called(ctx, actorID, taskID, body)
	if res, ok := args.Get(0).(*service.CommentResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

// TestifyMockInboxService is a testify mock of service.InboxService.
type TestifyMockInboxService struct {
	mock.Mock
}

// List is a mock implementation of service.InboxService.List
func (m *TestifyMockInboxService) List(
	ctx context.Context,
	userID uuid.UUID,
	unreadOnly bool,
) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	if items, ok := args.Get(0).([]domain.Notification); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkRead is a mock implementation of service.InboxService.MarkRead
func (m *TestifyMockInboxService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

// TestifyMockProjectService is a testify mock of service.ProjectService.
type TestifyMockProjectService struct {
	mock.Mock
}

// CreateProject is a mock implementation of service.ProjectService.CreateProject
func (m *TestifyMockProjectService) CreateProject(
	ctx context.Context,
	actorID uuid.UUID,
	in service.CreateProjectInput,
) (*service.ProjectResult, error) {
	args := m.Called(ctx, actorID, in)
	if res, ok := args.Get(0).(*service.ProjectResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}
