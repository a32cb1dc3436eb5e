package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service/notify"
	"github.com/stretchr/testify/mock"
)

var _ notify.Repository = (*TestifyMockDueRepository)(nil)

// TestifyMockDueRepository is a testify mock of notify.Repository.
type TestifyMockDueRepository struct {
	mock.Mock
}

// ListOpenCandidateTasks is a mock implementation of notify.Repository.ListOpenCandidateTasks
func (m *TestifyMockDueRepository) ListOpenCandidateTasks(ctx context.Context) ([]domain.DueScanTask, error) {
	args := m.Called(ctx)
	if tasks, ok := args.Get(0).([]domain.DueScanTask); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetStatusesByIDs is a mock implementation of notify.Repository.GetStatusesByIDs
func (m *TestifyMockDueRepository) GetStatusesByIDs(
	ctx context.Context,
	ids []uuid.UUID,
) ([]domain.ProjectStatus, error) {
	args := m.Called(ctx, ids)
	if statuses, ok := args.Get(0).([]domain.ProjectStatus); ok {
		return statuses, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetProjectsByIDs is a mock implementation of notify.Repository.GetProjectsByIDs
func (m *TestifyMockDueRepository) GetProjectsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Project, error) {
	args := m.Called(ctx, ids)
	if projects, ok := args.Get(0).([]domain.Project); ok {
		return projects, args.Error(1)
	}
	return nil, args.Error(1)
}

// ListExistingNotifications is a mock implementation of notify.Repository.ListExistingNotifications
func (m *TestifyMockDueRepository) ListExistingNotifications(
	ctx context.Context,
	entityType domain.EntityType,
	types []domain.NotificationType,
	entityIDs []uuid.UUID,
) ([]domain.NotificationKey, error) {
	args := m.Called(ctx, entityType, types, entityIDs)
	if keys, ok := args.Get(0).([]domain.NotificationKey); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}

// InsertDueNotifications is a mock implementation of notify.Repository.InsertDueNotifications
func (m *TestifyMockDueRepository) InsertDueNotifications(
	ctx context.Context,
	notifications []domain.Notification,
) (int, error) {
	args := m.Called(ctx, notifications)
	return args.Int(0), args.Error(1)
}
