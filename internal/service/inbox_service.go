package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// InboxLimit caps the number of notifications returned by List.
const InboxLimit = 100

// InboxService reads and acknowledges a user's notifications.
type InboxService interface {
	// List returns the user's notifications, newest first.
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]domain.Notification, error)

	// MarkRead marks a notification owned by userID as read. Marking an
	// already read notification keeps its original read time.
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

type inboxServiceImpl struct {
	notifications store.NotificationStore
	logger        *slog.Logger
	clock         func() time.Time
}

// NewInboxService creates an InboxService. A nil clock uses time.Now.
func NewInboxService(
	notifications store.NotificationStore,
	logger *slog.Logger,
	clock func() time.Time,
) (InboxService, error) {
	if notifications == nil {
		return nil, errors.New("notification store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = time.Now
	}
	return &inboxServiceImpl{
		notifications: notifications,
		logger:        logger.With(slog.String("component", "inbox_service")),
		clock:         clock,
	}, nil
}

// List implements InboxService.List.
func (s *inboxServiceImpl) List(
	ctx context.Context,
	userID uuid.UUID,
	unreadOnly bool,
) ([]domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	items, err := s.notifications.ListNotificationsForUser(ctx, userID, unreadOnly, InboxLimit)
	if err != nil {
		log.Error("failed to list notifications",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("list_notifications", "failed to list notifications", err)
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return items, nil
}

// MarkRead implements InboxService.MarkRead.
func (s *inboxServiceImpl) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.notifications.MarkNotificationRead(ctx, userID, notificationID, s.clock().UTC())
	if err != nil {
		if store.IsNotFoundError(err) {
			return NewServiceError("mark_read", "notification lookup failed", ErrNotificationNotFound)
		}
		log.Error("failed to mark notification read",
			slog.String("error", err.Error()),
			slog.String("notification_id", notificationID.String()))
		return NewServiceError("mark_read", "failed to mark notification read", err)
	}

	log.Debug("notification marked read", slog.String("notification_id", notificationID.String()))
	return nil
}
