package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// NotificationStore defines persistence operations for inbox notifications.
type NotificationStore interface {
	// ListExistingNotifications returns the dedup keys of notifications with
	// the given entity type, one of types, and an entity ID in entityIDs.
	ListExistingNotifications(
		ctx context.Context,
		entityType domain.EntityType,
		types []domain.NotificationType,
		entityIDs []uuid.UUID,
	) ([]domain.NotificationKey, error)

	// InsertNotifications saves all notifications in one batch.
	InsertNotifications(ctx context.Context, notifications []domain.Notification) error

	// InsertDueNotifications saves due notifications in one batch, ignoring
	// rows that collide with an existing (user, entity, type) due
	// notification. It returns the number of rows actually written.
	InsertDueNotifications(ctx context.Context, notifications []domain.Notification) (int, error)

	// ListNotificationsForUser returns a user's notifications, newest first.
	ListNotificationsForUser(
		ctx context.Context,
		userID uuid.UUID,
		unreadOnly bool,
		limit int,
	) ([]domain.Notification, error)

	// MarkNotificationRead stamps read_at on a notification owned by userID.
	// Returns ErrNotificationNotFound if no such notification exists.
	MarkNotificationRead(ctx context.Context, userID, id uuid.UUID, readAt time.Time) error
}
