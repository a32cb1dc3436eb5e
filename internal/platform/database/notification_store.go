package database

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

const notificationColumns = `id, workspace_id, user_id, channel, type, entity_type, entity_id,
	payload_json, read_at, created_at`

// Matches the partial unique index uq_notifications_due.
const dueConflictClause = ` ON CONFLICT (user_id, entity_id, type)
	WHERE entity_type = 'task' AND type IN ('due_soon', 'overdue') DO NOTHING`

type notificationRow struct {
	ID          uuid.UUID  `db:"id"`
	WorkspaceID uuid.UUID  `db:"workspace_id"`
	UserID      uuid.UUID  `db:"user_id"`
	Channel     string     `db:"channel"`
	Type        string     `db:"type"`
	EntityType  string     `db:"entity_type"`
	EntityID    uuid.UUID  `db:"entity_id"`
	PayloadJSON []byte     `db:"payload_json"`
	ReadAt      *time.Time `db:"read_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

func (row notificationRow) toDomain() domain.Notification {
	return domain.Notification{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		UserID:      row.UserID,
		Channel:     domain.Channel(row.Channel),
		Type:        domain.NotificationType(row.Type),
		EntityType:  domain.EntityType(row.EntityType),
		EntityID:    row.EntityID,
		Payload:     json.RawMessage(row.PayloadJSON),
		ReadAt:      row.ReadAt,
		CreatedAt:   row.CreatedAt,
	}
}

// ListExistingNotifications implements store.NotificationStore.
func (r *Repository) ListExistingNotifications(
	ctx context.Context,
	entityType domain.EntityType,
	types []domain.NotificationType,
	entityIDs []uuid.UUID,
) ([]domain.NotificationKey, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if len(types) == 0 {
		return nil, nil
	}

	var keys []domain.NotificationKey
	for _, batch := range chunks(entityIDs, batchSize) {
		query, args, err := r.in(`
			SELECT user_id, entity_id, type FROM notifications
			WHERE entity_type = ? AND type IN (?) AND entity_id IN (?)
		`, entityType, types, batch)
		if err != nil {
			return nil, err
		}
		var rows []domain.NotificationKey
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			log.Error("failed to list existing notifications", slog.String("error", err.Error()))
			return nil, store.NewStoreError("notification", "list", "failed to list existing notifications", MapError(err))
		}
		keys = append(keys, rows...)
	}
	return keys, nil
}

// InsertNotifications implements store.NotificationStore.
func (r *Repository) InsertNotifications(ctx context.Context, notifications []domain.Notification) error {
	_, err := r.insertNotifications(ctx, notifications, "")
	return err
}

// InsertDueNotifications implements store.NotificationStore.
func (r *Repository) InsertDueNotifications(ctx context.Context, notifications []domain.Notification) (int, error) {
	return r.insertNotifications(ctx, notifications, dueConflictClause)
}

func (r *Repository) insertNotifications(
	ctx context.Context,
	notifications []domain.Notification,
	suffix string,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	inserted := 0
	for _, batch := range chunks(notifications, batchSize/10) {
		var sb strings.Builder
		sb.WriteString(`INSERT INTO notifications (` + notificationColumns + `) VALUES `)
		args := make([]any, 0, len(batch)*10)
		for i, n := range batch {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			payload := n.Payload
			if len(payload) == 0 {
				payload = json.RawMessage(`{}`)
			}
			args = append(args,
				n.ID, n.WorkspaceID, n.UserID, string(n.Channel), string(n.Type),
				string(n.EntityType), n.EntityID, string(payload), utcPtr(n.ReadAt), n.CreatedAt.UTC(),
			)
		}
		sb.WriteString(suffix)

		result, err := r.db.ExecContext(ctx, r.rebind(sb.String()), args...)
		if err != nil {
			log.Error("failed to insert notifications",
				slog.String("error", err.Error()),
				slog.Int("count", len(batch)))
			return inserted, store.NewStoreError("notification", "insert", "failed to insert notifications", MapError(err))
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return inserted, store.NewStoreError("notification", "insert", "failed to read inserted count", err)
		}
		inserted += int(affected)
	}

	log.Debug("notifications inserted",
		slog.Int("requested", len(notifications)),
		slog.Int("inserted", inserted))
	return inserted, nil
}

// ListNotificationsForUser implements store.NotificationStore.
func (r *Repository) ListNotificationsForUser(
	ctx context.Context,
	userID uuid.UUID,
	unreadOnly bool,
	limit int,
) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`

	var rows []notificationRow
	if err := r.db.SelectContext(ctx, &rows, r.rebind(query), userID, limit); err != nil {
		return nil, store.NewStoreError("notification", "list", "failed to list notifications", MapError(err))
	}

	out := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// MarkNotificationRead implements store.NotificationStore. The first read
// time is kept on repeated calls.
func (r *Repository) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID, readAt time.Time) error {
	query := r.rebind(`UPDATE notifications SET read_at = COALESCE(read_at, ?) WHERE id = ? AND user_id = ?`)
	result, err := r.db.ExecContext(ctx, query, readAt.UTC(), id, userID)
	if err != nil {
		return store.NewStoreError("notification", "update", "failed to mark notification read", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrNotificationNotFound)
}
