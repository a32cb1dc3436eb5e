package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// InsertActivityEvent implements store.ActivityStore.
func (r *Repository) InsertActivityEvent(ctx context.Context, event *domain.ActivityEvent) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	payload := event.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	query := r.rebind(`
		INSERT INTO task_activity (id, task_id, actor_id, event_type, payload_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.TaskID, event.ActorID, string(event.EventType), string(payload), event.CreatedAt.UTC())
	if err != nil {
		log.Error("failed to insert activity event",
			slog.String("error", err.Error()),
			slog.String("task_id", event.TaskID.String()),
			slog.String("event_type", string(event.EventType)))
		return store.NewStoreError("activity", "insert", "failed to insert activity event", MapError(err))
	}
	return nil
}

// InsertComment implements store.CommentStore.
func (r *Repository) InsertComment(ctx context.Context, comment *domain.Comment) error {
	if err := comment.Validate(); err != nil {
		return store.NewStoreError("comment", "insert", "invalid comment", fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	query := r.rebind(`INSERT INTO task_comments (id, task_id, user_id, body, created_at) VALUES (?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.TaskID, comment.UserID, comment.Body, comment.CreatedAt.UTC())
	if err != nil {
		return store.NewStoreError("comment", "insert", "failed to insert comment", MapError(err))
	}
	return nil
}

// ListWorkspaceMembers implements store.MembershipStore.
func (r *Repository) ListWorkspaceMembers(ctx context.Context, workspaceID uuid.UUID) ([]domain.WorkspaceMember, error) {
	var members []domain.WorkspaceMember
	query := r.rebind(`
		SELECT workspace_id, user_id, role, created_at FROM workspace_members
		WHERE workspace_id = ? ORDER BY created_at ASC, user_id ASC
	`)
	if err := r.db.SelectContext(ctx, &members, query, workspaceID); err != nil {
		return nil, store.NewStoreError("workspace_member", "list", "failed to list members", MapError(err))
	}
	return members, nil
}
