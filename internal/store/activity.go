package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// ActivityStore appends to a task's activity log.
type ActivityStore interface {
	InsertActivityEvent(ctx context.Context, event *domain.ActivityEvent) error
}

// CommentStore persists task comments.
type CommentStore interface {
	InsertComment(ctx context.Context, comment *domain.Comment) error
}

// MembershipStore reads workspace membership.
type MembershipStore interface {
	ListWorkspaceMembers(ctx context.Context, workspaceID uuid.UUID) ([]domain.WorkspaceMember, error)
}
