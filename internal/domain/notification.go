package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies an inbox notification.
type NotificationType string

// Notification types.
const (
	NotificationAssignment NotificationType = "assignment"
	NotificationMention    NotificationType = "mention"
	NotificationDueSoon    NotificationType = "due_soon"
	NotificationOverdue    NotificationType = "overdue"
	NotificationComment    NotificationType = "comment"
	NotificationSystem     NotificationType = "system"
)

// DueNotificationTypes are the types produced by the due notification scan.
var DueNotificationTypes = []NotificationType{NotificationDueSoon, NotificationOverdue}

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationAssignment, NotificationMention, NotificationDueSoon,
		NotificationOverdue, NotificationComment, NotificationSystem:
		return true
	default:
		return false
	}
}

// EntityType names the kind of entity a notification refers to.
type EntityType string

// Notification entity types.
const (
	EntityTask      EntityType = "task"
	EntityProject   EntityType = "project"
	EntityComment   EntityType = "comment"
	EntityWorkspace EntityType = "workspace"
)

// Channel is the delivery channel of a notification.
type Channel string

// Notification channels.
const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
)

// Notification is a single inbox entry for one user.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	WorkspaceID uuid.UUID        `json:"workspace_id"`
	UserID      uuid.UUID        `json:"user_id"`
	Channel     Channel          `json:"channel"`
	Type        NotificationType `json:"type"`
	EntityType  EntityType       `json:"entity_type"`
	EntityID    uuid.UUID        `json:"entity_id"`
	Payload     json.RawMessage  `json:"payload"`
	ReadAt      *time.Time       `json:"read_at"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Key returns the deduplication key of the notification.
func (n *Notification) Key() NotificationKey {
	return NotificationKey{UserID: n.UserID, EntityID: n.EntityID, Type: n.Type}
}

// NotificationKey identifies a notification for deduplication purposes.
type NotificationKey struct {
	UserID   uuid.UUID        `db:"user_id"`
	EntityID uuid.UUID        `db:"entity_id"`
	Type     NotificationType `db:"type"`
}

// NewNotification builds an in-app notification with a fresh ID. The payload
// is marshalled to JSON.
func NewNotification(
	workspaceID, userID uuid.UUID,
	typ NotificationType,
	entityType EntityType,
	entityID uuid.UUID,
	payload any,
	now time.Time,
) (Notification, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Notification{}, err
	}
	return Notification{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Channel:     ChannelInApp,
		Type:        typ,
		EntityType:  entityType,
		EntityID:    entityID,
		Payload:     raw,
		CreatedAt:   now.UTC(),
	}, nil
}
