package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActivityType names an entry in a task's activity log.
type ActivityType string

// Activity event types.
const (
	ActivityTaskCreated         ActivityType = "task_created"
	ActivityTaskUpdated         ActivityType = "task_updated"
	ActivityTaskMoved           ActivityType = "task_moved"
	ActivityTaskCompleted       ActivityType = "task_completed"
	ActivityCommentAdded        ActivityType = "comment_added"
	ActivityRecurrenceGenerated ActivityType = "recurrence_generated"
)

// ActivityEvent is an append-only audit record attached to a task.
type ActivityEvent struct {
	ID        uuid.UUID       `json:"id"`
	TaskID    uuid.UUID       `json:"task_id"`
	ActorID   uuid.UUID       `json:"actor_id"`
	EventType ActivityType    `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewActivityEvent builds an activity event with a fresh ID, marshalling the
// payload to JSON.
func NewActivityEvent(
	taskID, actorID uuid.UUID,
	eventType ActivityType,
	payload any,
	now time.Time,
) (*ActivityEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &ActivityEvent{
		ID:        uuid.New(),
		TaskID:    taskID,
		ActorID:   actorID,
		EventType: eventType,
		Payload:   raw,
		CreatedAt: now.UTC(),
	}, nil
}
