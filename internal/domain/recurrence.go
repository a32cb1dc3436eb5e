package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RecurrenceMode controls when a recurring task produces its successor.
type RecurrenceMode string

// Recurrence modes.
const (
	RecurrenceCreateOnComplete RecurrenceMode = "create_on_complete"
	RecurrenceCreateOnSchedule RecurrenceMode = "create_on_schedule"
)

// Recurrence is the repeat rule attached to a task. Pattern holds the raw
// stored JSON; it is interpreted by the recurrence package.
type Recurrence struct {
	ID          uuid.UUID       `json:"id"`
	WorkspaceID uuid.UUID       `json:"workspace_id"`
	Pattern     json.RawMessage `json:"pattern"`
	Mode        RecurrenceMode  `json:"mode"`
	NextRunAt   *time.Time      `json:"next_run_at"`
	IsPaused    bool            `json:"is_paused"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}
