package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a job run
type Status string

// Possible run status values
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job type constants
const (
	// TypeDueNotifications scans open tasks and records due soon and
	// overdue notifications.
	TypeDueNotifications = "due_notifications"
)

// Job is a unit of background work.
type Job interface {
	// ID returns the job's unique identifier, which is also its run ID.
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Payload returns the job input as JSON
	Payload() []byte

	// Execute runs the job. The returned value is stored as the run result.
	Execute(ctx context.Context) (any, error)
}

// Factory rebuilds a job from a persisted run so pending work can resume
// after a restart.
type Factory func(run Run) (Job, error)

// Run is the persisted record of one job execution.
type Run struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	Status       Status          `json:"status"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage string          `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Store persists job runs.
type Store interface {
	// CreateRun inserts a new run.
	CreateRun(ctx context.Context, run *Run) error

	// UpdateRunStatus moves a run to status. result and errMsg are stored
	// when non-empty.
	UpdateRunStatus(
		ctx context.Context,
		id uuid.UUID,
		status Status,
		result json.RawMessage,
		errMsg string,
		at time.Time,
	) error

	// ListRunsByStatus returns runs in status, oldest first.
	ListRunsByStatus(ctx context.Context, status Status) ([]Run, error)

	// GetRun returns one run. Returns store.ErrJobRunNotFound if missing.
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
}

// QueueReader provides read-only access to the job channel
type QueueReader interface {
	// Channel returns a read-only channel for consuming jobs
	Channel() <-chan Job
}

// QueueWriter provides write access to the queue
type QueueWriter interface {
	// Enqueue adds a job to the queue. Returns an error if the queue is full
	// or closed.
	Enqueue(job Job) error

	// Close closes the queue, preventing further submission
	Close()
}
