package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/service/notify"
)

// DueScanner runs one due notification scan.
type DueScanner interface {
	Window() time.Duration
	RunWithWindow(ctx context.Context, now time.Time, window time.Duration) (notify.Summary, error)
}

// DuePayload is the persisted input of a DueNotificationJob. A nil Now means
// the clock is read when the job executes.
type DuePayload struct {
	Now           *time.Time `json:"now,omitempty"`
	WindowSeconds int64      `json:"windowSeconds"`
}

// DueNotificationJob runs the due notification scheduler once.
type DueNotificationJob struct {
	id      uuid.UUID
	scanner DueScanner
	clock   func() time.Time
	payload DuePayload
}

var _ Job = (*DueNotificationJob)(nil)

// NewDueNotificationJob creates a job. When now is nil the scan uses clock at
// execution time; a zero window uses the scanner's configured window.
func NewDueNotificationJob(
	scanner DueScanner,
	clock func() time.Time,
	now *time.Time,
	window time.Duration,
) *DueNotificationJob {
	if clock == nil {
		clock = time.Now
	}
	if window <= 0 {
		window = scanner.Window()
	}
	var snapshot *time.Time
	if now != nil {
		at := now.UTC()
		snapshot = &at
	}
	return &DueNotificationJob{
		id:      uuid.New(),
		scanner: scanner,
		clock:   clock,
		payload: DuePayload{Now: snapshot, WindowSeconds: int64(window / time.Second)},
	}
}

// DueNotificationFactory rebuilds pending due notification runs.
func DueNotificationFactory(scanner DueScanner, clock func() time.Time) Factory {
	return func(run Run) (Job, error) {
		var p DuePayload
		if len(run.Payload) > 0 {
			if err := json.Unmarshal(run.Payload, &p); err != nil {
				return nil, fmt.Errorf("invalid due notification payload: %w", err)
			}
		}
		if p.WindowSeconds < 0 {
			return nil, errors.New("invalid due notification payload: negative window")
		}
		job := NewDueNotificationJob(scanner, clock, p.Now, time.Duration(p.WindowSeconds)*time.Second)
		job.id = run.ID
		return job, nil
	}
}

// ID implements Job.
func (j *DueNotificationJob) ID() uuid.UUID { return j.id }

// Type implements Job.
func (j *DueNotificationJob) Type() string { return TypeDueNotifications }

// Payload implements Job.
func (j *DueNotificationJob) Payload() []byte {
	b, _ := json.Marshal(j.payload)
	return b
}

// Execute implements Job. It returns the scan's notify.Summary.
func (j *DueNotificationJob) Execute(ctx context.Context) (any, error) {
	now := j.clock()
	if j.payload.Now != nil {
		now = *j.payload.Now
	}
	return j.scanner.RunWithWindow(ctx, now, time.Duration(j.payload.WindowSeconds)*time.Second)
}
