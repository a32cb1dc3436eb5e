// Package recurring creates the next occurrence of a recurring task when the
// current one is completed.
package recurring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/domain/recurrence"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

var (
	// ErrAnchorMissing is returned when a task linked to an active recurrence
	// has no due date to compute the next occurrence from.
	ErrAnchorMissing = errors.New("recurring task has no due date")

	// ErrMissingOpenStatus is returned when the project has no status with
	// is_done = false to place the successor in.
	ErrMissingOpenStatus = errors.New("project has no open status for recurring task")
)

// Repository is the persistence surface the chainer needs. It is expected to
// be bound to the transaction that completes the task.
type Repository interface {
	GetRecurrence(ctx context.Context, id uuid.UUID) (*domain.Recurrence, error)
	GetFirstOpenStatus(ctx context.Context, projectID uuid.UUID) (*domain.ProjectStatus, error)
	GetMaxSortOrder(ctx context.Context, projectID uuid.UUID) (int, error)
	InsertTask(ctx context.Context, task *domain.Task) error
	InsertActivityEvent(ctx context.Context, event *domain.ActivityEvent) error
}

// GeneratedPayload is recorded on the successor's recurrence_generated event.
type GeneratedPayload struct {
	SourceTaskID uuid.UUID `json:"sourceTaskId"`
}

// Chainer generates successor tasks for completed recurring tasks.
type Chainer struct {
	logger *slog.Logger
	clock  func() time.Time
}

// Option configures a Chainer.
type Option func(*Chainer)

// WithClock overrides the clock used for the successor's timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *Chainer) { c.clock = clock }
}

// NewChainer creates a Chainer. A nil logger uses slog.Default().
func NewChainer(log *slog.Logger, opts ...Option) *Chainer {
	if log == nil {
		log = slog.Default()
	}
	c := &Chainer{
		logger: log.With(slog.String("component", "recurrence_chainer")),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnTaskCompleted creates the next occurrence of task, which has just been
// completed by actorID. It returns nil without writing when the task has no
// recurrence, the recurrence is missing or paused, or its pattern is invalid.
// Any other failure is returned and must abort the completion.
func (c *Chainer) OnTaskCompleted(
	ctx context.Context,
	repo Repository,
	task *domain.Task,
	actorID uuid.UUID,
) (*domain.Task, error) {
	if task == nil || task.RecurrenceID == nil {
		return nil, nil
	}
	log := logger.FromContextOrDefault(ctx, c.logger).With(
		slog.String("task_id", task.ID.String()),
		slog.String("recurrence_id", task.RecurrenceID.String()),
	)

	rec, err := repo.GetRecurrence(ctx, *task.RecurrenceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("recurrence no longer exists")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load recurrence: %w", err)
	}
	if rec.IsPaused {
		log.Debug("recurrence is paused")
		return nil, nil
	}

	pattern, ok := recurrence.Parse(rec.Pattern)
	if !ok {
		log.Warn("recurrence pattern is invalid", slog.String("pattern", string(rec.Pattern)))
		return nil, nil
	}

	if task.DueAt == nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, ErrAnchorMissing)
	}
	nextDue := recurrence.NextDueDate(*task.DueAt, pattern)

	status, err := repo.GetFirstOpenStatus(ctx, task.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("project %s: %w", task.ProjectID, ErrMissingOpenStatus)
		}
		return nil, fmt.Errorf("failed to resolve open status: %w", err)
	}

	maxOrder, err := repo.GetMaxSortOrder(ctx, task.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to read sort order: %w", err)
	}

	now := c.clock().UTC()
	successor := &domain.Task{
		ID:           uuid.New(),
		ProjectID:    task.ProjectID,
		SectionID:    task.SectionID,
		StatusID:     status.ID,
		Title:        task.Title,
		Description:  task.Description,
		AssigneeID:   task.AssigneeID,
		CreatorID:    task.CreatorID,
		DueAt:        &nextDue,
		DueTimezone:  task.DueTimezone,
		Priority:     task.Priority,
		RecurrenceID: task.RecurrenceID,
		IsToday:      false,
		SortOrder:    maxOrder + 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.InsertTask(ctx, successor); err != nil {
		return nil, fmt.Errorf("failed to insert successor task: %w", err)
	}

	event, err := domain.NewActivityEvent(
		successor.ID,
		actorID,
		domain.ActivityRecurrenceGenerated,
		GeneratedPayload{SourceTaskID: task.ID},
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build activity event: %w", err)
	}
	if err := repo.InsertActivityEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record recurrence activity: %w", err)
	}

	log.Info("recurring task generated",
		slog.String("successor_id", successor.ID.String()),
		slog.Time("due_at", nextDue))
	return successor, nil
}
