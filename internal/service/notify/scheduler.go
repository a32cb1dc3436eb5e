// Package notify creates due_soon and overdue inbox notifications for open,
// assigned tasks. Each run is idempotent: a (user, task, type) triple is
// notified at most once.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// DefaultDueSoonWindow is used when no window is configured.
const DefaultDueSoonWindow = 24 * time.Hour

// ErrInvalidWindow is returned for a non-positive due soon window.
var ErrInvalidWindow = errors.New("due soon window must be positive")

// Repository is the persistence surface the scheduler reads and writes.
type Repository interface {
	ListOpenCandidateTasks(ctx context.Context) ([]domain.DueScanTask, error)
	GetStatusesByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.ProjectStatus, error)
	GetProjectsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Project, error)
	ListExistingNotifications(
		ctx context.Context,
		entityType domain.EntityType,
		types []domain.NotificationType,
		entityIDs []uuid.UUID,
	) ([]domain.NotificationKey, error)
	InsertDueNotifications(ctx context.Context, notifications []domain.Notification) (int, error)
}

// Summary reports the outcome of one scan.
type Summary struct {
	Scanned    int `json:"scanned"`
	Candidates int `json:"candidates"`
	Created    int `json:"created"`
	Skipped    int `json:"skipped"`
}

// Payload is the JSON body stored on due_soon and overdue notifications.
type Payload struct {
	TaskID uuid.UUID `json:"taskId"`
	DueAt  string    `json:"dueAt"`
}

// Scheduler scans open tasks and records due_soon and overdue notifications
// for their assignees. A key (user, task, type) is notified at most once.
type Scheduler struct {
	repo   Repository
	window time.Duration
	logger *slog.Logger
}

// NewScheduler creates a Scheduler with the given due soon window.
func NewScheduler(repo Repository, window time.Duration, log *slog.Logger) (*Scheduler, error) {
	if repo == nil {
		return nil, errors.New("repository cannot be nil")
	}
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		repo:   repo,
		window: window,
		logger: log.With(slog.String("component", "due_notification_scheduler")),
	}, nil
}

// Window returns the configured due soon window.
func (s *Scheduler) Window() time.Duration {
	return s.window
}

type candidate struct {
	task     domain.DueScanTask
	due      time.Time
	typ      domain.NotificationType
	assignee uuid.UUID
	project  domain.Project
}

// Run performs one scan at now using the configured window.
func (s *Scheduler) Run(ctx context.Context, now time.Time) (Summary, error) {
	return s.RunWithWindow(ctx, now, s.window)
}

// RunWithWindow performs one scan at now. Any repository failure aborts the
// run and is returned in the error chain; a failed run reports no counts.
func (s *Scheduler) RunWithWindow(ctx context.Context, now time.Time, window time.Duration) (Summary, error) {
	if window <= 0 {
		return Summary{}, ErrInvalidWindow
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	now = now.UTC()

	tasks, err := s.repo.ListOpenCandidateTasks(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list candidate tasks: %w", err)
	}
	summary := Summary{Scanned: len(tasks)}

	survivors := make([]domain.DueScanTask, 0, len(tasks))
	for _, t := range tasks {
		if t.AssigneeID == nil || t.DueAt == nil || t.CompletedAt != nil {
			continue
		}
		survivors = append(survivors, t)
	}
	if len(survivors) == 0 {
		log.Debug("no tasks eligible for due notifications",
			slog.Int("scanned", summary.Scanned))
		return summary, nil
	}

	statusIDs := distinct(survivors, func(t domain.DueScanTask) uuid.UUID { return t.StatusID })
	projectIDs := distinct(survivors, func(t domain.DueScanTask) uuid.UUID { return t.ProjectID })

	statuses, err := s.repo.GetStatusesByIDs(ctx, statusIDs)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load task statuses: %w", err)
	}
	projects, err := s.repo.GetProjectsByIDs(ctx, projectIDs)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load task projects: %w", err)
	}

	doneStatus := make(map[uuid.UUID]bool, len(statuses))
	for _, st := range statuses {
		doneStatus[st.ID] = st.IsDone
	}
	projectByID := make(map[uuid.UUID]domain.Project, len(projects))
	for _, p := range projects {
		projectByID[p.ID] = p
	}

	cutoff := now.Add(window)
	candidates := make([]candidate, 0, len(survivors))
	for _, t := range survivors {
		if doneStatus[t.StatusID] {
			continue
		}
		project, ok := projectByID[t.ProjectID]
		if !ok {
			continue
		}
		due, ok := t.DueTime()
		if !ok {
			log.Debug("skipping task with unparseable due date",
				slog.String("task_id", t.ID.String()),
				slog.String("due_at", *t.DueAt))
			continue
		}

		var typ domain.NotificationType
		switch {
		case !due.After(now):
			typ = domain.NotificationOverdue
		case !due.After(cutoff):
			typ = domain.NotificationDueSoon
		default:
			continue
		}
		candidates = append(candidates, candidate{
			task:     t,
			due:      due.UTC(),
			typ:      typ,
			assignee: *t.AssigneeID,
			project:  project,
		})
	}
	summary.Candidates = len(candidates)
	if len(candidates) == 0 {
		return summary, nil
	}

	taskIDs := make([]uuid.UUID, 0, len(candidates))
	seenTask := make(map[uuid.UUID]struct{}, len(candidates))
	for _, c := range candidates {
		if _, ok := seenTask[c.task.ID]; ok {
			continue
		}
		seenTask[c.task.ID] = struct{}{}
		taskIDs = append(taskIDs, c.task.ID)
	}

	existing, err := s.repo.ListExistingNotifications(
		ctx, domain.EntityTask, domain.DueNotificationTypes, taskIDs)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load existing notifications: %w", err)
	}
	seen := make(map[domain.NotificationKey]struct{}, len(existing)+len(candidates))
	for _, k := range existing {
		seen[k] = struct{}{}
	}

	pending := make([]domain.Notification, 0, len(candidates))
	for _, c := range candidates {
		key := domain.NotificationKey{UserID: c.assignee, EntityID: c.task.ID, Type: c.typ}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		n, err := domain.NewNotification(
			c.project.WorkspaceID,
			c.assignee,
			c.typ,
			domain.EntityTask,
			c.task.ID,
			Payload{TaskID: c.task.ID, DueAt: c.due.Format(time.RFC3339Nano)},
			now,
		)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to build notification: %w", err)
		}
		pending = append(pending, n)
	}

	if len(pending) > 0 {
		created, err := s.repo.InsertDueNotifications(ctx, pending)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to insert due notifications: %w", err)
		}
		summary.Created = created
	}
	summary.Skipped = summary.Candidates - summary.Created

	log.Info("due notification scan finished",
		slog.Int("scanned", summary.Scanned),
		slog.Int("candidates", summary.Candidates),
		slog.Int("created", summary.Created),
		slog.Int("skipped", summary.Skipped))

	return summary, nil
}

func distinct(tasks []domain.DueScanTask, key func(domain.DueScanTask) uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(tasks))
	out := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		id := key(t)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
