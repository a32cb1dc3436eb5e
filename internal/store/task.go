package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// TaskStore defines persistence operations for tasks.
type TaskStore interface {
	// ListOpenCandidateTasks returns the due scan projection of every task.
	// Filtering is left to the caller so that the scanned count reflects
	// everything that was read.
	ListOpenCandidateTasks(ctx context.Context) ([]domain.DueScanTask, error)

	// GetTask retrieves a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// InsertTask saves a new task.
	InsertTask(ctx context.Context, task *domain.Task) error

	// UpdateTask writes the mutable fields of task: section, status, title,
	// description, assignee, due date, due timezone, priority, today flag,
	// sort order and update time. Completion is left to MarkTaskCompleted.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateTask(ctx context.Context, task *domain.Task) error

	// MarkTaskCompleted moves a task to statusID and stamps its completion time.
	// Only an open task is updated. Returns ErrTaskAlreadyCompleted if it is
	// already completed and ErrTaskNotFound if it does not exist.
	MarkTaskCompleted(ctx context.Context, id, statusID uuid.UUID, completedAt time.Time) error

	// GetMaxSortOrder returns the largest task sort order in a project, or 0
	// when the project has no tasks.
	GetMaxSortOrder(ctx context.Context, projectID uuid.UUID) (int, error)
}
