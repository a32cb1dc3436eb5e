package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

const taskColumns = `id, project_id, section_id, status_id, title, description, assignee_id,
	creator_id, due_at, due_timezone, priority, parent_task_id, recurrence_id, is_today,
	sort_order, created_at, updated_at, completed_at`

// ListOpenCandidateTasks implements store.TaskStore.
func (r *Repository) ListOpenCandidateTasks(ctx context.Context) ([]domain.DueScanTask, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	var rows []domain.DueScanTask
	query := `SELECT id, project_id, status_id, assignee_id, due_at, completed_at FROM tasks`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		log.Error("failed to list tasks for due scan", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed to list tasks", MapError(err))
	}
	return rows, nil
}

// GetTask implements store.TaskStore.
func (r *Repository) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	var task domain.Task
	query := r.rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("task", "get", "failed to get task", MapError(err))
	}
	return &task, nil
}

// InsertTask implements store.TaskStore.
func (r *Repository) InsertTask(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during insert",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (:id, :project_id, :section_id, :status_id, :title, :description, :assignee_id,
			:creator_id, :due_at, :due_timezone, :priority, :parent_task_id, :recurrence_id,
			:is_today, :sort_order, :created_at, :updated_at, :completed_at)
	`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, utcTask(task)); err != nil {
		log.Error("failed to insert task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("project_id", task.ProjectID.String()))
		return store.NewStoreError("task", "insert", "failed to insert task", MapError(err))
	}

	log.Debug("task inserted",
		slog.String("task_id", task.ID.String()),
		slog.String("project_id", task.ProjectID.String()))
	return nil
}

// UpdateTask implements store.TaskStore.
func (r *Repository) UpdateTask(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks SET section_id = :section_id, status_id = :status_id, title = :title,
			description = :description, assignee_id = :assignee_id, due_at = :due_at,
			due_timezone = :due_timezone, priority = :priority, is_today = :is_today,
			sort_order = :sort_order, updated_at = :updated_at
		WHERE id = :id
	`
	result, err := sqlx.NamedExecContext(ctx, r.db, query, utcTask(task))
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "update", "failed to update task", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// MarkTaskCompleted implements store.TaskStore.
func (r *Repository) MarkTaskCompleted(
	ctx context.Context,
	id, statusID uuid.UUID,
	completedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	query := r.rebind(`
		UPDATE tasks SET status_id = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND completed_at IS NULL
	`)
	completedAt = completedAt.UTC()
	result, err := r.db.ExecContext(ctx, query, statusID, completedAt, completedAt, id)
	if err != nil {
		log.Error("failed to mark task completed",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return store.NewStoreError("task", "update", "failed to complete task", MapError(err))
	}
	err = CheckRowsAffected(result, store.ErrTaskNotFound)
	if !errors.Is(err, store.ErrTaskNotFound) {
		return err
	}

	// No open row matched: either the task is gone or another completion
	// got there first.
	var exists bool
	existsQuery := r.rebind(`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = ?)`)
	if qerr := r.db.GetContext(ctx, &exists, existsQuery, id); qerr != nil {
		return store.NewStoreError("task", "update", "failed to check task", MapError(qerr))
	}
	if exists {
		log.Debug("task already completed", slog.String("task_id", id.String()))
		return store.ErrTaskAlreadyCompleted
	}
	return store.ErrTaskNotFound
}

// GetMaxSortOrder implements store.TaskStore.
func (r *Repository) GetMaxSortOrder(ctx context.Context, projectID uuid.UUID) (int, error) {
	var maxOrder int
	query := r.rebind(`SELECT COALESCE(MAX(sort_order), 0) FROM tasks WHERE project_id = ?`)
	if err := r.db.GetContext(ctx, &maxOrder, query, projectID); err != nil {
		return 0, store.NewStoreError("task", "max_sort_order", "failed to read sort order", MapError(err))
	}
	return maxOrder, nil
}

// utcTask returns a copy of t with every timestamp in UTC so that stored text
// timestamps sort consistently.
func utcTask(t *domain.Task) *domain.Task {
	row := *t
	row.CreatedAt = row.CreatedAt.UTC()
	row.UpdatedAt = row.UpdatedAt.UTC()
	row.DueAt = utcPtr(row.DueAt)
	row.CompletedAt = utcPtr(row.CompletedAt)
	return &row
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
