package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Optional is a field of a partial update. Set reports whether the caller
// supplied the field; a set field with a nil Value clears a nullable column.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a set Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UpdateTaskInput lists the fields UpdateTask may change. Title, IsToday and
// SortOrder cannot be cleared; a set field with a nil value is ignored for
// them. Status and section changes go through MoveTask and completion
// through CompleteTask.
type UpdateTaskInput struct {
	Title       Optional[string]
	Description Optional[string]
	AssigneeID  Optional[uuid.UUID]
	DueAt       Optional[time.Time]
	DueTimezone Optional[string]
	Priority    Optional[domain.Priority]
	IsToday     Optional[bool]
	SortOrder   Optional[int]
}

// fields returns the JSON names of the supplied fields in a fixed order.
func (in UpdateTaskInput) fields() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(in.Title.Set, "title")
	add(in.Description.Set, "description")
	add(in.AssigneeID.Set, "assigneeId")
	add(in.DueAt.Set, "dueAt")
	add(in.DueTimezone.Set, "dueTimezone")
	add(in.Priority.Set, "priority")
	add(in.IsToday.Set, "isToday")
	add(in.SortOrder.Set, "sortOrder")
	return out
}

// MoveTaskInput is the destination of MoveTask. A nil SectionID removes the
// task from its section.
type MoveTaskInput struct {
	StatusID  uuid.UUID
	SectionID *uuid.UUID
	SortOrder int
}

// UpdateTask implements TaskService.UpdateTask.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	actorID, taskID uuid.UUID,
	in UpdateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	const op = "update_task"

	fields := in.fields()
	if len(fields) == 0 {
		return nil, NewServiceError(op, "nothing to update", ErrEmptyUpdate)
	}
	if in.SortOrder.Value != nil && *in.SortOrder.Value < 0 {
		return nil, NewServiceError(op, "invalid sort order", ErrInvalidSortOrder)
	}

	var updated *domain.Task
	var notified bool
	err := s.repo.WithinTx(ctx, func(ctx context.Context, repo store.Repository) error {
		task, err := loadTask(ctx, repo, taskID)
		if err != nil {
			return NewServiceError(op, "failed to load task", err)
		}
		project, members, err := projectAccess(ctx, repo, task.ProjectID, actorID)
		if err != nil {
			return NewServiceError(op, "project access denied", err)
		}

		previousAssignee := task.AssigneeID
		applyUpdate(task, in)
		if in.AssigneeID.Value != nil && !isMember(members, *in.AssigneeID.Value) {
			return NewServiceError(op, "invalid assignee", ErrAssigneeNotMember)
		}

		now := s.clock().UTC()
		task.UpdatedAt = now
		if err := task.Validate(); err != nil {
			return NewServiceError(op, "invalid task", err)
		}
		if err := repo.UpdateTask(ctx, task); err != nil {
			return NewServiceError(op, "failed to update task", err)
		}

		event, err := domain.NewActivityEvent(task.ID, actorID, domain.ActivityTaskUpdated,
			map[string][]string{"fields": fields}, now)
		if err != nil {
			return NewServiceError(op, "failed to build activity event", err)
		}
		if err := repo.InsertActivityEvent(ctx, event); err != nil {
			return NewServiceError(op, "failed to record activity", err)
		}

		if reassigned(previousAssignee, in.AssigneeID.Value, actorID) {
			n, err := domain.NewNotification(project.WorkspaceID, *in.AssigneeID.Value,
				domain.NotificationAssignment, domain.EntityTask, task.ID, map[string]string{
					"taskId":  task.ID.String(),
					"actorId": actorID.String(),
					"title":   task.Title,
				}, now)
			if err != nil {
				return NewServiceError(op, "failed to build notification", err)
			}
			if err := repo.InsertNotifications(ctx, []domain.Notification{n}); err != nil {
				return NewServiceError(op, "failed to notify assignee", err)
			}
			notified = true
		}

		updated = task
		return nil
	})
	if err != nil {
		log.Warn("task update failed",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	log.Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.Any("fields", fields),
		slog.Bool("assignee_notified", notified))
	return updated, nil
}

func applyUpdate(task *domain.Task, in UpdateTaskInput) {
	if in.Title.Value != nil {
		task.Title = strings.TrimSpace(*in.Title.Value)
	}
	if in.Description.Set {
		task.Description = in.Description.Value
	}
	if in.AssigneeID.Set {
		task.AssigneeID = in.AssigneeID.Value
	}
	if in.DueAt.Set {
		if in.DueAt.Value == nil {
			task.DueAt = nil
		} else {
			due := in.DueAt.Value.UTC()
			task.DueAt = &due
		}
	}
	if in.DueTimezone.Set {
		task.DueTimezone = in.DueTimezone.Value
	}
	if in.Priority.Set {
		task.Priority = in.Priority.Value
	}
	if in.IsToday.Value != nil {
		task.IsToday = *in.IsToday.Value
	}
	if in.SortOrder.Value != nil {
		task.SortOrder = *in.SortOrder.Value
	}
}

// reassigned reports whether next names a new assignee other than the actor.
func reassigned(previous, next *uuid.UUID, actorID uuid.UUID) bool {
	if next == nil || *next == actorID {
		return false
	}
	return previous == nil || *previous != *next
}

// MoveTask implements TaskService.MoveTask.
func (s *taskServiceImpl) MoveTask(
	ctx context.Context,
	actorID, taskID uuid.UUID,
	in MoveTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	const op = "move_task"

	if in.SortOrder < 0 {
		return nil, NewServiceError(op, "invalid sort order", ErrInvalidSortOrder)
	}

	var moved *domain.Task
	err := s.repo.WithinTx(ctx, func(ctx context.Context, repo store.Repository) error {
		task, err := loadTask(ctx, repo, taskID)
		if err != nil {
			return NewServiceError(op, "failed to load task", err)
		}
		if _, _, err := projectAccess(ctx, repo, task.ProjectID, actorID); err != nil {
			return NewServiceError(op, "project access denied", err)
		}

		statusID, err := s.resolveStatus(ctx, repo, task.ProjectID, &in.StatusID)
		if err != nil {
			return NewServiceError(op, "failed to resolve status", err)
		}
		if in.SectionID != nil {
			section, err := repo.GetSection(ctx, *in.SectionID)
			switch {
			case store.IsNotFoundError(err):
				return NewServiceError(op, "unknown section", ErrInvalidSection)
			case err != nil:
				return NewServiceError(op, "failed to resolve section", err)
			case section.ProjectID != task.ProjectID:
				return NewServiceError(op, "foreign section", ErrInvalidSection)
			}
		}

		now := s.clock().UTC()
		task.StatusID = statusID
		task.SectionID = in.SectionID
		task.SortOrder = in.SortOrder
		task.UpdatedAt = now
		if err := repo.UpdateTask(ctx, task); err != nil {
			return NewServiceError(op, "failed to move task", err)
		}

		payload := map[string]*string{"statusId": ptr(statusID.String()), "sectionId": nil}
		if in.SectionID != nil {
			payload["sectionId"] = ptr(in.SectionID.String())
		}
		event, err := domain.NewActivityEvent(task.ID, actorID, domain.ActivityTaskMoved, payload, now)
		if err != nil {
			return NewServiceError(op, "failed to build activity event", err)
		}
		if err := repo.InsertActivityEvent(ctx, event); err != nil {
			return NewServiceError(op, "failed to record activity", err)
		}

		moved = task
		return nil
	})
	if err != nil {
		log.Warn("task move failed",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	log.Info("task moved",
		slog.String("task_id", taskID.String()),
		slog.String("status_id", moved.StatusID.String()))
	return moved, nil
}

func ptr[T any](v T) *T { return &v }
