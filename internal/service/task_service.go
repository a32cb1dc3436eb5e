package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service/mention"
	"github.com/phrazzld/taskflow-api/internal/service/recurring"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// CreateTaskInput holds the caller-supplied fields of a new task. Nil fields
// take project defaults: the first status, the first section, and the
// creator as assignee.
type CreateTaskInput struct {
	ProjectID    uuid.UUID
	Title        string
	Description  *string
	StatusID     *uuid.UUID
	SectionID    *uuid.UUID
	AssigneeID   *uuid.UUID
	DueAt        *time.Time
	DueTimezone  *string
	Priority     *domain.Priority
	ParentTaskID *uuid.UUID
	RecurrenceID *uuid.UUID
}

// CompletionResult is returned by CompleteTask.
type CompletionResult struct {
	Task *domain.Task
	// Successor is the generated next occurrence, if any.
	Successor *domain.Task
	// AlreadyCompleted is true when the task was completed before the call;
	// nothing was written in that case.
	AlreadyCompleted bool
}

// CommentResult is returned by AddComment.
type CommentResult struct {
	Comment       *domain.Comment
	Notifications []domain.Notification
}

// TaskService provides the task workflows.
type TaskService interface {
	// CreateTask creates a task in a project the actor belongs to.
	CreateTask(ctx context.Context, actorID uuid.UUID, in CreateTaskInput) (*domain.Task, error)

	// CompleteTask moves a task to the project's done status and, for a
	// recurring task, creates its next occurrence in the same transaction.
	CompleteTask(ctx context.Context, actorID, taskID uuid.UUID) (*CompletionResult, error)

	// UpdateTask changes the supplied fields of a task. Assigning the task to
	// someone other than the actor notifies the new assignee.
	UpdateTask(ctx context.Context, actorID, taskID uuid.UUID, in UpdateTaskInput) (*domain.Task, error)

	// MoveTask places a task in another status and section of its project.
	MoveTask(ctx context.Context, actorID, taskID uuid.UUID, in MoveTaskInput) (*domain.Task, error)

	// AddComment records a comment and notifies the assignee and any
	// mentioned members.
	AddComment(ctx context.Context, actorID, taskID uuid.UUID, body string) (*CommentResult, error)
}

type taskServiceImpl struct {
	repo    store.Repository
	chainer *recurring.Chainer
	logger  *slog.Logger
	clock   func() time.Time
}

// TaskServiceOption configures the task service.
type TaskServiceOption func(*taskServiceImpl)

// WithTaskClock overrides the clock used for timestamps.
func WithTaskClock(clock func() time.Time) TaskServiceOption {
	return func(s *taskServiceImpl) { s.clock = clock }
}

// NewTaskService creates a TaskService. It returns an error if repo or
// chainer is nil.
func NewTaskService(
	repo store.Repository,
	chainer *recurring.Chainer,
	logger *slog.Logger,
	opts ...TaskServiceOption,
) (TaskService, error) {
	if repo == nil {
		return nil, errors.New("repo cannot be nil")
	}
	if chainer == nil {
		return nil, errors.New("chainer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &taskServiceImpl{
		repo:    repo,
		chainer: chainer,
		logger:  logger.With(slog.String("component", "task_service")),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// projectAccess loads the project and verifies the actor's membership in its
// workspace. It returns the members for reuse.
func projectAccess(
	ctx context.Context,
	repo store.Repository,
	projectID, actorID uuid.UUID,
) (*domain.Project, []domain.WorkspaceMember, error) {
	project, err := repo.GetProject(ctx, projectID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, err
	}
	members, err := repo.ListWorkspaceMembers(ctx, project.WorkspaceID)
	if err != nil {
		return nil, nil, err
	}
	if !isMember(members, actorID) {
		return nil, nil, ErrNotMember
	}
	return project, members, nil
}

func isMember(members []domain.WorkspaceMember, userID uuid.UUID) bool {
	for _, m := range members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func loadTask(ctx context.Context, repo store.Repository, taskID uuid.UUID) (*domain.Task, error) {
	task, err := repo.GetTask(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	actorID uuid.UUID,
	in CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	const op = "create_task"

	var created *domain.Task
	err := s.repo.WithinTx(ctx, func(ctx context.Context, repo store.Repository) error {
		project, members, err := projectAccess(ctx, repo, in.ProjectID, actorID)
		if err != nil {
			return NewServiceError(op, "project access denied", err)
		}

		statusID, err := s.resolveStatus(ctx, repo, project.ID, in.StatusID)
		if err != nil {
			return NewServiceError(op, "failed to resolve status", err)
		}

		sectionID := in.SectionID
		if sectionID == nil {
			section, err := repo.GetFirstSection(ctx, project.ID)
			switch {
			case err == nil:
				sectionID = &section.ID
			case !store.IsNotFoundError(err):
				return NewServiceError(op, "failed to resolve section", err)
			}
		}

		assigneeID := actorID
		if in.AssigneeID != nil {
			assigneeID = *in.AssigneeID
		}
		if !isMember(members, assigneeID) {
			return NewServiceError(op, "invalid assignee", ErrAssigneeNotMember)
		}

		maxOrder, err := repo.GetMaxSortOrder(ctx, project.ID)
		if err != nil {
			return NewServiceError(op, "failed to read sort order", err)
		}

		now := s.clock().UTC()
		task := &domain.Task{
			ID:           uuid.New(),
			ProjectID:    project.ID,
			SectionID:    sectionID,
			StatusID:     statusID,
			Title:        strings.TrimSpace(in.Title),
			Description:  in.Description,
			AssigneeID:   &assigneeID,
			CreatorID:    actorID,
			DueAt:        in.DueAt,
			DueTimezone:  in.DueTimezone,
			Priority:     in.Priority,
			ParentTaskID: in.ParentTaskID,
			RecurrenceID: in.RecurrenceID,
			SortOrder:    maxOrder + 1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := task.Validate(); err != nil {
			return NewServiceError(op, "invalid task", err)
		}
		if err := repo.InsertTask(ctx, task); err != nil {
			return NewServiceError(op, "failed to insert task", err)
		}

		event, err := domain.NewActivityEvent(task.ID, actorID, domain.ActivityTaskCreated,
			map[string]string{"title": task.Title}, now)
		if err != nil {
			return NewServiceError(op, "failed to build activity event", err)
		}
		if err := repo.InsertActivityEvent(ctx, event); err != nil {
			return NewServiceError(op, "failed to record activity", err)
		}

		if assigneeID != actorID {
			n, err := domain.NewNotification(project.WorkspaceID, assigneeID, domain.NotificationAssignment,
				domain.EntityTask, task.ID, map[string]string{
					"taskId":  task.ID.String(),
					"actorId": actorID.String(),
				}, now)
			if err != nil {
				return NewServiceError(op, "failed to build notification", err)
			}
			if err := repo.InsertNotifications(ctx, []domain.Notification{n}); err != nil {
				return NewServiceError(op, "failed to notify assignee", err)
			}
		}

		created = task
		return nil
	})
	if err != nil {
		log.Warn("task creation failed",
			slog.String("error", err.Error()),
			slog.String("project_id", in.ProjectID.String()))
		return nil, err
	}

	log.Info("task created",
		slog.String("task_id", created.ID.String()),
		slog.String("project_id", created.ProjectID.String()))
	return created, nil
}

func (s *taskServiceImpl) resolveStatus(
	ctx context.Context,
	repo store.Repository,
	projectID uuid.UUID,
	requested *uuid.UUID,
) (uuid.UUID, error) {
	if requested != nil {
		statuses, err := repo.GetStatusesByIDs(ctx, []uuid.UUID{*requested})
		if err != nil {
			return uuid.Nil, err
		}
		if len(statuses) == 0 || statuses[0].ProjectID != projectID {
			return uuid.Nil, ErrInvalidStatus
		}
		return statuses[0].ID, nil
	}

	status, err := repo.GetFirstStatus(ctx, projectID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return uuid.Nil, ErrMissingDefaultStatus
		}
		return uuid.Nil, err
	}
	return status.ID, nil
}

// CompleteTask implements TaskService.CompleteTask.
func (s *taskServiceImpl) CompleteTask(
	ctx context.Context,
	actorID, taskID uuid.UUID,
) (*CompletionResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	const op = "complete_task"

	var result *CompletionResult
	err := s.repo.WithinTx(ctx, func(ctx context.Context, repo store.Repository) error {
		task, err := loadTask(ctx, repo, taskID)
		if err != nil {
			return NewServiceError(op, "failed to load task", err)
		}
		if _, _, err := projectAccess(ctx, repo, task.ProjectID, actorID); err != nil {
			return NewServiceError(op, "project access denied", err)
		}

		if task.IsCompleted() {
			result = &CompletionResult{Task: task, AlreadyCompleted: true}
			return nil
		}

		done, err := repo.GetFirstDoneStatus(ctx, task.ProjectID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return NewServiceError(op, "project is misconfigured", ErrMissingDoneStatus)
			}
			return NewServiceError(op, "failed to resolve done status", err)
		}

		now := s.clock().UTC()
		if err := repo.MarkTaskCompleted(ctx, task.ID, done.ID, now); err != nil {
			if errors.Is(err, store.ErrTaskAlreadyCompleted) {
				current, lerr := loadTask(ctx, repo, taskID)
				if lerr != nil {
					return NewServiceError(op, "failed to reload task", lerr)
				}
				result = &CompletionResult{Task: current, AlreadyCompleted: true}
				return nil
			}
			return NewServiceError(op, "failed to mark task completed", err)
		}
		task.StatusID = done.ID
		task.CompletedAt = &now
		task.UpdatedAt = now

		event, err := domain.NewActivityEvent(task.ID, actorID, domain.ActivityTaskCompleted,
			map[string]string{"completedAt": now.Format(time.RFC3339Nano)}, now)
		if err != nil {
			return NewServiceError(op, "failed to build activity event", err)
		}
		if err := repo.InsertActivityEvent(ctx, event); err != nil {
			return NewServiceError(op, "failed to record activity", err)
		}

		successor, err := s.chainer.OnTaskCompleted(ctx, repo, task, actorID)
		if err != nil {
			return NewServiceError(op, "failed to generate next occurrence", err)
		}

		result = &CompletionResult{Task: task, Successor: successor}
		return nil
	})
	if err != nil {
		level := slog.LevelWarn
		if IsConfigurationError(err) {
			level = slog.LevelError
		}
		log.Log(ctx, level, "task completion failed",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	attrs := []any{slog.String("task_id", taskID.String()), slog.Bool("already_completed", result.AlreadyCompleted)}
	if result.Successor != nil {
		attrs = append(attrs, slog.String("successor_id", result.Successor.ID.String()))
	}
	log.Info("task completed", attrs...)
	return result, nil
}

// AddComment implements TaskService.AddComment.
func (s *taskServiceImpl) AddComment(
	ctx context.Context,
	actorID, taskID uuid.UUID,
	body string,
) (*CommentResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	const op = "add_comment"

	var result *CommentResult
	err := s.repo.WithinTx(ctx, func(ctx context.Context, repo store.Repository) error {
		task, err := loadTask(ctx, repo, taskID)
		if err != nil {
			return NewServiceError(op, "failed to load task", err)
		}
		project, _, err := projectAccess(ctx, repo, task.ProjectID, actorID)
		if err != nil {
			return NewServiceError(op, "project access denied", err)
		}

		now := s.clock().UTC()
		comment, err := domain.NewComment(task.ID, actorID, body, now)
		if err != nil {
			return NewServiceError(op, "invalid comment", err)
		}
		if err := repo.InsertComment(ctx, comment); err != nil {
			return NewServiceError(op, "failed to insert comment", err)
		}

		event, err := domain.NewActivityEvent(task.ID, actorID, domain.ActivityCommentAdded,
			map[string]any{
				"commentId":  comment.ID.String(),
				"bodyLength": utf8.RuneCountInString(comment.Body),
			}, now)
		if err != nil {
			return NewServiceError(op, "failed to build activity event", err)
		}
		if err := repo.InsertActivityEvent(ctx, event); err != nil {
			return NewServiceError(op, "failed to record activity", err)
		}

		var mentioned []uuid.UUID
		if strings.Contains(comment.Body, "@") {
			mentioned, err = mention.ResolveMentioned(ctx, repo, project.WorkspaceID, comment.Body, actorID)
			if err != nil {
				return NewServiceError(op, "failed to resolve mentions", err)
			}
		}

		recipients := mention.PlanCommentNotifications(comment.Body, actorID, task.AssigneeID, mentioned)
		notifications := make([]domain.Notification, 0, len(recipients))
		for _, r := range recipients {
			n, err := domain.NewNotification(project.WorkspaceID, r.UserID, r.Type, domain.EntityComment,
				comment.ID, map[string]string{
					"taskId":    task.ID.String(),
					"commentId": comment.ID.String(),
					"actorId":   actorID.String(),
				}, now)
			if err != nil {
				return NewServiceError(op, "failed to build notification", err)
			}
			notifications = append(notifications, n)
		}
		if len(notifications) > 0 {
			if err := repo.InsertNotifications(ctx, notifications); err != nil {
				return NewServiceError(op, "failed to insert notifications", err)
			}
		}

		result = &CommentResult{Comment: comment, Notifications: notifications}
		return nil
	})
	if err != nil {
		log.Warn("comment creation failed",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	log.Info("comment added",
		slog.String("task_id", taskID.String()),
		slog.String("comment_id", result.Comment.ID.String()),
		slog.Int("notifications", len(result.Notifications)))
	return result, nil
}
