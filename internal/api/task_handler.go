package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// TaskHandler serves the task endpoints.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("task service cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), userID, req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("project_id", task.ProjectID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// CompleteTask handles POST /api/tasks/{id}/complete. Completing a task that
// is already completed returns 200 with already_completed set.
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", "Task", log)
	if !ok {
		return
	}

	result, err := h.tasks.CompleteTask(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete task")
		return
	}

	resp := CompleteTaskResponse{
		Task:             taskToResponse(result.Task),
		AlreadyCompleted: result.AlreadyCompleted,
	}
	if result.Successor != nil {
		successor := taskToResponse(result.Successor)
		resp.Successor = &successor
	}

	log.Debug("task completed",
		slog.String("task_id", taskID.String()),
		slog.Bool("already_completed", result.AlreadyCompleted),
		slog.Bool("chained", result.Successor != nil))
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// UpdateTask handles PATCH /api/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", "Task", log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), userID, taskID, req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	log.Debug("task updated", slog.String("task_id", taskID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// MoveTask handles POST /api/tasks/{id}/move.
func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", "Task", log)
	if !ok {
		return
	}

	var req MoveTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.MoveTask(r.Context(), userID, taskID, req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to move task")
		return
	}

	log.Debug("task moved",
		slog.String("task_id", taskID.String()),
		slog.String("status_id", task.StatusID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// AddComment handles POST /api/tasks/{id}/comments.
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", "Task", log)
	if !ok {
		return
	}

	var req AddCommentRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	result, err := h.tasks.AddComment(r.Context(), userID, taskID, req.Body)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add comment")
		return
	}

	c := result.Comment
	log.Debug("comment added",
		slog.String("task_id", taskID.String()),
		slog.String("comment_id", c.ID.String()),
		slog.Int("notifications", len(result.Notifications)))
	shared.RespondWithJSON(w, r, http.StatusCreated, CommentResponse{
		ID:                c.ID.String(),
		TaskID:            c.TaskID.String(),
		UserID:            c.UserID.String(),
		Body:              c.Body,
		CreatedAt:         c.CreatedAt,
		NotificationCount: len(result.Notifications),
	})
}
