package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// CreateTaskRequest is the body of POST /api/tasks. Omitted optional fields
// take the project's defaults.
type CreateTaskRequest struct {
	ProjectID    uuid.UUID        `json:"project_id"               validate:"required"`
	Title        string           `json:"title"                    validate:"required,max=160"`
	Description  *string          `json:"description,omitempty"    validate:"omitempty,max=8000"`
	StatusID     *uuid.UUID       `json:"status_id,omitempty"`
	SectionID    *uuid.UUID       `json:"section_id,omitempty"`
	AssigneeID   *uuid.UUID       `json:"assignee_id,omitempty"`
	DueAt        *time.Time       `json:"due_at,omitempty"`
	DueTimezone  *string          `json:"due_timezone,omitempty"   validate:"omitempty,timezone"`
	Priority     *domain.Priority `json:"priority,omitempty"       validate:"omitempty,oneof=low medium high"`
	ParentTaskID *uuid.UUID       `json:"parent_task_id,omitempty"`
	RecurrenceID *uuid.UUID       `json:"recurrence_id,omitempty"`
}

func (req CreateTaskRequest) toInput() service.CreateTaskInput {
	return service.CreateTaskInput{
		ProjectID:    req.ProjectID,
		Title:        req.Title,
		Description:  req.Description,
		StatusID:     req.StatusID,
		SectionID:    req.SectionID,
		AssigneeID:   req.AssigneeID,
		DueAt:        req.DueAt,
		DueTimezone:  req.DueTimezone,
		Priority:     req.Priority,
		ParentTaskID: req.ParentTaskID,
		RecurrenceID: req.RecurrenceID,
	}
}

// nullable decodes a JSON field that may be absent, null or a value.
type nullable[T any] struct {
	set   bool
	value *T
}

// UnmarshalJSON is only called for keys present in the body, null included.
func (n *nullable[T]) UnmarshalJSON(data []byte) error {
	n.set = true
	if string(data) == "null" {
		n.value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.value = &v
	return nil
}

func (n nullable[T]) optional() service.Optional[T] {
	return service.Optional[T]{Set: n.set, Value: n.value}
}

// UpdateTaskRequest is the body of PATCH /api/tasks/{id}. Absent fields are
// left unchanged; null clears description, assignee_id, due_at, due_timezone
// and priority.
type UpdateTaskRequest struct {
	Title       nullable[string]          `json:"title"`
	Description nullable[string]          `json:"description"`
	AssigneeID  nullable[uuid.UUID]       `json:"assignee_id"`
	DueAt       nullable[time.Time]       `json:"due_at"`
	DueTimezone nullable[string]          `json:"due_timezone"`
	Priority    nullable[domain.Priority] `json:"priority"`
	IsToday     nullable[bool]            `json:"is_today"`
	SortOrder   nullable[int]             `json:"sort_order"`
}

// Validate checks the supplied fields.
func (req UpdateTaskRequest) Validate() error {
	for _, f := range []struct {
		field   string
		cleared bool
	}{
		{"title", req.Title.set && req.Title.value == nil},
		{"is_today", req.IsToday.set && req.IsToday.value == nil},
		{"sort_order", req.SortOrder.set && req.SortOrder.value == nil},
	} {
		if f.cleared {
			return fieldError{Field: f.field, Reason: "cannot be null"}
		}
	}
	checks := []struct {
		field string
		value any
		tag   string
	}{
		{"title", req.Title.value, "omitempty,min=1,max=160"},
		{"description", req.Description.value, "omitempty,max=8000"},
		{"due_timezone", req.DueTimezone.value, "omitempty,timezone"},
		{"priority", req.Priority.value, "omitempty,oneof=low medium high"},
		{"sort_order", req.SortOrder.value, "omitempty,min=0"},
	}
	for _, c := range checks {
		if err := checkField(c.field, c.value, c.tag); err != nil {
			return err
		}
	}
	return nil
}

func (req UpdateTaskRequest) toInput() service.UpdateTaskInput {
	return service.UpdateTaskInput{
		Title:       req.Title.optional(),
		Description: req.Description.optional(),
		AssigneeID:  req.AssigneeID.optional(),
		DueAt:       req.DueAt.optional(),
		DueTimezone: req.DueTimezone.optional(),
		Priority:    req.Priority.optional(),
		IsToday:     req.IsToday.optional(),
		SortOrder:   req.SortOrder.optional(),
	}
}

// MoveTaskRequest is the body of POST /api/tasks/{id}/move. An absent or null
// section_id removes the task from its section.
type MoveTaskRequest struct {
	StatusID  uuid.UUID  `json:"status_id"            validate:"required"`
	SectionID *uuid.UUID `json:"section_id,omitempty"`
	SortOrder *int       `json:"sort_order"           validate:"required,min=0"`
}

func (req MoveTaskRequest) toInput() service.MoveTaskInput {
	return service.MoveTaskInput{
		StatusID:  req.StatusID,
		SectionID: req.SectionID,
		SortOrder: *req.SortOrder,
	}
}

// CreateProjectRequest is the body of POST /api/projects.
type CreateProjectRequest struct {
	WorkspaceID uuid.UUID `json:"workspace_id"          validate:"required"`
	Name        string    `json:"name"                  validate:"required,min=2,max=100"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
}

func (req CreateProjectRequest) toInput() service.CreateProjectInput {
	return service.CreateProjectInput{
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		Description: req.Description,
	}
}

// AddCommentRequest is the body of POST /api/tasks/{id}/comments.
type AddCommentRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// TaskResponse is the JSON form of a task.
type TaskResponse struct {
	ID           string     `json:"id"`
	ProjectID    string     `json:"project_id"`
	SectionID    *string    `json:"section_id"`
	StatusID     string     `json:"status_id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	AssigneeID   *string    `json:"assignee_id"`
	CreatorID    string     `json:"creator_id"`
	DueAt        *time.Time `json:"due_at"`
	DueTimezone  *string    `json:"due_timezone"`
	Priority     *string    `json:"priority"`
	ParentTaskID *string    `json:"parent_task_id"`
	RecurrenceID *string    `json:"recurrence_id"`
	SortOrder    int        `json:"sort_order"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at"`
}

// CompleteTaskResponse is returned by POST /api/tasks/{id}/complete.
type CompleteTaskResponse struct {
	Task             TaskResponse  `json:"task"`
	Successor        *TaskResponse `json:"successor"`
	AlreadyCompleted bool          `json:"already_completed"`
}

// CommentResponse is returned by POST /api/tasks/{id}/comments.
type CommentResponse struct {
	ID                string    `json:"id"`
	TaskID            string    `json:"task_id"`
	UserID            string    `json:"user_id"`
	Body              string    `json:"body"`
	CreatedAt         time.Time `json:"created_at"`
	NotificationCount int       `json:"notification_count"`
}

// StatusResponse is the JSON form of a project status.
type StatusResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order"`
	IsDone    bool   `json:"is_done"`
}

// SectionResponse is the JSON form of a project section.
type SectionResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// ProjectResponse is returned by POST /api/projects.
type ProjectResponse struct {
	ID          string            `json:"id"`
	WorkspaceID string            `json:"workspace_id"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	CreatedBy   string            `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	Statuses    []StatusResponse  `json:"statuses"`
	Sections    []SectionResponse `json:"sections"`
}

// NotificationResponse is the JSON form of an inbox item.
type NotificationResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Payload    json.RawMessage `json:"payload"`
	ReadAt     *time.Time      `json:"read_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// InboxResponse is returned by GET /api/inbox.
type InboxResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

// DueNotificationsResponse is returned by the due notification job endpoint.
type DueNotificationsResponse struct {
	OK         bool `json:"ok"`
	Scanned    int  `json:"scanned"`
	Candidates int  `json:"candidates"`
	Created    int  `json:"created"`
	Skipped    int  `json:"skipped"`
}

func optionalID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:           task.ID.String(),
		ProjectID:    task.ProjectID.String(),
		SectionID:    optionalID(task.SectionID),
		StatusID:     task.StatusID.String(),
		Title:        task.Title,
		Description:  task.Description,
		AssigneeID:   optionalID(task.AssigneeID),
		CreatorID:    task.CreatorID.String(),
		DueAt:        task.DueAt,
		DueTimezone:  task.DueTimezone,
		ParentTaskID: optionalID(task.ParentTaskID),
		RecurrenceID: optionalID(task.RecurrenceID),
		SortOrder:    task.SortOrder,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
		CompletedAt:  task.CompletedAt,
	}
	if task.Priority != nil {
		p := string(*task.Priority)
		resp.Priority = &p
	}
	return resp
}

func notificationToResponse(n domain.Notification) NotificationResponse {
	payload := n.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	return NotificationResponse{
		ID:         n.ID.String(),
		Type:       string(n.Type),
		EntityType: string(n.EntityType),
		EntityID:   n.EntityID.String(),
		Payload:    payload,
		ReadAt:     n.ReadAt,
		CreatedAt:  n.CreatedAt,
	}
}

func projectToResponse(result *service.ProjectResult) ProjectResponse {
	p := result.Project
	resp := ProjectResponse{
		ID:          p.ID.String(),
		WorkspaceID: p.WorkspaceID.String(),
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   p.CreatedBy.String(),
		CreatedAt:   p.CreatedAt,
		Statuses:    make([]StatusResponse, 0, len(result.Workflow.Statuses)),
		Sections:    make([]SectionResponse, 0, len(result.Workflow.Sections)),
	}
	for _, s := range result.Workflow.Statuses {
		resp.Statuses = append(resp.Statuses, StatusResponse{
			ID: s.ID.String(), Name: s.Name, Color: s.Color, SortOrder: s.SortOrder, IsDone: s.IsDone,
		})
	}
	for _, s := range result.Workflow.Sections {
		resp.Sections = append(resp.Sections, SectionResponse{ID: s.ID.String(), Name: s.Name, SortOrder: s.SortOrder})
	}
	return resp
}
