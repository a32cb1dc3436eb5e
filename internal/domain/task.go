package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field limits for tasks.
const (
	MaxTaskTitleLength       = 160
	MaxTaskDescriptionLength = 8000
)

// Priority is the optional urgency of a task.
type Priority string

// Task priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Task validation errors.
var (
	ErrEmptyTaskTitle         = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong       = errors.New("task title is too long")
	ErrTaskDescriptionTooLong = errors.New("task description is too long")
	ErrInvalidPriority        = errors.New("invalid task priority")
	ErrEmptyTaskProjectID     = errors.New("task project ID cannot be empty")
	ErrEmptyTaskStatusID      = errors.New("task status ID cannot be empty")
	ErrEmptyTaskCreatorID     = errors.New("task creator ID cannot be empty")
)

// Task is a unit of work inside a project. A task is open while CompletedAt
// is nil.
type Task struct {
	ID           uuid.UUID  `json:"id"             db:"id"`
	ProjectID    uuid.UUID  `json:"project_id"     db:"project_id"`
	SectionID    *uuid.UUID `json:"section_id"     db:"section_id"`
	StatusID     uuid.UUID  `json:"status_id"      db:"status_id"`
	Title        string     `json:"title"          db:"title"`
	Description  *string    `json:"description"    db:"description"`
	AssigneeID   *uuid.UUID `json:"assignee_id"    db:"assignee_id"`
	CreatorID    uuid.UUID  `json:"creator_id"     db:"creator_id"`
	DueAt        *time.Time `json:"due_at"         db:"due_at"`
	DueTimezone  *string    `json:"due_timezone"   db:"due_timezone"`
	Priority     *Priority  `json:"priority"       db:"priority"`
	ParentTaskID *uuid.UUID `json:"parent_task_id" db:"parent_task_id"`
	RecurrenceID *uuid.UUID `json:"recurrence_id"  db:"recurrence_id"`
	IsToday      bool       `json:"is_today"       db:"is_today"`
	SortOrder    int        `json:"sort_order"     db:"sort_order"`
	CreatedAt    time.Time  `json:"created_at"     db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"     db:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at"   db:"completed_at"`
}

// IsCompleted reports whether the task has been completed.
func (t *Task) IsCompleted() bool {
	return t.CompletedAt != nil
}

// Validate checks the task's required fields and length limits.
func (t *Task) Validate() error {
	if t.ProjectID == uuid.Nil {
		return ErrEmptyTaskProjectID
	}
	if t.StatusID == uuid.Nil {
		return ErrEmptyTaskStatusID
	}
	if t.CreatorID == uuid.Nil {
		return ErrEmptyTaskCreatorID
	}

	title := strings.TrimSpace(t.Title)
	if title == "" {
		return ErrEmptyTaskTitle
	}
	if utf8.RuneCountInString(title) > MaxTaskTitleLength {
		return ErrTaskTitleTooLong
	}

	if t.Description != nil && utf8.RuneCountInString(*t.Description) > MaxTaskDescriptionLength {
		return ErrTaskDescriptionTooLong
	}

	if t.Priority != nil && !t.Priority.Valid() {
		return ErrInvalidPriority
	}

	return nil
}

// DueScanTask is the projection of a task read by the due notification scan.
// DueAt is kept as the stored text so that values which do not parse as a
// timestamp can be skipped rather than failing the scan.
type DueScanTask struct {
	ID          uuid.UUID  `db:"id"`
	ProjectID   uuid.UUID  `db:"project_id"`
	StatusID    uuid.UUID  `db:"status_id"`
	AssigneeID  *uuid.UUID `db:"assignee_id"`
	DueAt       *string    `db:"due_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

var dueLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// DueTime parses the stored due timestamp. It returns false when the task has
// no due date or the value is not a recognisable timestamp. Values without a
// zone are read as UTC.
func (t DueScanTask) DueTime() (time.Time, bool) {
	if t.DueAt == nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(*t.DueAt)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dueLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ScanProjection returns the due scan view of t.
func (t *Task) ScanProjection() DueScanTask {
	p := DueScanTask{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		StatusID:    t.StatusID,
		AssigneeID:  t.AssigneeID,
		CompletedAt: t.CompletedAt,
	}
	if t.DueAt != nil {
		s := t.DueAt.UTC().Format(time.RFC3339Nano)
		p.DueAt = &s
	}
	return p
}
