package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field limits for projects.
const (
	MinProjectNameLength        = 2
	MaxProjectNameLength        = 100
	MaxProjectDescriptionLength = 2000
)

// Project validation errors.
var (
	ErrProjectNameTooShort       = errors.New("project name is too short")
	ErrProjectNameTooLong        = errors.New("project name is too long")
	ErrProjectDescriptionTooLong = errors.New("project description is too long")
	ErrEmptyProjectWorkspaceID   = errors.New("project workspace ID cannot be empty")
	ErrEmptyProjectCreatorID     = errors.New("project creator ID cannot be empty")
	ErrProjectWithoutDoneStatus  = errors.New("project workflow has no done status")
	ErrProjectWithoutOpenStatus  = errors.New("project workflow has no open status")
	ErrProjectStatusNameEmpty    = errors.New("project status name cannot be empty")
	ErrProjectSectionNameEmpty   = errors.New("project section name cannot be empty")
	ErrWorkflowProjectMismatch   = errors.New("workflow entry belongs to another project")
)

// Project groups tasks inside a workspace.
type Project struct {
	ID          uuid.UUID `json:"id"           db:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id" db:"workspace_id"`
	Name        string    `json:"name"         db:"name"`
	Description *string   `json:"description"  db:"description"`
	CreatedBy   uuid.UUID `json:"created_by"   db:"created_by"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"   db:"updated_at"`
}

// NewProject creates a validated project with a fresh ID. The name is trimmed.
func NewProject(workspaceID, createdBy uuid.UUID, name string, description *string, now time.Time) (*Project, error) {
	now = now.UTC()
	p := &Project{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the project's required fields and length limits.
func (p *Project) Validate() error {
	if p.WorkspaceID == uuid.Nil {
		return ErrEmptyProjectWorkspaceID
	}
	if p.CreatedBy == uuid.Nil {
		return ErrEmptyProjectCreatorID
	}
	n := utf8.RuneCountInString(strings.TrimSpace(p.Name))
	if n < MinProjectNameLength {
		return ErrProjectNameTooShort
	}
	if n > MaxProjectNameLength {
		return ErrProjectNameTooLong
	}
	if p.Description != nil && utf8.RuneCountInString(*p.Description) > MaxProjectDescriptionLength {
		return ErrProjectDescriptionTooLong
	}
	return nil
}

// ProjectStatus is one column of a project's workflow. Statuses are ordered
// by SortOrder; IsDone marks terminal statuses.
type ProjectStatus struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id"`
	Name      string    `json:"name"       db:"name"`
	Color     string    `json:"color"      db:"color"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	IsDone    bool      `json:"is_done"    db:"is_done"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ProjectSection is an optional grouping of tasks inside a project.
type ProjectSection struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id"`
	Name      string    `json:"name"       db:"name"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StatusTemplate describes a status seeded into every new project.
type StatusTemplate struct {
	Name   string
	Color  string
	IsDone bool
}

// DefaultStatuses is the workflow a new project starts with, in order.
var DefaultStatuses = []StatusTemplate{
	{Name: "To do", Color: "#6e7781"},
	{Name: "Doing", Color: "#1565c0"},
	{Name: "Waiting", Color: "#b66a00"},
	{Name: "Done", Color: "#1b7f4b", IsDone: true},
}

// DefaultSections are the sections a new project starts with, in order.
var DefaultSections = []string{"Backlog", "This Week", "In Review"}

// Workflow is the status and section configuration of a project.
type Workflow struct {
	Statuses []ProjectStatus
	Sections []ProjectSection
}

// NewDefaultWorkflow builds the default statuses and sections for projectID.
// Sort orders follow the template order starting at 0.
func NewDefaultWorkflow(projectID uuid.UUID, now time.Time) Workflow {
	now = now.UTC()
	wf := Workflow{
		Statuses: make([]ProjectStatus, 0, len(DefaultStatuses)),
		Sections: make([]ProjectSection, 0, len(DefaultSections)),
	}
	for i, tmpl := range DefaultStatuses {
		wf.Statuses = append(wf.Statuses, ProjectStatus{
			ID:        uuid.New(),
			ProjectID: projectID,
			Name:      tmpl.Name,
			Color:     tmpl.Color,
			SortOrder: i,
			IsDone:    tmpl.IsDone,
			CreatedAt: now,
		})
	}
	for i, name := range DefaultSections {
		wf.Sections = append(wf.Sections, ProjectSection{
			ID:        uuid.New(),
			ProjectID: projectID,
			Name:      name,
			SortOrder: i,
			CreatedAt: now,
		})
	}
	return wf
}

// Validate checks that the workflow can serve task creation, completion and
// recurrence: at least one open and one done status, every entry named and
// attached to projectID.
func (wf Workflow) Validate(projectID uuid.UUID) error {
	var open, done bool
	for _, s := range wf.Statuses {
		if strings.TrimSpace(s.Name) == "" {
			return ErrProjectStatusNameEmpty
		}
		if s.ProjectID != projectID {
			return ErrWorkflowProjectMismatch
		}
		if s.IsDone {
			done = true
		} else {
			open = true
		}
	}
	if !open {
		return ErrProjectWithoutOpenStatus
	}
	if !done {
		return ErrProjectWithoutDoneStatus
	}
	for _, s := range wf.Sections {
		if strings.TrimSpace(s.Name) == "" {
			return ErrProjectSectionNameEmpty
		}
		if s.ProjectID != projectID {
			return ErrWorkflowProjectMismatch
		}
	}
	return nil
}
