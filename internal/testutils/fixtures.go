package testutils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/stretchr/testify/require"
)

// Workspace is a seeded workspace with one project, an open and a done
// status, a section, and two members.
type Workspace struct {
	Workspace  domain.Workspace
	Project    domain.Project
	OpenStatus domain.ProjectStatus
	DoneStatus domain.ProjectStatus
	Section    domain.ProjectSection
	Owner      uuid.UUID
	Member     uuid.UUID
}

// Seeder is implemented by MemoryRepository and by the SQL fixtures helper.
type Seeder interface {
	AddProject(domain.Project)
	AddStatus(domain.ProjectStatus)
	AddSection(domain.ProjectSection)
	AddMember(domain.WorkspaceMember)
}

// NewWorkspace builds a Workspace fixture without persisting it.
func NewWorkspace(now time.Time) Workspace {
	now = now.UTC()
	owner := uuid.New()
	member := uuid.New()
	ws := domain.Workspace{ID: uuid.New(), Name: "Acme", CreatedBy: owner, CreatedAt: now}
	project := domain.Project{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		Name:        "Launch",
		CreatedBy:   owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return Workspace{
		Workspace: ws,
		Project:   project,
		OpenStatus: domain.ProjectStatus{
			ID: uuid.New(), ProjectID: project.ID, Name: "Todo", Color: "#999999", SortOrder: 0, CreatedAt: now,
		},
		DoneStatus: domain.ProjectStatus{
			ID: uuid.New(), ProjectID: project.ID, Name: "Done", Color: "#00aa00", SortOrder: 1, IsDone: true, CreatedAt: now,
		},
		Section: domain.ProjectSection{
			ID: uuid.New(), ProjectID: project.ID, Name: "Backlog", SortOrder: 0, CreatedAt: now,
		},
		Owner:  owner,
		Member: member,
	}
}

// Members returns the fixture's membership rows, owner first.
func (w Workspace) Members() []domain.WorkspaceMember {
	return []domain.WorkspaceMember{
		{WorkspaceID: w.Workspace.ID, UserID: w.Owner, Role: domain.WorkspaceRoleAdmin, CreatedAt: w.Workspace.CreatedAt},
		{WorkspaceID: w.Workspace.ID, UserID: w.Member, Role: domain.WorkspaceRoleMember, CreatedAt: w.Workspace.CreatedAt},
	}
}

// Seed writes the fixture's project rows and members into s.
func (w Workspace) Seed(s Seeder) {
	s.AddProject(w.Project)
	s.AddStatus(w.OpenStatus)
	s.AddStatus(w.DoneStatus)
	s.AddSection(w.Section)
	for _, m := range w.Members() {
		s.AddMember(m)
	}
}

// SeedMemoryWorkspace returns a MemoryRepository seeded with a new Workspace.
func SeedMemoryWorkspace(now time.Time) (*MemoryRepository, Workspace) {
	repo := NewMemoryRepository()
	ws := NewWorkspace(now)
	ws.Seed(repo)
	return repo, ws
}

// TaskOption customises a task built by NewTask.
type TaskOption func(*domain.Task)

// WithAssignee sets the task assignee.
func WithAssignee(id uuid.UUID) TaskOption {
	return func(t *domain.Task) { t.AssigneeID = &id }
}

// WithDueAt sets the due timestamp.
func WithDueAt(due time.Time) TaskOption {
	return func(t *domain.Task) {
		d := due.UTC()
		t.DueAt = &d
	}
}

// WithStatus sets the task status.
func WithStatus(id uuid.UUID) TaskOption {
	return func(t *domain.Task) { t.StatusID = id }
}

// WithProject sets the task project.
func WithProject(id uuid.UUID) TaskOption {
	return func(t *domain.Task) { t.ProjectID = id }
}

// WithCompletedAt marks the task completed.
func WithCompletedAt(at time.Time) TaskOption {
	return func(t *domain.Task) {
		c := at.UTC()
		t.CompletedAt = &c
	}
}

// WithRecurrence links the task to a recurrence.
func WithRecurrence(id uuid.UUID) TaskOption {
	return func(t *domain.Task) { t.RecurrenceID = &id }
}

// WithTitle sets the task title.
func WithTitle(title string) TaskOption {
	return func(t *domain.Task) { t.Title = title }
}

// WithSortOrder sets the task sort position.
func WithSortOrder(order int) TaskOption {
	return func(t *domain.Task) { t.SortOrder = order }
}

// NewTask builds an open task in the fixture project with the first open
// status and section.
func (w Workspace) NewTask(now time.Time, opts ...TaskOption) domain.Task {
	sectionID := w.Section.ID
	t := domain.Task{
		ID:        uuid.New(),
		ProjectID: w.Project.ID,
		SectionID: &sectionID,
		StatusID:  w.OpenStatus.ID,
		Title:     "Write release notes",
		CreatorID: w.Owner,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// NewRecurrence builds a recurrence for pattern in the fixture workspace.
func (w Workspace) NewRecurrence(t *testing.T, pattern any, paused bool, now time.Time) domain.Recurrence {
	t.Helper()

	raw, err := json.Marshal(pattern)
	require.NoError(t, err, "failed to marshal recurrence pattern")
	return domain.Recurrence{
		ID:          uuid.New(),
		WorkspaceID: w.Workspace.ID,
		Pattern:     raw,
		Mode:        domain.RecurrenceCreateOnComplete,
		IsPaused:    paused,
		CreatedBy:   w.Owner,
		CreatedAt:   now.UTC(),
	}
}
