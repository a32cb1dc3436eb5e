package database

import (
	"context"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Workspaces and memberships are provisioned outside this service; the two
// writers below serve test fixtures. Projects and their workflow are created
// through store.ProjectWriter.

// CreateWorkspace inserts a workspace.
func (r *Repository) CreateWorkspace(ctx context.Context, ws *domain.Workspace) error {
	query := r.rebind(`INSERT INTO workspaces (id, name, icon, created_by, created_at) VALUES (?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, ws.ID, ws.Name, ws.Icon, ws.CreatedBy, ws.CreatedAt.UTC()); err != nil {
		return store.NewStoreError("workspace", "insert", "failed to insert workspace", MapError(err))
	}
	return nil
}

// AddWorkspaceMember inserts a membership row.
func (r *Repository) AddWorkspaceMember(ctx context.Context, m *domain.WorkspaceMember) error {
	query := r.rebind(`INSERT INTO workspace_members (workspace_id, user_id, role, created_at) VALUES (?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, m.WorkspaceID, m.UserID, string(m.Role), m.CreatedAt.UTC()); err != nil {
		return store.NewStoreError("workspace_member", "insert", "failed to insert member", MapError(err))
	}
	return nil
}

// CreateProject implements store.ProjectWriter.
func (r *Repository) CreateProject(ctx context.Context, p *domain.Project) error {
	query := r.rebind(`
		INSERT INTO projects (id, workspace_id, name, description, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.WorkspaceID, p.Name, p.Description, p.CreatedBy, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return store.NewStoreError("project", "insert", "failed to insert project", MapError(err))
	}
	return nil
}

// CreateStatus implements store.ProjectWriter.
func (r *Repository) CreateStatus(ctx context.Context, s *domain.ProjectStatus) error {
	query := r.rebind(`
		INSERT INTO project_statuses (id, project_id, name, color, sort_order, is_done, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ProjectID, s.Name, s.Color, s.SortOrder, s.IsDone, s.CreatedAt.UTC())
	if err != nil {
		return store.NewStoreError("project_status", "insert", "failed to insert status", MapError(err))
	}
	return nil
}

// CreateSection implements store.ProjectWriter.
func (r *Repository) CreateSection(ctx context.Context, s *domain.ProjectSection) error {
	query := r.rebind(`
		INSERT INTO project_sections (id, project_id, name, sort_order, created_at) VALUES (?, ?, ?, ?, ?)
	`)
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.ProjectID, s.Name, s.SortOrder, s.CreatedAt.UTC()); err != nil {
		return store.NewStoreError("project_section", "insert", "failed to insert section", MapError(err))
	}
	return nil
}

// CreateRecurrence inserts a recurrence rule. The pattern is stored as given.
func (r *Repository) CreateRecurrence(ctx context.Context, rec *domain.Recurrence) error {
	query := r.rebind(`
		INSERT INTO recurrences (id, workspace_id, pattern_json, mode, next_run_at, is_paused, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	mode := rec.Mode
	if mode == "" {
		mode = domain.RecurrenceCreateOnComplete
	}
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.WorkspaceID, string(rec.Pattern), string(mode), utcPtr(rec.NextRunAt),
		rec.IsPaused, rec.CreatedBy, rec.CreatedAt.UTC())
	if err != nil {
		return store.NewStoreError("recurrence", "insert", "failed to insert recurrence", MapError(err))
	}
	return nil
}
