package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

const (
	projectColumns = `id, workspace_id, name, description, created_by, created_at, updated_at`
	statusColumns  = `id, project_id, name, color, sort_order, is_done, created_at`
	sectionColumns = `id, project_id, name, sort_order, created_at`
)

// GetProject implements store.ProjectStore.
func (r *Repository) GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	query := r.rebind(`SELECT ` + projectColumns + ` FROM projects WHERE id = ?`)
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, store.NewStoreError("project", "get", "failed to get project", MapError(err))
	}
	return &project, nil
}

// GetProjectsByIDs implements store.ProjectStore.
func (r *Repository) GetProjectsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	var out []domain.Project
	for _, batch := range chunks(ids, batchSize) {
		query, args, err := r.in(`SELECT `+projectColumns+` FROM projects WHERE id IN (?)`, batch)
		if err != nil {
			return nil, err
		}
		var rows []domain.Project
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			log.Error("failed to look up projects", slog.String("error", err.Error()))
			return nil, store.NewStoreError("project", "list", "failed to look up projects", MapError(err))
		}
		out = append(out, rows...)
	}
	return out, nil
}

// GetStatusesByIDs implements store.ProjectStore.
func (r *Repository) GetStatusesByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.ProjectStatus, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	var out []domain.ProjectStatus
	for _, batch := range chunks(ids, batchSize) {
		query, args, err := r.in(`SELECT `+statusColumns+` FROM project_statuses WHERE id IN (?)`, batch)
		if err != nil {
			return nil, err
		}
		var rows []domain.ProjectStatus
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			log.Error("failed to look up statuses", slog.String("error", err.Error()))
			return nil, store.NewStoreError("project_status", "list", "failed to look up statuses", MapError(err))
		}
		out = append(out, rows...)
	}
	return out, nil
}

// GetFirstStatus implements store.ProjectStore.
func (r *Repository) GetFirstStatus(ctx context.Context, projectID uuid.UUID) (*domain.ProjectStatus, error) {
	return r.firstStatus(ctx, `project_id = ?`, projectID)
}

// GetFirstOpenStatus implements store.ProjectStore.
func (r *Repository) GetFirstOpenStatus(ctx context.Context, projectID uuid.UUID) (*domain.ProjectStatus, error) {
	return r.firstStatus(ctx, `project_id = ? AND is_done = ?`, projectID, false)
}

// GetFirstDoneStatus implements store.ProjectStore.
func (r *Repository) GetFirstDoneStatus(ctx context.Context, projectID uuid.UUID) (*domain.ProjectStatus, error) {
	return r.firstStatus(ctx, `project_id = ? AND is_done = ?`, projectID, true)
}

func (r *Repository) firstStatus(ctx context.Context, where string, args ...any) (*domain.ProjectStatus, error) {
	var status domain.ProjectStatus
	query := r.rebind(`SELECT ` + statusColumns + ` FROM project_statuses WHERE ` + where +
		` ORDER BY sort_order ASC, created_at ASC LIMIT 1`)
	if err := r.db.GetContext(ctx, &status, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStatusNotFound
		}
		return nil, store.NewStoreError("project_status", "get", "failed to get status", MapError(err))
	}
	return &status, nil
}

// GetFirstSection implements store.ProjectStore.
func (r *Repository) GetFirstSection(ctx context.Context, projectID uuid.UUID) (*domain.ProjectSection, error) {
	var section domain.ProjectSection
	query := r.rebind(`SELECT ` + sectionColumns + ` FROM project_sections WHERE project_id = ?
		ORDER BY sort_order ASC, created_at ASC LIMIT 1`)
	if err := r.db.GetContext(ctx, &section, query, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSectionNotFound
		}
		return nil, store.NewStoreError("project_section", "get", "failed to get section", MapError(err))
	}
	return &section, nil
}

// GetSection implements store.ProjectStore.
func (r *Repository) GetSection(ctx context.Context, id uuid.UUID) (*domain.ProjectSection, error) {
	var section domain.ProjectSection
	query := r.rebind(`SELECT ` + sectionColumns + ` FROM project_sections WHERE id = ?`)
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSectionNotFound
		}
		return nil, store.NewStoreError("project_section", "get", "failed to get section", MapError(err))
	}
	return &section, nil
}
