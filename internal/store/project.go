package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// ProjectStore defines read operations on projects and their workflow
// configuration. The "first" lookups order by sort_order ascending and
// return an error wrapping ErrNotFound when nothing matches.
type ProjectStore interface {
	GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// GetProjectsByIDs returns the projects that exist among ids. Missing
	// ids are silently absent from the result.
	GetProjectsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Project, error)

	// GetStatusesByIDs returns the statuses that exist among ids.
	GetStatusesByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.ProjectStatus, error)

	GetFirstStatus(ctx context.Context, projectID uuid.UUID) (*domain.ProjectStatus, error)
	GetFirstOpenStatus(ctx context.Context, projectID uuid.UUID) (*domain.ProjectStatus, error)
	GetFirstDoneStatus(ctx context.Context, projectID uuid.UUID) (*domain.ProjectStatus, error)
	GetFirstSection(ctx context.Context, projectID uuid.UUID) (*domain.ProjectSection, error)

	// GetSection returns ErrSectionNotFound when no section has id.
	GetSection(ctx context.Context, id uuid.UUID) (*domain.ProjectSection, error)
}

// ProjectWriter provisions projects and their workflow configuration.
type ProjectWriter interface {
	CreateProject(ctx context.Context, project *domain.Project) error
	CreateStatus(ctx context.Context, status *domain.ProjectStatus) error
	CreateSection(ctx context.Context, section *domain.ProjectSection) error
}
