package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// CreateProjectInput holds the fields of a new project.
type CreateProjectInput struct {
	WorkspaceID uuid.UUID
	Name        string
	Description *string
}

// ProjectResult is a project with its workflow configuration.
type ProjectResult struct {
	Project  *domain.Project
	Workflow domain.Workflow
}

// ProjectService provisions projects.
type ProjectService interface {
	// CreateProject creates a project in a workspace the actor belongs to,
	// seeded with the default statuses and sections.
	CreateProject(ctx context.Context, actorID uuid.UUID, in CreateProjectInput) (*ProjectResult, error)
}

type projectServiceImpl struct {
	repo   store.Repository
	logger *slog.Logger
	clock  func() time.Time
}

// NewProjectService creates a ProjectService. A nil clock uses time.Now.
func NewProjectService(repo store.Repository, logger *slog.Logger, clock func() time.Time) (ProjectService, error) {
	if repo == nil {
		return nil, errors.New("repo cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = time.Now
	}
	return &projectServiceImpl{
		repo:   repo,
		logger: logger.With(slog.String("component", "project_service")),
		clock:  clock,
	}, nil
}

// CreateProject implements ProjectService.CreateProject.
func (s *projectServiceImpl) CreateProject(
	ctx context.Context,
	actorID uuid.UUID,
	in CreateProjectInput,
) (*ProjectResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	const op = "create_project"

	now := s.clock().UTC()
	project, err := domain.NewProject(in.WorkspaceID, actorID, in.Name, in.Description, now)
	if err != nil {
		return nil, NewServiceError(op, "invalid project", err)
	}
	workflow := domain.NewDefaultWorkflow(project.ID, now)
	if err := workflow.Validate(project.ID); err != nil {
		return nil, NewServiceError(op, "invalid workflow", err)
	}

	err = s.repo.WithinTx(ctx, func(ctx context.Context, repo store.Repository) error {
		members, err := repo.ListWorkspaceMembers(ctx, in.WorkspaceID)
		if err != nil {
			return NewServiceError(op, "failed to read members", err)
		}
		if !isMember(members, actorID) {
			return NewServiceError(op, "workspace access denied", ErrNotMember)
		}

		if err := repo.CreateProject(ctx, project); err != nil {
			return NewServiceError(op, "failed to insert project", err)
		}
		for i := range workflow.Statuses {
			if err := repo.CreateStatus(ctx, &workflow.Statuses[i]); err != nil {
				return NewServiceError(op, "failed to insert status", err)
			}
		}
		for i := range workflow.Sections {
			if err := repo.CreateSection(ctx, &workflow.Sections[i]); err != nil {
				return NewServiceError(op, "failed to insert section", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Warn("project creation failed",
			slog.String("error", err.Error()),
			slog.String("workspace_id", in.WorkspaceID.String()))
		return nil, err
	}

	log.Info("project created",
		slog.String("project_id", project.ID.String()),
		slog.String("workspace_id", project.WorkspaceID.String()),
		slog.Int("statuses", len(workflow.Statuses)),
		slog.Int("sections", len(workflow.Sections)))
	return &ProjectResult{Project: project, Workflow: workflow}, nil
}
