package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// ProjectHandler serves the project endpoints.
type ProjectHandler struct {
	projects service.ProjectService
	logger   *slog.Logger
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(projects service.ProjectService, logger *slog.Logger) *ProjectHandler {
	if projects == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("project service cannot be nil for ProjectHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProjectHandler")
	}
	return &ProjectHandler{
		projects: projects,
		logger:   logger.With(slog.String("component", "project_handler")),
	}
}

// CreateProject handles POST /api/projects.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	result, err := h.projects.CreateProject(r.Context(), userID, req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create project")
		return
	}

	log.Debug("project created", slog.String("project_id", result.Project.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, projectToResponse(result))
}
