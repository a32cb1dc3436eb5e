package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/jobs"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service/notify"
)

// JobRunner executes a job synchronously and returns its JSON result.
// jobs.Runner implements it.
type JobRunner interface {
	RunNow(ctx context.Context, job jobs.Job) (json.RawMessage, error)
}

// JobHandler serves operator triggered jobs.
type JobHandler struct {
	runner    JobRunner
	newDueJob func() jobs.Job
	logger    *slog.Logger
}

// NewJobHandler creates a JobHandler. newDueJob builds the due notification
// job for each request.
func NewJobHandler(runner JobRunner, newDueJob func() jobs.Job, logger *slog.Logger) *JobHandler {
	if runner == nil || newDueJob == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("runner and job constructor cannot be nil for JobHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for JobHandler")
	}
	return &JobHandler{
		runner:    runner,
		newDueJob: newDueJob,
		logger:    logger.With(slog.String("component", "job_handler")),
	}
}

// RunDueNotifications handles POST /api/jobs/due-notifications. The caller
// is authenticated by the job token middleware.
func (h *JobHandler) RunDueNotifications(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	job := h.newDueJob()
	raw, err := h.runner.RunNow(r.Context(), job)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate due notifications", err)
		return
	}

	var summary notify.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate due notifications", err)
		return
	}

	log.Info("due notifications generated",
		slog.String("job_id", job.ID().String()),
		slog.Int("scanned", summary.Scanned),
		slog.Int("created", summary.Created),
		slog.Int("skipped", summary.Skipped))
	shared.RespondWithJSON(w, r, http.StatusOK, DueNotificationsResponse{
		OK:         true,
		Scanned:    summary.Scanned,
		Candidates: summary.Candidates,
		Created:    summary.Created,
		Skipped:    summary.Skipped,
	})
}
