package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/redact"
)

// Pinger reports database reachability. *sqlx.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// HealthHandler returns a handler for GET /health. With a nil db only the
// process is reported; otherwise an unreachable database yields 503.
func HealthHandler(db Pinger, timeout time.Duration) http.HandlerFunc {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.FromContextOrDefault(r.Context(), slog.Default()).
				Error("health check failed", slog.String("error", redact.Error(err)))
			shared.RespondWithJSON(w, r, http.StatusServiceUnavailable,
				HealthResponse{Status: "unavailable", Database: "unreachable"})
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
	}
}
