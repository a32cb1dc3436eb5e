package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
)

// JobTokenHeader carries the runner token on job endpoints.
const JobTokenHeader = "x-job-token"

// Job token responses.
const (
	msgJobTokenNotConfigured = "job runner token is not configured"
	msgUnauthorized          = "Unauthorized"
)

// JobTokenChecker verifies the operator credential for job endpoints.
// auth.JobTokenVerifier implements it.
type JobTokenChecker interface {
	Configured() bool
	Verify(provided string) error
}

// RequireJobToken guards operator endpoints. The token is read from the
// x-job-token header, falling back to an Authorization bearer token. With no
// token configured every request gets 503.
func RequireJobToken(checker JobTokenChecker, base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	base = base.With(slog.String("component", "job_token_middleware"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromContextOrDefault(r.Context(), base)

			if checker == nil || !checker.Configured() {
				log.Error("job endpoint called without a configured runner token",
					slog.String("path", r.URL.Path))
				shared.RespondWithJSON(w, r, http.StatusServiceUnavailable,
					shared.ErrorResponse{Error: msgJobTokenNotConfigured})
				return
			}

			err := checker.Verify(providedJobToken(r))
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, auth.ErrJobTokenNotConfigured):
				shared.RespondWithJSON(w, r, http.StatusServiceUnavailable,
					shared.ErrorResponse{Error: msgJobTokenNotConfigured})
			default:
				log.Warn("rejected job request", slog.String("path", r.URL.Path))
				shared.RespondWithJSON(w, r, http.StatusUnauthorized,
					shared.ErrorResponse{Error: msgUnauthorized})
			}
		})
	}
}

func providedJobToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(JobTokenHeader)); token != "" {
		return token
	}
	if token, problem := bearerToken(r); problem == "" {
		return token
	}
	return ""
}
