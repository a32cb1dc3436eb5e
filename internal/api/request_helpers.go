package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/redact"
)

// requireUserID returns the authenticated user, writing a 401 when the auth
// middleware did not set one.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// requirePathUUID parses the named chi URL parameter, writing a 400 when it
// is missing or malformed. label names the resource in the message.
func requirePathUUID(
	w http.ResponseWriter,
	r *http.Request,
	param, label string,
	log *slog.Logger,
) (uuid.UUID, bool) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, label+" ID is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Warn("invalid path parameter", slog.String("param_name", param), slog.String("value", raw))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// handleUserIDAndPathUUID combines requireUserID and requirePathUUID.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	param, label string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	pathID, ok := requirePathUUID(w, r, param, label, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, pathID, true
}

// decodeAndValidate reads the JSON body into dst and validates it, writing
// a 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, log *slog.Logger) bool {
	if err := shared.DecodeJSON(r, dst); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(dst); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}
