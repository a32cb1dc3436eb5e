package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// InboxHandler serves the notification inbox.
type InboxHandler struct {
	inbox  service.InboxService
	logger *slog.Logger
}

// NewInboxHandler creates an InboxHandler.
func NewInboxHandler(inbox service.InboxService, logger *slog.Logger) *InboxHandler {
	if inbox == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("inbox service cannot be nil for InboxHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for InboxHandler")
	}
	return &InboxHandler{
		inbox:  inbox,
		logger: logger.With(slog.String("component", "inbox_handler")),
	}
}

// List handles GET /api/inbox. ?unread=1 (or true) limits the result to
// unread notifications.
func (h *InboxHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	unreadOnly := false
	if raw := r.URL.Query().Get("unread"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid unread parameter")
			return
		}
		unreadOnly = v
	}

	items, err := h.inbox.List(r.Context(), userID, unreadOnly)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load inbox")
		return
	}

	resp := InboxResponse{Notifications: make([]NotificationResponse, 0, len(items))}
	for _, n := range items {
		resp.Notifications = append(resp.Notifications, notificationToResponse(n))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// MarkRead handles POST /api/inbox/{id}/read.
func (h *InboxHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, notificationID, ok := handleUserIDAndPathUUID(w, r, "id", "Notification", log)
	if !ok {
		return
	}

	if err := h.inbox.MarkRead(r.Context(), userID, notificationID); err != nil {
		HandleAPIError(w, r, err, "Failed to mark notification read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
