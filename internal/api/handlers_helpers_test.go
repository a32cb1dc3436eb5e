package api_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
)

var now = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// withUser stands in for the JWT middleware. A nil userID leaves the request
// unauthenticated.
func withUser(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID != uuid.Nil {
				r = r.WithContext(shared.WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newTaskRouter(h *api.TaskHandler, inbox *api.InboxHandler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(withUser(userID))
	if h != nil {
		r.Post("/api/tasks", h.CreateTask)
		r.Patch("/api/tasks/{id}", h.UpdateTask)
		r.Post("/api/tasks/{id}/move", h.MoveTask)
		r.Post("/api/tasks/{id}/complete", h.CompleteTask)
		r.Post("/api/tasks/{id}/comments", h.AddComment)
	}
	if inbox != nil {
		r.Get("/api/inbox", inbox.List)
		r.Post("/api/inbox/{id}/read", inbox.MarkRead)
	}
	return r
}

func newProjectRouter(h *api.ProjectHandler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(withUser(userID))
	r.Post("/api/projects", h.CreateProject)
	return r
}

func newJobRequest(header, value string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/due-notifications", nil)
	req.Header.Set(header, value)
	return req
}

func serveRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
