package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskflow-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskflow-api/internal/api/middleware"
)

const healthCheckTimeout = 2 * time.Second

// setupRouter creates the HTTP router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.logger)
	projectHandler := api.NewProjectHandler(app.projectService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	inboxHandler := api.NewInboxHandler(app.inboxService, app.logger)
	jobHandler := api.NewJobHandler(app.runner, app.newDueJob, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.With(apiMiddleware.RequireJobToken(app.jobVerifier, app.logger)).
			Post("/jobs/due-notifications", jobHandler.RunDueNotifications)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/projects", projectHandler.CreateProject)

			r.Post("/tasks", taskHandler.CreateTask)
			r.Patch("/tasks/{id}", taskHandler.UpdateTask)
			r.Post("/tasks/{id}/move", taskHandler.MoveTask)
			r.Post("/tasks/{id}/complete", taskHandler.CompleteTask)
			r.Post("/tasks/{id}/comments", taskHandler.AddComment)

			r.Get("/inbox", inboxHandler.List)
			r.Post("/inbox/{id}/read", inboxHandler.MarkRead)
		})
	})

	r.Get("/health", api.HealthHandler(app.db, healthCheckTimeout))

	return r
}
