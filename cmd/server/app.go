package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/jobs"
	"github.com/phrazzld/taskflow-api/internal/platform/database"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/service/notify"
	"github.com/phrazzld/taskflow-api/internal/service/recurring"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// application holds the shared dependencies of the server and the job
// commands, and releases them on cleanup.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB
	clock  func() time.Time

	repo      store.Repository
	jobStore  jobs.Store
	scheduler *notify.Scheduler
	runner    *jobs.Runner

	jwtService     auth.JWTService
	jobVerifier    *auth.JobTokenVerifier
	projectService service.ProjectService
	taskService    service.TaskService
	inboxService   service.InboxService
}

// newApplication wires every component on top of an open database. The
// job runner is created but not started.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		clock:  time.Now,
	}

	repo := database.NewRepository(db, logger)
	app.repo = repo
	app.jobStore = database.NewJobRunStore(db, logger)

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.jobVerifier = auth.NewJobTokenVerifier(cfg.Jobs)
	if !app.jobVerifier.Configured() {
		logger.Warn("job runner token is not configured; job endpoints will return 503")
	}

	window := time.Duration(cfg.Scheduler.DueSoonWindowHours) * time.Hour
	app.scheduler, err = notify.NewScheduler(repo, window, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create due notification scheduler: %w", err)
	}

	app.runner, err = jobs.NewRunner(app.jobStore, jobs.RunnerConfig{
		WorkerCount: cfg.Scheduler.WorkerCount,
		QueueSize:   cfg.Scheduler.QueueSize,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create job runner: %w", err)
	}
	app.runner.Register(jobs.TypeDueNotifications, jobs.DueNotificationFactory(app.scheduler, app.clock))

	app.projectService, err = service.NewProjectService(repo, logger, app.clock)
	if err != nil {
		return nil, fmt.Errorf("failed to create project service: %w", err)
	}
	app.taskService, err = service.NewTaskService(repo, recurring.NewChainer(logger), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}
	app.inboxService, err = service.NewInboxService(repo, logger, app.clock)
	if err != nil {
		return nil, fmt.Errorf("failed to create inbox service: %w", err)
	}

	logger.Info("application initialized",
		slog.Duration("due_soon_window", window),
		slog.Int("worker_count", cfg.Scheduler.WorkerCount))
	return app, nil
}

// newDueJob builds a due notification job that reads the clock when it runs.
func (app *application) newDueJob() jobs.Job {
	return jobs.NewDueNotificationJob(app.scheduler, app.clock, nil, 0)
}

// startBackground starts the job runner and, when an interval is configured,
// the ticker that schedules the due notification scan. The ticker stops when
// ctx is canceled.
func (app *application) startBackground(ctx context.Context) error {
	if err := app.runner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start job runner: %w", err)
	}

	interval := time.Duration(app.config.Scheduler.IntervalMinutes) * time.Minute
	if interval <= 0 {
		app.logger.Info("scheduled due notification scan disabled")
		return nil
	}
	ticker := jobs.NewTicker(app.runner, interval, app.newDueJob, app.logger)
	go ticker.Run(ctx)
	return nil
}

// cleanup stops the job runner and closes the database.
func (app *application) cleanup() {
	if app.runner != nil {
		app.runner.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}

// openApplication loads the database for cfg and wires the application.
// migrate applies pending migrations first.
func openApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (*application, error) {
	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := database.Migrate(ctx, db.DB, cfg.Database.Driver, "up", logger); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}
	app, err := newApplication(cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}
