package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Recovery messages stored on runs that did not finish before a restart.
const (
	msgInterrupted   = "interrupted by restart"
	msgNoFactory     = "no factory registered for job type"
	msgRequeueFailed = "could not be requeued after restart"
)

// ErrRunnerStopped is returned by Submit after Stop.
var ErrRunnerStopped = errors.New("job runner is stopped")

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory queue
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Runner manages background job processing
type Runner struct {
	store     Store
	queue     *Queue
	pool      *WorkerPool
	logger    *slog.Logger
	clock     func() time.Time
	factories map[string]Factory

	mu         sync.RWMutex
	started    bool
	stopped    bool
	errHandler func(job Job, err error)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerClock overrides the clock used for run timestamps.
func WithRunnerClock(clock func() time.Time) RunnerOption {
	return func(r *Runner) { r.clock = clock }
}

// NewRunner creates a new Runner
func NewRunner(store Store, config RunnerConfig, logger *slog.Logger, opts ...RunnerOption) (*Runner, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "job_runner"))

	r := &Runner{
		store:     store,
		queue:     NewQueue(config.QueueSize, logger),
		logger:    logger,
		clock:     time.Now,
		factories: map[string]Factory{},
	}
	r.errHandler = func(job Job, err error) {
		logger.Error("job execution failed",
			"job_id", job.ID(),
			"job_type", job.Type(),
			"error", err)
	}
	r.pool = NewWorkerPool(r.queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, r.process, logger)

	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// SetErrorHandler allows setting a custom error handler function
func (r *Runner) SetErrorHandler(handler func(job Job, err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errHandler = handler
}

// Register installs the factory used to resume pending runs of jobType.
func (r *Runner) Register(jobType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[jobType] = factory
}

func (r *Runner) newRun(job Job, status Status) *Run {
	now := r.clock().UTC()
	payload := job.Payload()
	if len(payload) == 0 {
		payload = []byte(`{}`)
	}
	return &Run{
		ID:        job.ID(),
		Type:      job.Type(),
		Payload:   payload,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Submit persists job as pending and queues it for a worker.
func (r *Runner) Submit(ctx context.Context, job Job) error {
	r.mu.RLock()
	stopped := r.stopped
	r.mu.RUnlock()
	if stopped {
		return ErrRunnerStopped
	}

	if err := r.store.CreateRun(ctx, r.newRun(job, StatusPending)); err != nil {
		return fmt.Errorf("failed to save job run: %w", err)
	}

	if err := r.queue.Enqueue(job); err != nil {
		r.finish(ctx, job, nil, err)
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// RunNow executes job synchronously, recording the run like a queued job,
// and returns the JSON result.
func (r *Runner) RunNow(ctx context.Context, job Job) (json.RawMessage, error) {
	if err := r.store.CreateRun(ctx, r.newRun(job, StatusPending)); err != nil {
		return nil, fmt.Errorf("failed to save job run: %w", err)
	}
	return r.execute(ctx, job)
}

// Start recovers unfinished runs and starts the worker pool.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return errors.New("job runner already started")
	}
	r.started = true
	r.mu.Unlock()

	if err := r.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover job runs: %w", err)
	}
	r.pool.Start()
	return nil
}

// Stop rejects new submissions, closes the queue and waits for workers.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	started := r.started
	r.mu.Unlock()

	r.queue.Close()
	if started {
		r.pool.Stop()
	}
}

// Recover marks runs left processing by a previous process as failed and
// requeues pending runs whose type has a registered factory. Pending runs
// that cannot be rebuilt are failed.
func (r *Runner) Recover(ctx context.Context) error {
	processing, err := r.store.ListRunsByStatus(ctx, StatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to get processing runs: %w", err)
	}
	pending, err := r.store.ListRunsByStatus(ctx, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to get pending runs: %w", err)
	}

	r.logger.Info("recovering unfinished job runs",
		"pending_count", len(pending),
		"processing_count", len(processing))

	now := r.clock().UTC()
	for _, run := range processing {
		if err := r.store.UpdateRunStatus(ctx, run.ID, StatusFailed, nil, msgInterrupted, now); err != nil {
			r.logger.Error("failed to fail interrupted run",
				"job_id", run.ID,
				"job_type", run.Type,
				"error", err)
		}
	}

	r.mu.RLock()
	factories := r.factories
	r.mu.RUnlock()

	for _, run := range pending {
		msg := ""
		factory, ok := factories[run.Type]
		if !ok {
			msg = msgNoFactory
		} else if job, err := factory(run); err != nil {
			msg = fmt.Sprintf("could not rebuild job: %v", err)
		} else if err := r.queue.Enqueue(job); err != nil {
			msg = msgRequeueFailed
		} else {
			r.logger.Info("requeued pending run", "job_id", run.ID, "job_type", run.Type)
			continue
		}

		if err := r.store.UpdateRunStatus(ctx, run.ID, StatusFailed, nil, msg, now); err != nil {
			r.logger.Error("failed to fail pending run",
				"job_id", run.ID,
				"job_type", run.Type,
				"error", err)
		}
	}
	return nil
}

// process is the worker pool handler.
func (r *Runner) process(ctx context.Context, job Job) {
	_, _ = r.execute(ctx, job)
}

func (r *Runner) execute(ctx context.Context, job Job) (json.RawMessage, error) {
	log := r.logger.With("job_id", job.ID(), "job_type", job.Type())
	bookkeeping := context.WithoutCancel(ctx)

	if err := r.store.UpdateRunStatus(bookkeeping, job.ID(), StatusProcessing, nil, "", r.clock().UTC()); err != nil {
		log.Error("failed to update run status to processing", "error", err)
		return nil, fmt.Errorf("failed to start job run: %w", err)
	}

	log.Info("processing job")
	started := time.Now()
	value, err := job.Execute(ctx)

	var result json.RawMessage
	if err == nil && value != nil {
		raw, marshalErr := json.Marshal(value)
		if marshalErr != nil {
			err = fmt.Errorf("failed to encode job result: %w", marshalErr)
		} else {
			result = raw
		}
	}

	r.finish(bookkeeping, job, result, err)
	if err != nil {
		return nil, err
	}
	log.Info("job completed successfully", "duration_ms", time.Since(started).Milliseconds())
	return result, nil
}

func (r *Runner) finish(ctx context.Context, job Job, result json.RawMessage, err error) {
	now := r.clock().UTC()
	if err != nil {
		if updateErr := r.store.UpdateRunStatus(ctx, job.ID(), StatusFailed, nil, err.Error(), now); updateErr != nil {
			r.logger.Error("failed to update run status to failed",
				"job_id", job.ID(),
				"error", updateErr)
		}
		r.mu.RLock()
		handler := r.errHandler
		r.mu.RUnlock()
		if handler != nil {
			handler(job, err)
		}
		return
	}

	if updateErr := r.store.UpdateRunStatus(ctx, job.ID(), StatusCompleted, result, "", now); updateErr != nil {
		r.logger.Error("failed to update run status to completed",
			"job_id", job.ID(),
			"error", updateErr)
	}
}
