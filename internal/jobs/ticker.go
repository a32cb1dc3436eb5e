package jobs

import (
	"context"
	"log/slog"
	"time"
)

// Submitter queues a job for background execution.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}

// Ticker submits a fresh job on every tick until its context ends.
type Ticker struct {
	submitter Submitter
	interval  time.Duration
	newJob    func() Job
	logger    *slog.Logger
}

// NewTicker creates a Ticker. newJob is called once per tick.
func NewTicker(submitter Submitter, interval time.Duration, newJob func() Job, logger *slog.Logger) *Ticker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ticker{
		submitter: submitter,
		interval:  interval,
		newJob:    newJob,
		logger:    logger.With(slog.String("component", "job_ticker")),
	}
}

// Run blocks, submitting a job every interval, and returns when ctx is done.
// A non-positive interval returns immediately.
func (t *Ticker) Run(ctx context.Context) {
	if t.interval <= 0 {
		t.logger.Info("ticker disabled")
		return
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	t.logger.Info("ticker started", "interval", t.interval.String())

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("ticker stopped")
			return
		case <-ticker.C:
			job := t.newJob()
			if err := t.submitter.Submit(ctx, job); err != nil {
				t.logger.Error("failed to submit scheduled job",
					"job_type", job.Type(),
					"error", err)
				continue
			}
			t.logger.Debug("scheduled job submitted", "job_id", job.ID(), "job_type", job.Type())
		}
	}
}
