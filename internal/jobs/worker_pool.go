package jobs

import (
	"context"
	"log/slog"
	"sync"
)

// Handler processes one job taken from the queue.
type Handler func(ctx context.Context, job Job)

// WorkerPool manages a pool of worker goroutines that process jobs from a
// queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	queue       QueueReader
	workerCount int
	handler     Handler
	logger      *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start.
	// If zero or negative, defaults to 1.
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{WorkerCount: 2}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(queue QueueReader, config WorkerPoolConfig, handler Handler, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		queue:       queue,
		workerCount: workerCount,
		handler:     handler,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the workers. Each worker runs until Stop is called or the
// queue channel is closed.
func (p *WorkerPool) Start() {
	p.logger.Info("starting worker pool", "worker_count", p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop signals all workers and waits for in-flight jobs to finish.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)
	ch := p.queue.Channel()
	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return
		case job, ok := <-ch:
			if !ok {
				p.logger.Debug("job channel closed, stopping worker", "worker_id", id)
				return
			}
			p.handler(p.ctx, job)
		}
	}
}
