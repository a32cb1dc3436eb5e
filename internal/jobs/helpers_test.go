package jobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// memStore implements Store in memory for testing.
type memStore struct {
	mu       sync.Mutex
	runs     map[uuid.UUID]*Run
	history  map[uuid.UUID][]Status
	CreateFn func(ctx context.Context, run *Run) error
	UpdateFn func(ctx context.Context, id uuid.UUID, status Status) error
	ListFn   func(ctx context.Context, status Status) ([]Run, error)
}

func newMemStore() *memStore {
	return &memStore{
		runs:    map[uuid.UUID]*Run{},
		history: map[uuid.UUID][]Status{},
	}
}

func (s *memStore) CreateRun(ctx context.Context, run *Run) error {
	if s.CreateFn != nil {
		if err := s.CreateFn(ctx, run); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *run
	s.runs[run.ID] = &cp
	s.history[run.ID] = append(s.history[run.ID], run.Status)
	return nil
}

func (s *memStore) UpdateRunStatus(
	ctx context.Context,
	id uuid.UUID,
	status Status,
	result json.RawMessage,
	errMsg string,
	at time.Time,
) error {
	if s.UpdateFn != nil {
		if err := s.UpdateFn(ctx, id, status); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return store.ErrJobRunNotFound
	}
	run.Status = status
	run.UpdatedAt = at
	if len(result) > 0 {
		run.Result = result
	}
	if errMsg != "" {
		run.ErrorMessage = errMsg
	}
	s.history[id] = append(s.history[id], status)
	return nil
}

func (s *memStore) ListRunsByStatus(ctx context.Context, status Status) ([]Run, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Run
	for _, run := range s.runs {
		if run.Status == status {
			out = append(out, *run)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, store.ErrJobRunNotFound
	}
	cp := *run
	return &cp, nil
}

func (s *memStore) statuses(id uuid.UUID) []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Status(nil), s.history[id]...)
}

func (s *memStore) seed(run Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = &run
}

// funcJob is a Job backed by a function.
type funcJob struct {
	id      uuid.UUID
	payload []byte
	fn      func(ctx context.Context) (any, error)
}

func newFuncJob(fn func(ctx context.Context) (any, error)) *funcJob {
	return &funcJob{id: uuid.New(), payload: []byte(`{"k":"v"}`), fn: fn}
}

func (j *funcJob) ID() uuid.UUID   { return j.id }
func (j *funcJob) Type() string    { return "func" }
func (j *funcJob) Payload() []byte { return j.payload }
func (j *funcJob) Execute(ctx context.Context) (any, error) {
	if j.fn == nil {
		return nil, nil
	}
	return j.fn(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
