package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskflow-api/internal/jobs"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

const jobRunColumns = `id, type, payload, status, result, error_message, created_at, updated_at`

// JobRunStore implements jobs.Store on the job_runs table.
type JobRunStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ jobs.Store = (*JobRunStore)(nil)

// NewJobRunStore creates a JobRunStore. If logger is nil, the default logger
// is used.
func NewJobRunStore(db *sqlx.DB, logger *slog.Logger) *JobRunStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobRunStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_run_store")),
	}
}

type jobRunRow struct {
	ID           uuid.UUID `db:"id"`
	Type         string    `db:"type"`
	Payload      []byte    `db:"payload"`
	Status       string    `db:"status"`
	Result       []byte    `db:"result"`
	ErrorMessage *string   `db:"error_message"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row jobRunRow) toRun() jobs.Run {
	run := jobs.Run{
		ID:        row.ID,
		Type:      row.Type,
		Payload:   json.RawMessage(row.Payload),
		Status:    jobs.Status(row.Status),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if len(row.Result) > 0 {
		run.Result = json.RawMessage(row.Result)
	}
	if row.ErrorMessage != nil {
		run.ErrorMessage = *row.ErrorMessage
	}
	return run
}

// CreateRun implements jobs.Store.
func (s *JobRunStore) CreateRun(ctx context.Context, run *jobs.Run) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payload := run.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	query := s.db.Rebind(`INSERT INTO job_runs (` + jobRunColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.Type, string(payload), string(run.Status),
		nullableJSON(run.Result), nullableString(run.ErrorMessage),
		run.CreatedAt.UTC(), run.UpdatedAt.UTC())
	if err != nil {
		log.Error("failed to insert job run",
			slog.String("error", err.Error()),
			slog.String("job_id", run.ID.String()))
		return store.NewStoreError("job_run", "insert", "failed to insert job run", MapError(err))
	}
	return nil
}

// UpdateRunStatus implements jobs.Store.
func (s *JobRunStore) UpdateRunStatus(
	ctx context.Context,
	id uuid.UUID,
	status jobs.Status,
	result json.RawMessage,
	errMsg string,
	at time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`
		UPDATE job_runs
		SET status = ?,
			result = COALESCE(?, result),
			error_message = COALESCE(?, error_message),
			updated_at = ?
		WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query,
		string(status), nullableJSON(result), nullableString(errMsg), at.UTC(), id)
	if err != nil {
		log.Error("failed to update job run",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return store.NewStoreError("job_run", "update", "failed to update job run", MapError(err))
	}
	return CheckRowsAffected(res, store.ErrJobRunNotFound)
}

// ListRunsByStatus implements jobs.Store.
func (s *JobRunStore) ListRunsByStatus(ctx context.Context, status jobs.Status) ([]jobs.Run, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []jobRunRow
	query := s.db.Rebind(`SELECT ` + jobRunColumns + ` FROM job_runs WHERE status = ? ORDER BY created_at, id`)
	if err := s.db.SelectContext(ctx, &rows, query, string(status)); err != nil {
		log.Error("failed to list job runs",
			slog.String("error", err.Error()),
			slog.String("status", string(status)))
		return nil, store.NewStoreError("job_run", "list", "failed to list job runs", MapError(err))
	}

	runs := make([]jobs.Run, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, row.toRun())
	}
	return runs, nil
}

// GetRun implements jobs.Store.
func (s *JobRunStore) GetRun(ctx context.Context, id uuid.UUID) (*jobs.Run, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var row jobRunRow
	query := s.db.Rebind(`SELECT ` + jobRunColumns + ` FROM job_runs WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobRunNotFound
		}
		log.Error("failed to get job run",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return nil, store.NewStoreError("job_run", "get", "failed to get job run", MapError(err))
	}
	run := row.toRun()
	return &run, nil
}

func nullableJSON(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
