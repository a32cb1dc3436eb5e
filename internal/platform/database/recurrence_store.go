package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

type recurrenceRow struct {
	ID          uuid.UUID  `db:"id"`
	WorkspaceID uuid.UUID  `db:"workspace_id"`
	PatternJSON []byte     `db:"pattern_json"`
	Mode        string     `db:"mode"`
	NextRunAt   *time.Time `db:"next_run_at"`
	IsPaused    bool       `db:"is_paused"`
	CreatedBy   uuid.UUID  `db:"created_by"`
	CreatedAt   time.Time  `db:"created_at"`
}

// GetRecurrence implements store.RecurrenceStore.
func (r *Repository) GetRecurrence(ctx context.Context, id uuid.UUID) (*domain.Recurrence, error) {
	var row recurrenceRow
	query := r.rebind(`
		SELECT id, workspace_id, pattern_json, mode, next_run_at, is_paused, created_by, created_at
		FROM recurrences WHERE id = ?
	`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRecurrenceNotFound
		}
		return nil, store.NewStoreError("recurrence", "get", "failed to get recurrence", MapError(err))
	}
	return &domain.Recurrence{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		Pattern:     json.RawMessage(row.PatternJSON),
		Mode:        domain.RecurrenceMode(row.Mode),
		NextRunAt:   row.NextRunAt,
		IsPaused:    row.IsPaused,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
	}, nil
}
