package database

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// batchSize bounds the rows or IN-list entries sent in one statement so that
// SQLite's bound parameter limit is never reached.
const batchSize = 500

// Repository implements store.Repository on a *sqlx.DB or an open *sqlx.Tx.
type Repository struct {
	db     store.DBTX
	root   *sqlx.DB // nil when the repository is bound to a transaction
	logger *slog.Logger
}

// Ensure Repository implements store.Repository interface
var _ store.Repository = (*Repository)(nil)

// NewRepository creates a Repository on db. If logger is nil, the default
// logger is used.
func NewRepository(db *sqlx.DB, logger *slog.Logger) *Repository {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		root:   db,
		logger: logger.With(slog.String("component", "repository")),
	}
}

// WithinTx implements store.Repository.
func (r *Repository) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, repo store.Repository) error,
) error {
	if r.root == nil {
		return fn(ctx, r)
	}
	return store.RunInTransaction(ctx, r.root, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(ctx, &Repository{db: tx, logger: r.logger})
	})
}

func (r *Repository) rebind(query string) string {
	return r.db.Rebind(query)
}

// in expands IN (?) placeholders and rebinds the result for the driver.
func (r *Repository) in(query string, args ...any) (string, []any, error) {
	q, a, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return r.rebind(q), a, nil
}

func chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for size < len(items) {
		items, out = items[size:], append(out, items[:size])
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
