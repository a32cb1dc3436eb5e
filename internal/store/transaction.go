package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// TxFn runs inside a transaction opened by RunInTransaction.
type TxFn func(ctx context.Context, tx *sqlx.Tx) error

// RunInTransaction runs fn in a transaction on db. It commits when fn
// returns nil and rolls back when fn returns an error or panics; a panic is
// re-raised after the rollback. Commit failures wrap ErrTransactionFailed.
func RunInTransaction(ctx context.Context, db *sqlx.DB, fn TxFn) (err error) {
	log := logger.FromContextOrDefault(ctx, slog.Default()).With(slog.String("component", "transaction"))

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback after panic failed", slog.String("error", rbErr.Error()))
		}
		// ALLOW-PANIC: the caller's panic is re-raised once the transaction is closed
		panic(p)
	}()

	if fnErr := fn(ctx, tx); fnErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback failed",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("error", fnErr.Error()))
			return errors.Join(fnErr, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return fnErr
	}

	if cErr := tx.Commit(); cErr != nil {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, cErr)
	}
	return nil
}
