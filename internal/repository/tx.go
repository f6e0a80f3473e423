package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repository methods take a Querier so the same query runs standalone for
// reads or inside a ledger transaction for mutations.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RunInTx executes fn inside a single transaction. The transaction starts in
// immediate mode (see database.Open), so the read of current state and the
// write of new state cannot interleave with another writer. Contention is
// surfaced as apperrors.ErrConflict after the driver's busy timeout.
func RunInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return mapBusy(fmt.Errorf("failed to begin transaction: %w", err))
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return mapBusy(err)
	}

	if err := tx.Commit(); err != nil {
		return mapBusy(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

// mapBusy converts sqlite lock contention into the retryable conflict kind.
// Other errors pass through with their kind intact.
func mapBusy(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "SQLITE_LOCKED") ||
		strings.Contains(msg, "database is locked") {
		return fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
	}
	return err
}
