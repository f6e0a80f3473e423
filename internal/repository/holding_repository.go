package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avandermeer/stock-ledger-backend/internal/model"
)

// HoldingRepository provides data access for a holdings table: portfolio
// investments or list holdings. Both tables share the (owner, container,
// symbol) -> num_shares shape, so one repository serves both with fixed
// table and column names chosen at construction.
type HoldingRepository struct {
	db           *sql.DB
	table        string
	ownerCol     string
	containerCol string
}

// NewInvestmentRepository creates a HoldingRepository over portfolio investments.
func NewInvestmentRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{
		db:           db,
		table:        "investments",
		ownerCol:     "owner",
		containerCol: "portfolio_name",
	}
}

// NewListHoldingRepository creates a HoldingRepository over list holdings.
func NewListHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{
		db:           db,
		table:        "list_holdings",
		ownerCol:     "list_owner",
		containerCol: "list_name",
	}
}

// DB exposes the underlying handle for read paths outside a transaction.
func (r *HoldingRepository) DB() *sql.DB {
	return r.db
}

// GetShares returns the share count for the triple and whether a row exists.
// An absent row is zero shares, not an error.
func (r *HoldingRepository) GetShares(ctx context.Context, q Querier, owner, container, symbol string) (int64, bool, error) {
	//#nosec G202 -- Safe: table and column names are fixed at construction, not user input
	query := `
		SELECT num_shares FROM ` + r.table + `
		WHERE ` + r.ownerCol + ` = ? AND ` + r.containerCol + ` = ? AND symbol = ?
	`
	var shares int64
	err := q.QueryRowContext(ctx, query, owner, container, symbol).Scan(&shares)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query %s table: %w", r.table, err)
	}
	return shares, true, nil
}

// AddShares credits delta shares to the triple, inserting the row on first
// credit. delta must be positive; decrements go through SetShares/Delete so
// the zero-row invariant stays in one place.
func (r *HoldingRepository) AddShares(ctx context.Context, q Querier, owner, container, symbol string, delta int64) error {
	//#nosec G202 -- Safe: table and column names are fixed at construction, not user input
	query := `
		INSERT INTO ` + r.table + ` (id, ` + r.ownerCol + `, ` + r.containerCol + `, symbol, num_shares)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (` + r.ownerCol + `, ` + r.containerCol + `, symbol)
		DO UPDATE SET num_shares = num_shares + excluded.num_shares
	`
	if _, err := q.ExecContext(ctx, query, NewID(), owner, container, symbol, delta); err != nil {
		return fmt.Errorf("failed to upsert %s row: %w", r.table, err)
	}
	return nil
}

// SetShares overwrites the share count of an existing row. Count must be
// positive; a count reaching zero is a Delete, never a stored zero.
func (r *HoldingRepository) SetShares(ctx context.Context, q Querier, owner, container, symbol string, count int64) error {
	//#nosec G202 -- Safe: table and column names are fixed at construction, not user input
	query := `
		UPDATE ` + r.table + ` SET num_shares = ?
		WHERE ` + r.ownerCol + ` = ? AND ` + r.containerCol + ` = ? AND symbol = ?
	`
	if _, err := q.ExecContext(ctx, query, count, owner, container, symbol); err != nil {
		return fmt.Errorf("failed to update %s row: %w", r.table, err)
	}
	return nil
}

// Delete removes the holding row for the triple.
func (r *HoldingRepository) Delete(ctx context.Context, q Querier, owner, container, symbol string) error {
	//#nosec G202 -- Safe: table and column names are fixed at construction, not user input
	query := `
		DELETE FROM ` + r.table + `
		WHERE ` + r.ownerCol + ` = ? AND ` + r.containerCol + ` = ? AND symbol = ?
	`
	if _, err := q.ExecContext(ctx, query, owner, container, symbol); err != nil {
		return fmt.Errorf("failed to delete %s row: %w", r.table, err)
	}
	return nil
}

// List retrieves all holdings in a container, ordered by symbol.
// Returns an empty slice when the container is empty.
func (r *HoldingRepository) List(ctx context.Context, q Querier, owner, container string) ([]model.Holding, error) {
	//#nosec G202 -- Safe: table and column names are fixed at construction, not user input
	query := `
		SELECT ` + r.ownerCol + `, ` + r.containerCol + `, symbol, num_shares
		FROM ` + r.table + `
		WHERE ` + r.ownerCol + ` = ? AND ` + r.containerCol + ` = ?
		ORDER BY symbol ASC
	`
	rows, err := q.QueryContext(ctx, query, owner, container)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s table: %w", r.table, err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		var h model.Holding
		if err := rows.Scan(&h.Owner, &h.Container, &h.Symbol, &h.Shares); err != nil {
			return nil, fmt.Errorf("failed to scan %s table results: %w", r.table, err)
		}
		holdings = append(holdings, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s table: %w", r.table, err)
	}

	return holdings, nil
}

// DistinctSymbols returns every symbol referenced by any row in the table.
// Used by the price refresh job to know which series to keep current.
func (r *HoldingRepository) DistinctSymbols(ctx context.Context, q Querier) ([]string, error) {
	//#nosec G202 -- Safe: table name is fixed at construction, not user input
	query := `SELECT DISTINCT symbol FROM ` + r.table + ` ORDER BY symbol ASC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s table: %w", r.table, err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan %s table results: %w", r.table, err)
		}
		symbols = append(symbols, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s table: %w", r.table, err)
	}

	return symbols, nil
}
