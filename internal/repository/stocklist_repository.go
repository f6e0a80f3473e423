package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
)

// StockListRepository provides data access methods for the stock_lists table.
type StockListRepository struct {
	db *sql.DB
}

// NewStockListRepository creates a new StockListRepository with the provided database connection.
func NewStockListRepository(db *sql.DB) *StockListRepository {
	return &StockListRepository{db: db}
}

// DB exposes the underlying handle for read paths outside a transaction.
func (r *StockListRepository) DB() *sql.DB {
	return r.db
}

// Insert creates a new stock list row. Returns apperrors.ErrDuplicateName
// when the owner already has a list with that name.
func (r *StockListRepository) Insert(ctx context.Context, q Querier, l model.StockList) error {
	query := `
		INSERT INTO stock_lists (id, owner, name, private, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		l.ID,
		l.Owner,
		l.Name,
		l.Private,
		l.CreatedAt.UTC().Format(time.RFC3339),
	)
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("failed to insert stock list: %w", err)
	}
	return nil
}

// Get retrieves a single stock list by owner and name.
func (r *StockListRepository) Get(ctx context.Context, q Querier, owner, name string) (model.StockList, error) {
	query := `
		SELECT id, owner, name, private, created_at
		FROM stock_lists
		WHERE owner = ? AND name = ?
	`
	var (
		l            model.StockList
		createdAtStr string
	)
	err := q.QueryRowContext(ctx, query, owner, name).Scan(
		&l.ID,
		&l.Owner,
		&l.Name,
		&l.Private,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.StockList{}, apperrors.ErrListNotFound
	}
	if err != nil {
		return model.StockList{}, fmt.Errorf("failed to query stock list: %w", err)
	}
	if l.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.StockList{}, err
	}
	return l, nil
}

// ListByOwner retrieves all stock lists belonging to an owner, ordered by name.
func (r *StockListRepository) ListByOwner(ctx context.Context, q Querier, owner string) ([]model.StockList, error) {
	query := `
		SELECT id, owner, name, private, created_at
		FROM stock_lists
		WHERE owner = ?
		ORDER BY name ASC
	`
	rows, err := q.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock_lists table: %w", err)
	}
	defer rows.Close()

	lists := []model.StockList{}
	for rows.Next() {
		var (
			l            model.StockList
			createdAtStr string
		)
		if err := rows.Scan(&l.ID, &l.Owner, &l.Name, &l.Private, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan stock_lists table results: %w", err)
		}
		if l.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock_lists table: %w", err)
	}

	return lists, nil
}

// SetVisibility flips the private flag of an existing list.
func (r *StockListRepository) SetVisibility(ctx context.Context, q Querier, owner, name string, private bool) error {
	query := `
		UPDATE stock_lists SET private = ? WHERE owner = ? AND name = ?
	`
	res, err := q.ExecContext(ctx, query, private, owner, name)
	if err != nil {
		return fmt.Errorf("failed to update stock list visibility: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrListNotFound
	}
	return nil
}

// Delete removes a stock list and, via foreign key cascade, its holdings.
// Deleting a missing list is not an error.
func (r *StockListRepository) Delete(ctx context.Context, q Querier, owner, name string) error {
	query := `
		DELETE FROM stock_lists WHERE owner = ? AND name = ?
	`
	if _, err := q.ExecContext(ctx, query, owner, name); err != nil {
		return fmt.Errorf("failed to delete stock list: %w", err)
	}
	return nil
}
