package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolios table.
// Mutating methods take a Querier so the ledger service can run them inside
// one transaction together with the holding mutations they belong to.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// DB exposes the underlying handle for read paths outside a transaction.
func (r *PortfolioRepository) DB() *sql.DB {
	return r.db
}

// Insert creates a new portfolio row. Returns apperrors.ErrDuplicateName when
// the owner already has a portfolio with that name.
func (r *PortfolioRepository) Insert(ctx context.Context, q Querier, p model.Portfolio) error {
	query := `
		INSERT INTO portfolios (id, owner, name, cash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		p.ID,
		p.Owner,
		p.Name,
		p.Cash.String(),
		p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// Get retrieves a single portfolio by owner and name.
func (r *PortfolioRepository) Get(ctx context.Context, q Querier, owner, name string) (model.Portfolio, error) {
	query := `
		SELECT id, owner, name, cash, created_at
		FROM portfolios
		WHERE owner = ? AND name = ?
	`
	return r.scanPortfolio(q.QueryRowContext(ctx, query, owner, name))
}

// ListByOwner retrieves all portfolios belonging to an owner, ordered by name.
// Returns an empty slice if the owner has none.
func (r *PortfolioRepository) ListByOwner(ctx context.Context, q Querier, owner string) ([]model.Portfolio, error) {
	query := `
		SELECT id, owner, name, cash, created_at
		FROM portfolios
		WHERE owner = ?
		ORDER BY name ASC
	`
	rows, err := q.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		var (
			p                     model.Portfolio
			cashStr, createdAtStr string
		)
		if err := rows.Scan(&p.ID, &p.Owner, &p.Name, &cashStr, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan portfolios table results: %w", err)
		}
		if p.Cash, err = decimal.NewFromString(cashStr); err != nil {
			return nil, fmt.Errorf("failed to parse cash balance: %w", err)
		}
		if p.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios table: %w", err)
	}

	return portfolios, nil
}

// UpdateCash sets the cash balance of a portfolio. Callers compute the new
// balance inside the same transaction that read the old one.
func (r *PortfolioRepository) UpdateCash(ctx context.Context, q Querier, owner, name string, cash decimal.Decimal) error {
	query := `
		UPDATE portfolios SET cash = ? WHERE owner = ? AND name = ?
	`
	res, err := q.ExecContext(ctx, query, cash.String(), owner, name)
	if err != nil {
		return fmt.Errorf("failed to update portfolio cash: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrPortfolioNotFound
	}
	return nil
}

// Delete removes a portfolio and, via foreign key cascade, its holdings.
// Deleting a missing portfolio is not an error.
func (r *PortfolioRepository) Delete(ctx context.Context, q Querier, owner, name string) error {
	query := `
		DELETE FROM portfolios WHERE owner = ? AND name = ?
	`
	if _, err := q.ExecContext(ctx, query, owner, name); err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	return nil
}

func (r *PortfolioRepository) scanPortfolio(row *sql.Row) (model.Portfolio, error) {
	var (
		p                     model.Portfolio
		cashStr, createdAtStr string
	)
	err := row.Scan(&p.ID, &p.Owner, &p.Name, &cashStr, &createdAtStr)
	if err == sql.ErrNoRows {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio: %w", err)
	}

	if p.Cash, err = decimal.NewFromString(cashStr); err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to parse cash balance: %w", err)
	}
	if p.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.Portfolio{}, err
	}
	return p, nil
}

// NewID returns a fresh row identifier.
func NewID() string {
	return uuid.New().String()
}
