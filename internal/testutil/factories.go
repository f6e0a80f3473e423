package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avandermeer/stock-ledger-backend/internal/model"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithOwner("bob").
//	    WithCash("250.00").
//	    Build(t, db)
type PortfolioBuilder struct {
	ID    string
	Owner string
	Name  string
	Cash  string
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:    MakeID(),
		Owner: "alice",
		Name:  "Test Portfolio",
		Cash:  "1000",
	}
}

// WithOwner sets a custom owner.
func (b *PortfolioBuilder) WithOwner(owner string) *PortfolioBuilder {
	b.Owner = owner
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithCash sets a custom starting cash balance.
func (b *PortfolioBuilder) WithCash(cash string) *PortfolioBuilder {
	b.Cash = cash
	return b
}

// Build inserts the portfolio and returns the model.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	createdAt := time.Now().UTC()
	_, err := db.Exec(
		`INSERT INTO portfolios (id, owner, name, cash, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Owner, b.Name, b.Cash, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to insert test portfolio: %v", err)
	}

	cash, err := decimal.NewFromString(b.Cash)
	if err != nil {
		t.Fatalf("Invalid test cash amount %q: %v", b.Cash, err)
	}

	return model.Portfolio{
		ID:        b.ID,
		Owner:     b.Owner,
		Name:      b.Name,
		Cash:      cash,
		CreatedAt: createdAt,
	}
}

// StockListBuilder provides a fluent interface for creating test lists.
type StockListBuilder struct {
	ID      string
	Owner   string
	Name    string
	Private bool
}

// NewStockList creates a StockListBuilder with sensible defaults.
func NewStockList() *StockListBuilder {
	return &StockListBuilder{
		ID:      MakeID(),
		Owner:   "alice",
		Name:    "Test List",
		Private: true,
	}
}

// WithOwner sets a custom owner.
func (b *StockListBuilder) WithOwner(owner string) *StockListBuilder {
	b.Owner = owner
	return b
}

// WithName sets a custom name.
func (b *StockListBuilder) WithName(name string) *StockListBuilder {
	b.Name = name
	return b
}

// Public marks the list as publicly visible.
func (b *StockListBuilder) Public() *StockListBuilder {
	b.Private = false
	return b
}

// Build inserts the list and returns the model.
func (b *StockListBuilder) Build(t *testing.T, db *sql.DB) model.StockList {
	t.Helper()

	createdAt := time.Now().UTC()
	_, err := db.Exec(
		`INSERT INTO stock_lists (id, owner, name, private, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Owner, b.Name, b.Private, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to insert test stock list: %v", err)
	}

	return model.StockList{
		ID:        b.ID,
		Owner:     b.Owner,
		Name:      b.Name,
		Private:   b.Private,
		CreatedAt: createdAt,
	}
}

// SeedBars inserts one daily bar per close price for a symbol, on
// consecutive dates ending at the most recent weekday-agnostic day. The
// close drives trading and analytics; open/low/high are derived around it.
func SeedBars(t *testing.T, db *sql.DB, symbol string, closes []float64) {
	t.Helper()

	start := time.Now().UTC().AddDate(0, 0, -len(closes))
	for i, close := range closes {
		date := start.AddDate(0, 0, i)
		_, err := db.Exec(
			`INSERT INTO price_bars (id, symbol, date, open, close, low, high, volume)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			MakeID(), symbol, date.Format("2006-01-02"),
			close, close, close*0.99, close*1.01, 10000,
		)
		if err != nil {
			t.Fatalf("Failed to insert test price bar: %v", err)
		}
	}
}

// SeedBarOn inserts a single bar for a symbol on a specific date.
func SeedBarOn(t *testing.T, db *sql.DB, symbol string, date time.Time, close float64) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO price_bars (id, symbol, date, open, close, low, high, volume)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		MakeID(), symbol, date.Format("2006-01-02"),
		close, close, close*0.99, close*1.01, 10000,
	)
	if err != nil {
		t.Fatalf("Failed to insert test price bar: %v", err)
	}
}

// SeedHolding inserts an investment row directly.
func SeedHolding(t *testing.T, db *sql.DB, owner, portfolio, symbol string, shares int64) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO investments (id, owner, portfolio_name, symbol, num_shares) VALUES (?, ?, ?, ?, ?)`,
		MakeID(), owner, portfolio, symbol, shares,
	)
	if err != nil {
		t.Fatalf("Failed to insert test holding: %v", err)
	}
}

// SeedListHolding inserts a list holding row directly.
func SeedListHolding(t *testing.T, db *sql.DB, owner, list, symbol string, shares int64) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO list_holdings (id, list_owner, list_name, symbol, num_shares) VALUES (?, ?, ?, ?, ?)`,
		MakeID(), owner, list, symbol, shares,
	)
	if err != nil {
		t.Fatalf("Failed to insert test list holding: %v", err)
	}
}
