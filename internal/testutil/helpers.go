package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avandermeer/stock-ledger-backend/internal/repository"
	"github.com/avandermeer/stock-ledger-backend/internal/service"
)

// MakeID returns a fresh UUID string for test rows.
func MakeID() string {
	return uuid.New().String()
}

// Day returns midnight UTC i days before today. Negative i is the future.
func Day(i int) time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -i)
}

// NewTestLedgerService wires a LedgerService over the test database.
func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()

	return service.NewLedgerService(
		db,
		repository.NewPortfolioRepository(db),
		repository.NewInvestmentRepository(db),
		repository.NewPriceRepository(db),
	)
}

// NewTestListService wires a ListService with the default access checker
// over the test database.
func NewTestListService(t *testing.T, db *sql.DB) *service.ListService {
	t.Helper()

	lists := repository.NewStockListRepository(db)
	return service.NewListService(
		db,
		lists,
		repository.NewListHoldingRepository(db),
		service.NewOwnerOrPublicAccess(lists),
	)
}

// CountRows returns the number of rows matching a condition.
//
// Example: testutil.CountRows(t, db, "investments", "symbol = ?", "AAPL")
func CountRows(t *testing.T, db *sql.DB, table, where string, args ...any) int {
	t.Helper()

	var count int
	//#nosec G202 -- Safe: table and condition come from test code, not user input
	query := "SELECT COUNT(*) FROM " + table + " WHERE " + where
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return count
}
