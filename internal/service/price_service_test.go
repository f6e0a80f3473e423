package service_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/avandermeer/stock-ledger-backend/internal/model"
	"github.com/avandermeer/stock-ledger-backend/internal/repository"
	"github.com/avandermeer/stock-ledger-backend/internal/service"
	"github.com/avandermeer/stock-ledger-backend/internal/testutil"
)

// recordingFetcher returns one canned bar per symbol and records which
// symbols were fetched.
type recordingFetcher struct {
	mu      sync.Mutex
	fetched []string
}

func (f *recordingFetcher) DailyBars(_ context.Context, symbol, _ string) ([]model.PriceBar, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, symbol)
	f.mu.Unlock()

	return []model.PriceBar{{
		ID:     testutil.MakeID(),
		Symbol: symbol,
		Date:   testutil.Day(1),
		Open:   100,
		Close:  100,
		Low:    99,
		High:   101,
		Volume: 10000,
	}}, nil
}

// TestPriceService_RefreshAll tests the RefreshAll method.
//
// WHY: The scheduled refresh must cover exactly the symbols the system
// still references, across both portfolios and lists, and fetch each one
// once even when it appears in several containers.
func TestPriceService_RefreshAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fetcher := &recordingFetcher{}
	svc := service.NewPriceService(
		repository.NewPriceRepository(db),
		repository.NewInvestmentRepository(db),
		repository.NewListHoldingRepository(db),
		fetcher,
		"1y",
	)

	// AAPL held in two portfolios and one list; MSFT only in a list.
	testutil.NewPortfolio().WithName("Growth").Build(t, db)
	testutil.NewPortfolio().WithName("Income").Build(t, db)
	testutil.NewStockList().WithName("Watchlist").Build(t, db)
	testutil.SeedHolding(t, db, "alice", "Growth", "AAPL", 1)
	testutil.SeedHolding(t, db, "alice", "Income", "AAPL", 2)
	testutil.SeedListHolding(t, db, "alice", "Watchlist", "AAPL", 3)
	testutil.SeedListHolding(t, db, "alice", "Watchlist", "MSFT", 1)

	if err := svc.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll() returned unexpected error: %v", err)
	}

	sort.Strings(fetcher.fetched)
	if len(fetcher.fetched) != 2 || fetcher.fetched[0] != "AAPL" || fetcher.fetched[1] != "MSFT" {
		t.Errorf("Expected one fetch each for AAPL and MSFT, got %v", fetcher.fetched)
	}

	if n := testutil.CountRows(t, db, "price_bars", "symbol = ?", "AAPL"); n != 1 {
		t.Errorf("Expected 1 stored bar for AAPL, got %d", n)
	}
}

// TestPriceService_RefreshSymbol tests the RefreshSymbol method.
//
// WHY: A refresh of an already-current symbol must be idempotent; the
// INSERT OR IGNORE path makes repeat runs cheap no-ops.
func TestPriceService_RefreshSymbol(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fetcher := &recordingFetcher{}
	svc := service.NewPriceService(
		repository.NewPriceRepository(db),
		repository.NewInvestmentRepository(db),
		repository.NewListHoldingRepository(db),
		fetcher,
		"1y",
	)

	for i := 0; i < 2; i++ {
		if err := svc.RefreshSymbol(context.Background(), "AAPL"); err != nil {
			t.Fatalf("RefreshSymbol() round %d failed: %v", i, err)
		}
	}

	if n := testutil.CountRows(t, db, "price_bars", "symbol = ?", "AAPL"); n != 1 {
		t.Errorf("Expected 1 bar after repeated refresh, got %d", n)
	}
}
