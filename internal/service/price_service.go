package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avandermeer/stock-ledger-backend/internal/model"
	"github.com/avandermeer/stock-ledger-backend/internal/repository"
)

// BarFetcher is the capability the price service needs from the market data
// client.
type BarFetcher interface {
	DailyBars(ctx context.Context, symbol, rng string) ([]model.PriceBar, error)
}

// PriceService keeps the price_bars table current. It is the only ingest
// path; bars are immutable once stored, so a refresh only ever adds rows.
type PriceService struct {
	bars         *repository.PriceRepository
	investments  *repository.HoldingRepository
	listHoldings *repository.HoldingRepository
	fetcher      BarFetcher
	fetchRange   string
	concurrency  int
}

// NewPriceService creates a PriceService with the provided dependencies.
func NewPriceService(
	bars *repository.PriceRepository,
	investments *repository.HoldingRepository,
	listHoldings *repository.HoldingRepository,
	fetcher BarFetcher,
	fetchRange string,
) *PriceService {
	return &PriceService{
		bars:         bars,
		investments:  investments,
		listHoldings: listHoldings,
		fetcher:      fetcher,
		fetchRange:   fetchRange,
		concurrency:  4,
	}
}

// RefreshSymbol fetches the trailing range of daily bars for one symbol and
// ingests any that are not yet stored.
func (s *PriceService) RefreshSymbol(ctx context.Context, symbol string) error {
	bars, err := s.fetcher.DailyBars(ctx, symbol, s.fetchRange)
	if err != nil {
		return fmt.Errorf("failed to fetch bars for %s: %w", symbol, err)
	}
	return s.bars.InsertBars(ctx, bars)
}

// RefreshAll refreshes every symbol referenced by any portfolio or list,
// with bounded concurrency. One failing symbol fails the run after the
// in-flight fetches finish.
func (s *PriceService) RefreshAll(ctx context.Context) error {
	symbols, err := s.trackedSymbols(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, symbol := range symbols {
		g.Go(func() error {
			return s.RefreshSymbol(gctx, symbol)
		})
	}
	return g.Wait()
}

// History returns a symbol's stored bars within [from, to], ascending.
func (s *PriceService) History(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	return s.bars.GetBarsBetween(ctx, symbol, from, to)
}

// trackedSymbols unions the symbols held by portfolios and lists.
func (s *PriceService) trackedSymbols(ctx context.Context) ([]string, error) {
	invested, err := s.investments.DistinctSymbols(ctx, s.investments.DB())
	if err != nil {
		return nil, err
	}
	listed, err := s.listHoldings.DistinctSymbols(ctx, s.listHoldings.DB())
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(invested)+len(listed))
	symbols := make([]string, 0, len(invested)+len(listed))
	for _, s := range append(invested, listed...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols, nil
}
