package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
)

// PriceSource is the read-only capability the engine needs from price
// storage. Bars must come back ascending by date; a symbol with no bars is
// an empty slice, not an error.
type PriceSource interface {
	GetBars(ctx context.Context, symbol string) ([]model.PriceBar, error)
}

// PairwiseEntry is the computed metric for one unordered symbol pair.
type PairwiseEntry struct {
	SymbolA      string
	SymbolB      string
	Value        float64
	Observations int
}

// ForecastPoint is one forward price estimate.
type ForecastPoint struct {
	Date  time.Time
	Price float64
}

// Engine computes analytics over stored price series. It holds no mutable
// state of its own; every method fetches one snapshot of bars and computes
// over that slice, so concurrent calls need no locking.
type Engine struct {
	prices PriceSource
}

// NewEngine creates an Engine reading from the given price source.
func NewEngine(prices PriceSource) *Engine {
	return &Engine{prices: prices}
}

// SignalsFor computes mean-reversion signals for a symbol. A window of 0
// means DefaultSignalWindow. Returns apperrors.ErrSymbolNotFound for a
// symbol with no bars at all.
func (e *Engine) SignalsFor(ctx context.Context, symbol string, window int) ([]Signal, error) {
	bars, err := e.prices.GetBars(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, apperrors.ErrSymbolNotFound
	}
	return MeanReversionSignal(bars, window)
}

// ForecastFor fits the trend polynomial to a symbol's close history and
// returns horizonDays forward points dated one day after the last bar.
func (e *Engine) ForecastFor(ctx context.Context, symbol string, horizonDays int) ([]ForecastPoint, error) {
	bars, err := e.prices.GetBars(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, apperrors.ErrSymbolNotFound
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	prices, err := PolynomialForecast(closes, horizonDays)
	if err != nil {
		return nil, err
	}

	lastDate := bars[len(bars)-1].Date
	points := make([]ForecastPoint, len(prices))
	for i, p := range prices {
		points[i] = ForecastPoint{
			Date:  lastDate.AddDate(0, 0, i+1),
			Price: p,
		}
	}
	return points, nil
}

// BetaFor computes the beta of a stock against a market symbol over their
// date-aligned close series.
func (e *Engine) BetaFor(ctx context.Context, symbol, marketSymbol string) (float64, error) {
	stock, market, err := e.alignedCloses(ctx, symbol, marketSymbol)
	if err != nil {
		return 0, err
	}
	if len(stock) == 0 {
		return 0, apperrors.ErrInsufficientData
	}
	return Beta(stock, market)
}

// PairwiseMatrix computes the requested metric for every unordered pair of
// symbols over their date-aligned close series. Pairs with no overlapping
// dates are excluded from the result rather than erroring; pairs whose
// metric fails on its own terms (zero variance) are excluded the same way.
// Pairs are computed concurrently, each over its own fetched snapshot.
func (e *Engine) PairwiseMatrix(ctx context.Context, symbols []string, metric PairMetric) ([]PairwiseEntry, error) {
	if metric != MetricCovariance && metric != MetricCorrelation {
		return nil, fmt.Errorf("unknown pair metric %q", metric)
	}

	barsBySymbol := make(map[string][]model.PriceBar, len(symbols))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, symbol := range symbols {
		g.Go(func() error {
			bars, err := e.prices.GetBars(gctx, symbol)
			if err != nil {
				return fmt.Errorf("failed to load bars for %s: %w", symbol, err)
			}
			mu.Lock()
			barsBySymbol[symbol] = bars
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := []PairwiseEntry{}
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			a, b := alignByDate(barsBySymbol[symbols[i]], barsBySymbol[symbols[j]])
			if len(a) == 0 {
				continue
			}

			var (
				value float64
				err   error
			)
			switch metric {
			case MetricCovariance:
				value, err = Covariance(a, b)
			case MetricCorrelation:
				value, err = Correlation(a, b)
			}
			if errors.Is(err, apperrors.ErrZeroVariance) {
				continue
			}
			if err != nil {
				return nil, err
			}

			entries = append(entries, PairwiseEntry{
				SymbolA:      symbols[i],
				SymbolB:      symbols[j],
				Value:        value,
				Observations: len(a),
			})
		}
	}

	return entries, nil
}

func (e *Engine) alignedCloses(ctx context.Context, symbolA, symbolB string) ([]float64, []float64, error) {
	barsA, err := e.prices.GetBars(ctx, symbolA)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load bars for %s: %w", symbolA, err)
	}
	barsB, err := e.prices.GetBars(ctx, symbolB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load bars for %s: %w", symbolB, err)
	}
	a, b := alignByDate(barsA, barsB)
	return a, b, nil
}
