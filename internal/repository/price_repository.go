package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
)

// PriceRepository provides read and ingest access to the price_bars table.
// Bars are immutable: ingest never updates an existing (symbol, date) row.
// The analytics engine and the ledger's trade pricing both read through this
// repository and never write outside InsertBars.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// GetBars retrieves all bars for a symbol ordered ascending by date.
// Returns an empty slice when the symbol has no bars.
func (r *PriceRepository) GetBars(ctx context.Context, symbol string) ([]model.PriceBar, error) {
	query := `
		SELECT id, symbol, date, open, close, low, high, volume
		FROM price_bars
		WHERE symbol = ?
		ORDER BY date ASC
	`
	return r.queryBars(ctx, query, symbol)
}

// GetBarsBetween retrieves bars for a symbol within [from, to], ascending.
func (r *PriceRepository) GetBarsBetween(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	query := `
		SELECT id, symbol, date, open, close, low, high, volume
		FROM price_bars
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`
	return r.queryBars(ctx, query, symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// LatestClose returns the close price of the most recent bar at or before
// asOf. Returns apperrors.ErrSymbolNotFound when no such bar exists.
func (r *PriceRepository) LatestClose(ctx context.Context, symbol string, asOf time.Time) (float64, error) {
	query := `
		SELECT close
		FROM price_bars
		WHERE symbol = ? AND date <= ?
		ORDER BY date DESC
		LIMIT 1
	`
	var close float64
	err := r.db.QueryRowContext(ctx, query, symbol, asOf.Format("2006-01-02")).Scan(&close)
	if err == sql.ErrNoRows {
		return 0, apperrors.ErrSymbolNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query price_bars table: %w", err)
	}
	return close, nil
}

// InsertBars ingests bars, silently skipping any (symbol, date) already
// present. Existing bars are never modified.
func (r *PriceRepository) InsertBars(ctx context.Context, bars []model.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT OR IGNORE INTO price_bars (id, symbol, date, open, close, low, high, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, b := range bars {
		id := b.ID
		if id == "" {
			id = NewID()
		}
		_, err := r.db.ExecContext(ctx, query,
			id,
			b.Symbol,
			b.Date.Format("2006-01-02"),
			b.Open,
			b.Close,
			b.Low,
			b.High,
			b.Volume,
		)
		if err != nil {
			return fmt.Errorf("failed to insert price bar: %w", err)
		}
	}
	return nil
}

// Symbols returns every symbol with at least one bar, ordered ascending.
func (r *PriceRepository) Symbols(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM price_bars ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_bars table: %w", err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan price_bars table results: %w", err)
		}
		symbols = append(symbols, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_bars table: %w", err)
	}

	return symbols, nil
}

func (r *PriceRepository) queryBars(ctx context.Context, query string, args ...any) ([]model.PriceBar, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_bars table: %w", err)
	}
	defer rows.Close()

	bars := []model.PriceBar{}
	for rows.Next() {
		var (
			b       model.PriceBar
			dateStr string
		)
		err := rows.Scan(&b.ID, &b.Symbol, &dateStr, &b.Open, &b.Close, &b.Low, &b.High, &b.Volume)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price_bars table results: %w", err)
		}
		if b.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_bars table: %w", err)
	}

	return bars, nil
}
