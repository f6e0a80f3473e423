package model

import "time"

// PriceBar is one daily OHLCV record for a symbol. Bars are immutable once
// ingested and unique per (symbol, date); all computations consume them
// ordered ascending by date.
type PriceBar struct {
	ID     string
	Symbol string
	Date   time.Time
	Open   float64
	Close  float64
	Low    float64
	High   float64
	Volume int64
}
