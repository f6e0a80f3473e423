// Package analytics computes descriptive and predictive statistics over
// ordered daily price series. Every function is a pure computation: nothing
// here mutates stored ledger or price state, and identical inputs always
// produce identical outputs.
package analytics

import (
	"math"
	"time"

	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
)

// DefaultSignalWindow is the trailing window used for mean-reversion signals.
const DefaultSignalWindow = 15

// RollingPoint is the sample mean and sample standard deviation of one
// trailing window ending at Index in the source series.
type RollingPoint struct {
	Index int
	Mean  float64
	Std   float64
}

// SignalAction classifies a bar's z-score against the rolling trend.
type SignalAction string

// Signal actions emitted by MeanReversionSignal.
const (
	SignalBuy  SignalAction = "buy"
	SignalSell SignalAction = "sell"
	SignalHold SignalAction = "hold"
)

// Signal is one mean-reversion data point: the bar's close, its z-score
// against the trailing window, and the resulting action.
type Signal struct {
	Date   time.Time
	Close  float64
	ZScore float64
	Action SignalAction
}

// RollingMeanStd computes, for every index from window-1 to len(series)-1,
// the sample mean and sample standard deviation (Bessel's correction,
// denominator window-1) of the trailing window ending at that index.
// Returns apperrors.ErrInsufficientData when the series is shorter than the
// window, and apperrors.ErrInvalidQuantity for a window below 2 (a sample
// std needs at least two points).
func RollingMeanStd(series []float64, window int) ([]RollingPoint, error) {
	if window < 2 {
		return nil, apperrors.ErrInvalidQuantity
	}
	if len(series) < window {
		return nil, apperrors.ErrInsufficientData
	}

	points := make([]RollingPoint, 0, len(series)-window+1)
	for i := window - 1; i < len(series); i++ {
		slice := series[i-window+1 : i+1]

		var sum float64
		for _, v := range slice {
			sum += v
		}
		mean := sum / float64(window)

		var sqDiff float64
		for _, v := range slice {
			d := v - mean
			sqDiff += d * d
		}
		std := math.Sqrt(sqDiff / float64(window-1))

		points = append(points, RollingPoint{Index: i, Mean: mean, Std: std})
	}

	return points, nil
}

// MeanReversionSignal runs RollingMeanStd over the close prices of bars and
// classifies each bar from index window-1 onward: z below -1 suggests the
// price is stretched under its recent trend (buy), z above +1 stretched over
// it (sell). The first window-1 bars carry no signal and are excluded from
// the output rather than zero-filled. A window with zero variance yields a
// zero z-score (hold) instead of a NaN.
func MeanReversionSignal(bars []model.PriceBar, window int) ([]Signal, error) {
	if window <= 0 {
		window = DefaultSignalWindow
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	points, err := RollingMeanStd(closes, window)
	if err != nil {
		return nil, err
	}

	signals := make([]Signal, 0, len(points))
	for _, p := range points {
		bar := bars[p.Index]

		var z float64
		if p.Std != 0 {
			z = (bar.Close - p.Mean) / p.Std
		}

		action := SignalHold
		switch {
		case z < -1:
			action = SignalBuy
		case z > 1:
			action = SignalSell
		}

		signals = append(signals, Signal{
			Date:   bar.Date,
			Close:  bar.Close,
			ZScore: z,
			Action: action,
		})
	}

	return signals, nil
}
