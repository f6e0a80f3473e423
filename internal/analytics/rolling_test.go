package analytics_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/avandermeer/stock-ledger-backend/internal/analytics"
	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= floatTolerance
}

func barsFromCloses(closes []float64) []model.PriceBar {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{
			Symbol: "TEST",
			Date:   start.AddDate(0, 0, i),
			Close:  c,
		}
	}
	return bars
}

// TestRollingMeanStd tests the RollingMeanStd function.
//
// WHY: Rolling statistics feed the trading signals, so the window arithmetic
// must be exact: sample standard deviation (denominator window-1), one point
// per index from window-1 onward, and clean errors for undersized input.
func TestRollingMeanStd(t *testing.T) {
	t.Run("computes sample mean and std over each trailing window", func(t *testing.T) {
		points, err := analytics.RollingMeanStd([]float64{10, 20, 30, 40, 50}, 3)
		if err != nil {
			t.Fatalf("RollingMeanStd() returned unexpected error: %v", err)
		}

		if len(points) != 3 {
			t.Fatalf("Expected 3 points, got %d", len(points))
		}

		wantMeans := []float64{20, 30, 40}
		for i, p := range points {
			if p.Index != i+2 {
				t.Errorf("Point %d: expected index %d, got %d", i, i+2, p.Index)
			}
			if !almostEqual(p.Mean, wantMeans[i]) {
				t.Errorf("Point %d: expected mean %v, got %v", i, wantMeans[i], p.Mean)
			}
			// Each window {x-10, x, x+10} has sample variance 100.
			if !almostEqual(p.Std, 10) {
				t.Errorf("Point %d: expected std 10, got %v", i, p.Std)
			}
		}
	})

	t.Run("series exactly one window long yields a single point", func(t *testing.T) {
		points, err := analytics.RollingMeanStd([]float64{1, 2, 3}, 3)
		if err != nil {
			t.Fatalf("RollingMeanStd() returned unexpected error: %v", err)
		}
		if len(points) != 1 {
			t.Fatalf("Expected 1 point, got %d", len(points))
		}
		if !almostEqual(points[0].Mean, 2) || !almostEqual(points[0].Std, 1) {
			t.Errorf("Expected mean 2 std 1, got mean %v std %v", points[0].Mean, points[0].Std)
		}
	})

	t.Run("constant window has zero std", func(t *testing.T) {
		points, err := analytics.RollingMeanStd([]float64{5, 5, 5, 5}, 4)
		if err != nil {
			t.Fatalf("RollingMeanStd() returned unexpected error: %v", err)
		}
		if points[0].Std != 0 {
			t.Errorf("Expected zero std for constant window, got %v", points[0].Std)
		}
	})

	t.Run("rejects series shorter than window", func(t *testing.T) {
		_, err := analytics.RollingMeanStd([]float64{1, 2}, 3)
		if !errors.Is(err, apperrors.ErrInsufficientData) {
			t.Errorf("Expected ErrInsufficientData, got %v", err)
		}
	})

	t.Run("rejects window below two", func(t *testing.T) {
		_, err := analytics.RollingMeanStd([]float64{1, 2, 3}, 1)
		if !errors.Is(err, apperrors.ErrInvalidQuantity) {
			t.Errorf("Expected ErrInvalidQuantity, got %v", err)
		}
	})
}

// TestMeanReversionSignal tests the MeanReversionSignal function.
//
// WHY: Signal classification is the user-facing output of the rolling
// statistics. The first window-1 bars must be excluded (not zero-filled),
// the z-score thresholds must map to buy/sell/hold correctly, and a flat
// window must not produce NaN.
func TestMeanReversionSignal(t *testing.T) {
	t.Run("excludes the first window-1 bars", func(t *testing.T) {
		bars := barsFromCloses([]float64{10, 20, 30, 40, 50})

		signals, err := analytics.MeanReversionSignal(bars, 3)
		if err != nil {
			t.Fatalf("MeanReversionSignal() returned unexpected error: %v", err)
		}

		if len(signals) != 3 {
			t.Fatalf("Expected 3 signals for 5 bars at window 3, got %d", len(signals))
		}
		if !signals[0].Date.Equal(bars[2].Date) {
			t.Errorf("First signal should land on the third bar, got date %v", signals[0].Date)
		}
	})

	t.Run("classifies stretched closes as buy and sell", func(t *testing.T) {
		// Steady series, then a crash and a spike. The crash sits far under
		// its trailing mean, the spike far over it.
		bars := barsFromCloses([]float64{100, 101, 100, 101, 100, 50, 200})

		signals, err := analytics.MeanReversionSignal(bars, 5)
		if err != nil {
			t.Fatalf("MeanReversionSignal() returned unexpected error: %v", err)
		}

		if len(signals) != 3 {
			t.Fatalf("Expected 3 signals, got %d", len(signals))
		}

		crash := signals[1]
		if crash.Action != analytics.SignalBuy {
			t.Errorf("Expected buy on the crash bar, got %q (z=%v)", crash.Action, crash.ZScore)
		}
		if crash.ZScore >= -1 {
			t.Errorf("Expected z-score below -1 on the crash bar, got %v", crash.ZScore)
		}

		spike := signals[2]
		if spike.Action != analytics.SignalSell {
			t.Errorf("Expected sell on the spike bar, got %q (z=%v)", spike.Action, spike.ZScore)
		}
	})

	t.Run("holds inside the band", func(t *testing.T) {
		bars := barsFromCloses([]float64{100, 102, 98, 101, 99, 100})

		signals, err := analytics.MeanReversionSignal(bars, 5)
		if err != nil {
			t.Fatalf("MeanReversionSignal() returned unexpected error: %v", err)
		}

		for _, s := range signals {
			if s.Action != analytics.SignalHold {
				t.Errorf("Expected hold at date %v, got %q (z=%v)", s.Date, s.Action, s.ZScore)
			}
		}
	})

	t.Run("flat window yields zero z-score instead of NaN", func(t *testing.T) {
		bars := barsFromCloses([]float64{100, 100, 100, 100, 100})

		signals, err := analytics.MeanReversionSignal(bars, 5)
		if err != nil {
			t.Fatalf("MeanReversionSignal() returned unexpected error: %v", err)
		}

		if len(signals) != 1 {
			t.Fatalf("Expected 1 signal, got %d", len(signals))
		}
		if signals[0].ZScore != 0 || signals[0].Action != analytics.SignalHold {
			t.Errorf("Expected hold with zero z-score, got %q (z=%v)",
				signals[0].Action, signals[0].ZScore)
		}
	})

	t.Run("zero window falls back to the default", func(t *testing.T) {
		closes := make([]float64, analytics.DefaultSignalWindow+5)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		bars := barsFromCloses(closes)

		signals, err := analytics.MeanReversionSignal(bars, 0)
		if err != nil {
			t.Fatalf("MeanReversionSignal() returned unexpected error: %v", err)
		}

		want := len(bars) - analytics.DefaultSignalWindow + 1
		if len(signals) != want {
			t.Errorf("Expected %d signals at the default window, got %d", want, len(signals))
		}
	})

	t.Run("fewer bars than window is insufficient data", func(t *testing.T) {
		bars := barsFromCloses([]float64{100, 101, 102})

		_, err := analytics.MeanReversionSignal(bars, 15)
		if !errors.Is(err, apperrors.ErrInsufficientData) {
			t.Errorf("Expected ErrInsufficientData, got %v", err)
		}
	})
}
