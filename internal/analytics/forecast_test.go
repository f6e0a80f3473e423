package analytics_test

import (
	"errors"
	"math"
	"testing"

	"github.com/avandermeer/stock-ledger-backend/internal/analytics"
	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
)

// TestPolynomialForecast tests the PolynomialForecast function.
//
// WHY: The forecast extrapolates a fixed-degree least-squares fit. On data
// the polynomial can represent exactly (linear, constant) the forecast must
// reproduce the trend; with too few points the normal equations are
// underdetermined and the function must refuse rather than return garbage.
func TestPolynomialForecast(t *testing.T) {
	t.Run("extends a linear trend", func(t *testing.T) {
		// close[i] = 100 + 2i for i = 0..20, so close[21] should be 142.
		closes := make([]float64, 21)
		for i := range closes {
			closes[i] = 100 + 2*float64(i)
		}

		forecast, err := analytics.PolynomialForecast(closes, 3)
		if err != nil {
			t.Fatalf("PolynomialForecast() returned unexpected error: %v", err)
		}

		if len(forecast) != 3 {
			t.Fatalf("Expected 3 forecast points, got %d", len(forecast))
		}

		want := []float64{142, 144, 146}
		for i, got := range forecast {
			if math.Abs(got-want[i]) > 1e-6 {
				t.Errorf("Forecast day %d: expected %v, got %v", i+1, want[i], got)
			}
		}
	})

	t.Run("holds a constant series flat", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 250
		}

		forecast, err := analytics.PolynomialForecast(closes, 5)
		if err != nil {
			t.Fatalf("PolynomialForecast() returned unexpected error: %v", err)
		}

		for i, got := range forecast {
			if math.Abs(got-250) > 1e-6 {
				t.Errorf("Forecast day %d: expected 250, got %v", i+1, got)
			}
		}
	})

	t.Run("requires more points than the polynomial degree", func(t *testing.T) {
		closes := make([]float64, analytics.ForecastDegree)
		for i := range closes {
			closes[i] = float64(i)
		}

		_, err := analytics.PolynomialForecast(closes, 1)
		if !errors.Is(err, apperrors.ErrInsufficientData) {
			t.Errorf("Expected ErrInsufficientData for %d points, got %v", len(closes), err)
		}
	})

	t.Run("degree plus one points is enough", func(t *testing.T) {
		closes := make([]float64, analytics.ForecastDegree+1)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}

		forecast, err := analytics.PolynomialForecast(closes, 1)
		if err != nil {
			t.Fatalf("PolynomialForecast() returned unexpected error: %v", err)
		}
		if len(forecast) != 1 {
			t.Errorf("Expected 1 forecast point, got %d", len(forecast))
		}
	})

	t.Run("rejects a non-positive horizon", func(t *testing.T) {
		closes := make([]float64, 20)

		_, err := analytics.PolynomialForecast(closes, 0)
		if !errors.Is(err, apperrors.ErrInvalidQuantity) {
			t.Errorf("Expected ErrInvalidQuantity for horizon 0, got %v", err)
		}
	})
}
