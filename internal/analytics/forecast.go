package analytics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
)

// ForecastDegree is the fixed degree of the trend polynomial.
const ForecastDegree = 7

// PolynomialForecast fits a degree-7 least-squares polynomial to the close
// series indexed 0..N-1 and evaluates it at indices N..N+horizonDays-1,
// producing one forward price point per horizon day.
//
// Far outside the training range a degree-7 fit is numerically unstable;
// forecasts are decaying-confidence estimates, and callers must treat them
// that way. Returns apperrors.ErrInsufficientData when len(closes) is not
// strictly greater than the degree, and apperrors.ErrInvalidQuantity for a
// non-positive horizon.
func PolynomialForecast(closes []float64, horizonDays int) ([]float64, error) {
	if horizonDays <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}
	n := len(closes)
	if n <= ForecastDegree {
		return nil, apperrors.ErrInsufficientData
	}

	// Indices are mapped affinely onto [-1, 1] before building the
	// Vandermonde matrix: a raw basis on 0..N-1 is near-singular at degree 7.
	// Forecast indices go through the same mapping, so the fitted polynomial
	// space and its extrapolation behavior are unchanged.
	scale := func(i int) float64 {
		return 2*float64(i)/float64(n-1) - 1
	}

	a := mat.NewDense(n, ForecastDegree+1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		t := scale(i)
		v := 1.0
		for j := 0; j <= ForecastDegree; j++ {
			a.Set(i, j, v)
			v *= t
		}
		y.Set(i, 0, closes[i])
	}

	var coef mat.Dense
	if err := coef.Solve(a, y); err != nil {
		return nil, fmt.Errorf("failed to solve least squares fit: %w", err)
	}

	forecast := make([]float64, horizonDays)
	for h := 0; h < horizonDays; h++ {
		t := scale(n + h)
		// Horner evaluation of the fitted polynomial.
		v := 0.0
		for j := ForecastDegree; j >= 0; j-- {
			v = v*t + coef.At(j, 0)
		}
		forecast[h] = v
	}

	return forecast, nil
}
