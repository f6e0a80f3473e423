package analytics_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/avandermeer/stock-ledger-backend/internal/analytics"
	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
)

// TestCovariance tests the Covariance function.
//
// WHY: The pairwise statistics use the population denominator N, not the
// sample N-1 the rolling statistics use. A wrong denominator here skews
// every correlation and beta built on top.
func TestCovariance(t *testing.T) {
	t.Run("computes population covariance", func(t *testing.T) {
		// means 2.5 and 5; sum of cross-deviations 10; population N=4.
		got, err := analytics.Covariance([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
		if err != nil {
			t.Fatalf("Covariance() returned unexpected error: %v", err)
		}
		if !almostEqual(got, 2.5) {
			t.Errorf("Expected covariance 2.5, got %v", got)
		}
	})

	t.Run("covariance of a series with itself is its population variance", func(t *testing.T) {
		s := []float64{10, 20, 30, 40}

		got, err := analytics.Covariance(s, s)
		if err != nil {
			t.Fatalf("Covariance() returned unexpected error: %v", err)
		}
		if !almostEqual(got, 125) {
			t.Errorf("Expected variance 125, got %v", got)
		}
	})

	t.Run("rejects mismatched lengths", func(t *testing.T) {
		_, err := analytics.Covariance([]float64{1, 2, 3}, []float64{1, 2})
		if !errors.Is(err, apperrors.ErrLengthMismatch) {
			t.Errorf("Expected ErrLengthMismatch, got %v", err)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := analytics.Covariance(nil, nil)
		if !errors.Is(err, apperrors.ErrInsufficientData) {
			t.Errorf("Expected ErrInsufficientData, got %v", err)
		}
	})
}

// TestCorrelation tests the Correlation function.
//
// WHY: Correlation divides by both standard deviations, so the flat-series
// case must surface as a typed error and the normalized value must stay in
// [-1, 1] for any input.
func TestCorrelation(t *testing.T) {
	t.Run("perfectly linear series correlate at one", func(t *testing.T) {
		got, err := analytics.Correlation([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
		if err != nil {
			t.Fatalf("Correlation() returned unexpected error: %v", err)
		}
		if !almostEqual(got, 1) {
			t.Errorf("Expected correlation 1, got %v", got)
		}
	})

	t.Run("inverse series correlate at minus one", func(t *testing.T) {
		got, err := analytics.Correlation([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
		if err != nil {
			t.Fatalf("Correlation() returned unexpected error: %v", err)
		}
		if !almostEqual(got, -1) {
			t.Errorf("Expected correlation -1, got %v", got)
		}
	})

	t.Run("flat series has no defined correlation", func(t *testing.T) {
		_, err := analytics.Correlation([]float64{1, 2, 3}, []float64{5, 5, 5})
		if !errors.Is(err, apperrors.ErrZeroVariance) {
			t.Errorf("Expected ErrZeroVariance, got %v", err)
		}
	})

	t.Run("stays within [-1, 1] for random series", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for trial := 0; trial < 100; trial++ {
			a := make([]float64, 50)
			b := make([]float64, 50)
			for i := range a {
				a[i] = rng.NormFloat64()*10 + 100
				b[i] = rng.NormFloat64()*10 + 100
			}

			got, err := analytics.Correlation(a, b)
			if err != nil {
				t.Fatalf("Trial %d: Correlation() returned unexpected error: %v", trial, err)
			}
			if got < -1-floatTolerance || got > 1+floatTolerance {
				t.Fatalf("Trial %d: correlation %v outside [-1, 1]", trial, got)
			}
		}
	})
}

// TestBeta tests the Beta function.
//
// WHY: Beta is covariance over market variance. The market measured against
// itself must come out at exactly 1, and a flat market has no defined beta.
func TestBeta(t *testing.T) {
	t.Run("market against itself is one", func(t *testing.T) {
		market := []float64{100, 102, 99, 105, 103, 108}

		got, err := analytics.Beta(market, market)
		if err != nil {
			t.Fatalf("Beta() returned unexpected error: %v", err)
		}
		if !almostEqual(got, 1) {
			t.Errorf("Expected beta 1, got %v", got)
		}
	})

	t.Run("a doubled market moves at beta two", func(t *testing.T) {
		market := []float64{100, 102, 99, 105}
		stock := make([]float64, len(market))
		for i, m := range market {
			stock[i] = 2 * m
		}

		got, err := analytics.Beta(stock, market)
		if err != nil {
			t.Fatalf("Beta() returned unexpected error: %v", err)
		}
		if !almostEqual(got, 2) {
			t.Errorf("Expected beta 2, got %v", got)
		}
	})

	t.Run("flat market has no defined beta", func(t *testing.T) {
		_, err := analytics.Beta([]float64{1, 2, 3}, []float64{100, 100, 100})
		if !errors.Is(err, apperrors.ErrZeroVariance) {
			t.Errorf("Expected ErrZeroVariance, got %v", err)
		}
	})

	t.Run("rejects mismatched lengths", func(t *testing.T) {
		_, err := analytics.Beta([]float64{1, 2}, []float64{1, 2, 3})
		if !errors.Is(err, apperrors.ErrLengthMismatch) {
			t.Errorf("Expected ErrLengthMismatch, got %v", err)
		}
	})
}

// Correlation and covariance must agree: corr = cov / (stdA * stdB).
func TestCorrelationConsistentWithCovariance(t *testing.T) {
	a := []float64{10, 12, 9, 14, 11, 13}
	b := []float64{20, 25, 18, 27, 21, 26}

	cov, err := analytics.Covariance(a, b)
	if err != nil {
		t.Fatalf("Covariance() returned unexpected error: %v", err)
	}
	corr, err := analytics.Correlation(a, b)
	if err != nil {
		t.Fatalf("Correlation() returned unexpected error: %v", err)
	}

	popStd := func(s []float64) float64 {
		var sum float64
		for _, v := range s {
			sum += v
		}
		m := sum / float64(len(s))
		var sq float64
		for _, v := range s {
			sq += (v - m) * (v - m)
		}
		return math.Sqrt(sq / float64(len(s)))
	}

	want := cov / (popStd(a) * popStd(b))
	if !almostEqual(corr, want) {
		t.Errorf("Correlation %v inconsistent with covariance-derived %v", corr, want)
	}
}
