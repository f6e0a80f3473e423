package analytics

import (
	"math"

	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
)

// PairMetric selects the statistic computed for a symbol pair.
type PairMetric string

// Metrics supported by PairwiseMatrix.
const (
	MetricCovariance  PairMetric = "covariance"
	MetricCorrelation PairMetric = "correlation"
)

// Pairwise statistics use population (N) denominators throughout, while the
// rolling helpers above use sample (N-1). The split is deliberate and must
// not be unified without product sign-off.

// Covariance computes the population covariance of two equal-length series.
// Returns apperrors.ErrLengthMismatch when the lengths differ and
// apperrors.ErrInsufficientData for empty input.
func Covariance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, apperrors.ErrLengthMismatch
	}
	if len(a) == 0 {
		return 0, apperrors.ErrInsufficientData
	}

	n := float64(len(a))
	meanA := mean(a)
	meanB := mean(b)

	var sum float64
	for i := range a {
		sum += (a[i] - meanA) * (b[i] - meanB)
	}
	return sum / n, nil
}

// Correlation computes the Pearson correlation of two equal-length series
// using population standard deviations. Returns apperrors.ErrZeroVariance
// when either series is constant.
func Correlation(a, b []float64) (float64, error) {
	cov, err := Covariance(a, b)
	if err != nil {
		return 0, err
	}

	stdA := populationStd(a)
	stdB := populationStd(b)
	if stdA == 0 || stdB == 0 {
		return 0, apperrors.ErrZeroVariance
	}

	return cov / (stdA * stdB), nil
}

// Beta computes covariance(stock, market) / variance(market), the
// sensitivity of the stock to market moves. Returns
// apperrors.ErrZeroVariance when the market series is constant.
func Beta(stock, market []float64) (float64, error) {
	cov, err := Covariance(stock, market)
	if err != nil {
		return 0, err
	}

	variance, err := Covariance(market, market)
	if err != nil {
		return 0, err
	}
	if variance == 0 {
		return 0, apperrors.ErrZeroVariance
	}

	return cov / variance, nil
}

func mean(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

func populationStd(s []float64) float64 {
	m := mean(s)
	var sqDiff float64
	for _, v := range s {
		d := v - m
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff / float64(len(s)))
}

// alignByDate pairs the close prices of two bar series on their shared
// dates, ascending. Bars present on only one side are dropped.
func alignByDate(a, b []model.PriceBar) (closesA, closesB []float64) {
	byDate := make(map[string]float64, len(b))
	for _, bar := range b {
		byDate[bar.Date.Format("2006-01-02")] = bar.Close
	}

	for _, bar := range a {
		if closeB, ok := byDate[bar.Date.Format("2006-01-02")]; ok {
			closesA = append(closesA, bar.Close)
			closesB = append(closesB, closeB)
		}
	}
	return closesA, closesB
}
