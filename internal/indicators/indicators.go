// Package indicators provides the numeric helpers shared by the signal
// generators: average true range, simple returns, rolling windows and
// empirical percentile ranks. All guarded division lives here so every
// generator reuses one audited implementation.
package indicators

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientHistory is returned when a calculation requires more data
// points than the caller supplied.
var ErrInsufficientHistory = errors.New("insufficient history")

// ATR computes the average true range over the last window steps.
// True range per step is the largest of high-low, |high-prevClose| and
// |low-prevClose|, so the series needs window+1 points.
func ATR(high, low, closes []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("atr window must be positive, got %d", window)
	}

	n := len(high)
	if len(low) < n {
		n = len(low)
	}
	if len(closes) < n {
		n = len(closes)
	}
	if n < window+1 {
		return 0, fmt.Errorf("atr over %d steps needs %d points, have %d: %w",
			window, window+1, n, ErrInsufficientHistory)
	}

	h := high[len(high)-(window+1):]
	l := low[len(low)-(window+1):]
	c := closes[len(closes)-(window+1):]

	var sum float64
	for i := 1; i <= window; i++ {
		tr := h[i] - l[i]
		if hc := math.Abs(h[i] - c[i-1]); hc > tr {
			tr = hc
		}
		if lc := math.Abs(l[i] - c[i-1]); lc > tr {
			tr = lc
		}
		sum += tr
	}

	return sum / float64(window), nil
}

// SimpleReturns computes period-over-period simple returns. Steps whose
// previous value is zero are skipped rather than propagated as Inf/NaN, so
// the output may be shorter than len(series)-1.
func SimpleReturns(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1]
		if prev == 0 {
			continue
		}
		returns = append(returns, (series[i]-prev)/prev)
	}
	return returns
}

// RollingWindow returns the last min(window, len(series)) elements, oldest
// first. Short series degrade to whatever is available instead of erroring.
func RollingWindow(series []float64, window int) []float64 {
	if window <= 0 || len(series) == 0 {
		return nil
	}
	if len(series) <= window {
		return series
	}
	return series[len(series)-window:]
}

// PercentileRank returns the percentage of elements strictly less than
// value, 0..100. Ties do not count toward the rank.
func PercentileRank(value float64, series []float64) float64 {
	if len(series) == 0 {
		return 0
	}

	below := 0
	for _, v := range series {
		if v < value {
			below++
		}
	}
	return float64(below) / float64(len(series)) * 100
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation, or 0 for an empty slice.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}
