package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestATR_KnownValues(t *testing.T) {
	high := []float64{10, 12, 11}
	low := []float64{8, 9, 9}
	closes := []float64{9, 11, 10}

	// TR[1] = max(12-9, |12-9|, |9-9|) = 3
	// TR[2] = max(11-9, |11-11|, |9-11|) = 2
	atr, err := ATR(high, low, closes, 2)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, atr, 1e-9)
}

func TestATR_InsufficientHistory(t *testing.T) {
	high := []float64{10, 12, 11}
	low := []float64{8, 9, 9}
	closes := []float64{9, 11, 10}

	// A 3-step ATR needs 4 points.
	_, err := ATR(high, low, closes, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestATR_InvalidWindow(t *testing.T) {
	_, err := ATR([]float64{1, 2}, []float64{1, 2}, []float64{1, 2}, 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientHistory)
}

func TestSimpleReturns(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   []float64
	}{
		{"basic", []float64{100, 110, 99}, []float64{0.1, -0.1}},
		{"too short", []float64{100}, nil},
		{"empty", nil, nil},
		{"leading zero skipped", []float64{0, 5, 10}, []float64{1.0}},
		{"zero mid-series skipped", []float64{100, 0, 50}, []float64{-1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimpleReturns(tt.series)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestSimpleReturns_NeverProducesInf(t *testing.T) {
	// A zero followed by a non-zero value must be skipped, not become +Inf.
	got := SimpleReturns([]float64{10, 0, 7, 14})
	require.Len(t, got, 2) // 10->0 and 7->14; the 0->7 step is dropped
	assert.InDelta(t, -1.0, got[0], 1e-9)
	assert.InDelta(t, 1.0, got[1], 1e-9)
}

func TestRollingWindow(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}

	assert.Equal(t, []float64{3, 4, 5}, RollingWindow(series, 3))
	assert.Equal(t, series, RollingWindow(series, 10)) // short series degrade gracefully
	assert.Equal(t, series, RollingWindow(series, 5))
	assert.Nil(t, RollingWindow(series, 0))
	assert.Nil(t, RollingWindow(nil, 3))
}

func TestPercentileRank(t *testing.T) {
	series := []float64{1, 2, 3, 4}

	assert.InDelta(t, 50.0, PercentileRank(2.5, series), 1e-9)
	assert.InDelta(t, 25.0, PercentileRank(2, series), 1e-9) // ties are not counted
	assert.InDelta(t, 0.0, PercentileRank(0.5, series), 1e-9)
	assert.InDelta(t, 100.0, PercentileRank(10, series), 1e-9)
	assert.InDelta(t, 0.0, PercentileRank(5, nil), 1e-9)
}

func TestStdDev(t *testing.T) {
	// Population standard deviation of the textbook series is exactly 2.
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
	assert.InDelta(t, 0.0, StdDev([]float64{5, 5, 5}), 1e-9)
	assert.InDelta(t, 0.0, StdDev(nil), 1e-9)
}

func TestMean(t *testing.T) {
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, Mean(nil), 1e-9)
}
