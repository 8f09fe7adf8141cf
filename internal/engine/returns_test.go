package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func returnRequest(forecast float64, s ReturnStrategy) Request {
	return Request{
		Strategy:        s,
		ForecastPrice:   forecast,
		CurrentPrice:    100,
		CurrentPosition: 200,
		AvailableCash:   100000,
		InitialCapital:  100000,
	}
}

func TestReturnSignal_FixedSizing(t *testing.T) {
	s := ReturnStrategy{Sizing: SizingFixed, Threshold: 0.03, ExecutionSize: 10}

	res, err := Execute(returnRequest(105, s))
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, res.Action)
	assert.InDelta(t, 10.0, res.Size, 1e-9)
}

func TestReturnSignal_WithinThresholdHolds(t *testing.T) {
	s := ReturnStrategy{Sizing: SizingFixed, Threshold: 0.05, ExecutionSize: 10}

	res, err := Execute(returnRequest(102, s))
	require.NoError(t, err)
	assert.Equal(t, ActionHold, res.Action)
	assert.Zero(t, res.Size)

	// Exactly at the threshold still holds.
	res, err = Execute(returnRequest(105, s))
	require.NoError(t, err)
	assert.Equal(t, ActionHold, res.Action)
}

func TestReturnSignal_SellDirection(t *testing.T) {
	s := ReturnStrategy{Sizing: SizingFixed, Threshold: 0.03, ExecutionSize: 10}

	res, err := Execute(returnRequest(95, s))
	require.NoError(t, err)
	assert.Equal(t, ActionSell, res.Action)
	assert.InDelta(t, 10.0, res.Size, 1e-9)
}

func TestReturnSignal_ProportionalSizing(t *testing.T) {
	// 5% expected return against a 1% threshold scales the base size 5x.
	s := ReturnStrategy{Sizing: SizingProportional, Threshold: 0.01, ExecutionSize: 10}

	res, err := Execute(returnRequest(105, s))
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, res.Action)
	assert.InDelta(t, 50.0, res.Size, 1e-9)
}

func TestReturnSignal_ProportionalZeroThresholdFallsBackToFixed(t *testing.T) {
	s := ReturnStrategy{Sizing: SizingProportional, Threshold: 0, ExecutionSize: 10}

	res, err := Execute(returnRequest(105, s))
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, res.Action)
	assert.InDelta(t, 10.0, res.Size, 1e-9)
}

func TestReturnSignal_NormalizedSizing(t *testing.T) {
	// Return history is +10%/-10%: population stddev 0.1. A 5% expected
	// return sizes at 10 * 0.05/0.1 = 5.
	s := ReturnStrategy{Sizing: SizingNormalized, Threshold: 0.01, ExecutionSize: 10, Window: 20}
	req := returnRequest(105, s)
	req.History = OHLC{Close: []float64{100, 110, 99}}

	res, err := Execute(req)
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, res.Action)
	assert.InDelta(t, 5.0, res.Size, 1e-9)
}

func TestReturnSignal_NormalizedFallsBackWithoutHistory(t *testing.T) {
	s := ReturnStrategy{Sizing: SizingNormalized, Threshold: 0.01, ExecutionSize: 10}

	res, err := Execute(returnRequest(105, s))
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, res.Action)
	assert.InDelta(t, 10.0, res.Size, 1e-9)
}

func TestReturnSignal_NormalizedFallsBackOnFlatHistory(t *testing.T) {
	s := ReturnStrategy{Sizing: SizingNormalized, Threshold: 0.01, ExecutionSize: 10, Window: 20}
	req := returnRequest(105, s)
	req.History = OHLC{Close: []float64{100, 100, 100}}

	res, err := Execute(req)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, res.Size, 1e-9)
}

func TestReturnSignal_SizeClamps(t *testing.T) {
	// Proportional sizing wants 50 units; the max clamp caps it at 20.
	s := ReturnStrategy{
		Sizing:          SizingProportional,
		Threshold:       0.01,
		ExecutionSize:   10,
		MaxPositionSize: 20,
	}
	res, err := Execute(returnRequest(105, s))
	require.NoError(t, err)
	assert.InDelta(t, 20.0, res.Size, 1e-9)

	// Fixed sizing wants 10; the min clamp raises it to 15.
	s = ReturnStrategy{
		Sizing:          SizingFixed,
		Threshold:       0.01,
		ExecutionSize:   10,
		MinPositionSize: 15,
	}
	res, err = Execute(returnRequest(105, s))
	require.NoError(t, err)
	assert.InDelta(t, 15.0, res.Size, 1e-9)
}

func TestReturnStrategy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		s       ReturnStrategy
		wantErr bool
	}{
		{"valid", ReturnStrategy{Sizing: SizingFixed, Threshold: 0.05}, false},
		{"defaults accepted", ReturnStrategy{}, false},
		{"invalid sizing", ReturnStrategy{Sizing: "kelly"}, true},
		{"negative threshold", ReturnStrategy{Threshold: -0.01}, true},
		{"max below min", ReturnStrategy{MinPositionSize: 10, MaxPositionSize: 5}, true},
		{"negative clamp", ReturnStrategy{MinPositionSize: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
