package engine

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"tradeengine/internal/indicators"
)

// returnSignal signals on expected return. Direction follows the sign of
// the expected return; size depends on the configured sizing mode.
func returnSignal(req Request, s ReturnStrategy) (signal, error) {
	// Validate already forbids zero prices; the guard keeps the division
	// safe for any direct caller.
	if req.CurrentPrice == 0 {
		return holdSignal("current price is zero"), nil
	}

	expectedReturn := (req.ForecastPrice - req.CurrentPrice) / req.CurrentPrice

	if math.Abs(expectedReturn) <= s.Threshold {
		return holdSignal(fmt.Sprintf("expected return %.2f%% within threshold ±%.2f%%",
			expectedReturn*100, s.Threshold*100)), nil
	}

	size := s.executionSize()
	switch s.sizing() {
	case SizingProportional:
		// Scale with signal strength relative to the minimum actionable
		// return. A zero threshold admits every signal, so proportional
		// scaling is undefined there and degrades to the fixed size.
		if s.Threshold > 0 {
			size = s.executionSize() * math.Abs(expectedReturn) / s.Threshold
		}
	case SizingNormalized:
		size = normalizedSize(req.History.Field(s.historyField()), s.window(), s.minHistory(),
			s.executionSize(), expectedReturn)
	}
	size = clampSize(size, s.MinPositionSize, s.MaxPositionSize)

	action := ActionBuy
	if expectedReturn < 0 {
		action = ActionSell
	}

	return signal{
		Action: action,
		Size:   size,
		Reason: fmt.Sprintf("expected return %.2f%% (threshold ±%.2f%%), size %.2f",
			expectedReturn*100, s.Threshold*100, size),
	}, nil
}

// normalizedSize scales the base size by signal strength relative to recent
// return volatility. Short or flat history falls back to the base size.
func normalizedSize(series []float64, window, minHistory int, base, expectedReturn float64) float64 {
	recent := indicators.RollingWindow(series, window)
	if len(recent) < minHistory {
		log.Warn().
			Int("history_length", len(recent)).
			Int("min_history", minHistory).
			Msg("insufficient history for normalized sizing, using base size")
		return base
	}

	std := indicators.StdDev(indicators.SimpleReturns(recent))
	if std == 0 {
		return base
	}
	return base * math.Abs(expectedReturn) / std
}

// clampSize applies the optional [min, max] position-size constraints.
// Zero means unconstrained.
func clampSize(size, min, max float64) float64 {
	if max > 0 && size > max {
		size = max
	}
	if min > 0 && size < min {
		size = min
	}
	return size
}
