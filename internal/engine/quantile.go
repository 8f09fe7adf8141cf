package engine

import (
	"fmt"
	"math"

	"tradeengine/internal/indicators"
)

// quantileSignal ranks the forecast within the recent historical window and
// maps the percentile to a configured action. Range matching is
// deterministic because Validate forbids overlapping ranges.
func quantileSignal(req Request, s QuantileStrategy) (signal, error) {
	series := indicators.RollingWindow(req.History.Field(s.historyField()), s.Window)
	if len(series) < s.minHistory() {
		return holdSignal(fmt.Sprintf("insufficient history for quantile calculation (need at least %d points, have %d)",
			s.minHistory(), len(series))), nil
	}

	rank := indicators.PercentileRank(req.ForecastPrice, series)

	matched, ok := s.match(rank)
	if !ok {
		return holdSignal(fmt.Sprintf("forecast percentile %.1f matches no configured range", rank)), nil
	}
	if matched.Action == ActionHold {
		return holdSignal(fmt.Sprintf("configured hold for percentile %.1f in range [%g, %g)",
			rank, matched.Low, matched.High)), nil
	}

	size := s.executionSize() * matched.Multiplier
	if s.sizing() == SizingNormalized && req.CurrentPrice > 0 {
		expectedReturn := (req.ForecastPrice - req.CurrentPrice) / req.CurrentPrice
		if std := indicators.StdDev(indicators.SimpleReturns(series)); std > 0 {
			size *= math.Abs(expectedReturn) / std
		}
	}
	size = clampSize(size, s.MinPositionSize, s.MaxPositionSize)

	return signal{
		Action: matched.Action,
		Size:   size,
		Reason: fmt.Sprintf("forecast percentile %.1f in range [%g, %g), %s x%g",
			rank, matched.Low, matched.High, matched.Action, matched.Multiplier),
	}, nil
}
