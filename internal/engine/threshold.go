package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"tradeengine/internal/indicators"
)

// thresholdSignal signals when the forecast-vs-price gap exceeds the
// effective threshold. A zero effective threshold (flat history, zero
// configured value) means any non-zero gap triggers; that is intended.
func thresholdSignal(req Request, s ThresholdStrategy) (signal, error) {
	threshold, err := effectiveThreshold(req, s)
	if err != nil {
		if errors.Is(err, indicators.ErrInsufficientHistory) {
			log.Warn().
				Str("threshold_type", string(s.thresholdType())).
				Msg("insufficient history for threshold, holding")
			return holdSignal(fmt.Sprintf("insufficient history for %s threshold", s.thresholdType())), nil
		}
		return signal{}, err
	}

	diff := req.ForecastPrice - req.CurrentPrice
	magnitude := math.Abs(diff)

	if magnitude <= threshold {
		return holdSignal(fmt.Sprintf("signal %.4f within threshold %.4f", magnitude, threshold)), nil
	}

	if diff > 0 {
		return signal{
			Action: ActionBuy,
			Size:   s.executionSize(),
			Reason: fmt.Sprintf("forecast %.2f > price %.2f, magnitude %.4f > threshold %.4f",
				req.ForecastPrice, req.CurrentPrice, magnitude, threshold),
		}, nil
	}
	return signal{
		Action: ActionSell,
		Size:   s.executionSize(),
		Reason: fmt.Sprintf("forecast %.2f < price %.2f, magnitude %.4f > threshold %.4f",
			req.ForecastPrice, req.CurrentPrice, magnitude, threshold),
	}, nil
}

// effectiveThreshold resolves the configured threshold value into price
// units. std_dev and atr thresholds derive from history and report
// ErrInsufficientHistory when the window cannot be filled.
func effectiveThreshold(req Request, s ThresholdStrategy) (float64, error) {
	switch s.thresholdType() {
	case ThresholdAbsolute:
		return s.Value, nil

	case ThresholdPercentage:
		return s.Value * req.CurrentPrice, nil

	case ThresholdStdDev:
		series := indicators.RollingWindow(req.History.Field(s.historyField()), s.window())
		if len(series) < s.minHistory() {
			return 0, fmt.Errorf("std_dev threshold needs at least %d points, have %d: %w",
				s.minHistory(), len(series), indicators.ErrInsufficientHistory)
		}
		returns := indicators.SimpleReturns(series)
		if len(returns) == 0 {
			return 0, fmt.Errorf("std_dev threshold has no usable returns: %w",
				indicators.ErrInsufficientHistory)
		}
		return s.Value * indicators.StdDev(returns), nil

	case ThresholdATR:
		atr, err := indicators.ATR(req.History.High, req.History.Low, req.History.Close, s.window())
		if err != nil {
			return 0, err
		}
		return s.Value * atr, nil

	default:
		// Unreachable after Validate; treat as absolute.
		return s.Value, nil
	}
}
