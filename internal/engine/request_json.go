package engine

import (
	"encoding/json"
	"fmt"
)

// requestEnvelope mirrors the wire shape the calling layer accepts. The
// strategy_kind field discriminates the union; fields irrelevant to the
// selected kind are ignored.
type requestEnvelope struct {
	StrategyKind    string  `json:"strategy_kind"`
	ForecastPrice   float64 `json:"forecast_price"`
	CurrentPrice    float64 `json:"current_price"`
	CurrentPosition float64 `json:"current_position"`
	AvailableCash   float64 `json:"available_cash"`
	InitialCapital  float64 `json:"initial_capital"`

	ThresholdType    string          `json:"threshold_type,omitempty"`
	ThresholdValue   float64         `json:"threshold_value,omitempty"`
	PositionSizing   string          `json:"position_sizing,omitempty"`
	ExecutionSize    float64         `json:"execution_size,omitempty"`
	MaxPositionSize  float64         `json:"max_position_size,omitempty"`
	MinPositionSize  float64         `json:"min_position_size,omitempty"`
	WhichHistory     string          `json:"which_history,omitempty"`
	WindowHistory    int             `json:"window_history,omitempty"`
	MinHistoryLength int             `json:"min_history_length,omitempty"`
	QuantileRanges   []quantileRange `json:"quantile_ranges,omitempty"`

	OpenHistory  []float64 `json:"open_history,omitempty"`
	HighHistory  []float64 `json:"high_history,omitempty"`
	LowHistory   []float64 `json:"low_history,omitempty"`
	CloseHistory []float64 `json:"close_history,omitempty"`
}

type quantileRange struct {
	Low        float64 `json:"low"`
	High       float64 `json:"high"`
	Action     string  `json:"action"`
	Multiplier float64 `json:"multiplier"`
}

// ParseRequest decodes and validates a wire-format execution request. It
// belongs to the calling layer: the engine core only ever sees the typed
// Request it produces.
func ParseRequest(data []byte) (Request, error) {
	var env requestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Request{}, invalidParams("body", "malformed request: %v", err)
	}

	req := Request{
		ForecastPrice:   env.ForecastPrice,
		CurrentPrice:    env.CurrentPrice,
		CurrentPosition: env.CurrentPosition,
		AvailableCash:   env.AvailableCash,
		InitialCapital:  env.InitialCapital,
		History: OHLC{
			Open:  env.OpenHistory,
			High:  env.HighHistory,
			Low:   env.LowHistory,
			Close: env.CloseHistory,
		},
	}

	switch env.StrategyKind {
	case "threshold":
		req.Strategy = ThresholdStrategy{
			Type:          ThresholdType(env.ThresholdType),
			Value:         env.ThresholdValue,
			ExecutionSize: env.ExecutionSize,
			History:       HistoryField(env.WhichHistory),
			Window:        env.WindowHistory,
			MinHistory:    env.MinHistoryLength,
		}
		// ATR thresholds cannot run without the full candle history.
		if ThresholdType(env.ThresholdType) == ThresholdATR && !req.History.Complete() {
			return Request{}, invalidParams("ohlc_history",
				"all OHLC histories are required for atr thresholds")
		}

	case "return":
		req.Strategy = ReturnStrategy{
			Sizing:          PositionSizing(env.PositionSizing),
			Threshold:       env.ThresholdValue,
			ExecutionSize:   env.ExecutionSize,
			MaxPositionSize: env.MaxPositionSize,
			MinPositionSize: env.MinPositionSize,
			History:         HistoryField(env.WhichHistory),
			Window:          env.WindowHistory,
			MinHistory:      env.MinHistoryLength,
		}
		if PositionSizing(env.PositionSizing) == SizingNormalized &&
			len(req.History.Field(HistoryField(env.WhichHistory))) == 0 {
			return Request{}, invalidParams("ohlc_history",
				"history data is required for normalized position sizing")
		}

	case "quantile":
		ranges := make([]QuantileRange, 0, len(env.QuantileRanges))
		for _, r := range env.QuantileRanges {
			ranges = append(ranges, QuantileRange{
				Low:        r.Low,
				High:       r.High,
				Action:     Action(r.Action),
				Multiplier: r.Multiplier,
			})
		}
		req.Strategy = QuantileStrategy{
			History:         HistoryField(env.WhichHistory),
			Window:          env.WindowHistory,
			Ranges:          ranges,
			Sizing:          PositionSizing(env.PositionSizing),
			ExecutionSize:   env.ExecutionSize,
			MaxPositionSize: env.MaxPositionSize,
			MinPositionSize: env.MinPositionSize,
			MinHistory:      env.MinHistoryLength,
		}
		if !req.History.Complete() {
			return Request{}, invalidParams("ohlc_history",
				"all OHLC histories are required for the quantile strategy")
		}

	default:
		return Request{}, &ConfigError{
			Code:    ErrCodeInvalidStrategy,
			Message: fmt.Sprintf("unknown strategy kind %q (valid: threshold, return, quantile)", env.StrategyKind),
		}
	}

	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}
