package engine

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// applyCapital converts a raw signal into a capital-feasible result. Buys
// are capped at what available cash affords, sells at the current position;
// a trade capped to nothing downgrades to hold. Portfolio value is conserved
// across the trade (no fees are modeled).
func applyCapital(req Request, sig signal) (Result, error) {
	res := Result{
		Action:             sig.Action,
		Reason:             sig.Reason,
		AvailableCashAfter: req.AvailableCash,
		PositionAfter:      req.CurrentPosition,
	}

	if sig.Action == ActionHold {
		return res, nil
	}

	// Validate already rejects non-positive prices; keep the guard so a
	// future caller cannot divide by zero here.
	if req.CurrentPrice <= 0 {
		return Result{}, &ConfigError{
			Code:      ErrCodeInvalidPrice,
			Parameter: "current_price",
			Message:   fmt.Sprintf("cannot execute at non-positive price %g", req.CurrentPrice),
		}
	}

	var actual, sign float64
	switch sig.Action {
	case ActionBuy:
		maxAffordable := req.AvailableCash / req.CurrentPrice
		actual = math.Min(sig.Size, maxAffordable)
		if actual <= 0 {
			log.Warn().
				Float64("available_cash", req.AvailableCash).
				Float64("required", sig.Size*req.CurrentPrice).
				Msg("insufficient cash to buy")
			res.Action = ActionHold
			res.Reason = "insufficient cash to buy"
			return res, nil
		}
		sign = 1
	case ActionSell:
		actual = math.Min(sig.Size, req.CurrentPosition)
		if actual <= 0 {
			log.Warn().
				Float64("current_position", req.CurrentPosition).
				Msg("no position to sell")
			res.Action = ActionHold
			res.Reason = "no position to sell"
			return res, nil
		}
		sign = -1
	}

	value := actual * req.CurrentPrice
	res.Size = actual
	res.Value = value
	res.AvailableCashAfter = req.AvailableCash - sign*value
	res.PositionAfter = req.CurrentPosition + sign*actual

	if res.AvailableCashAfter <= 0 && res.PositionAfter <= 0 {
		res.Stopped = true
		res.Reason += " | strategy stopped: capital exhausted"
	}

	log.Info().
		Str("action", string(res.Action)).
		Float64("size", res.Size).
		Float64("price", req.CurrentPrice).
		Float64("value", res.Value).
		Bool("stopped", res.Stopped).
		Msg("trade executed")

	return res, nil
}
