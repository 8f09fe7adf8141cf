// Package engine implements the stateless trading-signal execution engine:
// given a price forecast, the current market price, the caller's portfolio
// state and a strategy configuration, it computes a single recommended
// action with capital-constrained, long-only position management.
//
// The engine performs no I/O and retains no state between calls; every
// invocation is an independent pure function of its request.
package engine

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Execute computes the recommended trading action for req. Configuration
// errors are returned as *ConfigError; data-quality conditions (short
// history, flat series, infeasible trades) degrade to a hold result with an
// explanatory reason instead of failing.
func Execute(req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	// Nothing left to trade with in either direction.
	if req.AvailableCash <= 0 && req.CurrentPosition <= 0 {
		log.Warn().Str("strategy", req.Strategy.Kind()).Msg("strategy stopped: no capital remaining")
		return Result{
			Action:  ActionHold,
			Reason:  "strategy stopped: no capital remaining",
			Stopped: true,
		}, nil
	}

	sig, err := generateSignal(req)
	if err != nil {
		return Result{}, err
	}

	log.Debug().
		Str("strategy", req.Strategy.Kind()).
		Str("action", string(sig.Action)).
		Float64("desired_size", sig.Size).
		Msg("signal generated")

	return applyCapital(req, sig)
}

// generateSignal dispatches on the strategy variant. The variant set is
// closed; anything else is a configuration error.
func generateSignal(req Request) (signal, error) {
	switch s := req.Strategy.(type) {
	case ThresholdStrategy:
		return thresholdSignal(req, s)
	case ReturnStrategy:
		return returnSignal(req, s)
	case QuantileStrategy:
		return quantileSignal(req, s)
	default:
		return signal{}, &ConfigError{
			Code:    ErrCodeInvalidStrategy,
			Message: fmt.Sprintf("unknown strategy kind %q", req.Strategy.Kind()),
		}
	}
}
