// Package backtest replays a candle series through the execution engine bar
// by bar. The engine stays stateless; the runner threads cash and position
// between calls exactly as the live orchestrator does.
package backtest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tradeengine/internal/engine"
)

// Candle is one bar of the replayed series. Forecast is optional; when it
// is zero the runner projects a naive one-bar momentum forecast.
type Candle struct {
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Forecast float64 `json:"forecast,omitempty"`
}

// Config configures a backtest run.
type Config struct {
	Strategy       engine.Strategy
	InitialCapital float64
	Warmup         int // bars to observe before the first execution
}

// Trade records one executed buy or sell.
type Trade struct {
	Bar    int           `json:"bar"`
	Action engine.Action `json:"action"`
	Size   float64       `json:"size"`
	Price  float64       `json:"price"`
	Value  float64       `json:"value"`
}

// Summary is the outcome of a run.
type Summary struct {
	RunID         string  `json:"run_id"`
	Bars          int     `json:"bars"`
	Executed      int     `json:"executed"`
	Trades        []Trade `json:"trades"`
	FinalCash     float64 `json:"final_cash"`
	FinalPosition float64 `json:"final_position"`
	FinalValue    float64 `json:"final_value"`
	Return        float64 `json:"return"`
	Stopped       bool    `json:"stopped"`
}

// Runner drives the engine over a candle series.
type Runner struct {
	cfg Config
}

// NewRunner creates a runner for the given configuration.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Strategy == nil {
		return nil, fmt.Errorf("backtest requires a strategy")
	}
	if err := cfg.Strategy.Validate(); err != nil {
		return nil, err
	}
	if cfg.InitialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be positive, got %g", cfg.InitialCapital)
	}
	if cfg.Warmup < 1 {
		cfg.Warmup = 1
	}
	return &Runner{cfg: cfg}, nil
}

// Run replays the candles and returns a summary. The run stops early when
// the engine reports the strategy stopped.
func (r *Runner) Run(candles []Candle) (*Summary, error) {
	if len(candles) <= r.cfg.Warmup {
		return nil, fmt.Errorf("need more than %d candles, have %d", r.cfg.Warmup, len(candles))
	}

	summary := &Summary{
		RunID: uuid.NewString(),
		Bars:  len(candles),
	}

	log.Info().
		Str("run_id", summary.RunID).
		Str("strategy", r.cfg.Strategy.Kind()).
		Int("bars", len(candles)).
		Float64("initial_capital", r.cfg.InitialCapital).
		Msg("backtest started")

	cash := r.cfg.InitialCapital
	position := 0.0
	lastClose := candles[len(candles)-1].Close

	for i := r.cfg.Warmup; i < len(candles); i++ {
		history := historyBefore(candles, i)
		bar := candles[i]

		forecast := bar.Forecast
		if forecast <= 0 {
			forecast = naiveForecast(candles, i)
		}

		res, err := engine.Execute(engine.Request{
			Strategy:        r.cfg.Strategy,
			ForecastPrice:   forecast,
			CurrentPrice:    bar.Close,
			CurrentPosition: position,
			AvailableCash:   cash,
			InitialCapital:  r.cfg.InitialCapital,
			History:         history,
		})
		if err != nil {
			return nil, fmt.Errorf("bar %d: %w", i, err)
		}

		summary.Executed++
		cash = res.AvailableCashAfter
		position = res.PositionAfter

		if res.Action != engine.ActionHold {
			summary.Trades = append(summary.Trades, Trade{
				Bar:    i,
				Action: res.Action,
				Size:   res.Size,
				Price:  bar.Close,
				Value:  res.Value,
			})
		}

		if res.Stopped {
			summary.Stopped = true
			lastClose = bar.Close
			log.Warn().Str("run_id", summary.RunID).Int("bar", i).Msg("strategy stopped, ending run")
			break
		}
	}

	summary.FinalCash = cash
	summary.FinalPosition = position
	summary.FinalValue = engine.PortfolioValue(position, lastClose, cash)
	summary.Return = engine.PortfolioReturn(position, lastClose, cash, r.cfg.InitialCapital)

	log.Info().
		Str("run_id", summary.RunID).
		Int("trades", len(summary.Trades)).
		Float64("final_value", summary.FinalValue).
		Float64("return", summary.Return).
		Bool("stopped", summary.Stopped).
		Msg("backtest finished")

	return summary, nil
}

// historyBefore assembles the OHLC snapshot visible at bar i, excluding the
// bar being executed.
func historyBefore(candles []Candle, i int) engine.OHLC {
	h := engine.OHLC{
		Open:  make([]float64, i),
		High:  make([]float64, i),
		Low:   make([]float64, i),
		Close: make([]float64, i),
	}
	for j := 0; j < i; j++ {
		h.Open[j] = candles[j].Open
		h.High[j] = candles[j].High
		h.Low[j] = candles[j].Low
		h.Close[j] = candles[j].Close
	}
	return h
}

// naiveForecast projects the last close-to-close move one bar forward.
func naiveForecast(candles []Candle, i int) float64 {
	cur := candles[i].Close
	prev := candles[i-1].Close
	forecast := cur + (cur - prev)
	if forecast <= 0 {
		return cur
	}
	return forecast
}

// LoadCandles reads a JSON candle file: either a bare array or an object
// with a "candles" field.
func LoadCandles(path string) ([]Candle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read candle file %s: %w", path, err)
	}

	var candles []Candle
	if err := json.Unmarshal(data, &candles); err == nil {
		return candles, nil
	}

	var wrapped struct {
		Candles []Candle `json:"candles"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse candle file %s: %w", path, err)
	}
	return wrapped.Candles, nil
}
