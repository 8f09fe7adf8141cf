package engine

import "fmt"

// Defaults applied when a strategy omits optional sizing parameters. They
// mirror the values the surrounding platform has always used.
const (
	DefaultExecutionSize = 1.0
	DefaultWindow        = 20
	DefaultMinHistory    = 2
	MaxHistoryLength     = 10000
)

// Action is a recommended trading action.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

func validAction(a Action) bool {
	return a == ActionBuy || a == ActionSell || a == ActionHold
}

// HistoryField selects which OHLC series a calculation reads.
type HistoryField string

const (
	HistoryOpen  HistoryField = "open"
	HistoryHigh  HistoryField = "high"
	HistoryLow   HistoryField = "low"
	HistoryClose HistoryField = "close"
)

// ThresholdType selects how the threshold strategy derives its effective
// threshold from the configured value.
type ThresholdType string

const (
	ThresholdAbsolute   ThresholdType = "absolute"
	ThresholdPercentage ThresholdType = "percentage"
	ThresholdStdDev     ThresholdType = "std_dev"
	ThresholdATR        ThresholdType = "atr"
)

// PositionSizing selects how a generator scales its desired trade size.
type PositionSizing string

const (
	SizingFixed        PositionSizing = "fixed"
	SizingProportional PositionSizing = "proportional"
	SizingNormalized   PositionSizing = "normalized"
)

// OHLC holds the caller-supplied price history. The arrays are read-only
// snapshots owned by the caller; the engine never mutates or retains them.
type OHLC struct {
	Open  []float64
	High  []float64
	Low   []float64
	Close []float64
}

// Field returns the series selected by f, defaulting to close.
func (o OHLC) Field(f HistoryField) []float64 {
	switch f {
	case HistoryOpen:
		return o.Open
	case HistoryHigh:
		return o.High
	case HistoryLow:
		return o.Low
	default:
		return o.Close
	}
}

// Complete reports whether all four series are present.
func (o OHLC) Complete() bool {
	return len(o.Open) > 0 && len(o.High) > 0 && len(o.Low) > 0 && len(o.Close) > 0
}

// Strategy is the closed set of strategy variants the dispatcher accepts:
// ThresholdStrategy, ReturnStrategy or QuantileStrategy.
type Strategy interface {
	Kind() string
	Validate() error
}

// ThresholdStrategy signals when the forecast-vs-price gap exceeds a
// configurable threshold.
type ThresholdStrategy struct {
	Type          ThresholdType
	Value         float64
	ExecutionSize float64
	History       HistoryField // series for std_dev thresholds
	Window        int          // window for std_dev/atr thresholds
	MinHistory    int
}

// Kind implements Strategy.
func (ThresholdStrategy) Kind() string { return "threshold" }

// Validate implements Strategy.
func (s ThresholdStrategy) Validate() error {
	if !validThresholdType(s.thresholdType()) {
		return invalidParams("threshold_type", "invalid threshold_type %q", s.Type)
	}
	if s.Value < 0 {
		return invalidParams("threshold_value", "threshold_value must be non-negative, got %g", s.Value)
	}
	if s.ExecutionSize < 0 {
		return invalidParams("execution_size", "execution_size must be positive, got %g", s.ExecutionSize)
	}
	if s.History != "" && !validHistoryField(s.History) {
		return invalidParams("which_history", "invalid which_history %q", s.History)
	}
	if s.Window < 0 {
		return invalidParams("window_history", "window_history must be positive, got %d", s.Window)
	}
	return nil
}

func (s ThresholdStrategy) thresholdType() ThresholdType {
	if s.Type == "" {
		return ThresholdAbsolute
	}
	return s.Type
}

func (s ThresholdStrategy) executionSize() float64 { return sizeOrDefault(s.ExecutionSize) }
func (s ThresholdStrategy) historyField() HistoryField {
	return fieldOrDefault(s.History)
}
func (s ThresholdStrategy) window() int     { return windowOrDefault(s.Window) }
func (s ThresholdStrategy) minHistory() int { return minHistoryOrDefault(s.MinHistory) }

// ReturnStrategy signals on expected return, with optional volatility-scaled
// position sizing.
type ReturnStrategy struct {
	Sizing          PositionSizing
	Threshold       float64 // minimum |expected return| to act
	ExecutionSize   float64
	MaxPositionSize float64 // 0 means unconstrained
	MinPositionSize float64 // 0 means unconstrained
	History         HistoryField
	Window          int
	MinHistory      int
}

// Kind implements Strategy.
func (ReturnStrategy) Kind() string { return "return" }

// Validate implements Strategy.
func (s ReturnStrategy) Validate() error {
	if !validSizing(s.sizing()) {
		return invalidParams("position_sizing", "invalid position_sizing %q", s.Sizing)
	}
	if s.Threshold < 0 {
		return invalidParams("threshold_value", "threshold_value must be non-negative, got %g", s.Threshold)
	}
	if s.ExecutionSize < 0 {
		return invalidParams("execution_size", "execution_size must be positive, got %g", s.ExecutionSize)
	}
	if s.MaxPositionSize < 0 || s.MinPositionSize < 0 {
		return invalidParams("position_size_constraints", "position size constraints must be positive when set")
	}
	if s.MaxPositionSize > 0 && s.MinPositionSize > 0 && s.MaxPositionSize < s.MinPositionSize {
		return invalidParams("position_size_constraints",
			"max_position_size %g must be >= min_position_size %g", s.MaxPositionSize, s.MinPositionSize)
	}
	if s.History != "" && !validHistoryField(s.History) {
		return invalidParams("which_history", "invalid which_history %q", s.History)
	}
	if s.Window < 0 {
		return invalidParams("window_history", "window_history must be positive, got %d", s.Window)
	}
	return nil
}

func (s ReturnStrategy) sizing() PositionSizing {
	if s.Sizing == "" {
		return SizingFixed
	}
	return s.Sizing
}

func (s ReturnStrategy) executionSize() float64 { return sizeOrDefault(s.ExecutionSize) }
func (s ReturnStrategy) historyField() HistoryField {
	return fieldOrDefault(s.History)
}
func (s ReturnStrategy) window() int     { return windowOrDefault(s.Window) }
func (s ReturnStrategy) minHistory() int { return minHistoryOrDefault(s.MinHistory) }

// QuantileRange maps a half-open percentile range [Low, High) to an action
// and a size multiplier.
type QuantileRange struct {
	Low        float64
	High       float64
	Action     Action
	Multiplier float64
}

// Contains reports whether rank falls inside the half-open range.
func (r QuantileRange) Contains(rank float64) bool {
	return rank >= r.Low && rank < r.High
}

// QuantileStrategy maps the forecast's percentile rank within a historical
// window to a configured action via non-overlapping ranges.
type QuantileStrategy struct {
	History         HistoryField
	Window          int
	Ranges          []QuantileRange
	Sizing          PositionSizing // fixed or normalized
	ExecutionSize   float64
	MaxPositionSize float64 // 0 means unconstrained
	MinPositionSize float64 // 0 means unconstrained
	MinHistory      int
}

// Kind implements Strategy.
func (QuantileStrategy) Kind() string { return "quantile" }

// Validate implements Strategy. Overlapping ranges are rejected here, before
// any execution, so range matching is deterministic.
func (s QuantileStrategy) Validate() error {
	if s.Window <= 0 {
		return invalidParams("window_history", "window_history must be positive, got %d", s.Window)
	}
	if len(s.Ranges) == 0 {
		return invalidParams("quantile_ranges", "at least one quantile range is required")
	}
	for i, r := range s.Ranges {
		if r.Low < 0 || r.High > 100 || r.Low >= r.High {
			return invalidParams("quantile_ranges",
				"range %d must satisfy 0 <= low < high <= 100, got [%g, %g)", i, r.Low, r.High)
		}
		if !validAction(r.Action) {
			return invalidParams("quantile_ranges", "range %d has invalid action %q", i, r.Action)
		}
		if r.Multiplier < 0 || r.Multiplier > 1 {
			return invalidParams("quantile_ranges",
				"range %d multiplier must be between 0 and 1, got %g", i, r.Multiplier)
		}
	}
	if err := checkRangeOverlap(s.Ranges); err != nil {
		return err
	}
	if sz := s.sizing(); sz != SizingFixed && sz != SizingNormalized {
		return invalidParams("position_sizing", "quantile strategy supports fixed or normalized sizing, got %q", s.Sizing)
	}
	if s.ExecutionSize < 0 {
		return invalidParams("execution_size", "execution_size must be positive, got %g", s.ExecutionSize)
	}
	if s.MaxPositionSize < 0 || s.MinPositionSize < 0 {
		return invalidParams("position_size_constraints", "position size constraints must be positive when set")
	}
	if s.MaxPositionSize > 0 && s.MinPositionSize > 0 && s.MaxPositionSize < s.MinPositionSize {
		return invalidParams("position_size_constraints",
			"max_position_size %g must be >= min_position_size %g", s.MaxPositionSize, s.MinPositionSize)
	}
	if s.History != "" && !validHistoryField(s.History) {
		return invalidParams("which_history", "invalid which_history %q", s.History)
	}
	return nil
}

func (s QuantileStrategy) sizing() PositionSizing {
	if s.Sizing == "" {
		return SizingFixed
	}
	return s.Sizing
}

func (s QuantileStrategy) executionSize() float64 { return sizeOrDefault(s.ExecutionSize) }
func (s QuantileStrategy) historyField() HistoryField {
	return fieldOrDefault(s.History)
}
func (s QuantileStrategy) minHistory() int { return minHistoryOrDefault(s.MinHistory) }

// match returns the unique range containing rank. Uniqueness is guaranteed
// by the overlap check in Validate.
func (s QuantileStrategy) match(rank float64) (QuantileRange, bool) {
	for _, r := range s.Ranges {
		if r.Contains(rank) {
			return r, true
		}
	}
	return QuantileRange{}, false
}

// checkRangeOverlap rejects any pair of ranges that share percentiles.
// Ranges are half-open, so a range ending where the next begins is fine.
func checkRangeOverlap(ranges []QuantileRange) error {
	for i := 0; i < len(ranges); i++ {
		for j := i + 1; j < len(ranges); j++ {
			a, b := ranges[i], ranges[j]
			if a.Low < b.High && b.Low < a.High {
				return &ConfigError{
					Code:      ErrCodeOverlappingRanges,
					Parameter: "quantile_ranges",
					Message: fmt.Sprintf("ranges [%g, %g) and [%g, %g) overlap",
						a.Low, a.High, b.Low, b.High),
				}
			}
		}
	}
	return nil
}

// Request carries everything one execution needs. It is constructed entirely
// from caller-supplied data and never outlives the call.
type Request struct {
	Strategy        Strategy
	ForecastPrice   float64
	CurrentPrice    float64
	CurrentPosition float64
	AvailableCash   float64
	InitialCapital  float64
	History         OHLC
}

// Validate checks the common fields and delegates to the strategy variant.
// Violations are ConfigErrors; the engine rejects them before generating any
// signal.
func (r Request) Validate() error {
	if r.Strategy == nil {
		return &ConfigError{Code: ErrCodeInvalidStrategy, Message: "no strategy configured"}
	}
	if r.ForecastPrice <= 0 {
		return invalidParams("forecast_price", "forecast_price must be positive, got %g", r.ForecastPrice)
	}
	if r.CurrentPrice <= 0 {
		return &ConfigError{
			Code:      ErrCodeInvalidPrice,
			Parameter: "current_price",
			Message:   fmt.Sprintf("current_price must be positive, got %g", r.CurrentPrice),
		}
	}
	if r.CurrentPosition < 0 {
		return invalidParams("current_position", "current_position must be non-negative (long-only), got %g", r.CurrentPosition)
	}
	if r.AvailableCash < 0 {
		return invalidParams("available_cash", "available_cash must be non-negative, got %g", r.AvailableCash)
	}
	if r.InitialCapital <= 0 {
		return invalidParams("initial_capital", "initial_capital must be positive, got %g", r.InitialCapital)
	}
	if err := r.History.validate(); err != nil {
		return err
	}
	return r.Strategy.Validate()
}

func (o OHLC) validate() error {
	lengths := map[string]int{
		"open_history":  len(o.Open),
		"high_history":  len(o.High),
		"low_history":   len(o.Low),
		"close_history": len(o.Close),
	}

	ref := 0
	for name, n := range lengths {
		if n == 0 {
			continue
		}
		if n > MaxHistoryLength {
			return invalidParams(name, "history arrays cannot exceed %d elements, got %d", MaxHistoryLength, n)
		}
		if ref == 0 {
			ref = n
		} else if n != ref {
			return invalidParams("ohlc_history", "history arrays must have equal length")
		}
	}
	return nil
}

func validThresholdType(t ThresholdType) bool {
	switch t {
	case ThresholdAbsolute, ThresholdPercentage, ThresholdStdDev, ThresholdATR:
		return true
	}
	return false
}

func validHistoryField(f HistoryField) bool {
	switch f {
	case HistoryOpen, HistoryHigh, HistoryLow, HistoryClose:
		return true
	}
	return false
}

func validSizing(s PositionSizing) bool {
	switch s {
	case SizingFixed, SizingProportional, SizingNormalized:
		return true
	}
	return false
}

func sizeOrDefault(size float64) float64 {
	if size == 0 {
		return DefaultExecutionSize
	}
	return size
}

func fieldOrDefault(f HistoryField) HistoryField {
	if f == "" {
		return HistoryClose
	}
	return f
}

func windowOrDefault(w int) int {
	if w == 0 {
		return DefaultWindow
	}
	return w
}

func minHistoryOrDefault(m int) int {
	if m == 0 {
		return DefaultMinHistory
	}
	return m
}
