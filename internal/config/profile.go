package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"tradeengine/internal/engine"
)

// Profile is a named, reusable strategy configuration. Exactly one of the
// per-kind sections must be present and must match Kind.
type Profile struct {
	Name           string            `yaml:"name"`
	Kind           string            `yaml:"kind"`
	InitialCapital float64           `yaml:"initial_capital"`
	Threshold      *ThresholdProfile `yaml:"threshold,omitempty"`
	Return         *ReturnProfile    `yaml:"return,omitempty"`
	Quantile       *QuantileProfile  `yaml:"quantile,omitempty"`
}

// ThresholdProfile configures a threshold strategy.
type ThresholdProfile struct {
	Type          string  `yaml:"type"`
	Value         float64 `yaml:"value"`
	ExecutionSize float64 `yaml:"execution_size"`
	WhichHistory  string  `yaml:"which_history"`
	Window        int     `yaml:"window"`
	MinHistory    int     `yaml:"min_history"`
}

// ReturnProfile configures a return strategy.
type ReturnProfile struct {
	Sizing          string  `yaml:"sizing"`
	Threshold       float64 `yaml:"threshold"`
	ExecutionSize   float64 `yaml:"execution_size"`
	MaxPositionSize float64 `yaml:"max_position_size"`
	MinPositionSize float64 `yaml:"min_position_size"`
	WhichHistory    string  `yaml:"which_history"`
	Window          int     `yaml:"window"`
	MinHistory      int     `yaml:"min_history"`
}

// QuantileProfile configures a quantile strategy.
type QuantileProfile struct {
	WhichHistory    string          `yaml:"which_history"`
	Window          int             `yaml:"window"`
	Ranges          []QuantileRange `yaml:"ranges"`
	Sizing          string          `yaml:"sizing"`
	ExecutionSize   float64         `yaml:"execution_size"`
	MaxPositionSize float64         `yaml:"max_position_size"`
	MinPositionSize float64         `yaml:"min_position_size"`
	MinHistory      int             `yaml:"min_history"`
}

// QuantileRange is one percentile range in a quantile profile.
type QuantileRange struct {
	Low        float64 `yaml:"low"`
	High       float64 `yaml:"high"`
	Action     string  `yaml:"action"`
	Multiplier float64 `yaml:"multiplier"`
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// ProfileLoader loads and validates strategy profiles.
type ProfileLoader struct {
	profiles map[string]Profile
}

// NewProfileLoader creates an empty loader.
func NewProfileLoader() *ProfileLoader {
	return &ProfileLoader{profiles: map[string]Profile{}}
}

// LoadFromFile reads a YAML profile file and validates every profile,
// including the quantile overlap check. Invalid profiles reject the whole
// file.
func (pl *ProfileLoader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profile file %s: %w", path, err)
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse YAML profiles: %w", err)
	}
	if len(file.Profiles) == 0 {
		return fmt.Errorf("profile file %s defines no profiles", path)
	}

	loaded := make(map[string]Profile, len(file.Profiles))
	for _, p := range file.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profile without a name in %s", path)
		}
		if _, dup := loaded[p.Name]; dup {
			return fmt.Errorf("duplicate profile name %q", p.Name)
		}
		if _, err := p.Strategy(); err != nil {
			return fmt.Errorf("profile %q: %w", p.Name, err)
		}
		loaded[p.Name] = p
	}

	pl.profiles = loaded
	return nil
}

// Get returns the named profile.
func (pl *ProfileLoader) Get(name string) (Profile, bool) {
	p, ok := pl.profiles[name]
	return p, ok
}

// Names returns the loaded profile names.
func (pl *ProfileLoader) Names() []string {
	names := make([]string, 0, len(pl.profiles))
	for name := range pl.profiles {
		names = append(names, name)
	}
	return names
}

// Strategy builds the engine strategy variant this profile describes and
// validates it.
func (p Profile) Strategy() (engine.Strategy, error) {
	var s engine.Strategy
	switch p.Kind {
	case "threshold":
		if p.Threshold == nil {
			return nil, fmt.Errorf("threshold profile missing threshold section")
		}
		s = engine.ThresholdStrategy{
			Type:          engine.ThresholdType(p.Threshold.Type),
			Value:         p.Threshold.Value,
			ExecutionSize: p.Threshold.ExecutionSize,
			History:       engine.HistoryField(p.Threshold.WhichHistory),
			Window:        p.Threshold.Window,
			MinHistory:    p.Threshold.MinHistory,
		}
	case "return":
		if p.Return == nil {
			return nil, fmt.Errorf("return profile missing return section")
		}
		s = engine.ReturnStrategy{
			Sizing:          engine.PositionSizing(p.Return.Sizing),
			Threshold:       p.Return.Threshold,
			ExecutionSize:   p.Return.ExecutionSize,
			MaxPositionSize: p.Return.MaxPositionSize,
			MinPositionSize: p.Return.MinPositionSize,
			History:         engine.HistoryField(p.Return.WhichHistory),
			Window:          p.Return.Window,
			MinHistory:      p.Return.MinHistory,
		}
	case "quantile":
		if p.Quantile == nil {
			return nil, fmt.Errorf("quantile profile missing quantile section")
		}
		ranges := make([]engine.QuantileRange, 0, len(p.Quantile.Ranges))
		for _, r := range p.Quantile.Ranges {
			ranges = append(ranges, engine.QuantileRange{
				Low:        r.Low,
				High:       r.High,
				Action:     engine.Action(r.Action),
				Multiplier: r.Multiplier,
			})
		}
		s = engine.QuantileStrategy{
			History:         engine.HistoryField(p.Quantile.WhichHistory),
			Window:          p.Quantile.Window,
			Ranges:          ranges,
			Sizing:          engine.PositionSizing(p.Quantile.Sizing),
			ExecutionSize:   p.Quantile.ExecutionSize,
			MaxPositionSize: p.Quantile.MaxPositionSize,
			MinPositionSize: p.Quantile.MinPositionSize,
			MinHistory:      p.Quantile.MinHistory,
		}
	default:
		return nil, fmt.Errorf("unknown strategy kind %q (valid: threshold, return, quantile)", p.Kind)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
