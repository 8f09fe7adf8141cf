// Package config loads runtime settings from the environment and strategy
// profiles from YAML files.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings carries the tunables the CLI applies around the engine. The
// engine itself takes everything per-request; these only seed defaults and
// logging.
type Settings struct {
	LogLevel             string  `envconfig:"LOG_LEVEL" default:"info"`
	DefaultExecutionSize float64 `envconfig:"DEFAULT_EXECUTION_SIZE" default:"1.0"`
	DefaultWindowSize    int     `envconfig:"DEFAULT_WINDOW_SIZE" default:"20"`
	DefaultMinHistory    int     `envconfig:"DEFAULT_MIN_HISTORY_LENGTH" default:"2"`
	MaxHistoryWindow     int     `envconfig:"MAX_HISTORY_WINDOW" default:"10000"`
}

// LoadSettings reads settings from the environment, seeded from a .env file
// when one exists in the working directory.
func LoadSettings() (Settings, error) {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return Settings{}, fmt.Errorf("failed to process environment settings: %w", err)
	}
	if s.DefaultExecutionSize <= 0 {
		return Settings{}, fmt.Errorf("DEFAULT_EXECUTION_SIZE must be positive, got %g", s.DefaultExecutionSize)
	}
	if s.DefaultWindowSize <= 0 {
		return Settings{}, fmt.Errorf("DEFAULT_WINDOW_SIZE must be positive, got %d", s.DefaultWindowSize)
	}
	return s, nil
}
