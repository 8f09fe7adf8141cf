package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tradeengine/internal/config"
)

var settings config.Settings

// rootCmd is the base command for the tradeengine CLI.
var rootCmd = &cobra.Command{
	Use:   "tradeengine",
	Short: "Stateless trading-signal execution engine",
	Long: `tradeengine computes a single recommended trading action from a price
forecast, the current market price, portfolio state and a strategy
configuration. It supports threshold, return and quantile strategies with
capital-constrained, long-only position management.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = config.LoadSettings()
		if err != nil {
			return err
		}

		level, err := zerolog.ParseLevel(settings.LogLevel)
		if err != nil {
			level = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(level)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
