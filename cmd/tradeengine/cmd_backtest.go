package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tradeengine/internal/backtest"
	"tradeengine/internal/config"
)

var (
	backtestCandles string
	backtestProfile string
	backtestConfig  string
	backtestCapital float64
	backtestWarmup  int
	backtestFormat  string
)

// backtestCmd replays a candle file through the engine with a strategy
// profile loaded from YAML.
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a candle series through the engine",
	Long: `Backtest replays a JSON candle file bar by bar, threading portfolio
state between executions the way the live orchestrator does.

Example usage:
  tradeengine backtest --candles data.json --profile conservative-threshold
  tradeengine backtest --candles data.json --profile quantile-reversion --format=json`,
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.Flags().StringVar(&backtestCandles, "candles", "", "Candle JSON file (required)")
	backtestCmd.Flags().StringVar(&backtestProfile, "profile", "", "Strategy profile name (required)")
	backtestCmd.Flags().StringVar(&backtestConfig, "config", "config/strategies.yaml", "Strategy profile YAML file")
	backtestCmd.Flags().Float64Var(&backtestCapital, "capital", 0, "Initial capital (overrides the profile)")
	backtestCmd.Flags().IntVar(&backtestWarmup, "warmup", 0, "Bars to observe before trading (default: profile window)")
	backtestCmd.Flags().StringVar(&backtestFormat, "format", "table", "Output format: table, json")
	_ = backtestCmd.MarkFlagRequired("candles")
	_ = backtestCmd.MarkFlagRequired("profile")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	loader := config.NewProfileLoader()
	if err := loader.LoadFromFile(backtestConfig); err != nil {
		return err
	}

	profile, ok := loader.Get(backtestProfile)
	if !ok {
		return fmt.Errorf("unknown profile %q in %s (available: %v)",
			backtestProfile, backtestConfig, loader.Names())
	}

	strategy, err := profile.Strategy()
	if err != nil {
		return err
	}

	capital := profile.InitialCapital
	if backtestCapital > 0 {
		capital = backtestCapital
	}

	warmup := backtestWarmup
	if warmup <= 0 {
		warmup = settings.DefaultWindowSize
	}

	candles, err := backtest.LoadCandles(backtestCandles)
	if err != nil {
		return err
	}

	runner, err := backtest.NewRunner(backtest.Config{
		Strategy:       strategy,
		InitialCapital: capital,
		Warmup:         warmup,
	})
	if err != nil {
		return err
	}

	summary, err := runner.Run(candles)
	if err != nil {
		return err
	}

	if backtestFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	}
	return printSummary(summary)
}

func printSummary(s *backtest.Summary) error {
	fmt.Printf("Backtest %s\n\n", s.RunID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Bars\t%d\n", s.Bars)
	fmt.Fprintf(w, "Executions\t%d\n", s.Executed)
	fmt.Fprintf(w, "Trades\t%d\n", len(s.Trades))
	fmt.Fprintf(w, "Final cash\t%.2f\n", s.FinalCash)
	fmt.Fprintf(w, "Final position\t%.4f\n", s.FinalPosition)
	fmt.Fprintf(w, "Final value\t%.2f\n", s.FinalValue)
	fmt.Fprintf(w, "Return\t%.2f%%\n", s.Return*100)
	fmt.Fprintf(w, "Stopped\t%t\n", s.Stopped)
	return w.Flush()
}
