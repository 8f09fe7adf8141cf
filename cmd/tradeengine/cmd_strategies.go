package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// strategiesCmd lists the supported strategies and their parameters.
var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List supported trading strategies",
	RunE:  runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runStrategies(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "Strategy\tDescription\tKey parameters")
	fmt.Fprintln(w, "--------\t-----------\t--------------")
	fmt.Fprintln(w, "threshold\tSignals when the forecast-vs-price gap exceeds a threshold\tthreshold_type (absolute, percentage, std_dev, atr), threshold_value, execution_size")
	fmt.Fprintln(w, "return\tSignals on expected return with optional volatility sizing\tposition_sizing (fixed, proportional, normalized), threshold_value, execution_size")
	fmt.Fprintln(w, "quantile\tMaps the forecast's percentile rank to configured actions\twhich_history, window_history, quantile_ranges (non-overlapping)")

	return w.Flush()
}
