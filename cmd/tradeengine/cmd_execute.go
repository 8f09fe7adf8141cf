package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tradeengine/internal/engine"
)

var executeInput string

// executeCmd runs a single execution request from a JSON file or stdin and
// prints the result JSON.
var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Execute one trading-signal request",
	Long: `Execute reads a JSON execution request (strategy_kind selects the
strategy), runs the engine once and prints the result.

Example usage:
  tradeengine execute --input request.json
  cat request.json | tradeengine execute`,
	RunE: runExecute,
}

func init() {
	rootCmd.AddCommand(executeCmd)
	executeCmd.Flags().StringVar(&executeInput, "input", "-", "Request JSON file, - for stdin")
}

func runExecute(cmd *cobra.Command, args []string) error {
	data, err := readInput(executeInput)
	if err != nil {
		return err
	}

	req, err := engine.ParseRequest(data)
	if err != nil {
		return err
	}

	res, err := engine.Execute(req)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(res)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file %s: %w", path, err)
	}
	return data, nil
}
