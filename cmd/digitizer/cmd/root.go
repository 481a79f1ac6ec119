// cmd/digitizer/cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tamzrod/bench-digitizer/internal/config"
)

var (
	// Global flags
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "digitizer",
	Short: "Triggered digitizer capture for a bench DMM",
	Long: `Arms a bench digital multimeter for an externally triggered capture,
waits for the buffer to fill, drains it and writes a numbered CSV artifact.

Examples:
  digitizer validate -c bench.yaml           # Check a config file
  digitizer identify -c bench.yaml           # Print the instrument *IDN? reply
  digitizer run -c bench.yaml --runs 10      # Capture ten triggered runs
  digitizer counter -c bench.yaml            # Show the next run number`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "digitizer.yaml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig runs the load, validate, normalize sequence.
func loadConfig() (*config.Config, error) {
	c, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if err := config.Validate(c); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(c)
	return c, nil
}
