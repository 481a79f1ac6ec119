// cmd/digitizer/cmd/counter.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamzrod/bench-digitizer/internal/counter"
)

var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Print the next run number without advancing it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := counter.Open(c.Counter.Path)
		if err != nil {
			return err
		}
		next, err := store.Peek()
		if err != nil {
			return err
		}

		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: next run %d\n", store.Path(), next)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), next)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(counterCmd)
}
