// cmd/digitizer/cmd/validate.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "config ok: %s\n", cfgPath)
		if verbose {
			fmt.Fprintf(out, "  instrument: %s via %s (%s)\n", c.Instrument.Name, c.Instrument.Transport, c.Instrument.Address)
			fmt.Fprintf(out, "  acquisition: %s, %d samples at %d S/s, buffer %q\n",
				c.Acquisition.Quantity, c.Acquisition.SampleCount, c.Acquisition.SampleRate, c.Acquisition.BufferName)
			fmt.Fprintf(out, "  output: %s/%s_<run>.csv, counter %s\n", c.Output.Dir, c.Output.Prefix, c.Counter.Path)
			if c.Index.Enabled() {
				fmt.Fprintf(out, "  index: %s table %s\n", c.Index.Driver, c.Index.Table)
			}
			if c.Status.Enabled() {
				fmt.Fprintf(out, "  status: %s unit %d slot %d\n", c.Status.Endpoint, c.Status.UnitID, c.Status.BaseSlot)
			}
			if c.Metrics.Addr != "" {
				fmt.Fprintf(out, "  metrics: %s\n", c.Metrics.Addr)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
