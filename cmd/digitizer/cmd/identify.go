// cmd/digitizer/cmd/identify.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tamzrod/bench-digitizer/internal/session"
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Open the instrument session and print its *IDN? reply",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}

		s, err := session.Open(c.Instrument)
		if err != nil {
			return fmt.Errorf("session open failed (transport=%s): %w", c.Instrument.Transport, err)
		}
		defer s.Close()

		idn, err := s.Query("*IDN?")
		if err != nil {
			return fmt.Errorf("identify failed (address=%s): %w", c.Instrument.Address, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(idn))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}
