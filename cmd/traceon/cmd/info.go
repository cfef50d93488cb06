package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info [container]",
	Short: "Show record count and detected format of a container",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		container := cfg.Container
		if len(args) == 1 {
			container = args[0]
		}

		s := newStore()
		if err := s.Restore(container); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "records: %d\n", s.Size())
		fmt.Fprintf(cmd.OutOrStdout(), "format:  %s\n", s.Format())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
