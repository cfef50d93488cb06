package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <key> <sequence> [container]",
	Short: "Store a sequence under a key",
	Long: `Store a single sequence under a key and write the container back.
The container is restored first when it already exists.

Example:
  traceon set seq9 GATTACA reads.smrt`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		container := cfg.Container
		if len(args) == 3 {
			container = args[2]
		}

		s := newStore()
		if _, err := os.Stat(container); err == nil {
			if err := s.Restore(container); err != nil {
				return err
			}
		}
		s.Set(args[0], []byte(args[1]))
		return s.Save(container)
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}
