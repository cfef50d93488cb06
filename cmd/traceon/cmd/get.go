package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var withQuality bool

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <key> [container]",
	Short: "Print the sequence stored under a key",
	Long: `Restore a binary container and print the decoded sequence for a key.
With --quality, the quality string of a FASTQ record is printed on a
second line.

Example:
  traceon get seq1 reads.smrt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		container := cfg.Container
		if len(args) == 2 {
			container = args[1]
		}

		s := newStore()
		if err := s.Restore(container); err != nil {
			return err
		}

		if withQuality {
			rec, ok := s.GetFastq(key)
			if !ok {
				return fmt.Errorf("no FASTQ record for key %q", key)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", rec.Sequence, rec.Quality)
			return nil
		}

		if !s.Has(key) {
			return fmt.Errorf("no record for key %q", key)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", s.Get(key))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVarP(&withQuality, "quality", "q", false, "Also print the quality string")
}
