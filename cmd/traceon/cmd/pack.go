package cmd

import (
	"github.com/spf13/cobra"
)

// packCmd represents the pack command
var packCmd = &cobra.Command{
	Use:   "pack <sequence-file> [container]",
	Short: "Load a FASTA/FASTQ file and save it as a binary container",
	Long: `Load a FASTA or FASTQ file (plain or gzip-compressed) and save the
encoded store as a binary container.

Example:
  traceon pack reads.fastq.gz reads.smrt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cfg.Container
		if len(args) == 2 {
			out = args[1]
		}

		s := newStore()
		if err := s.LoadFile(args[0]); err != nil {
			return err
		}
		return s.Save(out)
	},
}

func init() {
	rootCmd.AddCommand(packCmd)
}
