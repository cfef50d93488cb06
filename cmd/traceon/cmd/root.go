package cmd

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/traceon/traceon/pkg/config"
	"github.com/traceon/traceon/pkg/store"
)

var (
	cfgPath  string
	logLevel string
	workers  int

	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "traceon",
	Short: "TracEon - in-memory sequence record store",
	Long: `TracEon is an in-memory, content-addressed store for FASTA and FASTQ
records. Sequences are held in compact self-describing binary encodings
and persist to a single-file binary container.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.DefaultConfig()
		if cfgPath != "" {
			loaded, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = workers
		}

		logger = slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
			Level:   parseLevel(cfg.Logging.Level),
			NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
		})).With("op", ksuid.New().String())
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to a config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "Loader parallelism cap (0 = one per CPU)")
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newStore builds a store wired to the CLI configuration and logger.
func newStore() *store.Store {
	return store.NewWithConfig(store.StoreConfig{
		MaxWorkers: cfg.Workers,
		Logger:     logger,
	})
}
