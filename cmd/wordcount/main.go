package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nvandessel/wordcount/internal/config"
	"github.com/nvandessel/wordcount/internal/logging"
	"github.com/nvandessel/wordcount/internal/store"
	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wordcount",
		Short: "Count words and report them by frequency",
		Long: `wordcount tallies word occurrences in text and prints a report
ordered by frequency, most frequent first.

A word is a run of letters and digits within one line. Everything else,
including punctuation and line breaks, separates words. Counting is
case-sensitive.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug, or trace (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newCountCmd(),
		newCompareCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}

// app carries what every command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	runs   *logging.RunLogger
}

// newApp loads configuration, applies global flags and sets up logging.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
	}
	if dir, err := config.Dir(); err == nil {
		a.runs = logging.NewRunLogger(dir, cfg.Logging.Level)
	}
	return a, nil
}

// openHistory opens the SQLite history database named by the configuration.
func (a *app) openHistory(ctx context.Context) (*store.SQLiteHistoryStore, error) {
	path, err := a.cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	a.logger.Debug("opening history", "path", path)
	return store.NewSQLiteHistoryStore(ctx, path)
}

func (a *app) Close() {
	a.runs.Close()
}
