package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dgallion1/docbind/internal/config"
	"github.com/dgallion1/docbind/internal/fetch"
	"github.com/dgallion1/docbind/internal/pipeline"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docbind",
	Short: "Bind PDFs into one indexed, page-numbered exhibit binder",
	Long: `docbind fetches PDFs by URL, groups them into sections behind cover
pages, stamps page numbers on every page and prepends an "Exhibit List"
whose page references match the stamped numbers.

It runs as an HTTP service (docbind serve) or once from the command line
(docbind merge).`,
	Version:       gitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./docbind.yaml if present)",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads and validates configuration, letting the command's flags
// override it, and builds the logger.
func loadConfig(flags *pflag.FlagSet) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile, flags)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	return cfg, log, nil
}

func newFetcher(cfg config.Config, log *slog.Logger) *fetch.Client {
	return fetch.NewClient(fetch.Options{
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.FetchTimeout,
		Retries:    cfg.FetchRetries,
		RetryDelay: cfg.FetchRetryDelay,
		MaxBytes:   cfg.MaxDocumentBytes,
		Stats:      fetch.NewStats(cfg.RunTTL),
	}, log)
}

func mergerOptions(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		SortMode:           cfg.SortMode,
		Bookmarks:          cfg.Bookmarks,
		MaxConcurrentFetch: cfg.MaxConcurrentFetch,
		RunTTL:             cfg.RunTTL,
	}
}
