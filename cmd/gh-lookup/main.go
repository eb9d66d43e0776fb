package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vilaca/gh-lookup/internal/api"
	"github.com/vilaca/gh-lookup/internal/api/github"
	"github.com/vilaca/gh-lookup/internal/config"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "gh-lookup",
		Short: "Look up GitHub users and their repositories",
		Long: `gh-lookup serves a web page that looks up a GitHub user's public profile
and most recently updated repositories. The same lookup is available from the terminal.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default: CONFIG_PATH or ./config.yaml)")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(lookupCmd(&configPath))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "gh-lookup %s\n", version)
			return err
		},
	}
}

// setupLogger builds the process logger from configuration and makes it the slog default.
func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(cfg.Log.Level),
		AddSource: strings.EqualFold(cfg.Log.Level, "debug"),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newGitHubClient creates the upstream client with the configured timeout and concurrency.
func newGitHubClient(cfg *config.Config, opts ...github.Option) (*github.Client, error) {
	httpClient := &http.Client{
		Timeout: cfg.GitHub.RequestTimeout,
	}

	return github.NewClient(api.ClientConfig{
		BaseURL:       cfg.GitHub.APIURL,
		WebURL:        cfg.GitHub.WebURL,
		MaxConcurrent: cfg.GitHub.MaxConcurrent,
	}, httpClient, opts...)
}
