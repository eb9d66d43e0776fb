package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vilaca/gh-lookup/internal/config"
	"github.com/vilaca/gh-lookup/internal/service"
	"github.com/vilaca/gh-lookup/internal/termui"
	"github.com/vilaca/gh-lookup/internal/theme"
)

// errLookupFailed makes the command exit non-zero after the printer has shown the message.
var errLookupFailed = errors.New("lookup failed")

func lookupCmd(configPath *string) *cobra.Command {
	var themeName string

	cmd := &cobra.Command{
		Use:   "lookup <username>",
		Short: "Look up a user from the terminal",
		Long: `Fetches the user's profile and, if it exists, their most recently updated
repositories, and prints them as terminal cards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := theme.Parse(themeName)
			if err != nil {
				return err
			}

			cfg, err := config.NewLoader().Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := setupLogger(cfg, os.Stderr)

			client, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}

			lookupService := service.NewLookupService(client, logger, nil)
			printer := termui.NewPrinter(cmd.OutOrStdout(), t)

			result := lookupService.Lookup(cmd.Context(), args[0], printer)
			if result.Err != nil {
				cmd.SilenceErrors = true
				return errLookupFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&themeName, "theme", string(theme.Default), "colour scheme: light or dark")

	return cmd
}
