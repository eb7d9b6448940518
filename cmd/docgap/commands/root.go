// SPDX-License-Identifier: AGPL-3.0-or-later

/*
docgap - detects documentation that has drifted away from the code it describes.
It compares git history of documents and their sources, ignores formatting-only changes,
and reports which declared entities a document never mentions.

Copyright (C) 2025  Nexical

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexical/docgap/cmd/docgap/internal/clierr"
)

// NewRootCmd constructs the docgap root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("DOCGAP_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "docgap",
		Short:         "docgap - documentation drift detection",
		Long:          "docgap checks whether documentation is stale relative to the source files it describes, using git history rather than file timestamps.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "invalid arguments", err)
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of docgap",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "docgap version %s\n", version)
		},
	})

	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewCoverageCommand())
	cmd.AddCommand(NewWatchCommand())
	cmd.AddCommand(NewConfigCommand())

	return cmd
}

// newLogger builds a stderr logger from the persistent flags.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := "warn"
	if f := cmd.Flags().Lookup("log-level"); f != nil {
		level = f.Value.String()
	}
	if v, err := cmd.Flags().GetBool("verbose"); err == nil && v {
		level = "debug"
	}

	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
