// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nexical/docgap/cmd/docgap/internal/clierr"
	"github.com/nexical/docgap/internal/config"
	"github.com/nexical/docgap/internal/report"
)

// resolveRoot returns the absolute project root from an optional [dir] argument.
func resolveRoot(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeUsage, "resolve project root", err)
	}
	return root, nil
}

// loadConfig reads path (relative to root) or discovers the default file in root.
func loadConfig(root, path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault(root)
	}
	if err != nil {
		// A missing or unreadable config file is a usage problem, not a history failure.
		return nil, clierr.Wrap(clierr.CodeUsage, "load configuration", err)
	}
	return cfg, nil
}

// emit writes rendered output to path atomically, or to the command's stdout.
func emit(cmd *cobra.Command, path string, out *bytes.Buffer) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(out.Bytes())
		return err
	}
	if err := report.WriteFile(path, out.Bytes()); err != nil {
		return clierr.Wrap(clierr.CodeFailure, "write report", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)
	return nil
}

// usageArgs makes positional argument errors exit with the usage code.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return clierr.Wrap(clierr.CodeUsage, "invalid arguments", err)
		}
		return nil
	}
}
