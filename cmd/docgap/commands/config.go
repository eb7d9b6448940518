// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nexical/docgap/cmd/docgap/internal/clierr"
	"github.com/nexical/docgap/internal/config"
	"github.com/nexical/docgap/internal/report"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create, validate and inspect docgap configuration",
	}

	cmd.AddCommand(newConfigValidateCommand())
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigSchemaCommand())

	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a configuration file (default: discovered in the current directory)",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			} else {
				found, err := config.Discover(".")
				if err != nil {
					return clierr.Wrap(clierr.CodeUsage, "no configuration file", err)
				}
				path = found
			}

			cfg, err := config.Load(path)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "configuration is invalid", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%d rule(s))\n", path, len(cfg.Rules))
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .docgap.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(dir, config.DefaultFileNames[0])
			if _, err := os.Stat(path); err == nil && !force {
				return clierr.Newf(clierr.CodeUsage, "%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return clierr.Wrap(clierr.CodeFailure, "inspect "+path, err)
			}

			data, err := config.Marshal(config.Sample())
			if err != nil {
				return clierr.Wrap(clierr.CodeFailure, "encode configuration", err)
			}
			if err := report.WriteFile(path, data); err != nil {
				return clierr.Wrap(clierr.CodeFailure, "write configuration", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "directory to write the configuration into")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")

	return cmd
}

func newConfigSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema configuration files are validated against",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(config.SchemaJSON())
			return err
		},
	}
}
