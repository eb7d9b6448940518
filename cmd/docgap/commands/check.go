// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nexical/docgap/cmd/docgap/internal/clierr"
	"github.com/nexical/docgap/internal/config"
	"github.com/nexical/docgap/internal/drift"
	"github.com/nexical/docgap/internal/metrics"
	"github.com/nexical/docgap/internal/report"
	"github.com/nexical/docgap/pkg/docgap"
)

// checkFlags are shared by check and watch.
type checkFlags struct {
	configPath  string
	format      string
	noColor     bool
	concurrency int
}

func (f *checkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "path to the configuration file (default: discovered in the project root)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "output format: text, json, markdown, github")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable coloured output")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "documents checked at once (default: from configuration)")
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	var (
		flags       checkFlags
		strict      bool
		outputPath  string
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Check documentation for drift against its source files",
		Long: `Check every document matched by the configured rules against the source files it
describes. A document whose sources changed after it was last updated is reported as
STALE_TIMESTAMP, or STALE_SEMANTIC when the change altered more than formatting.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(flags.format)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "invalid --format", err)
			}
			root, err := resolveRoot(args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(root, flags.configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cmd)

			var rec *metrics.Recorder
			if metricsFile != "" {
				rec = metrics.New()
			}

			results, err := runCheck(cmd.Context(), root, cfg, flags, logger, rec)
			if err != nil {
				return err
			}

			run := report.NewRun(root, results)
			run.Strict = strict

			var out bytes.Buffer
			if err := report.Render(&out, format, run, report.Options{NoColor: flags.noColor || outputPath != ""}); err != nil {
				return clierr.Wrap(clierr.CodeFailure, "render report", err)
			}
			if err := emit(cmd, outputPath, &out); err != nil {
				return err
			}

			if rec != nil {
				if err := rec.WriteTextfile(metricsFile); err != nil {
					return clierr.Wrap(clierr.CodeFailure, "write metrics", err)
				}
			}

			if strict {
				if n := report.Summarize(results).Drifting(); n > 0 {
					return clierr.Newf(clierr.CodeDrift, "%d document(s) are not fresh", n)
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 1 when any document is not fresh")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file")

	return cmd
}

func runCheck(ctx context.Context, root string, cfg *config.Config, flags checkFlags, logger *slog.Logger, rec *metrics.Recorder) ([]drift.FileCheckResult, error) {
	opts := []docgap.Option{docgap.WithLogger(logger), docgap.WithConcurrency(flags.concurrency)}
	if rec != nil {
		opts = append(opts, docgap.WithMetrics(rec))
	}
	results, err := docgap.Run(ctx, root, cfg, opts...)
	if err != nil {
		return nil, clierr.Classify("check failed", err)
	}
	return results, nil
}
