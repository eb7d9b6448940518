// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexical/docgap/cmd/docgap/internal/clierr"
	"github.com/nexical/docgap/internal/coverage"
	"github.com/nexical/docgap/internal/report"
	"github.com/nexical/docgap/pkg/docgap"
)

// NewCoverageCommand creates the coverage command.
func NewCoverageCommand() *cobra.Command {
	var (
		docPath    string
		configPath string
		rootDir    string
		minScore   float64
		format     string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "coverage [files...]",
		Short: "Measure how many declared entities the documentation mentions",
		Long: `Extract class and function names from source files and report which of them the
documentation mentions. With files, they are scored against --doc. Without files, every
document matched by the configured rules is scored against its own sources.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "invalid --format", err)
			}
			if f != report.FormatText && f != report.FormatJSON {
				return clierr.Newf(clierr.CodeUsage, "coverage supports text and json output, got %q", format)
			}
			root, err := filepath.Abs(rootDir)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "resolve project root", err)
			}
			logger := newLogger(cmd)
			threshold := minScore

			var reports []coverage.Report
			if len(args) > 0 {
				if docPath == "" {
					return clierr.New(clierr.CodeUsage, "--doc is required when files are given")
				}
				doc, err := os.ReadFile(docPath) //nolint:gosec // path is chosen by the user
				if err != nil {
					return clierr.Wrap(clierr.CodeFailure, "read documentation", err)
				}
				files := make([]string, len(args))
				for i, a := range args {
					files[i], _ = filepath.Abs(a)
				}
				reports, err = docgap.Coverage(cmd.Context(), files, string(doc), docgap.WithLogger(logger))
				if err != nil {
					return clierr.Classify("coverage failed", err)
				}
			} else {
				cfg, err := loadConfig(root, configPath)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("min-score") {
					threshold = cfg.Coverage.MinScore
				}
				docs, err := docgap.CoverageForRules(cmd.Context(), root, cfg, docgap.WithLogger(logger))
				if err != nil {
					return clierr.Classify("coverage failed", err)
				}
				for _, d := range docs {
					reports = append(reports, d.Reports...)
				}
			}

			var out bytes.Buffer
			run := report.NewCoverageRun(root, reports, threshold)
			if err := report.RenderCoverage(&out, f, run, report.Options{NoColor: outputPath != ""}); err != nil {
				return clierr.Wrap(clierr.CodeFailure, "render report", err)
			}
			if err := emit(cmd, outputPath, &out); err != nil {
				return err
			}
			return belowThreshold(reports, threshold)
		},
	}

	cmd.Flags().StringVar(&docPath, "doc", "", "documentation file to score the given files against")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the configuration file (default: discovered in --root)")
	cmd.Flags().StringVar(&rootDir, "root", ".", "project root used when no files are given")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "fail when a profiled file scores below this value (0-1)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the report to a file instead of stdout")

	return cmd
}

// belowThreshold fails when any file with a language profile scores under minScore.
func belowThreshold(reports []coverage.Report, minScore float64) error {
	if minScore <= 0 {
		return nil
	}
	var low []string
	for _, r := range reports {
		if r.Profile != "" && r.Score < minScore {
			low = append(low, r.File)
		}
	}
	if len(low) == 0 {
		return nil
	}
	return clierr.Newf(clierr.CodeDrift, "%d file(s) scored below %.2f: %s", len(low), minScore, strings.Join(low, ", "))
}
