// SPDX-License-Identifier: AGPL-3.0-or-later

// Package coverage checks whether documentation mentions the entities its sources declare.
package coverage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nexical/docgap/internal/errkind"
	"github.com/nexical/docgap/internal/normalize"
)

// Entity is a named declaration found in source.
type Entity struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	Line int    `json:"line"`
}

// Report is the coverage of one source file.
type Report struct {
	File    string   `json:"file"`
	Score   float64  `json:"score"`
	Present []Entity `json:"present"`
	Missing []Entity `json:"missing"`
	// Profile is empty when no language profile matched the file.
	Profile string `json:"profile,omitempty"`
}

// Score is present / (present + missing); 1 when there is nothing to document.
func Score(present, missing int) float64 {
	total := present + missing
	if total == 0 {
		return 1
	}
	return float64(present) / float64(total)
}

// ExtractEntities scans text line by line. The first pattern matching a line wins.
// Lines are numbered from 1.
func ExtractEntities(text string, profile *Profile) []Entity {
	if profile == nil {
		return nil
	}
	var entities []Entity
	for i, line := range strings.Split(text, "\n") {
		for _, p := range profile.Patterns {
			m := p.Re.FindStringSubmatch(line)
			if m == nil || controlFlow[m[1]] {
				continue
			}
			entities = append(entities, Entity{Name: m[1], Kind: p.Kind, Line: i + 1})
			break
		}
	}
	return entities
}

// Analyzer reads source files and scores them against documentation text.
type Analyzer struct {
	Logger *slog.Logger
}

// Analyze returns one report per source file, in input order.
func (a *Analyzer) Analyze(ctx context.Context, sourceFiles []string, docText string) ([]Report, error) {
	reports := make([]Report, 0, len(sourceFiles))
	for _, f := range sourceFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := a.AnalyzeFile(ctx, f, docText)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// AnalyzeFile scores a single source file. A file without a matching profile scores 0
// and is not read.
func (a *Analyzer) AnalyzeFile(_ context.Context, path, docText string) (Report, error) {
	report := Report{File: path, Present: []Entity{}, Missing: []Entity{}}

	profile := ProfileFor(path)
	if profile == nil {
		a.logger().Debug("no language profile", "file", path)
		return report, nil
	}
	report.Profile = profile.Name

	data, err := os.ReadFile(path) //nolint:gosec // caller-supplied source list
	if err != nil {
		return Report{}, errkind.E(errkind.ReadFailed, "read source", path, err)
	}

	stripped := normalize.StripComments(string(data), filepath.Ext(path))
	for _, e := range ExtractEntities(stripped, profile) {
		if strings.Contains(docText, e.Name) {
			report.Present = append(report.Present, e)
		} else {
			report.Missing = append(report.Missing, e)
		}
	}
	report.Score = Score(len(report.Present), len(report.Missing))
	return report, nil
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
