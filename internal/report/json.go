// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nexical/docgap/internal/coverage"
	"github.com/nexical/docgap/internal/drift"
)

type checkEnvelope struct {
	RunID       string                  `json:"runId"`
	GeneratedAt time.Time               `json:"generatedAt"`
	Root        string                  `json:"root"`
	Summary     Summary                 `json:"summary"`
	Results     []drift.FileCheckResult `json:"results"`
}

type coverageEnvelope struct {
	RunID       string            `json:"runId"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Root        string            `json:"root"`
	MinScore    float64           `json:"minScore"`
	Reports     []coverage.Report `json:"reports"`
}

func renderJSON(w io.Writer, run Run) error {
	results := run.Results
	if results == nil {
		results = []drift.FileCheckResult{}
	}
	return writeJSON(w, checkEnvelope{
		RunID:       run.ID,
		GeneratedAt: run.GeneratedAt,
		Root:        run.Root,
		Summary:     Summarize(run.Results),
		Results:     results,
	})
}

func renderCoverageJSON(w io.Writer, run CoverageRun) error {
	reports := run.Reports
	if reports == nil {
		reports = []coverage.Report{}
	}
	return writeJSON(w, coverageEnvelope{
		RunID:       run.ID,
		GeneratedAt: run.GeneratedAt,
		Root:        run.Root,
		MinScore:    run.MinScore,
		Reports:     reports,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
