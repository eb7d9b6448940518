// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report renders check and coverage results for terminals, CI and files.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nexical/docgap/internal/coverage"
	"github.com/nexical/docgap/internal/drift"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatGitHub   Format = "github"
)

// Formats lists the accepted check formats.
var Formats = []Format{FormatText, FormatJSON, FormatMarkdown, FormatGitHub}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, joinFormats(Formats))
}

func joinFormats(fs []Format) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}

// Summary counts results per status.
type Summary struct {
	Total          int `json:"total"`
	Fresh          int `json:"fresh"`
	StaleTimestamp int `json:"staleTimestamp"`
	StaleSemantic  int `json:"staleSemantic"`
	Unknown        int `json:"unknown"`
}

// Drifting is the number of results that are not FRESH.
func (s Summary) Drifting() int { return s.Total - s.Fresh }

// Summarize tallies results.
func Summarize(results []drift.FileCheckResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case drift.StatusFresh:
			s.Fresh++
		case drift.StatusStaleTimestamp:
			s.StaleTimestamp++
		case drift.StatusStaleSemantic:
			s.StaleSemantic++
		case drift.StatusUnknown:
			s.Unknown++
		}
	}
	return s
}

// Run is one rendered check.
type Run struct {
	ID          string
	GeneratedAt time.Time
	Root        string
	Results     []drift.FileCheckResult
	// Strict escalates GitHub annotations from warnings to errors.
	Strict bool
}

// NewRun stamps results with a fresh run ID and the current time.
func NewRun(root string, results []drift.FileCheckResult) Run {
	return Run{ID: uuid.NewString(), GeneratedAt: time.Now().UTC(), Root: root, Results: results}
}

// Options tune rendering.
type Options struct {
	NoColor bool
}

// Render writes run in the given format.
func Render(w io.Writer, f Format, run Run, opts Options) error {
	switch f {
	case FormatText:
		return renderText(w, run, opts)
	case FormatJSON:
		return renderJSON(w, run)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(run))
		return err
	case FormatGitHub:
		return renderGitHub(w, run)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// CoverageRun is one rendered coverage pass.
type CoverageRun struct {
	ID          string
	GeneratedAt time.Time
	Root        string
	Reports     []coverage.Report
	MinScore    float64
}

// NewCoverageRun stamps reports with a fresh run ID and the current time.
func NewCoverageRun(root string, reports []coverage.Report, minScore float64) CoverageRun {
	return CoverageRun{ID: uuid.NewString(), GeneratedAt: time.Now().UTC(), Root: root, Reports: reports, MinScore: minScore}
}

// RenderCoverage writes coverage reports as text or JSON.
func RenderCoverage(w io.Writer, f Format, run CoverageRun, opts Options) error {
	switch f {
	case FormatText:
		return renderCoverageText(w, run, opts)
	case FormatJSON:
		return renderCoverageJSON(w, run)
	default:
		return fmt.Errorf("format %q is not supported for coverage", f)
	}
}

// relPath shows path relative to root when it lies beneath it.
func relPath(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func relPaths(root string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = relPath(root, p)
	}
	return out
}
