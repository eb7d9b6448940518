// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/nexical/docgap/internal/drift"
)

type palette struct {
	status map[drift.Status]*color.Color
	header *color.Color
	dim    *color.Color
	warn   *color.Color
	ok     *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		status: map[drift.Status]*color.Color{
			drift.StatusFresh:          color.New(color.FgGreen),
			drift.StatusStaleTimestamp: color.New(color.FgYellow),
			drift.StatusStaleSemantic:  color.New(color.FgRed, color.Bold),
			drift.StatusUnknown:        color.New(color.FgHiBlack),
		},
		header: color.New(color.Bold),
		dim:    color.New(color.FgHiBlack),
		warn:   color.New(color.FgYellow),
		ok:     color.New(color.FgGreen),
	}
	if noColor {
		for _, c := range p.all() {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) all() []*color.Color {
	out := []*color.Color{p.header, p.dim, p.warn, p.ok}
	for _, c := range p.status {
		out = append(out, c)
	}
	return out
}

func renderText(w io.Writer, run Run, opts Options) error {
	p := newPalette(opts.NoColor)

	headers := []string{"STATUS", "DOCUMENT", "SOURCES", "REASON"}
	rows := make([][]string, 0, len(run.Results))
	for _, r := range run.Results {
		rows = append(rows, []string{
			string(r.Status),
			relPath(run.Root, r.DocPath),
			strings.Join(relPaths(run.Root, r.SourceFiles), ", "),
			r.DriftReason,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, colors []*color.Color) {
		var line strings.Builder
		for i, c := range cells {
			if colors[i] != nil {
				line.WriteString(colors[i].Sprint(c))
			} else {
				line.WriteString(c)
			}
			if i < len(cells)-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-len(c)+2))
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteString("\n")
	}

	writeRow(headers, []*color.Color{p.header, p.header, p.header, p.header})
	for i, row := range rows {
		writeRow(row, []*color.Color{p.status[run.Results[i].Status], p.dim, p.dim, nil})
	}

	s := Summarize(run.Results)
	b.WriteString("\n")
	if s.Drifting() > 0 {
		b.WriteString(p.warn.Sprintf("[!] Found %d drifting file(s) of %d: %d stale (timestamp), %d stale (semantic), %d unknown.",
			s.Drifting(), s.Total, s.StaleTimestamp, s.StaleSemantic, s.Unknown))
	} else {
		b.WriteString(p.ok.Sprintf("All documentation is up to date (%d checked).", s.Total))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func renderCoverageText(w io.Writer, run CoverageRun, opts Options) error {
	p := newPalette(opts.NoColor)

	var b strings.Builder
	var total float64
	for _, r := range run.Reports {
		total += r.Score
		score := fmt.Sprintf("%5.1f%%", r.Score*100)
		c := p.ok
		if r.Score < run.MinScore {
			c = p.warn
		}
		b.WriteString(c.Sprint(score))
		b.WriteString("  ")
		b.WriteString(relPath(run.Root, r.File))
		switch {
		case r.Profile == "":
			b.WriteString(p.dim.Sprint("  (no language profile)"))
		case len(r.Missing) > 0:
			names := make([]string, len(r.Missing))
			for i, e := range r.Missing {
				names[i] = e.Name
			}
			b.WriteString(p.dim.Sprint("  missing: " + strings.Join(names, ", ")))
		}
		b.WriteString("\n")
	}
	if n := len(run.Reports); n > 0 {
		fmt.Fprintf(&b, "\nAverage coverage %.1f%% across %d file(s).\n", total/float64(n)*100, n)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
