// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Markdown renders run as a Markdown document.
func Markdown(run Run) string {
	var b strings.Builder
	b.WriteString(renderHeader(1, "Documentation drift report"))

	rows := make([][]string, 0, len(run.Results))
	for _, r := range run.Results {
		rows = append(rows, []string{
			"`" + string(r.Status) + "`",
			escapeCell(relPath(run.Root, r.DocPath)),
			escapeCell(strings.Join(relPaths(run.Root, r.SourceFiles), ", ")),
			escapeCell(r.DriftReason),
		})
	}
	b.WriteString(renderTable([]string{"Status", "Document", "Sources", "Reason"}, rows))

	s := Summarize(run.Results)
	fmt.Fprintf(&b, "\n**%d** checked, **%d** fresh, **%d** stale (timestamp), **%d** stale (semantic), **%d** unknown.\n",
		s.Total, s.Fresh, s.StaleTimestamp, s.StaleSemantic, s.Unknown)

	var details []string
	for _, r := range run.Results {
		for _, d := range r.DriftingSources {
			line := fmt.Sprintf("`%s` → `%s`: %s", relPath(run.Root, r.DocPath), relPath(run.Root, d.SourceFile), d.Reason)
			if d.LastCommit != nil {
				line += fmt.Sprintf(" (%s %s)", shortHash(d.LastCommit.Hash), d.LastCommit.Message)
			}
			details = append(details, line)
		}
	}
	if len(details) > 0 {
		b.WriteString("\n")
		b.WriteString(renderHeader(2, "Drifting sources"))
		b.WriteString(renderList(details))
	}
	return b.String()
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// renderTable emits a pipe table. Rows keep the order of the check results, which the
// engine already makes deterministic.
func renderTable(headers []string, rows [][]string) string {
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("| ")
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString(" |\n")
	}

	writeRow(headers)
	b.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

func renderList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return b.String()
}

func renderHeader(level int, text string) string {
	return strings.Repeat("#", level) + " " + text + "\n\n"
}

// WriteFile replaces path with content so readers never see a partial report or config.
// Missing parent directories are created; the file ends up world-readable.
func WriteFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".docgap-report-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
