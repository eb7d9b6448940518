// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nexical/docgap/internal/drift"
)

const annotationTitle = "Drift Detected"

// renderGitHub emits workflow commands that GitHub Actions turns into file annotations.
func renderGitHub(w io.Writer, run Run) error {
	level := "warning"
	if run.Strict {
		level = "error"
	}

	var b strings.Builder
	drifting := 0
	for _, r := range run.Results {
		if r.Status == drift.StatusFresh {
			continue
		}
		drifting++
		reason := r.DriftReason
		if reason == "" {
			reason = "Unknown"
		}
		fmt.Fprintf(&b, "::%s file=%s,title=%s::%s\n",
			level,
			escapeProperty(relPath(run.Root, r.DocPath)),
			escapeProperty(annotationTitle),
			escapeData("Documentation is stale. Reason: "+reason))
	}
	if drifting > 0 {
		fmt.Fprintf(&b, "Drift detected in %d file(s).\n", drifting)
	} else {
		b.WriteString("Documentation is fresh.\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

var (
	dataEscaper     = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
)

func escapeData(s string) string     { return dataEscaper.Replace(s) }
func escapeProperty(s string) string { return propertyEscaper.Replace(s) }
