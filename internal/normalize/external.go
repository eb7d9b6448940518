// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nexical/docgap/internal/errkind"
)

// Placeholders substituted into External.Command arguments.
const (
	PlaceholderFile = "{file}"
	PlaceholderDir  = "{dir}"
	PlaceholderOut  = "{out}"
)

var (
	fileEnvelope  = regexp.MustCompile(`(?s)<file[^>]*>(.*?)</file>`)
	fencedPayload = regexp.MustCompile("(?s)```[^\\n]*\\n(.*?)```")
)

// External pipes text through a language-aware tool (a formatter or minifier).
//
// Each call writes the text to a private scratch directory which is removed before
// Normalize returns, on success and on failure. The tool reads {file}; its result is
// taken from {out} when that placeholder is used, otherwise from stdout.
type External struct {
	Command []string
	// TempDir is the parent for scratch directories; empty means os.TempDir.
	TempDir string
	Logger  *slog.Logger
}

// Normalize implements Normalizer.
func (e *External) Normalize(ctx context.Context, text, ext string) (string, error) {
	const op = "normalize.external"
	if len(e.Command) == 0 {
		return "", errkind.E(errkind.NormalizeFailed, op, "", errNoCommand)
	}

	dir, err := os.MkdirTemp(e.TempDir, "docgap-normalize-*")
	if err != nil {
		return "", errkind.E(errkind.NormalizeFailed, op, "", err)
	}
	defer os.RemoveAll(dir)

	name := "source"
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	file := filepath.Join(dir, name)
	out := filepath.Join(dir, "normalized.out")
	if err := os.WriteFile(file, []byte(text), 0o600); err != nil {
		return "", errkind.E(errkind.NormalizeFailed, op, file, err)
	}

	usesOut := false
	args := make([]string, len(e.Command))
	for i, a := range e.Command {
		if strings.Contains(a, PlaceholderOut) {
			usesOut = true
		}
		a = strings.ReplaceAll(a, PlaceholderFile, file)
		a = strings.ReplaceAll(a, PlaceholderDir, dir)
		args[i] = strings.ReplaceAll(a, PlaceholderOut, out)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		e.logger().Debug("normalizer command failed", "command", e.Command[0], "stderr", strings.TrimSpace(stderr.String()))
		return "", errkind.E(errkind.NormalizeFailed, op, e.Command[0], err)
	}

	result := stdout.Bytes()
	if usesOut {
		result, err = os.ReadFile(out)
		if err != nil {
			return "", errkind.E(errkind.NormalizeFailed, op, out, err)
		}
	}
	return collapse(unwrapEnvelope(string(result))), nil
}

func (e *External) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// unwrapEnvelope returns the payload of <file>...</file> elements or, failing that,
// of fenced code blocks. Plain output is returned unchanged.
func unwrapEnvelope(s string) string {
	if m := fileEnvelope.FindAllStringSubmatch(s, -1); len(m) > 0 {
		return joinGroups(m)
	}
	if m := fencedPayload.FindAllStringSubmatch(s, -1); len(m) > 0 {
		return joinGroups(m)
	}
	return s
}

func joinGroups(matches [][]string) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m[1])
	}
	return strings.Join(parts, "\n")
}
