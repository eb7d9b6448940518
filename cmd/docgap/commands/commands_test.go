// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexical/docgap/cmd/docgap/internal/clierr"
	"github.com/nexical/docgap/internal/config"
	"github.com/nexical/docgap/internal/testutil/gitrepo"
)

const projectConfig = `rules:
  - doc: docs/api.md
    source: src/**/*.ts
`

func seedProject(t *testing.T) *gitrepo.Repo {
	t.Helper()
	r := gitrepo.New(t)
	r.Commit("2023-01-01T00:00:00Z", "feat: initial", map[string]string{
		".docgap.yaml": projectConfig,
		"src/api.ts":   "export function getUser() {\n  return 1;\n}\n",
	})
	r.Commit("2023-02-01T00:00:00Z", "feat: write docs", map[string]string{
		"docs/api.md": "# API\n\n`getUser()` returns the user.\n",
	})
	return r
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

type checkOutput struct {
	Summary struct {
		Total         int `json:"total"`
		Fresh         int `json:"fresh"`
		StaleSemantic int `json:"staleSemantic"`
	} `json:"summary"`
	Results []struct {
		DocPath string `json:"docPath"`
		Status  string `json:"status"`
	} `json:"results"`
}

func TestRootHelp_ListsCommands(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "Usage:")
	for _, name := range []string{"check", "coverage", "watch", "config", "version", "completion", "help"} {
		assert.Contains(t, out, name)
	}
}

func TestVersion(t *testing.T) {
	t.Setenv("DOCGAP_VERSION", "1.2.3")
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "docgap version 1.2.3\n", out)
}

func TestCheck_JSON(t *testing.T) {
	r := seedProject(t)

	out, _, err := execute(t, "check", r.Dir, "--format", "json")
	require.NoError(t, err)

	var got checkOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 1, got.Summary.Total)
	assert.Equal(t, 1, got.Summary.Fresh)
	require.Len(t, got.Results, 1)
	assert.Equal(t, r.Path("docs/api.md"), got.Results[0].DocPath)
	assert.Equal(t, "FRESH", got.Results[0].Status)
}

func TestCheck_StrictExitsWithDriftCode(t *testing.T) {
	r := seedProject(t)
	r.Commit("2023-03-01T00:00:00Z", "feat: rename", map[string]string{
		"src/api.ts": "export function fetchUser() {\n  return 1;\n}\n",
	})

	out, _, err := execute(t, "check", r.Dir, "--no-color")
	require.NoError(t, err, "drift alone is not an error without --strict")
	assert.Contains(t, out, "STALE_SEMANTIC")

	out, _, err = execute(t, "check", r.Dir, "--strict", "--format", "github")
	require.Error(t, err)
	assert.Equal(t, clierr.CodeDrift, clierr.ExitCodeOf(err))
	assert.Contains(t, out, "::error file=docs/api.md")
}

func TestCheck_WritesReportAndMetrics(t *testing.T) {
	r := seedProject(t)
	outDir := t.TempDir()
	reportPath := filepath.Join(outDir, "reports", "drift.md")
	metricsPath := filepath.Join(outDir, "docgap.prom")

	out, stderr, err := execute(t, "check", r.Dir, "--format", "markdown", "--output", reportPath, "--metrics-file", metricsPath)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "Report written to")

	md, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "docs/api.md")

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `docgap_checks_total{status="FRESH"} 1`)
}

func TestCheck_ExitCodes(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	notRepo := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(notRepo, ".docgap.yaml"), []byte(projectConfig), 0o644))

	badConfig := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(badConfig, ".docgap.yaml"), []byte("concurrency: 0\nrules: []\n"), 0o644))

	badPattern := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(badPattern, ".docgap.yaml"),
		[]byte("git:\n  ignoreCommitPatterns: ['(']\nrules: []\n"), 0o644))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "not a repository", args: []string{"check", notRepo}, want: clierr.CodeNotARepository},
		{name: "invalid config", args: []string{"check", badConfig}, want: clierr.CodeUsage},
		{name: "invalid commit pattern", args: []string{"check", badPattern}, want: clierr.CodeUsage},
		{name: "missing config", args: []string{"check", t.TempDir()}, want: clierr.CodeUsage},
		{name: "unknown format", args: []string{"check", notRepo, "--format", "xml"}, want: clierr.CodeUsage},
		{name: "unknown flag", args: []string{"check", "--bogus"}, want: clierr.CodeUsage},
		{name: "too many arguments", args: []string{"check", "a", "b"}, want: clierr.CodeUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.want, clierr.ExitCodeOf(err))
		})
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "config", "init", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	path := filepath.Join(dir, ".docgap.yaml")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Sample(), *cfg)

	_, _, err = execute(t, "config", "init", "--dir", dir)
	require.Error(t, err)
	assert.Equal(t, clierr.CodeUsage, clierr.ExitCodeOf(err))

	_, _, err = execute(t, "config", "init", "--dir", dir, "--force")
	require.NoError(t, err)

	out, _, err = execute(t, "config", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (1 rule(s))")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rules:\n  - doc: README.md\n"), 0o644))
	_, _, err = execute(t, "config", "validate", bad)
	require.Error(t, err)
	assert.Equal(t, clierr.CodeUsage, clierr.ExitCodeOf(err))
}

func TestConfigSchema(t *testing.T) {
	out, _, err := execute(t, "config", "schema")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
}

func TestCoverage_Files(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "user.py")
	doc := filepath.Join(dir, "guide.md")
	require.NoError(t, os.WriteFile(src, []byte("class User:\n    def rename(self):\n        pass\n"), 0o644))
	require.NoError(t, os.WriteFile(doc, []byte("The User class.\n"), 0o644))

	out, _, err := execute(t, "coverage", src, "--doc", doc, "--format", "json")
	require.NoError(t, err)

	var got struct {
		Reports []struct {
			File  string  `json:"file"`
			Score float64 `json:"score"`
		} `json:"reports"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Reports, 1)
	assert.Equal(t, src, got.Reports[0].File)
	assert.InDelta(t, 0.5, got.Reports[0].Score, 1e-9)

	_, _, err = execute(t, "coverage", src, "--doc", doc, "--min-score", "0.8")
	require.Error(t, err)
	assert.Equal(t, clierr.CodeDrift, clierr.ExitCodeOf(err))

	_, _, err = execute(t, "coverage", src)
	require.Error(t, err)
	assert.Equal(t, clierr.CodeUsage, clierr.ExitCodeOf(err))

	_, _, err = execute(t, "coverage", src, "--doc", doc, "--format", "markdown")
	require.Error(t, err)
	assert.Equal(t, clierr.CodeUsage, clierr.ExitCodeOf(err))
}

func TestCoverage_Rules(t *testing.T) {
	r := seedProject(t)

	out, _, err := execute(t, "coverage", "--root", r.Dir)
	require.NoError(t, err)
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "src/api.ts")
}

// lockedBuffer lets the test read output the watch loop is still writing.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatch_RerunsOnChange(t *testing.T) {
	r := seedProject(t)

	cmd := NewRootCmd()
	out := &lockedBuffer{}
	cmd.SetOut(out)
	cmd.SetErr(&lockedBuffer{})
	cmd.SetArgs([]string{"watch", r.Dir, "--no-color", "--debounce", "50ms"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "All documentation is up to date")
	}, 5*time.Second, 20*time.Millisecond)

	r.Commit("2023-03-01T00:00:00Z", "feat: rename", map[string]string{
		"src/api.ts": "export function fetchUser() {\n  return 1;\n}\n",
	})

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "STALE_SEMANTIC")
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, out.String(), "--- run 2")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
