// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gitrepo builds throwaway git repositories with deterministic commit dates for tests.
package gitrepo

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// Repo is a scratch repository rooted in a test temp dir.
type Repo struct {
	t   *testing.T
	Dir string
}

// New initialises an empty repository. Tests are skipped when git is unavailable.
func New(t *testing.T) *Repo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	r := &Repo{t: t, Dir: dir}
	r.Git("", "init", "-q")
	r.Git("", "config", "user.email", "test@example.com")
	r.Git("", "config", "user.name", "Test User")
	r.Git("", "config", "commit.gpgsign", "false")
	return r
}

// Git runs a git command. date, when non-empty, pins author and committer dates.
func (r *Repo) Git(date string, args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_NOSYSTEM=1", "GIT_LITERAL_PATHSPECS=1")
	if date != "" {
		cmd.Env = append(cmd.Env, "GIT_AUTHOR_DATE="+date, "GIT_COMMITTER_DATE="+date)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v failed: %v\nOutput: %s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// Write creates or overwrites a file relative to the repository root.
func (r *Repo) Write(path, content string) string {
	r.t.Helper()
	full := filepath.Join(r.Dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", path, err)
	}
	return full
}

// Commit writes files, stages them and commits at the given RFC 3339 date.
// It returns the new commit hash.
func (r *Repo) Commit(date, message string, files map[string]string) string {
	r.t.Helper()
	for path, content := range files {
		r.Write(path, content)
		r.Git("", "add", "--", path)
	}
	r.Git(date, "commit", "-q", "--allow-empty", "-m", message)
	return r.Git("", "rev-parse", "HEAD")
}

// Path returns the absolute path of a repository-relative file.
func (r *Repo) Path(rel string) string {
	return filepath.Join(r.Dir, filepath.FromSlash(rel))
}
