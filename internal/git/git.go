// SPDX-License-Identifier: AGPL-3.0-or-later

// Package git answers the two repository questions the drift engine needs:
// which commits touched a path, and what a path contained at a revision.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nexical/docgap/internal/errkind"
	"github.com/nexical/docgap/internal/history"
)

// Field and record separators used in the log format; they cannot occur in commit subjects.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
	logFormat = "--format=%H" + fieldSep + "%aI" + fieldSep + "%an" + fieldSep + "%s" + recordSep
)

// Repo runs git against one working tree.
type Repo struct {
	gitPath string
	// root is the directory docgap was pointed at; toplevel is the work tree root.
	root     string
	toplevel string

	mu           sync.Mutex
	trackedCache []string
}

// Open verifies that root lies inside a git work tree.
func Open(ctx context.Context, root string) (*Repo, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, errkind.E(errkind.HistoryFetchFailed, "locate git", "", err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errkind.E(errkind.ReadFailed, "resolve root", root, err)
	}
	absRoot = evalSymlinks(absRoot)
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, errkind.E(errkind.ReadFailed, "open", absRoot, err)
	}
	if !info.IsDir() {
		return nil, errkind.E(errkind.NotARepository, "open", absRoot, errors.New("not a directory"))
	}

	r := &Repo{gitPath: gitPath, root: absRoot}
	out, err := r.run(ctx, "rev-parse", "--show-toplevel")
	if err == nil && strings.TrimSpace(string(out)) == "" {
		err = &CommandError{Args: []string{"rev-parse", "--show-toplevel"}, Stderr: "not a git repository", Err: errors.New("no work tree")}
	}
	if err != nil {
		if isNotRepo(err) {
			return nil, errkind.E(errkind.NotARepository, "open", absRoot, err)
		}
		return nil, errkind.E(errkind.HistoryFetchFailed, "git rev-parse", absRoot, err)
	}
	r.toplevel = evalSymlinks(strings.TrimSpace(string(out)))
	return r, nil
}

// Root returns the absolute directory the repo was opened at.
func (r *Repo) Root() string { return r.root }

// Toplevel returns the absolute work tree root.
func (r *Repo) Toplevel() string { return r.toplevel }

// Log returns the commits touching path, most recent first.
// With follow set, history continues across renames.
func (r *Repo) Log(ctx context.Context, path string, follow bool) ([]history.Commit, error) {
	rel, err := r.rel(path)
	if err != nil {
		return nil, errkind.E(errkind.HistoryFetchFailed, "git log", path, err)
	}

	args := []string{"log", logFormat}
	if follow {
		args = append(args, "--follow")
	}
	args = append(args, "--", rel)

	out, err := r.runTop(ctx, args...)
	if err != nil {
		if isNotRepo(err) {
			return nil, errkind.E(errkind.NotARepository, "git log", path, err)
		}
		return nil, errkind.E(errkind.HistoryFetchFailed, "git log", path, err)
	}
	commits, err := parseLog(out)
	if err != nil {
		return nil, errkind.E(errkind.HistoryFetchFailed, "parse git log", path, err)
	}
	return commits, nil
}

// Show returns the content of path as of rev.
func (r *Repo) Show(ctx context.Context, rev, path string) (string, error) {
	rel, err := r.rel(path)
	if err != nil {
		return "", err
	}
	out, err := r.runTop(ctx, "show", rev+":"+rel)
	if err != nil {
		return "", fmt.Errorf("git show %s:%s: %w", rev, rel, err)
	}
	return string(out), nil
}

// TrackedFiles returns all files tracked by git under the work tree, as absolute paths,
// caching the result for the Repo's lifetime.
func (r *Repo) TrackedFiles(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.trackedCache != nil {
		return r.trackedCache, nil
	}

	// -z avoids quoting of unusual file names.
	out, err := r.runTop(ctx, "ls-files", "-z")
	if err != nil {
		return nil, fmt.Errorf("git ls-files failed: %w", err)
	}

	files := []string{}
	for _, f := range strings.Split(strings.TrimSuffix(string(out), "\x00"), "\x00") {
		if f == "" {
			continue
		}
		files = append(files, filepath.Join(r.toplevel, filepath.FromSlash(f)))
	}
	r.trackedCache = files
	return r.trackedCache, nil
}

// rel converts path to a slash-separated path relative to the work tree root.
func (r *Repo) rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	path = evalSymlinks(path)
	rel, err := filepath.Rel(r.toplevel, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the work tree %s", path, r.toplevel)
	}
	return filepath.ToSlash(rel), nil
}

func (r *Repo) run(ctx context.Context, args ...string) ([]byte, error) {
	return r.runIn(ctx, r.root, args...)
}

func (r *Repo) runTop(ctx context.Context, args ...string) ([]byte, error) {
	return r.runIn(ctx, r.toplevel, args...)
}

func (r *Repo) runIn(ctx context.Context, dir string, args ...string) ([]byte, error) {
	// Paths are passed verbatim; route files such as "pages/[id].tsx" are not globs.
	cmd := exec.CommandContext(ctx, r.gitPath, append([]string{"-C", dir, "--literal-pathspecs"}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &CommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return stdout.Bytes(), nil
}

// CommandError reports a failed git invocation with its stderr.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.Args, " "), e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

func isNotRepo(err error) bool {
	var ce *CommandError
	if !errors.As(err, &ce) {
		return false
	}
	stderr := strings.ToLower(ce.Stderr)
	// Inside a .git directory or a bare repository there is no work tree.
	return strings.Contains(stderr, "not a git repository") ||
		strings.Contains(stderr, "must be run in a work tree")
}

func parseLog(out []byte) ([]history.Commit, error) {
	var commits []history.Commit
	for _, rec := range strings.Split(string(out), recordSep) {
		rec = strings.TrimSpace(rec)
		if rec == "" {
			continue
		}
		fields := strings.SplitN(rec, fieldSep, 4)
		if len(fields) != 4 {
			return nil, fmt.Errorf("malformed log record %q", rec)
		}
		date, err := time.Parse(time.RFC3339, fields[1])
		if err != nil {
			return nil, fmt.Errorf("commit %s: %w", fields[0], err)
		}
		commits = append(commits, history.Commit{
			Hash:    fields[0],
			Date:    date,
			Author:  fields[2],
			Message: fields[3],
		})
	}
	return commits, nil
}

func evalSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	// The leaf may not exist (deleted file); resolve its directory instead.
	dir, base := filepath.Split(path)
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		return filepath.Join(resolved, base)
	}
	return path
}
