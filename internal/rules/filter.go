// SPDX-License-Identifier: AGPL-3.0-or-later

package rules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"

	"github.com/nexical/docgap/internal/errkind"
)

// Matcher decides whether a root-relative path is excluded.
//
// A pattern without glob metacharacters or inner slashes names a path segment:
// "node_modules" excludes "node_modules/x" and "web/node_modules/y", but not
// "node_modules_old/z". Every other pattern is a doublestar glob matched against the
// whole root-relative path.
type Matcher struct {
	segments  []string
	globs     []string
	gitIgnore gitignore.GitIgnore
}

// NewMatcher compiles patterns. When respectGitignore is set, root/.gitignore is honoured too.
func NewMatcher(root string, patterns []string, respectGitignore bool) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimPrefix(filepath.ToSlash(p), "./")
		if name := strings.TrimSuffix(p, "/"); isSegment(name) {
			m.segments = append(m.segments, name)
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, errkind.E(errkind.InvalidPattern, "compile ignore glob", p, doublestar.ErrBadPattern)
		}
		m.globs = append(m.globs, p)
	}
	if respectGitignore {
		m.gitIgnore = loadGitignore(root)
	}
	return m, nil
}

func isSegment(p string) bool {
	return p != "" && !strings.ContainsAny(p, `*?[{\/`)
}

// Excluded reports whether rel, a slash-separated root-relative path, is filtered out.
func (m *Matcher) Excluded(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	if hasSegment(rel, m.segments) {
		return true
	}
	for _, g := range m.globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	if m.gitIgnore != nil {
		if match := m.gitIgnore.Relative(rel, isDir); match != nil && match.Ignore() {
			return true
		}
	}
	return false
}

// hasSegment returns true if the path contains any of the excluded segments.
func hasSegment(path string, segments []string) bool {
	if len(segments) == 0 {
		return false
	}
	for _, part := range strings.Split(path, "/") {
		for _, s := range segments {
			if part == s {
				return true
			}
		}
	}
	return false
}

func loadGitignore(root string) gitignore.GitIgnore {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()
	return gitignore.New(f, root, nil)
}
