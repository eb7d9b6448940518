// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rules expands configured drift rules into concrete documents and sources.
package rules

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nexical/docgap/internal/config"
	"github.com/nexical/docgap/internal/drift"
	"github.com/nexical/docgap/internal/errkind"
)

// Target is one document paired with the sources it is checked against.
type Target struct {
	// Rule is the index of the rule that produced the target.
	Rule    int
	Doc     string
	Sources []string
	Options drift.CheckOptions
}

// Expander resolves rule globs under Root.
type Expander struct {
	Root             string
	GlobalIgnore     []string
	RespectGitignore bool
	// Options seeds each target's check options; MaxStaleness comes from the rule.
	Options drift.CheckOptions
}

// Expand returns one target per (rule, matched document), in rule order then path order.
// Paths are absolute. A rule whose document glob matches nothing yields no targets.
func (e *Expander) Expand(rules []config.Rule) ([]Target, error) {
	fsys := os.DirFS(e.Root)
	var targets []Target
	for i, rule := range rules {
		docs, err := e.glob(fsys, []string{rule.Doc}, nil)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if len(docs) == 0 {
			continue
		}

		ignore, err := NewMatcher(e.Root, rule.IgnoreWith(e.GlobalIgnore), e.RespectGitignore)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		sources, err := e.glob(fsys, rule.Source, ignore)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		opts := e.Options
		opts.MaxStaleness = rule.Staleness()
		for _, doc := range docs {
			targets = append(targets, Target{
				Rule:    i,
				Doc:     doc,
				Sources: append([]string(nil), sources...),
				Options: opts,
			})
		}
	}
	return targets, nil
}

// glob matches regular files for every pattern, drops excluded ones, and returns the
// sorted, de-duplicated absolute paths.
func (e *Expander) glob(fsys fs.FS, patterns []string, ignore *Matcher) ([]string, error) {
	seen := make(map[string]struct{})
	for _, p := range patterns {
		p = e.relPattern(p)
		matches, err := doublestar.Glob(fsys, p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errkind.E(errkind.InvalidPattern, "expand glob", p, err)
		}
		for _, rel := range matches {
			if ignore != nil && ignore.Excluded(rel, false) {
				continue
			}
			seen[rel] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for rel := range seen {
		out = append(out, filepath.Join(e.Root, filepath.FromSlash(rel)))
	}
	sort.Strings(out)
	return out, nil
}

// relPattern turns a pattern into the unrooted slash form io/fs expects.
func (e *Expander) relPattern(p string) string {
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(e.Root, p); err == nil {
			p = rel
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(p), "./")
}
