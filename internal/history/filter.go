// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"regexp"

	"github.com/nexical/docgap/internal/errkind"
)

// conventionalNoise matches conventional-commit types that never change behaviour.
var conventionalNoise = regexp.MustCompile(`(?i)^(chore|style|test|ci|build)(\(.*\))?:`)

// NoiseFilter drops commits whose messages carry no semantic change.
type NoiseFilter struct {
	user []*regexp.Regexp
}

// NewNoiseFilter compiles the user-supplied patterns once.
// An invalid pattern fails with errkind.InvalidPattern rather than silently matching nothing.
func NewNoiseFilter(patterns []string) (*NoiseFilter, error) {
	f := &NoiseFilter{user: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, errkind.E(errkind.InvalidPattern, "compile commit pattern", p, err)
		}
		f.user = append(f.user, re)
	}
	return f, nil
}

// IsNoise reports whether a commit message is excluded from history.
func (f *NoiseFilter) IsNoise(message string) bool {
	if conventionalNoise.MatchString(message) {
		return true
	}
	for _, re := range f.user {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

// Apply returns the commits that are not noise, preserving order and multiplicity.
func (f *NoiseFilter) Apply(commits []Commit) []Commit {
	out := make([]Commit, 0, len(commits))
	for _, c := range commits {
		if !f.IsNoise(c.Message) {
			out = append(out, c)
		}
	}
	return out
}

// Filter compiles patterns and applies them in one call.
func Filter(commits []Commit, patterns []string) ([]Commit, error) {
	f, err := NewNoiseFilter(patterns)
	if err != nil {
		return nil, err
	}
	return f.Apply(commits), nil
}
