// SPDX-License-Identifier: AGPL-3.0-or-later

/*
docgap - documentation drift detection for git repositories.
It decides whether documentation is stale relative to the code it describes using commit
history, and measures how much of that code the documentation mentions.

Copyright (C) 2025  Nexical

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package config defines the typed docgap configuration, its defaults, and its loader.
//
// A Config is populated over Default() and validated once at load time; the engine treats
// it as immutable input and never re-validates it.
package config

import (
	"time"
)

// Normalizer strategy names accepted by semantic.normalizer.
const (
	NormalizerRegex    = "regex"
	NormalizerExternal = "external"
)

// DefaultConcurrency is the number of drift checks allowed in flight at once.
const DefaultConcurrency = 10

// Config is the validated docgap configuration.
type Config struct {
	// Ignore holds global glob exclusions applied to every rule's sources.
	Ignore           []string       `yaml:"ignore" json:"ignore"`
	Concurrency      int            `yaml:"concurrency" json:"concurrency"`
	RespectGitignore bool           `yaml:"respectGitignore" json:"respectGitignore"`
	Rules            []Rule         `yaml:"rules" json:"rules"`
	Git              GitConfig      `yaml:"git" json:"git"`
	Semantic         SemanticConfig `yaml:"semantic" json:"semantic"`
	Coverage         CoverageConfig `yaml:"coverage" json:"coverage"`
}

// Rule declares which documents are checked against which code.
type Rule struct {
	Doc    string   `yaml:"doc" json:"doc"`
	Source Patterns `yaml:"source" json:"source"`
	Ignore []string `yaml:"ignore,omitempty" json:"ignore,omitempty"`
	// MaxStaleness is a grace window in days. A source updated no more than this long
	// after its document is not reported as drifted.
	MaxStaleness float64 `yaml:"maxStaleness,omitempty" json:"maxStaleness,omitempty"`
}

// GitConfig controls history queries.
type GitConfig struct {
	IgnoreCommitPatterns []string `yaml:"ignoreCommitPatterns" json:"ignoreCommitPatterns"`
	// Shallow limits history to the current path. When false, history follows renames.
	Shallow bool `yaml:"shallow" json:"shallow"`
}

// SemanticConfig controls the second, content-based verification phase.
type SemanticConfig struct {
	Enabled    bool     `yaml:"enabled" json:"enabled"`
	Strict     bool     `yaml:"strict" json:"strict"`
	Normalizer string   `yaml:"normalizer" json:"normalizer"`
	Command    []string `yaml:"command,omitempty" json:"command,omitempty"`
}

// CoverageConfig holds thresholds used by the coverage command.
type CoverageConfig struct {
	MinScore float64 `yaml:"minScore" json:"minScore"`
}

// Default returns a Config carrying every schema default and no rules.
func Default() Config {
	return Config{
		Ignore:      []string{"node_modules", "dist", ".git"},
		Concurrency: DefaultConcurrency,
		Git: GitConfig{
			IgnoreCommitPatterns: []string{"^chore:", "^style:", "^test:", "^ci:", "^docs:"},
			Shallow:              true,
		},
		Semantic: SemanticConfig{
			Enabled:    true,
			Normalizer: NormalizerRegex,
		},
	}
}

// Sample returns the configuration written by `docgap config init`.
func Sample() Config {
	cfg := Default()
	cfg.Rules = []Rule{
		{
			Doc:    "README.md",
			Source: Patterns{"src/**/*"},
			Ignore: []string{"**/*.test.*"},
		},
	}
	return cfg
}

// Staleness returns the rule's grace window as a duration.
func (r Rule) Staleness() time.Duration {
	if r.MaxStaleness <= 0 {
		return 0
	}
	return time.Duration(r.MaxStaleness * float64(24*time.Hour))
}

// IgnoreWith returns the union of the rule's ignore patterns and the global ones.
func (r Rule) IgnoreWith(global []string) []string {
	out := make([]string, 0, len(r.Ignore)+len(global))
	out = append(out, r.Ignore...)
	return append(out, global...)
}
