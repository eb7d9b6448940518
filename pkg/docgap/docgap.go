// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docgap detects documentation that has fallen behind the code it describes.
//
// Run checks every configured document against its sources using git history, and
// Coverage reports which declared entities a document fails to mention.
package docgap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nexical/docgap/internal/config"
	"github.com/nexical/docgap/internal/coverage"
	"github.com/nexical/docgap/internal/drift"
	"github.com/nexical/docgap/internal/errkind"
	"github.com/nexical/docgap/internal/git"
	"github.com/nexical/docgap/internal/history"
	"github.com/nexical/docgap/internal/normalize"
	"github.com/nexical/docgap/internal/rules"
	"github.com/nexical/docgap/internal/scheduler"
	"github.com/nexical/docgap/internal/snapshot"
)

// Run checks the project at root. A nil cfg loads the default configuration file from
// root. Results follow rule order, then document path order. The first history, read or
// normalizer failure cancels the remaining checks and is returned.
func Run(ctx context.Context, root string, cfg *config.Config, opts ...Option) ([]drift.FileCheckResult, error) {
	o := buildOptions(opts)

	cfg, err := ensureConfig(root, cfg)
	if err != nil {
		return nil, err
	}
	repo, err := git.Open(ctx, root)
	if err != nil {
		return nil, err
	}
	resolver, err := history.NewResolver(repo, cfg.Git.IgnoreCommitPatterns, cfg.Git.Shallow)
	if err != nil {
		return nil, err
	}

	targets, err := expand(repo.Root(), cfg)
	if err != nil {
		return nil, err
	}
	warnUntracked(ctx, o, repo, targets)

	n := o.normalizer
	if n == nil {
		n = normalize.FromConfig(cfg.Semantic)
	}
	detector := &drift.Detector{
		History:    resolver,
		Snapshots:  snapshot.New(repo),
		Normalizer: n,
		Logger:     o.logger,
	}

	limit := cfg.Concurrency
	if o.concurrency > 0 {
		limit = o.concurrency
	}
	sched := scheduler.New(limit)
	o.logger.Debug("starting check", "root", repo.Root(), "documents", len(targets), "concurrency", sched.Limit())

	started := time.Now()
	results, err := scheduler.Run(ctx, sched, len(targets), func(ctx context.Context, i int) (drift.FileCheckResult, error) {
		t := targets[i]
		begin := time.Now()
		res, err := detector.Check(ctx, t.Doc, t.Sources, t.Options)
		if err != nil {
			return drift.FileCheckResult{}, err
		}
		o.metrics.ObserveCheck(res, time.Since(begin))
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	o.logger.Info("check finished", "documents", len(results), "took", time.Since(started).Round(time.Millisecond))
	return results, nil
}

// Coverage scores each source file against docText, in input order.
func Coverage(ctx context.Context, sourceFiles []string, docText string, opts ...Option) ([]coverage.Report, error) {
	o := buildOptions(opts)
	analyzer := &coverage.Analyzer{Logger: o.logger}
	reports, err := analyzer.Analyze(ctx, sourceFiles, docText)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		o.metrics.ObserveCoverage(r)
	}
	return reports, nil
}

// DocCoverage is the coverage of one document's sources.
type DocCoverage struct {
	Doc     string            `json:"doc"`
	Reports []coverage.Report `json:"reports"`
}

// CoverageForRules runs the coverage pass for every document the rules match, using the
// document's own text. It does not need git history.
func CoverageForRules(ctx context.Context, root string, cfg *config.Config, opts ...Option) ([]DocCoverage, error) {
	o := buildOptions(opts)

	cfg, err := ensureConfig(root, cfg)
	if err != nil {
		return nil, err
	}
	targets, err := expand(root, cfg)
	if err != nil {
		return nil, err
	}

	limit := cfg.Concurrency
	if o.concurrency > 0 {
		limit = o.concurrency
	}
	return scheduler.Run(ctx, scheduler.New(limit), len(targets), func(ctx context.Context, i int) (DocCoverage, error) {
		t := targets[i]
		doc, err := os.ReadFile(t.Doc)
		if err != nil {
			return DocCoverage{}, errkind.E(errkind.ReadFailed, "read document", t.Doc, err)
		}
		reports, err := Coverage(ctx, t.Sources, string(doc), opts...)
		if err != nil {
			return DocCoverage{}, err
		}
		return DocCoverage{Doc: t.Doc, Reports: reports}, nil
	})
}

func ensureConfig(root string, cfg *config.Config) (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}
	loaded, err := config.LoadDefault(root)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return loaded, nil
}

func expand(root string, cfg *config.Config) ([]rules.Target, error) {
	e := &rules.Expander{
		Root:             root,
		GlobalIgnore:     cfg.Ignore,
		RespectGitignore: cfg.RespectGitignore,
		Options: drift.CheckOptions{
			Semantic: cfg.Semantic.Enabled,
			Strict:   cfg.Semantic.Strict,
		},
	}
	return e.Expand(cfg.Rules)
}

// warnUntracked logs files that git does not track; they have no history, so they never
// drift and their documents stay UNKNOWN.
func warnUntracked(ctx context.Context, o options, repo *git.Repo, targets []rules.Target) {
	tracked, err := repo.TrackedFiles(ctx)
	if err != nil {
		o.logger.Debug("could not list tracked files", "error", err)
		return
	}
	known := make(map[string]struct{}, len(tracked))
	for _, f := range tracked {
		known[f] = struct{}{}
	}
	seen := make(map[string]struct{})
	for _, t := range targets {
		for _, f := range append([]string{t.Doc}, t.Sources...) {
			if _, ok := known[f]; ok {
				continue
			}
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			o.logger.Warn("file is not tracked by git", "path", f)
		}
	}
}
