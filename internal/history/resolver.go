// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"errors"

	"github.com/nexical/docgap/internal/errkind"
)

// Resolver computes effective updates from a log source.
type Resolver struct {
	source  LogSource
	filter  *NoiseFilter
	shallow bool
}

// NewResolver builds a resolver. ignorePatterns are the user's commit-message regexes.
// When shallow is false the log follows renames.
func NewResolver(source LogSource, ignorePatterns []string, shallow bool) (*Resolver, error) {
	filter, err := NewNoiseFilter(ignorePatterns)
	if err != nil {
		return nil, err
	}
	return &Resolver{source: source, filter: filter, shallow: shallow}, nil
}

// EffectiveUpdate returns the most recent meaningful commit touching path, or nil when the
// file has no history or every commit is noise. The result is never cached.
func (r *Resolver) EffectiveUpdate(ctx context.Context, path string) (*EffectiveUpdate, error) {
	commits, err := r.source.Log(ctx, path, !r.shallow)
	if err != nil {
		if errkind.Is(err, errkind.NotARepository) || errkind.Is(err, errkind.HistoryFetchFailed) {
			return nil, err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errkind.E(errkind.HistoryFetchFailed, "fetch commit history", path, err)
	}

	for _, c := range commits {
		if r.filter.IsNoise(c.Message) {
			continue
		}
		return &EffectiveUpdate{Hash: c.Hash, Date: c.Date, Message: c.Message}, nil
	}
	return nil, nil
}
