// SPDX-License-Identifier: AGPL-3.0-or-later

package docgap

import (
	"io"
	"log/slog"

	"github.com/nexical/docgap/internal/metrics"
	"github.com/nexical/docgap/internal/normalize"
)

// Option customises a run.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	concurrency int
	normalizer  normalize.Normalizer
	metrics     *metrics.Recorder
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. Library use logs nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithConcurrency overrides the configured number of documents checked at once.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

// WithNormalizer replaces the normalizer selected by the configuration.
func WithNormalizer(n normalize.Normalizer) Option {
	return func(o *options) { o.normalizer = n }
}

// WithMetrics records check and coverage statistics on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) { o.metrics = r }
}
