// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics records run statistics on a private Prometheus registry.
//
// docgap is a batch tool, so nothing is served over HTTP; the registry is written as a
// node-exporter textfile when a run finishes. A nil *Recorder records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nexical/docgap/internal/coverage"
	"github.com/nexical/docgap/internal/drift"
)

const namespace = "docgap"

// Recorder holds the collectors of one process.
type Recorder struct {
	registry *prometheus.Registry
	checks   *prometheus.CounterVec
	drifting *prometheus.CounterVec
	duration prometheus.Histogram
	coverage *prometheus.GaugeVec
}

// New registers the docgap collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Documents checked, by resulting status.",
		}, []string{"status"}),
		drifting: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drifting_sources_total",
			Help:      "Source files reported as drifting, by reason.",
		}, []string{"reason"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Time spent checking one document against its sources.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		coverage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coverage_score",
			Help:      "Share of a source file's entities mentioned by its documentation.",
		}, []string{"file"}),
	}
	r.registry.MustRegister(r.checks, r.drifting, r.duration, r.coverage)
	for _, s := range drift.Statuses {
		r.checks.WithLabelValues(string(s))
	}
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveCheck records one finished document check.
func (r *Recorder) ObserveCheck(res drift.FileCheckResult, took time.Duration) {
	if r == nil {
		return
	}
	r.checks.WithLabelValues(string(res.Status)).Inc()
	for _, d := range res.DriftingSources {
		r.drifting.WithLabelValues(d.Reason).Inc()
	}
	r.duration.Observe(took.Seconds())
}

// ObserveCoverage records the score of one source file.
func (r *Recorder) ObserveCoverage(rep coverage.Report) {
	if r == nil {
		return
	}
	r.coverage.WithLabelValues(rep.File).Set(rep.Score)
}

// WriteTextfile writes all metrics in the text exposition format, atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
