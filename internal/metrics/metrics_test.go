// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexical/docgap/internal/coverage"
	"github.com/nexical/docgap/internal/drift"
)

func TestRecorder_ObserveCheck(t *testing.T) {
	r := New()
	r.ObserveCheck(drift.FileCheckResult{Status: drift.StatusFresh}, 10*time.Millisecond)
	r.ObserveCheck(drift.FileCheckResult{
		Status: drift.StatusStaleSemantic,
		DriftingSources: []drift.DriftingSource{
			{Reason: drift.ReasonSemantic},
			{Reason: drift.ReasonTimestamp},
		},
	}, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.checks.WithLabelValues("FRESH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.checks.WithLabelValues("STALE_SEMANTIC")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.checks.WithLabelValues("UNKNOWN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.drifting.WithLabelValues(drift.ReasonTimestamp)))
	assert.Equal(t, 2, testutil.CollectAndCount(r.drifting))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveCheck(drift.FileCheckResult{Status: drift.StatusFresh}, time.Second)
		r.ObserveCoverage(coverage.Report{File: "a.go", Score: 1})
	})
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.ObserveCheck(drift.FileCheckResult{Status: drift.StatusStaleTimestamp}, time.Millisecond)
	r.ObserveCoverage(coverage.Report{File: "src/user.py", Score: 0.4})

	path := filepath.Join(t.TempDir(), "docgap.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `docgap_checks_total{status="STALE_TIMESTAMP"} 1`)
	assert.Contains(t, out, `docgap_checks_total{status="FRESH"} 0`)
	assert.Contains(t, out, `docgap_coverage_score{file="src/user.py"} 0.4`)
	assert.Contains(t, out, "docgap_check_duration_seconds_count 1")
}
