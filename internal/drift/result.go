// SPDX-License-Identifier: AGPL-3.0-or-later

package drift

import (
	"time"

	"github.com/nexical/docgap/internal/history"
)

// Status is the verdict for one document.
type Status string

const (
	StatusFresh          Status = "FRESH"
	StatusStaleTimestamp Status = "STALE_TIMESTAMP"
	StatusStaleSemantic  Status = "STALE_SEMANTIC"
	StatusUnknown        Status = "UNKNOWN"
)

// Statuses lists every status in severity order, lowest first.
var Statuses = []Status{StatusFresh, StatusUnknown, StatusStaleTimestamp, StatusStaleSemantic}

// Reasons a source is recorded as drifting.
const (
	ReasonTimestamp = "Timestamp mismatch"
	ReasonSemantic  = "Semantic mismatch"
)

const reasonNoDocHistory = "no history for documentation file"

// CommitRef identifies the commit a verdict was based on.
type CommitRef struct {
	Hash    string    `json:"hash"`
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
}

func refOf(u *history.EffectiveUpdate) *CommitRef {
	if u == nil {
		return nil
	}
	return &CommitRef{Hash: u.Hash, Date: u.Date, Message: u.Message}
}

// DriftingSource is one source file that changed after its document.
type DriftingSource struct {
	SourceFile string     `json:"sourceFile"`
	Reason     string     `json:"reason"`
	LastCommit *CommitRef `json:"lastCommit"`
}

// FileCheckResult is the outcome of checking one document against its sources.
type FileCheckResult struct {
	DocPath          string           `json:"docPath"`
	SourceFiles      []string         `json:"sourceFiles"`
	Status           Status           `json:"status"`
	LastDocCommit    *CommitRef       `json:"lastDocCommit,omitempty"`
	LastSourceCommit *CommitRef       `json:"lastSourceCommit,omitempty"`
	DriftReason      string           `json:"driftReason,omitempty"`
	DriftingSources  []DriftingSource `json:"driftingSources"`
}

// Fresh reports whether the document is up to date.
func (r FileCheckResult) Fresh() bool { return r.Status == StatusFresh }

// DeriveStatus computes the status from the document's history and its drifting sources.
func DeriveStatus(docHasHistory bool, drifting []DriftingSource) Status {
	if !docHasHistory {
		return StatusUnknown
	}
	if len(drifting) == 0 {
		return StatusFresh
	}
	for _, d := range drifting {
		if d.Reason == ReasonSemantic {
			return StatusStaleSemantic
		}
	}
	return StatusStaleTimestamp
}
