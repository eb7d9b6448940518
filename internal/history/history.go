// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history resolves the last meaningful change of a file from its commit log.
package history

import (
	"context"
	"time"
)

// Commit is a single entry of a file's commit log.
type Commit struct {
	Hash    string    `json:"hash"`
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
}

// EffectiveUpdate is the most recent commit touching a file after noise filtering.
type EffectiveUpdate struct {
	Hash    string    `json:"hash"`
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
}

// LogSource provides commit history for a path, most recent first.
type LogSource interface {
	Log(ctx context.Context, path string, follow bool) ([]Commit, error)
}
