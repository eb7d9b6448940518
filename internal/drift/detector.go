// SPDX-License-Identifier: AGPL-3.0-or-later

// Package drift decides whether a document is stale relative to the code it describes.
//
// A check runs in two phases. Timestamps of the last meaningful commits pick candidate
// sources; for each candidate the current content is then compared with the content at
// the document's commit after normalization, so formatting-only edits are not drift.
package drift

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/nexical/docgap/internal/history"
	"github.com/nexical/docgap/internal/normalize"
)

// HistoryResolver returns a file's effective update, or nil when it has none.
type HistoryResolver interface {
	EffectiveUpdate(ctx context.Context, path string) (*history.EffectiveUpdate, error)
}

// SnapshotProvider reads file content now and at a revision.
type SnapshotProvider interface {
	CurrentContent(ctx context.Context, path string) (string, error)
	ContentAtCommit(ctx context.Context, path, hash string) (string, error)
}

// CheckOptions carries the per-check configuration.
type CheckOptions struct {
	// Semantic enables content comparison of candidate sources.
	Semantic bool
	// Strict reports every candidate as a timestamp mismatch without reading content.
	Strict bool
	// MaxStaleness is how long a source may lag behind its document before it counts.
	MaxStaleness time.Duration
}

// Detector runs drift checks. History and Snapshots are required; Normalizer is
// required when semantic checks are enabled.
type Detector struct {
	History    HistoryResolver
	Snapshots  SnapshotProvider
	Normalizer normalize.Normalizer
	Logger     *slog.Logger
}

// Check verifies docPath against sourceFiles. Errors from history, content reads or
// normalization fail the check; they are never reported as UNKNOWN.
func (d *Detector) Check(ctx context.Context, docPath string, sourceFiles []string, opts CheckOptions) (FileCheckResult, error) {
	log := d.logger().With("doc", docPath)
	result := FileCheckResult{
		DocPath:         docPath,
		SourceFiles:     append(make([]string, 0, len(sourceFiles)), sourceFiles...),
		DriftingSources: []DriftingSource{},
	}

	docUpdate, err := d.History.EffectiveUpdate(ctx, docPath)
	if err != nil {
		return FileCheckResult{}, fmt.Errorf("resolve history of %s: %w", docPath, err)
	}
	if docUpdate == nil {
		log.Debug("document has no effective history")
		result.Status = DeriveStatus(false, nil)
		result.DriftReason = reasonNoDocHistory
		return result, nil
	}
	result.LastDocCommit = refOf(docUpdate)

	for _, src := range sourceFiles {
		drifting, err := d.checkSource(ctx, log, docUpdate, src, opts)
		if err != nil {
			return FileCheckResult{}, err
		}
		if drifting != nil {
			result.DriftingSources = append(result.DriftingSources, *drifting)
		}
	}

	result.Status = DeriveStatus(true, result.DriftingSources)
	if n := len(result.DriftingSources); n > 0 {
		result.LastSourceCommit = result.DriftingSources[0].LastCommit
		result.DriftReason = fmt.Sprintf("%d of %d source file(s) drifted", n, len(sourceFiles))
	}
	log.Debug("check complete", "status", result.Status, "drifting", len(result.DriftingSources))
	return result, nil
}

// checkSource returns a DriftingSource when src drifted, nil when it did not.
func (d *Detector) checkSource(ctx context.Context, log *slog.Logger, doc *history.EffectiveUpdate, src string, opts CheckOptions) (*DriftingSource, error) {
	code, err := d.History.EffectiveUpdate(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("resolve history of %s: %w", src, err)
	}
	if code == nil {
		log.Debug("source has no effective history", "source", src)
		return nil, nil
	}
	if !code.Date.After(doc.Date.Add(opts.MaxStaleness)) {
		return nil, nil
	}

	if !opts.Semantic || opts.Strict {
		log.Debug("source updated after document", "source", src, "commit", code.Hash)
		return &DriftingSource{SourceFile: src, Reason: ReasonTimestamp, LastCommit: refOf(code)}, nil
	}

	same, err := d.sameContent(ctx, src, doc.Hash)
	if err != nil {
		return nil, err
	}
	if same {
		log.Debug("source changed only cosmetically", "source", src, "commit", code.Hash)
		return nil, nil
	}
	log.Debug("source changed semantically", "source", src, "commit", code.Hash)
	return &DriftingSource{SourceFile: src, Reason: ReasonSemantic, LastCommit: refOf(code)}, nil
}

func (d *Detector) sameContent(ctx context.Context, src, docHash string) (bool, error) {
	current, err := d.Snapshots.CurrentContent(ctx, src)
	if err != nil {
		return false, err
	}
	previous, err := d.Snapshots.ContentAtCommit(ctx, src, docHash)
	if err != nil {
		return false, err
	}

	ext := filepath.Ext(src)
	now, err := normalize.Fingerprint(ctx, d.Normalizer, current, ext)
	if err != nil {
		return false, fmt.Errorf("fingerprint %s: %w", src, err)
	}
	then, err := normalize.Fingerprint(ctx, d.Normalizer, previous, ext)
	if err != nil {
		return false, fmt.Errorf("fingerprint %s at %s: %w", src, docHash, err)
	}
	return now == then, nil
}

func (d *Detector) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
