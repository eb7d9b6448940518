// SPDX-License-Identifier: AGPL-3.0-or-later

// Package snapshot reads file content from the working tree and from history.
package snapshot

import (
	"context"
	"os"

	"github.com/nexical/docgap/internal/errkind"
)

// RevisionReader returns the content of a path at a revision.
type RevisionReader interface {
	Show(ctx context.Context, rev, path string) (string, error)
}

// Provider implements both snapshot operations over a revision reader.
type Provider struct {
	revisions RevisionReader
}

// New returns a Provider reading history through revisions.
func New(revisions RevisionReader) *Provider {
	return &Provider{revisions: revisions}
}

// CurrentContent reads the working-tree file.
func (p *Provider) CurrentContent(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // paths come from the rule expander
	if err != nil {
		return "", errkind.E(errkind.ReadFailed, "read working tree", path, err)
	}
	return string(data), nil
}

// ContentAtCommit returns path's content as of hash.
//
// A path that did not exist at hash yields "" with no error, so a file added after the
// document was written compares as entirely different. Cancellation is still reported.
func (p *Provider) ContentAtCommit(ctx context.Context, path, hash string) (string, error) {
	content, err := p.revisions.Show(ctx, hash, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", nil
	}
	return content, nil
}
