// SPDX-License-Identifier: AGPL-3.0-or-later

package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexical/docgap/internal/errkind"
	"github.com/nexical/docgap/internal/git"
	"github.com/nexical/docgap/internal/testutil/gitrepo"
)

type fakeRevisions struct {
	content string
	err     error
	calls   []string
}

func (f *fakeRevisions) Show(_ context.Context, rev, path string) (string, error) {
	f.calls = append(f.calls, rev+":"+path)
	return f.content, f.err
}

func TestCurrentContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.ts")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	p := New(&fakeRevisions{})
	got, err := p.CurrentContent(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "content", got)

	_, err = p.CurrentContent(context.Background(), filepath.Join(dir, "missing.ts"))
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.ReadFailed))
}

func TestContentAtCommit(t *testing.T) {
	revs := &fakeRevisions{content: "content"}
	p := New(revs)

	got, err := p.ContentAtCommit(context.Background(), "file.ts", "abc")
	require.NoError(t, err)
	assert.Equal(t, "content", got)
	assert.Equal(t, []string{"abc:file.ts"}, revs.calls)
}

func TestContentAtCommit_MissingIsEmpty(t *testing.T) {
	p := New(&fakeRevisions{err: errors.New("fatal: path 'file.ts' does not exist in 'abc'")})

	got, err := p.ContentAtCommit(context.Background(), "file.ts", "abc")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestContentAtCommit_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(&fakeRevisions{err: context.Canceled})
	_, err := p.ContentAtCommit(ctx, "file.ts", "abc")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProvider_WithGit(t *testing.T) {
	fx := gitrepo.New(t)
	ctx := context.Background()

	docCommit := fx.Commit("2023-01-01T00:00:00Z", "docs: first", map[string]string{"README.md": "# x"})
	fx.Commit("2023-01-02T00:00:00Z", "feat: add", map[string]string{"src/new.ts": "export const x = 1;"})

	repo, err := git.Open(ctx, fx.Dir)
	require.NoError(t, err)
	p := New(repo)

	old, err := p.ContentAtCommit(ctx, fx.Path("src/new.ts"), docCommit)
	require.NoError(t, err)
	assert.Equal(t, "", old, "file added after the commit reads as empty")

	cur, err := p.CurrentContent(ctx, fx.Path("src/new.ts"))
	require.NoError(t, err)
	assert.Equal(t, "export const x = 1;", cur)
}
