// SPDX-License-Identifier: AGPL-3.0-or-later

package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexical/docgap/internal/config"
	"github.com/nexical/docgap/internal/drift"
	"github.com/nexical/docgap/internal/errkind"
)

func createFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func abs(root string, rels ...string) []string {
	out := make([]string, len(rels))
	for i, r := range rels {
		out[i] = filepath.Join(root, filepath.FromSlash(r))
	}
	return out
}

func TestMatcher_Excluded(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		want     bool
	}{
		{name: "segment at root", patterns: []string{"node_modules"}, path: "node_modules/a.js", want: true},
		{name: "nested segment", patterns: []string{"vendor"}, path: "pkg/vendor/b.go", want: true},
		{name: "segment prefix is not a match", patterns: []string{"vendor"}, path: "vendor_stuff/c.go", want: false},
		{name: "trailing slash segment", patterns: []string{"dist/"}, path: "web/dist/app.js", want: true},
		{name: "doublestar glob", patterns: []string{"**/*.test.ts"}, path: "src/deep/a.test.ts", want: true},
		{name: "glob is path relative", patterns: []string{"*.log"}, path: "logs/a.log", want: false},
		{name: "glob at root", patterns: []string{"*.log"}, path: "a.log", want: true},
		{name: "no patterns", path: "src/a.ts", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(t.TempDir(), tt.patterns, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Excluded(tt.path, false))
		})
	}
}

func TestMatcher_InvalidGlob(t *testing.T) {
	_, err := NewMatcher(t.TempDir(), []string{"src/[a"}, false)
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.InvalidPattern))
}

func TestMatcher_Gitignore(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, ".gitignore", "generated/\n*.gen.ts\n")

	m, err := NewMatcher(root, nil, true)
	require.NoError(t, err)
	assert.True(t, m.Excluded("src/api.gen.ts", false))
	assert.False(t, m.Excluded("src/api.ts", false))

	off, err := NewMatcher(root, nil, false)
	require.NoError(t, err)
	assert.False(t, off.Excluded("src/api.gen.ts", false))
}

func TestExpand(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "docs/api.md", "# API")
	createFile(t, root, "docs/guide.md", "# Guide")
	createFile(t, root, "src/b.ts", "b")
	createFile(t, root, "src/a.ts", "a")
	createFile(t, root, "src/a.test.ts", "t")
	createFile(t, root, "src/node_modules/dep/index.ts", "dep")
	createFile(t, root, "lib/util.ts", "u")

	e := &Expander{
		Root:         root,
		GlobalIgnore: []string{"node_modules"},
		Options:      drift.CheckOptions{Semantic: true},
	}
	targets, err := e.Expand([]config.Rule{
		{Doc: "docs/*.md", Source: config.Patterns{"src/**/*.ts", "./lib/*.ts", "src/a.ts"}, Ignore: []string{"**/*.test.ts"}, MaxStaleness: 2},
		{Doc: "missing/*.md", Source: config.Patterns{"src/*.ts"}},
	})
	require.NoError(t, err)
	require.Len(t, targets, 2)

	wantSources := abs(root, "lib/util.ts", "src/a.ts", "src/b.ts")
	assert.Equal(t, abs(root, "docs/api.md")[0], targets[0].Doc)
	assert.Equal(t, abs(root, "docs/guide.md")[0], targets[1].Doc)
	for _, tg := range targets {
		assert.Equal(t, 0, tg.Rule)
		assert.Equal(t, wantSources, tg.Sources)
		assert.True(t, tg.Options.Semantic)
		assert.Equal(t, 48*time.Hour, tg.Options.MaxStaleness)
	}
}

func TestExpand_DirectoriesAreNotSources(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "README.md", "x")
	createFile(t, root, "pkg/sub.go/file.txt", "odd directory name")
	createFile(t, root, "pkg/real.go", "package pkg")

	targets, err := (&Expander{Root: root}).Expand([]config.Rule{{Doc: "README.md", Source: config.Patterns{"pkg/*.go"}}})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, abs(root, "pkg/real.go"), targets[0].Sources)
}

func TestExpand_InvalidGlob(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "README.md", "x")

	_, err := (&Expander{Root: root}).Expand([]config.Rule{{Doc: "README.md", Source: config.Patterns{"src/[a"}}})
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.InvalidPattern))
}
