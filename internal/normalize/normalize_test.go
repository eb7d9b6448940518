// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexical/docgap/internal/config"
	"github.com/nexical/docgap/internal/errkind"
)

func TestCanonical_IgnoresCommentsAndWhitespace(t *testing.T) {
	a := "function add(a, b) {\n  return a + b;\n}\n"
	b := "/**\n * Adds numbers.\n */\nfunction add(a, b) {   // sum\n\treturn a + b;\n\n}"

	assert.Equal(t, Canonical(a, "ts"), Canonical(b, "ts"))
	assert.Equal(t, "function add(a, b) { return a + b; }", Canonical(a, ".ts"))
}

func TestCanonical_PreservesURLs(t *testing.T) {
	src := `const api = "https://example.com/v1"; // endpoint`
	assert.Equal(t, `const api = "https://example.com/v1";`, Canonical(src, "js"))
}

func TestCanonical_PythonKeepsFloorDivision(t *testing.T) {
	src := "def half(n):\n    # integer half\n    return n // 2\n"
	assert.Equal(t, "def half(n): return n // 2", Canonical(src, "py"))
}

func TestCanonical_StyleByExtension(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		in   string
		want string
	}{
		{name: "sql dash comment", ext: "sql", in: "SELECT 1; -- one\n/* block */SELECT 2;", want: "SELECT 1; SELECT 2;"},
		{name: "lua block", ext: "lua", in: "--[[ header\n]]\nlocal x = 1 -- set", want: "local x = 1"},
		{name: "markup", ext: "html", in: "<p>hi</p><!-- note\n-->", want: "<p>hi</p>"},
		{name: "yaml hash", ext: "yml", in: "key: value # why\n", want: "key: value"},
		{name: "unknown falls back to c", ext: "zig", in: "const x = 1; // one", want: "const x = 1;"},
		{name: "spliced opener", ext: "c", in: "a //*x*/*y*/ b", want: "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.in, tt.ext))
		})
	}
}

func TestCanonical_BlockBeforeLineCommentAfterColon(t *testing.T) {
	assert.Equal(t, Canonical("x:\ny", "ts"), Canonical("x:/* c */// d\ny", "ts"))
	assert.Equal(t, "x: y", Canonical("x:/* c */// d\ny", "ts"))
	assert.Equal(t, `u := "http://a"`, Canonical(`u := "http://a"`, "go"))
}

func TestCanonical_Idempotent(t *testing.T) {
	inputs := []string{
		"int main() { /* a */ return 0; // b\n}",
		"x = 1  # c\n\n\ty = 2",
		"a //*x*/*y*/ b",
		"x:/* c */// d\ny",
		"url := \"http://a//b\" // trailing",
	}
	for _, in := range inputs {
		for _, ext := range []string{"go", "py", "sql", "html"} {
			once := Canonical(in, ext)
			assert.Equal(t, once, Canonical(once, ext), "ext %s input %q", ext, in)
		}
	}
}

func TestStripComments_KeepsLines(t *testing.T) {
	src := "line1\n/* a\n b\n c */\nline5 // x\n"
	got := StripComments(src, "ts")
	assert.Equal(t, "line1\n\n\n\nline5 \n", got)
}

func TestFingerprint(t *testing.T) {
	ctx := context.Background()

	a, err := Fingerprint(ctx, Regex{}, "let x = 1;", "js")
	require.NoError(t, err)
	b, err := Fingerprint(ctx, Regex{}, "// note\nlet x = 1;   \n", "js")
	require.NoError(t, err)
	c, err := Fingerprint(ctx, Regex{}, "let x = 2;", "js")
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestFromConfig(t *testing.T) {
	assert.IsType(t, Regex{}, FromConfig(config.SemanticConfig{}))

	n := FromConfig(config.SemanticConfig{Normalizer: config.NormalizerExternal, Command: []string{"fmt", "{file}"}})
	ext, ok := n.(*External)
	require.True(t, ok)
	assert.Equal(t, []string{"fmt", "{file}"}, ext.Command)
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("external normalizer tests use a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExternal_StdoutEnvelope(t *testing.T) {
	requireShell(t)
	scratch := t.TempDir()

	n := &External{
		Command: []string{"sh", "-c", `printf '<file path="x">\n'; sed 's://.*$::' "$1"; printf '</file>\n'`, "sh", PlaceholderFile},
		TempDir: scratch,
	}
	got, err := n.Normalize(context.Background(), "let a = 1; // one\nlet b = 2;\n", "ts")
	require.NoError(t, err)
	assert.Equal(t, "let a = 1; let b = 2;", got)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch directory removed after success")
}

func TestExternal_OutPlaceholder(t *testing.T) {
	requireShell(t)

	n := &External{
		Command: []string{"sh", "-c", "printf '%s\\n' '```ts' 'formatted' '```' > \"$2\"", "sh", PlaceholderFile, PlaceholderOut},
		TempDir: t.TempDir(),
	}
	got, err := n.Normalize(context.Background(), "anything", ".ts")
	require.NoError(t, err)
	assert.Equal(t, "formatted", got)
}

func TestExternal_FailureCleansUp(t *testing.T) {
	requireShell(t)
	scratch := t.TempDir()

	n := &External{Command: []string{"sh", "-c", "echo broken >&2; exit 3"}, TempDir: scratch}
	_, err := n.Normalize(context.Background(), "x", "go")
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.NormalizeFailed))

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch directory removed after failure")
}

func TestExternal_NoCommand(t *testing.T) {
	_, err := (&External{}).Normalize(context.Background(), "x", "go")
	assert.True(t, errkind.Is(err, errkind.NormalizeFailed))
}

func TestUnwrapEnvelope(t *testing.T) {
	assert.Equal(t, "a\n\n\nb\n", unwrapEnvelope("<file path=\"1\">a\n</file>junk<file>\nb\n</file>"))
	assert.Equal(t, "plain", unwrapEnvelope("plain"))
}
