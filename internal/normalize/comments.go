// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import (
	"regexp"
	"strings"
)

var (
	cBlock = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	// A "//" preceded by ':' is a URL scheme separator, not a comment.
	cLine       = regexp.MustCompile(`(?m)(^|[^:])//.*$`)
	hashLine    = regexp.MustCompile(`(?m)#.*$`)
	dashLine    = regexp.MustCompile(`(?m)--.*$`)
	luaBlock    = regexp.MustCompile(`--\[\[[\s\S]*?\]\]`)
	markupBlock = regexp.MustCompile(`<!--[\s\S]*?-->`)
)

type commentStyle struct {
	blocks []*regexp.Regexp
	lines  []*regexp.Regexp
}

var (
	cStyle      = commentStyle{blocks: []*regexp.Regexp{cBlock}, lines: []*regexp.Regexp{cLine}}
	hashStyle   = commentStyle{lines: []*regexp.Regexp{hashLine}}
	sqlStyle    = commentStyle{blocks: []*regexp.Regexp{cBlock}, lines: []*regexp.Regexp{dashLine}}
	luaStyle    = commentStyle{blocks: []*regexp.Regexp{luaBlock}, lines: []*regexp.Regexp{dashLine}}
	markupStyle = commentStyle{blocks: []*regexp.Regexp{markupBlock}}
	// Component files mix markup with script blocks.
	componentStyle = commentStyle{blocks: []*regexp.Regexp{markupBlock, cBlock}, lines: []*regexp.Regexp{cLine}}
	// PHP and HCL accept both C-style and hash comments.
	mixedStyle = commentStyle{blocks: []*regexp.Regexp{cBlock}, lines: []*regexp.Regexp{cLine, hashLine}}
)

var stylesByExt = map[string]commentStyle{
	"py": hashStyle, "pyi": hashStyle, "rb": hashStyle, "sh": hashStyle, "bash": hashStyle,
	"zsh": hashStyle, "yaml": hashStyle, "yml": hashStyle, "toml": hashStyle, "r": hashStyle,
	"pl": hashStyle, "ex": hashStyle, "exs": hashStyle, "dockerfile": hashStyle,
	"sql": sqlStyle, "hs": sqlStyle,
	"lua": luaStyle,
	"html": markupStyle, "htm": markupStyle, "xml": markupStyle, "md": markupStyle, "mdx": markupStyle,
	"vue": componentStyle, "svelte": componentStyle,
	"php": mixedStyle, "tf": mixedStyle, "hcl": mixedStyle,
}

// styleFor returns the comment syntax for an extension; C-style is the fallback.
func styleFor(ext string) commentStyle {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if s, ok := stylesByExt[ext]; ok {
		return s
	}
	return cStyle
}

// StripComments removes comments from text while keeping its line structure, so line
// numbers in the result still point at the original source.
func StripComments(text, ext string) string {
	style := styleFor(ext)
	for _, re := range style.blocks {
		text = stripBlocks(text, re)
	}
	for _, re := range style.lines {
		text = re.ReplaceAllString(text, "${1}")
	}
	return text
}

// stripBlocks replaces each block comment with the newlines it spanned. A single-line
// block between ':' and "//" becomes a space so the line comment is not mistaken for a URL.
func stripBlocks(text string, re *regexp.Regexp) string {
	matches := re.FindAllStringIndex(text, -1)
	if matches == nil {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		repl := strings.Repeat("\n", strings.Count(text[m[0]:m[1]], "\n"))
		if repl == "" && strings.HasSuffix(text[:m[0]], ":") && strings.HasPrefix(text[m[1]:], "//") {
			repl = " "
		}
		b.WriteString(repl)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
