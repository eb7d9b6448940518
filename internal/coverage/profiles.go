// SPDX-License-Identifier: AGPL-3.0-or-later

package coverage

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Kind classifies an extracted entity.
type Kind string

const (
	KindClass    Kind = "class"
	KindFunction Kind = "function"
)

// Pattern captures an entity name in its first group.
type Pattern struct {
	Kind Kind
	Re   *regexp.Regexp
}

// Profile describes how to find declarations in one language family.
type Profile struct {
	Name       string
	Extensions []string
	Patterns   []Pattern
}

func class(expr string) Pattern    { return Pattern{Kind: KindClass, Re: regexp.MustCompile(expr)} }
func function(expr string) Pattern { return Pattern{Kind: KindFunction, Re: regexp.MustCompile(expr)} }

// controlFlow words can look like a call or declaration to a line regex.
var controlFlow = map[string]bool{
	"if": true, "else": true, "for": true, "foreach": true, "while": true, "do": true,
	"switch": true, "case": true, "catch": true, "try": true, "finally": true,
	"return": true, "throw": true, "new": true, "typeof": true, "sizeof": true,
	"function": true, "constructor": true, "super": true, "this": true,
	"using": true, "lock": true, "when": true, "match": true, "loop": true,
	"elif": true, "elsif": true, "unless": true, "until": true, "with": true,
	"await": true, "yield": true, "delete": true, "void": true, "in": true, "of": true,
}

// Profiles lists the built-in language profiles.
var Profiles = []*Profile{
	{
		Name:       "typescript",
		Extensions: []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"},
		Patterns: []Pattern{
			class(`^\s*(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:abstract\s+)?(?:class|interface|enum|type)\s+([A-Za-z_$][\w$]*)`),
			function(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`),
			function(`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*(?::[^=]+)?=\s*(?:async\s+)?(?:\([^)]*\)|[A-Za-z_$][\w$]*)\s*(?::[^=]+)?=>`),
			// Parameter lists hold no parens or quotes, so calls taking callbacks do not match.
			function(`^\s*(?:(?:public|private|protected|static|readonly|abstract|override|async|get|set)\s+)*([A-Za-z_$][\w$]*)\s*(?:<[^>]*>)?\s*\([^()'"\x60]*\)\s*(?::\s*[^{;=]+)?\{`),
		},
	},
	{
		Name:       "python",
		Extensions: []string{".py", ".pyi"},
		Patterns: []Pattern{
			class(`^\s*class\s+([A-Za-z_]\w*)`),
			function(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)`),
		},
	},
	{
		Name:       "go",
		Extensions: []string{".go"},
		Patterns: []Pattern{
			class(`^\s*type\s+([A-Za-z_]\w*)(?:\[[^\]]*\])?\s+(?:struct|interface)\b`),
			function(`^\s*func\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)`),
		},
	},
	{
		Name:       "java",
		Extensions: []string{".java", ".cs"},
		Patterns: []Pattern{
			class(`^\s*(?:(?:public|private|protected|internal|static|abstract|final|sealed|partial|non-sealed|readonly)\s+)*(?:class|interface|enum|record|struct|@interface)\s+([A-Za-z_]\w*)`),
			function(`^\s*(?:(?:public|private|protected|internal|static|abstract|final|virtual|override|async|synchronized|native|sealed|extern|unsafe|default)\s+)+(?:<[^>]*>\s+)?[\w<>\[\]?,.]+(?:\s*<[^>]*>)?\s+([A-Za-z_]\w*)\s*\(`),
		},
	},
	{
		Name:       "kotlin",
		Extensions: []string{".kt", ".kts"},
		Patterns: []Pattern{
			class(`^\s*(?:(?:public|private|protected|internal|abstract|open|final|sealed|data|enum|annotation|inner|value)\s+)*(?:class|interface|object)\s+([A-Za-z_]\w*)`),
			function(`^\s*(?:(?:public|private|protected|internal|abstract|open|final|override|suspend|inline|operator|infix|tailrec)\s+)*fun\s+(?:<[^>]*>\s*)?(?:[\w.]+\.)?([A-Za-z_]\w*)`),
		},
	},
	{
		Name:       "rust",
		Extensions: []string{".rs"},
		Patterns: []Pattern{
			class(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:struct|enum|trait|union)\s+([A-Za-z_]\w*)`),
			function(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:(?:const|async|unsafe|extern(?:\s+"[^"]*")?)\s+)*fn\s+([A-Za-z_]\w*)`),
		},
	},
	{
		Name:       "ruby",
		Extensions: []string{".rb"},
		Patterns: []Pattern{
			class(`^\s*(?:class|module)\s+(?:[A-Z]\w*::)*([A-Z]\w*)`),
			function(`^\s*def\s+(?:self\.)?([A-Za-z_]\w*[?!=]?)`),
		},
	},
	{
		Name:       "php",
		Extensions: []string{".php"},
		Patterns: []Pattern{
			class(`^\s*(?:(?:abstract|final|readonly)\s+)*(?:class|interface|trait|enum)\s+([A-Za-z_]\w*)`),
			function(`^\s*(?:(?:public|private|protected|static|abstract|final)\s+)*function\s+&?\s*([A-Za-z_]\w*)`),
		},
	},
}

var profilesByExt = func() map[string]*Profile {
	m := make(map[string]*Profile)
	for _, p := range Profiles {
		for _, ext := range p.Extensions {
			m[ext] = p
		}
	}
	return m
}()

// ProfileFor returns the profile for a file path or bare extension, or nil.
func ProfileFor(path string) *Profile {
	ext := filepath.Ext(path)
	if ext == "" && strings.HasPrefix(path, ".") {
		ext = path
	}
	return profilesByExt[strings.ToLower(ext)]
}
