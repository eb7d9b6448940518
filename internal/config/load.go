// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	jsonc "github.com/muhammadmuzzammil1998/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/nexical/docgap/internal/errkind"
)

// DefaultFileNames lists the configuration files looked up in a project root, in order.
var DefaultFileNames = []string{
	".docgap.yaml",
	".docgap.yml",
	"docgap.config.json",
	".doc-drift.yaml",
	"doc-drift.config.json",
}

// Discover returns the path of the first default configuration file present in root.
func Discover(root string) (string, error) {
	for _, name := range DefaultFileNames {
		path := filepath.Join(root, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errkind.E(errkind.ReadFailed, "discover config", root,
		fmt.Errorf("none of %s found", strings.Join(DefaultFileNames, ", ")))
}

// LoadDefault discovers and loads the configuration file in root.
func LoadDefault(root string) (*Config, error) {
	path, err := Discover(root)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load reads, schema-validates and decodes a configuration file.
// Files ending in .json are parsed as JSON with comments; everything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path is chosen by the user
	if err != nil {
		return nil, errkind.E(errkind.ReadFailed, "load config", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data, path)
	}
	return ParseYAML(data, path)
}

// ParseYAML decodes YAML configuration. name is used in error messages only.
func ParseYAML(data []byte, name string) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errkind.E(errkind.InvalidConfig, "parse yaml", name, err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, errkind.E(errkind.InvalidConfig, "validate", name, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errkind.E(errkind.InvalidConfig, "decode yaml", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseJSON decodes JSON configuration, tolerating comments and trailing commas.
func ParseJSON(data []byte, name string) (*Config, error) {
	clean := jsonc.ToJSON(data)

	var doc any
	if err := json.Unmarshal(clean, &doc); err != nil {
		return nil, errkind.E(errkind.InvalidConfig, "parse json", name, err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, errkind.E(errkind.InvalidConfig, "validate", name, err)
	}

	cfg := Default()
	if err := json.Unmarshal(clean, &cfg); err != nil {
		return nil, errkind.E(errkind.InvalidConfig, "decode json", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate performs the semantic checks the schema cannot express.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return errkind.E(errkind.InvalidConfig, "validate", "concurrency",
			fmt.Errorf("must be at least 1, got %d", c.Concurrency))
	}
	for _, p := range c.Git.IgnoreCommitPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return errkind.E(errkind.InvalidPattern, "compile commit pattern", p, err)
		}
	}
	for _, p := range c.Ignore {
		if !doublestar.ValidatePattern(p) {
			return errkind.E(errkind.InvalidPattern, "validate ignore glob", p, nil)
		}
	}
	for i, r := range c.Rules {
		globs := append([]string{r.Doc}, r.Source...)
		globs = append(globs, r.Ignore...)
		for _, g := range globs {
			if !doublestar.ValidatePattern(g) {
				return errkind.E(errkind.InvalidPattern, fmt.Sprintf("validate rule %d glob", i), g, nil)
			}
		}
		if len(r.Source) == 0 {
			return errkind.E(errkind.InvalidConfig, "validate", fmt.Sprintf("rules[%d].source", i),
				errors.New("at least one source pattern is required"))
		}
	}
	switch c.Semantic.Normalizer {
	case "", NormalizerRegex:
	case NormalizerExternal:
		if len(c.Semantic.Command) == 0 {
			return errkind.E(errkind.InvalidConfig, "validate", "semantic.command",
				errors.New("external normalizer requires a command"))
		}
	default:
		return errkind.E(errkind.InvalidConfig, "validate", "semantic.normalizer",
			fmt.Errorf("unknown strategy %q", c.Semantic.Normalizer))
	}
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
