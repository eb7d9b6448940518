// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Patterns is a list of glob patterns that may be written as a single string.
type Patterns []string

// UnmarshalYAML accepts either a scalar or a sequence of strings.
func (p *Patterns) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*p = Patterns{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*p = list
		return nil
	default:
		return fmt.Errorf("line %d: source must be a string or a list of strings", node.Line)
	}
}

// UnmarshalJSON accepts either a string or an array of strings.
func (p *Patterns) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Patterns{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("source must be a string or an array of strings: %w", err)
	}
	*p = list
	return nil
}

// MarshalYAML writes a single pattern as a scalar.
func (p Patterns) MarshalYAML() (interface{}, error) {
	if len(p) == 1 {
		return p[0], nil
	}
	return []string(p), nil
}
