// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed config.schema.json
var schemaJSON []byte

const schemaURL = "mem://docgap/config.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("decode config schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("register config schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// SchemaJSON returns the embedded JSON schema document.
func SchemaJSON() []byte {
	return append([]byte(nil), schemaJSON...)
}

// validateDocument checks a decoded configuration document against the schema.
// doc is any value produced by a YAML or JSON decoder; it is re-encoded as JSON so
// numbers reach the validator in canonical form.
func validateDocument(doc any) error {
	sch, err := schema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config for validation: %w", err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode config for validation: %w", err)
	}
	return sch.Validate(instance)
}
