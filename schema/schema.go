// Package schema builds the typed-record schema consumed by the
// extraction backend from a user-supplied field list.
//
// Every field is a nullable text slot: value typing is the extraction
// backend's problem, shape is ours. The only invariant is that the
// produced schema's field set exactly equals the input field set.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is an ordered field → nullable-value descriptor.
type Schema struct {
	fields []string
}

// Build creates a schema from an ordered list of field names.
// Blank names are rejected; duplicates collapse to the first occurrence.
func Build(fields []string) (*Schema, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("schema: no fields")
	}
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		name := strings.TrimSpace(f)
		if name == "" {
			return nil, fmt.Errorf("schema: blank field name")
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return &Schema{fields: out}, nil
}

// ParseFieldList builds a schema from a comma-separated field list,
// ignoring empty segments.
func ParseFieldList(list string) (*Schema, error) {
	var fields []string
	for _, f := range strings.Split(list, ",") {
		if s := strings.TrimSpace(f); s != "" {
			fields = append(fields, s)
		}
	}
	return Build(fields)
}

// Fields returns the field names in declared order.
func (s *Schema) Fields() []string {
	return append([]string(nil), s.fields...)
}

// Has reports whether the schema declares a field.
func (s *Schema) Has(name string) bool {
	for _, f := range s.fields {
		if f == name {
			return true
		}
	}
	return false
}

// ItemJSON renders the JSON Schema document for a single record: an
// object whose properties are all nullable text-or-number slots. Extra properties are
// allowed — the backend may attach metadata markers.
func (s *Schema) ItemJSON() []byte {
	props := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		props[f] = map[string]any{
			"type":        []string{"string", "number", "null"},
			"description": "Extracted " + f,
		}
	}
	doc := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": true,
	}
	// Map keys marshal in sorted order, so output is deterministic.
	b, err := json.Marshal(doc)
	if err != nil {
		panic("schema: marshal: " + err.Error())
	}
	return b
}

// Compile compiles the item schema into a validator.
// A compile failure means a bug in the builder, not bad user input.
func (s *Schema) Compile() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("record.json", bytes.NewReader(s.ItemJSON())); err != nil {
		return nil, fmt.Errorf("schema: add resource: %w", err)
	}
	compiled, err := c.Compile("record.json")
	if err != nil {
		return nil, fmt.Errorf("schema: compile: %w", err)
	}
	return compiled, nil
}
