// Package jsonschema implements a Draft 2020-12 JSON Schema validator used
// to validate MCP tool-input payloads and configuration values (spec §4.7).
// It is deterministic and total: every (schema, instance) pair produces a
// Result, never a panic, and every regex-based keyword is evaluated under a
// per-match timeout to guard against catastrophic backtracking.
package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Schema is a parsed JSON Schema document: either a boolean schema (`true`
// matches everything, `false` matches nothing) or an object of keywords.
type Schema struct {
	boolValue *bool
	object    map[string]any
}

// ParseSchema decodes a JSON Schema document. Numbers are kept as
// json.Number so integer/number equivalence can be judged precisely.
func ParseSchema(data []byte) (*Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("jsonschema: parsing schema: %w", err)
	}
	return newSchema(raw)
}

func newSchema(raw any) (*Schema, error) {
	switch v := raw.(type) {
	case bool:
		return &Schema{boolValue: &v}, nil
	case map[string]any:
		return &Schema{object: v}, nil
	default:
		return nil, fmt.Errorf("jsonschema: schema must be an object or boolean, got %T", raw)
	}
}

// ParseInstance decodes a JSON instance document the same way ParseSchema
// does, so numeric comparisons line up.
func ParseInstance(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("jsonschema: parsing instance: %w", err)
	}
	return raw, nil
}

func (s *Schema) keyword(name string) (any, bool) {
	if s.object == nil {
		return nil, false
	}
	v, ok := s.object[name]
	return v, ok
}

func (s *Schema) stringKeyword(name string) (string, bool) {
	v, ok := s.keyword(name)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

func (s *Schema) schemaKeyword(name string) (*Schema, bool) {
	v, ok := s.keyword(name)
	if !ok {
		return nil, false
	}
	sub, err := newSchema(v)
	if err != nil {
		return nil, false
	}
	return sub, true
}

func (s *Schema) schemaArrayKeyword(name string) ([]*Schema, bool) {
	v, ok := s.keyword(name)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]*Schema, 0, len(arr))
	for _, item := range arr {
		sub, err := newSchema(item)
		if err != nil {
			continue
		}
		out = append(out, sub)
	}
	return out, true
}
