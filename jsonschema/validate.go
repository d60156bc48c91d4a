package jsonschema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// validator carries the per-Validate-call state shared across the
// recursive descent: the compiled-pattern cache so patternProperties and
// the "regex" format don't recompile the same expression at every node.
type validator struct {
	patterns *patternCache
}

// evaluation records which instance members a subschema accounted for, so
// enclosing unevaluatedProperties/unevaluatedItems keywords can tell
// "checked and failed" apart from "never looked at".
type evaluation struct {
	props map[string]bool
	items map[int]bool
}

func newEvaluation() *evaluation {
	return &evaluation{props: make(map[string]bool), items: make(map[int]bool)}
}

func (e *evaluation) mergeFrom(o *evaluation) {
	if o == nil {
		return
	}
	for k := range o.props {
		e.props[k] = true
	}
	for i := range o.items {
		e.items[i] = true
	}
}

// Validate checks instance against schema and returns every keyword-level
// failure found; Result.Valid is false if any were.
func Validate(schema *Schema, instance any) *Result {
	return ValidateWithPatternTimeout(schema, instance, DefaultPatternTimeout)
}

// ValidateWithPatternTimeout is Validate with an explicit per-match regex
// timeout, for callers that need a tighter or looser ReDoS budget than the
// default (spec §8).
func ValidateWithPatternTimeout(schema *Schema, instance any, patternTimeout time.Duration) *Result {
	v := &validator{patterns: newPatternCache(patternTimeout)}
	res := newResult()
	ev := v.validate(schema, instance, "", res)
	res.EvaluatedProperties = ev.props
	res.EvaluatedItems = ev.items
	return res
}

func (v *validator) validate(schema *Schema, instance any, path string, res *Result) *evaluation {
	ev := newEvaluation()
	if schema == nil {
		return ev
	}
	if schema.boolValue != nil {
		if !*schema.boolValue {
			res.fail(path, "false", "instance is not permitted by a false schema")
		}
		return ev
	}
	if schema.object == nil {
		return ev
	}

	v.checkType(schema, instance, path, res)
	v.checkEnumConst(schema, instance, path, res)
	v.checkNumeric(schema, instance, path, res)
	v.checkString(schema, instance, path, res)
	arrayEv := v.checkArray(schema, instance, path, res)
	objectEv := v.checkObject(schema, instance, path, res)
	ev.mergeFrom(arrayEv)
	ev.mergeFrom(objectEv)
	compEv := v.checkComposition(schema, instance, path, res)
	ev.mergeFrom(compEv)
	v.checkUnevaluated(schema, instance, path, res, ev)
	return ev
}

func checkType(declared string, instance any) bool {
	actual := typeName(instance)
	if declared == actual {
		return true
	}
	// "number" accepts whole-valued instances too; "integer" does not
	// accept non-whole numbers.
	if declared == "number" && actual == "integer" {
		return true
	}
	return false
}

func (v *validator) checkType(schema *Schema, instance any, path string, res *Result) {
	raw, ok := schema.keyword("type")
	if !ok {
		return
	}
	switch t := raw.(type) {
	case string:
		if !checkType(t, instance) {
			res.fail(path, "type", fmt.Sprintf("expected type %q, got %q", t, typeName(instance)))
		}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && checkType(s, instance) {
				return
			}
		}
		res.fail(path, "type", fmt.Sprintf("type %q does not match any of %v", typeName(instance), t))
	}
}

func (v *validator) checkEnumConst(schema *Schema, instance any, path string, res *Result) {
	if raw, ok := schema.keyword("const"); ok {
		if !deepEqual(raw, instance) {
			res.fail(path, "const", "instance does not equal the required constant")
		}
	}
	if raw, ok := schema.keyword("enum"); ok {
		values, ok := raw.([]any)
		if !ok {
			return
		}
		for _, candidate := range values {
			if deepEqual(candidate, instance) {
				return
			}
		}
		res.fail(path, "enum", "instance does not match any enum value")
	}
}

func (v *validator) checkNumeric(schema *Schema, instance any, path string, res *Result) {
	n, ok := asNumber(instance)
	if !ok {
		return
	}
	if raw, ok := schema.keyword("multipleOf"); ok {
		if div, ok := asNumber(raw); ok && div > 0 {
			ratio := n / div
			if math.Abs(ratio-math.Round(ratio)) > 1e-9 {
				res.fail(path, "multipleOf", fmt.Sprintf("%v is not a multiple of %v", n, div))
			}
		}
	}
	if raw, ok := schema.keyword("minimum"); ok {
		if min, ok := asNumber(raw); ok && n < min {
			res.fail(path, "minimum", fmt.Sprintf("%v is less than minimum %v", n, min))
		}
	}
	if raw, ok := schema.keyword("maximum"); ok {
		if max, ok := asNumber(raw); ok && n > max {
			res.fail(path, "maximum", fmt.Sprintf("%v is greater than maximum %v", n, max))
		}
	}
	if raw, ok := schema.keyword("exclusiveMinimum"); ok {
		if min, ok := asNumber(raw); ok && n <= min {
			res.fail(path, "exclusiveMinimum", fmt.Sprintf("%v is not greater than exclusive minimum %v", n, min))
		}
	}
	if raw, ok := schema.keyword("exclusiveMaximum"); ok {
		if max, ok := asNumber(raw); ok && n >= max {
			res.fail(path, "exclusiveMaximum", fmt.Sprintf("%v is not less than exclusive maximum %v", n, max))
		}
	}
}

func (v *validator) checkString(schema *Schema, instance any, path string, res *Result) {
	s, ok := instance.(string)
	if !ok {
		return
	}
	length := len([]rune(s))
	if raw, ok := schema.keyword("minLength"); ok {
		if min, ok := asNumber(raw); ok && float64(length) < min {
			res.fail(path, "minLength", fmt.Sprintf("length %d is less than minLength %v", length, min))
		}
	}
	if raw, ok := schema.keyword("maxLength"); ok {
		if max, ok := asNumber(raw); ok && float64(length) > max {
			res.fail(path, "maxLength", fmt.Sprintf("length %d is greater than maxLength %v", length, max))
		}
	}
	if pattern, ok := schema.stringKeyword("pattern"); ok {
		switch v.patterns.match(pattern, s) {
		case matchNo:
			res.fail(path, "pattern", fmt.Sprintf("value does not match pattern %q", pattern))
		case matchRedosTimeout:
			res.fail(path, "pattern", fmt.Sprintf("pattern %q timed out matching value", pattern))
		case matchInvalidPattern:
			res.fail(path, "pattern", fmt.Sprintf("pattern %q is not a valid regular expression", pattern))
		}
	}
	if format, ok := schema.stringKeyword("format"); ok {
		if check, known := formatCheckers[format]; known && !check(s, v.patterns) {
			res.fail(path, "format", fmt.Sprintf("value does not satisfy format %q", format))
		}
	}
	v.checkContent(schema, s, path, res)
}

func (v *validator) checkContent(schema *Schema, s string, path string, res *Result) {
	if encoding, ok := schema.stringKeyword("contentEncoding"); ok {
		decoded, ok := decodeContent(encoding, s)
		if !ok {
			res.fail(path, "contentEncoding", fmt.Sprintf("value is not valid %s", encoding))
			return
		}
		if mediaType, ok := schema.stringKeyword("contentMediaType"); ok {
			checkContentMediaType(mediaType, decoded, path, res)
		}
		return
	}
	if mediaType, ok := schema.stringKeyword("contentMediaType"); ok {
		checkContentMediaType(mediaType, []byte(s), path, res)
	}
}

func checkContentMediaType(mediaType string, data []byte, path string, res *Result) {
	if strings.EqualFold(mediaType, "application/json") {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			res.fail(path, "contentMediaType", "value is not valid application/json")
		}
	}
}
