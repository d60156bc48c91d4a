package jsonschema

import (
	"encoding/json"
	"sort"
)

// asNumber reports whether v is a JSON number (decoded with UseNumber) and
// its float64 value.
func asNumber(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// isIntegerValue reports whether a JSON number's value is a whole number,
// regardless of whether it was written as "42" or "42.0" (§3 invariant:
// integer and number compare equal when numerically equal).
func isIntegerValue(v any) bool {
	f, ok := asNumber(v)
	if !ok {
		return false
	}
	return f == float64(int64(f))
}

// deepEqual implements the structural equality const/enum/uniqueItems rely
// on: same variant, same members, object key order ignored, integer/number
// cross-compared numerically.
func deepEqual(a, b any) bool {
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	if aok && bok {
		return an == bn
	}
	if aok != bok {
		return false
	}

	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bval, ok := bv[k]
			if !ok || !deepEqual(v, bval) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// uniqueItems reports whether every element of items is structurally
// distinct per deepEqual.
func uniqueItems(items []any) bool {
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if deepEqual(items[i], items[j]) {
				return false
			}
		}
	}
	return true
}

// sortedKeys returns m's keys in sorted order, used wherever deterministic
// iteration order matters for reproducible error output.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// typeName returns the JSON Schema type name ("null","boolean","object",
// "array","string","integer","number") of a decoded instance value.
func typeName(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case json.Number:
		if isIntegerValue(val) {
			return "integer"
		}
		return "number"
	default:
		return "unknown"
	}
}
