package jsonschema

import "fmt"

// checkArray applies every array-shaped keyword and returns which indices
// were evaluated by prefixItems/items/contains, for unevaluatedItems.
func (v *validator) checkArray(schema *Schema, instance any, path string, res *Result) *evaluation {
	ev := newEvaluation()
	items, ok := instance.([]any)
	if !ok {
		return ev
	}

	if raw, ok := schema.keyword("minItems"); ok {
		if min, ok := asNumber(raw); ok && float64(len(items)) < min {
			res.fail(path, "minItems", fmt.Sprintf("array has %d items, fewer than minItems %v", len(items), min))
		}
	}
	if raw, ok := schema.keyword("maxItems"); ok {
		if max, ok := asNumber(raw); ok && float64(len(items)) > max {
			res.fail(path, "maxItems", fmt.Sprintf("array has %d items, more than maxItems %v", len(items), max))
		}
	}
	if raw, ok := schema.keyword("uniqueItems"); ok {
		if unique, ok := raw.(bool); ok && unique && !uniqueItems(items) {
			res.fail(path, "uniqueItems", "array contains duplicate items")
		}
	}

	prefixSchemas, hasPrefix := schema.schemaArrayKeyword("prefixItems")
	if hasPrefix {
		for i, sub := range prefixSchemas {
			if i >= len(items) {
				break
			}
			v.validate(sub, items[i], itemPath(path, i), res)
			ev.items[i] = true
		}
	}

	if itemsSchema, ok := schema.schemaKeyword("items"); ok {
		start := 0
		if hasPrefix {
			start = len(prefixSchemas)
		}
		for i := start; i < len(items); i++ {
			v.validate(itemsSchema, items[i], itemPath(path, i), res)
			ev.items[i] = true
		}
	}

	if containsSchema, ok := schema.schemaKeyword("contains"); ok {
		matched := 0
		for i, item := range items {
			sub := newResult()
			v.validate(containsSchema, item, itemPath(path, i), sub)
			if sub.Valid {
				matched++
				ev.items[i] = true
			}
		}
		minContains := 1
		if raw, ok := schema.keyword("minContains"); ok {
			if n, ok := asNumber(raw); ok {
				minContains = int(n)
			}
		}
		if matched < minContains {
			res.fail(path, "contains", fmt.Sprintf("only %d item(s) match contains, need at least %d", matched, minContains))
		}
		if raw, ok := schema.keyword("maxContains"); ok {
			if maxContains, ok := asNumber(raw); ok && float64(matched) > maxContains {
				res.fail(path, "maxContains", fmt.Sprintf("%d item(s) match contains, more than maxContains %v", matched, maxContains))
			}
		}
	}

	return ev
}

func itemPath(path string, i int) string {
	return fmt.Sprintf("%s/%d", path, i)
}
