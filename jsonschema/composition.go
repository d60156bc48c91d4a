package jsonschema

import "fmt"

// checkComposition applies allOf/anyOf/oneOf/not/if-then-else/
// dependentSchemas and returns the union of evaluated properties/items
// contributed by whichever branches actually applied.
func (v *validator) checkComposition(schema *Schema, instance any, path string, res *Result) *evaluation {
	ev := newEvaluation()

	if subs, ok := schema.schemaArrayKeyword("allOf"); ok {
		for i, sub := range subs {
			branch := newResult()
			branchEv := v.validate(sub, instance, path, branch)
			if !branch.Valid {
				res.merge(branch, path)
				res.fail(path, "allOf", fmt.Sprintf("allOf[%d] failed", i))
			}
			ev.mergeFrom(branchEv)
		}
	}

	if subs, ok := schema.schemaArrayKeyword("anyOf"); ok {
		matched := 0
		for _, sub := range subs {
			branch := newResult()
			branchEv := v.validate(sub, instance, path, branch)
			if branch.Valid {
				matched++
				ev.mergeFrom(branchEv)
			}
		}
		if matched == 0 {
			res.fail(path, "anyOf", "instance does not match any subschema in anyOf")
		}
	}

	if subs, ok := schema.schemaArrayKeyword("oneOf"); ok {
		matched := 0
		var matchedEv *evaluation
		for _, sub := range subs {
			branch := newResult()
			branchEv := v.validate(sub, instance, path, branch)
			if branch.Valid {
				matched++
				matchedEv = branchEv
			}
		}
		switch {
		case matched == 1:
			ev.mergeFrom(matchedEv)
		default:
			res.fail(path, "oneOf", fmt.Sprintf("one-of-failed: expected exactly one match, matched %d", matched))
		}
	}

	if sub, ok := schema.schemaKeyword("not"); ok {
		branch := newResult()
		v.validate(sub, instance, path, branch)
		if branch.Valid {
			res.fail(path, "not", "instance matches a schema disallowed by not")
		}
	}

	if ifSchema, ok := schema.schemaKeyword("if"); ok {
		ifResult := newResult()
		ifEv := v.validate(ifSchema, instance, path, ifResult)
		if ifResult.Valid {
			ev.mergeFrom(ifEv)
			if thenSchema, ok := schema.schemaKeyword("then"); ok {
				ev.mergeFrom(v.validate(thenSchema, instance, path, res))
			}
		} else if elseSchema, ok := schema.schemaKeyword("else"); ok {
			ev.mergeFrom(v.validate(elseSchema, instance, path, res))
		}
	}

	if raw, ok := schema.keyword("dependentSchemas"); ok {
		if obj, objOK := instance.(map[string]any); objOK {
			if depMap, ok := raw.(map[string]any); ok {
				for trigger, subRaw := range depMap {
					if _, present := obj[trigger]; !present {
						continue
					}
					sub, err := newSchema(subRaw)
					if err != nil {
						continue
					}
					ev.mergeFrom(v.validate(sub, instance, path, res))
				}
			}
		}
	}

	return ev
}

// checkUnevaluated applies unevaluatedProperties/unevaluatedItems against
// whatever properties.keys/items were not already accounted for by the
// keywords processed above (§4.7 cross-cutting requirements).
func (v *validator) checkUnevaluated(schema *Schema, instance any, path string, res *Result, ev *evaluation) {
	if obj, ok := instance.(map[string]any); ok {
		if additional, ok := schema.keyword("unevaluatedProperties"); ok {
			sub, err := newSchema(additional)
			for _, key := range sortedKeys(obj) {
				if ev.props[key] {
					continue
				}
				if err == nil {
					v.validate(sub, obj[key], path+"/"+key, res)
				}
				ev.props[key] = true
			}
		}
	}
	if items, ok := instance.([]any); ok {
		if additional, ok := schema.keyword("unevaluatedItems"); ok {
			sub, err := newSchema(additional)
			for i, item := range items {
				if ev.items[i] {
					continue
				}
				if err == nil {
					v.validate(sub, item, itemPath(path, i), res)
				}
				ev.items[i] = true
			}
		}
	}
}
