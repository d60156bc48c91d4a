package jsonschema

import "fmt"

// checkObject applies every object-shaped keyword and returns which
// property names were evaluated by properties/patternProperties/
// additionalProperties, for unevaluatedProperties. propertyNames validates
// each name but does not mark it as evaluated.
func (v *validator) checkObject(schema *Schema, instance any, path string, res *Result) *evaluation {
	ev := newEvaluation()
	obj, ok := instance.(map[string]any)
	if !ok {
		return ev
	}

	if raw, ok := schema.keyword("minProperties"); ok {
		if min, ok := asNumber(raw); ok && float64(len(obj)) < min {
			res.fail(path, "minProperties", fmt.Sprintf("object has %d properties, fewer than minProperties %v", len(obj), min))
		}
	}
	if raw, ok := schema.keyword("maxProperties"); ok {
		if max, ok := asNumber(raw); ok && float64(len(obj)) > max {
			res.fail(path, "maxProperties", fmt.Sprintf("object has %d properties, more than maxProperties %v", len(obj), max))
		}
	}
	if raw, ok := schema.keyword("required"); ok {
		if names, ok := raw.([]any); ok {
			for _, item := range names {
				name, ok := item.(string)
				if !ok {
					continue
				}
				if _, present := obj[name]; !present {
					res.fail(path, "required", fmt.Sprintf("missing required property %q", name))
				}
			}
		}
	}
	if names, ok := schema.keyword("dependentRequired"); ok {
		if depMap, ok := names.(map[string]any); ok {
			for trigger, raw := range depMap {
				if _, present := obj[trigger]; !present {
					continue
				}
				required, ok := raw.([]any)
				if !ok {
					continue
				}
				for _, item := range required {
					name, ok := item.(string)
					if !ok {
						continue
					}
					if _, present := obj[name]; !present {
						res.fail(path, "dependentRequired", fmt.Sprintf("property %q requires %q", trigger, name))
					}
				}
			}
		}
	}

	if propertyNamesSchema, ok := schema.schemaKeyword("propertyNames"); ok {
		for key := range obj {
			v.validate(propertyNamesSchema, key, path+"/"+key, res)
		}
	}

	propertiesRaw, hasProperties := schema.keyword("properties")
	properties, _ := propertiesRaw.(map[string]any)
	patternPropsRaw, hasPatternProps := schema.keyword("patternProperties")
	patternProps, _ := patternPropsRaw.(map[string]any)

	for _, key := range sortedKeys(obj) {
		handled := false
		if hasProperties {
			if raw, ok := properties[key]; ok {
				sub, err := newSchema(raw)
				if err == nil {
					v.validate(sub, obj[key], path+"/"+key, res)
					ev.props[key] = true
					handled = true
				}
			}
		}
		if hasPatternProps {
			for pattern, raw := range patternProps {
				if v.patterns.match(pattern, key) != matchYes {
					continue
				}
				sub, err := newSchema(raw)
				if err != nil {
					continue
				}
				v.validate(sub, obj[key], path+"/"+key, res)
				ev.props[key] = true
				handled = true
			}
		}
		if !handled {
			if additional, ok := schema.keyword("additionalProperties"); ok {
				sub, err := newSchema(additional)
				if err == nil {
					v.validate(sub, obj[key], path+"/"+key, res)
				}
				ev.props[key] = true
			}
		}
	}

	return ev
}
