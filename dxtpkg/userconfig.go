package dxtpkg

import "fmt"

// MissingRequiredConfigError reports that a required user_config key was
// not supplied.
type MissingRequiredConfigError struct{ Key string }

func (e *MissingRequiredConfigError) Error() string {
	return fmt.Sprintf("dxtpkg: missing required config key %q", e.Key)
}

// SensitiveValueNotAllowedError reports that a sensitive user_config value
// was not supplied as an already-resolved plain string; resolving from a
// secret store happens outside this component (§4.5 step 4).
type SensitiveValueNotAllowedError struct{ Key string }

func (e *SensitiveValueNotAllowedError) Error() string {
	return fmt.Sprintf("dxtpkg: sensitive config key %q must be a resolved plain string", e.Key)
}

// ValidateUserConfig checks that every required key in fields is present in
// values, and that every sensitive field's supplied value is a plain string.
func ValidateUserConfig(fields map[string]UserConfigField, values map[string]any) error {
	for key, field := range fields {
		value, present := values[key]
		if field.Required && !present {
			return &MissingRequiredConfigError{Key: key}
		}
		if !present {
			continue
		}
		if field.Sensitive {
			if _, ok := value.(string); !ok {
				return &SensitiveValueNotAllowedError{Key: key}
			}
		}
	}
	return nil
}
