package jsonschema

import "encoding/base64"

// decodeContent decodes s per the contentEncoding keyword. Unrecognized
// encodings are treated as unconstrained (annotation-only), matching the
// format-keyword stance: this validator only asserts on encodings it knows.
func decodeContent(encoding, s string) ([]byte, bool) {
	switch encoding {
	case "base64":
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, false
		}
		return data, true
	case "base64url":
		data, err := base64.URLEncoding.DecodeString(s)
		if err != nil {
			return nil, false
		}
		return data, true
	default:
		return []byte(s), true
	}
}
