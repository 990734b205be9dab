package logger

import (
	"encoding/json"
	"strings"
)

// Mask replaces the value of every sensitive field.
const Mask = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"password":     {},
	"token":        {},
	"access_token": {},
	"creditcard":   {},
	"credit_card":  {},
}

// IsSensitive reports whether a field name must never be logged.
func IsSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// RedactJSON returns the body with sensitive fields masked at any depth.
// Bodies that are not JSON are summarized instead of logged verbatim.
func RedactJSON(body []byte) any {
	if len(body) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "<non-JSON body omitted>"
	}
	return Redact(v)
}

// Redact walks decoded JSON and masks sensitive fields.
func Redact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if IsSensitive(k) {
				out[k] = Mask
				continue
			}
			out[k] = Redact(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Redact(val)
		}
		return out
	default:
		return v
	}
}
