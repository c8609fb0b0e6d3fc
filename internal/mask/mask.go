// Package mask redacts card data from structured values before they reach a
// log sink or a response envelope. The unmasked value must always be what is
// sent to the upstream gateway; callers mask a copy, never the original.
package mask

import (
	"encoding/json"
	"strings"
)

// isPANKey reports whether a key name likely holds a card number.
func isPANKey(key string) bool {
	k := strings.ToLower(key)
	if k == "pan" || k == "number" {
		return true
	}
	if strings.Contains(k, "pan") {
		return true
	}
	if strings.Contains(k, "card") && (strings.Contains(k, "number") || strings.Contains(k, "num")) {
		return true
	}
	return strings.Contains(k, "cardnumber") || strings.Contains(k, "card_number")
}

// isCVVKey reports whether a key name likely holds a CVV/CVC.
func isCVVKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "cvv") ||
		strings.Contains(k, "cvc") ||
		strings.Contains(k, "cvn") ||
		strings.Contains(k, "card_verification")
}

// MaskPAN keeps the last 4 characters and stars the rest. Values of 4
// characters or fewer pass through unchanged.
func MaskPAN(s string) string {
	if len(s) <= 4 {
		return s
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

// Secure walks a decoded JSON value (map[string]any / []any / scalars) and
// masks PAN-like and CVV-like fields. Unrecognized shapes pass through
// unchanged rather than erroring. The input is never mutated.
func Secure(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			switch {
			case isPANKey(k):
				out[k] = maskScalar(item, MaskPAN)
			case isCVVKey(k):
				out[k] = maskScalar(item, func(string) string { return "***" })
			default:
				out[k] = Secure(item)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Secure(item)
		}
		return out
	default:
		return v
	}
}

// maskScalar applies fn to string or numeric values; anything else is still
// walked so a nested object under a suspicious key does not escape masking.
func maskScalar(v any, fn func(string) string) any {
	switch s := v.(type) {
	case string:
		return fn(s)
	case json.Number:
		return fn(s.String())
	case float64:
		// encoding/json decodes numbers as float64 unless UseNumber is set.
		return fn(trimFloat(s))
	default:
		return Secure(v)
	}
}

func trimFloat(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

// Value masks any serializable value by round-tripping it through JSON.
// Returns the input untouched if it does not serialize.
func Value(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return v
	}
	return Secure(decoded)
}
