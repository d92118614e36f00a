package itinerary

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Untrusted is a decoded JSON object whose shape is advisory only.
// Accessors report ok=false for absent, null, or wrong-typed values; callers default.
type Untrusted map[string]any

func (u Untrusted) Has(key string) bool {
	v, ok := u[key]
	return ok && v != nil
}

// String returns a non-blank string value. Numbers are not stringified.
func (u Untrusted) String(key string) (string, bool) {
	s, ok := u[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Number accepts JSON numbers and numeric strings.
func (u Untrusted) Number(key string) (float64, bool) {
	return toNumber(u[key])
}

// Int accepts only integral numbers.
func (u Untrusted) Int(key string) (int, bool) {
	f, ok := u.Number(key)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func (u Untrusted) Object(key string) (Untrusted, bool) {
	m, ok := u[key].(map[string]any)
	if !ok {
		return nil, false
	}
	return Untrusted(m), true
}

// Objects returns the list under key; non-object elements come back as empty objects
// so positional defaults still apply to them. A missing or non-list value yields nil.
func (u Untrusted) Objects(key string) []Untrusted {
	list, ok := u[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Untrusted, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Untrusted(m))
			continue
		}
		out = append(out, Untrusted{})
	}
	return out
}

func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
