package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// asString renders scalars as strings; anything else becomes "".
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// asOptString returns nil for absent or blank values.
func asOptString(v any) *string {
	s := strings.TrimSpace(asString(v))
	if s == "" {
		return nil
	}
	return &s
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "on":
			return true
		}
		return false
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	default:
		return false
	}
}

// asInt64 coerces numbers and numeric strings; ok is false when v is not numeric.
func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

// asStringList keeps the string entries of a list. A bare string is split on
// commas when splitComma is set, otherwise it becomes a one-element list.
// The result is never nil.
func asStringList(v any, splitComma bool) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if !splitComma {
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
			return out
		}
		out = SplitTags(t)
	}
	return out
}

// SplitTags splits a comma-separated tag string, trimming blanks.
func SplitTags(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// uniqueStrings keeps the first occurrence of each non-empty string entry.
func uniqueStrings(v any) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, s := range asStringList(v, false) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// first returns the first key present with a non-empty value.
func first(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}
