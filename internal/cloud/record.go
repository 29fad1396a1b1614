// ABOUTME: Loosely-typed cloud document records and defaulting accessors.
// ABOUTME: Every accessor takes candidate field names (camelCase first) and a default.
package cloud

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DocIDField is injected into each fetched record with the document id from its key.
const DocIDField = "_docId"

// Record is a single cloud document: JSON-like values keyed by field name.
type Record map[string]any

// lookup returns the first present, non-nil value among keys.
func (r Record) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether any of the keys is present with a non-nil value.
func (r Record) Has(keys ...string) bool {
	_, ok := r.lookup(keys...)
	return ok
}

// String returns the first string-like value, or def.
func (r Record) String(def string, keys ...string) string {
	v, ok := r.lookup(keys...)
	if !ok {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case json.Number:
		return s.String()
	}
	return def
}

// Float returns the first numeric value, or def. Numeric strings are accepted.
func (r Record) Float(def float64, keys ...string) float64 {
	v, ok := r.lookup(keys...)
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// Int returns the first numeric value truncated to int, or def.
func (r Record) Int(def int, keys ...string) int {
	v, ok := r.lookup(keys...)
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	if f >= math.MaxInt {
		return math.MaxInt
	}
	if f <= math.MinInt {
		return math.MinInt
	}
	return int(f)
}

// Bool returns the first boolean-like value, or def.
func (r Record) Bool(def bool, keys ...string) bool {
	v, ok := r.lookup(keys...)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
	}
	return def
}

// Time returns the first timestamp value, or def.
func (r Record) Time(def time.Time, keys ...string) time.Time {
	if t := r.OptionalTime(keys...); t != nil {
		return *t
	}
	return def
}

// OptionalTime returns the first timestamp value, or nil when absent or unparseable.
func (r Record) OptionalTime(keys ...string) *time.Time {
	v, ok := r.lookup(keys...)
	if !ok {
		return nil
	}
	t, ok := toTime(v)
	if !ok {
		return nil
	}
	return &t
}

// Strings returns the first array of strings. Non-string elements are skipped.
func (r Record) Strings(keys ...string) []string {
	v, ok := r.lookup(keys...)
	if !ok {
		return nil
	}
	switch arr := v.(type) {
	case []string:
		out := make([]string, len(arr))
		copy(out, arr)
		return out
	case []any:
		out := make([]string, 0, len(arr))
		for _, el := range arr {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Records returns a nested array of objects. Absence yields (nil, nil); a value
// that is present but not an array of objects is an error.
func (r Record) Records(keys ...string) ([]Record, error) {
	v, ok := r.lookup(keys...)
	if !ok {
		return nil, nil
	}
	switch arr := v.(type) {
	case []Record:
		return arr, nil
	case []map[string]any:
		out := make([]Record, len(arr))
		for i, m := range arr {
			out[i] = Record(m)
		}
		return out, nil
	case []any:
		out := make([]Record, 0, len(arr))
		for i, el := range arr {
			switch m := el.(type) {
			case map[string]any:
				out = append(out, Record(m))
			case Record:
				out = append(out, m)
			default:
				return nil, fmt.Errorf("%s[%d]: expected object, got %T", keys[0], i, el)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s: expected array, got %T", keys[0], v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// toTime converts the timestamp encodings seen on the wire into an instant.
func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case map[string]any:
		return timestampObject(Record(t))
	case Record:
		return timestampObject(t)
	}
	if f, ok := toFloat(v); ok {
		return unixTime(f), true
	}
	return time.Time{}, false
}

// timestampObject decodes {"_seconds","_nanoseconds"} or {"seconds","nanos"}.
func timestampObject(r Record) (time.Time, bool) {
	if !r.Has("_seconds", "seconds") {
		return time.Time{}, false
	}
	secs := r.Float(0, "_seconds", "seconds")
	nanos := r.Float(0, "_nanoseconds", "nanoseconds", "nanos")
	return time.Unix(int64(secs), int64(nanos)).UTC(), true
}

// unixTime treats values above 1e12 as milliseconds.
func unixTime(f float64) time.Time {
	if math.Abs(f) > 1e12 {
		return time.UnixMilli(int64(f)).UTC()
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
