// Package normalize turns loosely-typed stored records into the canonical shapes the
// analytics packages consume. Every function here is total: malformed input degrades to
// nil or an empty list, never to a panic or an error.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DayMillis is the length of a nominal day in milliseconds
const DayMillis int64 = 86_400_000

// ParseStringList accepts nil, a native list, or a string holding a JSON array or a
// comma-separated list. Unusable input yields an empty list.
func ParseStringList(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := listItem(item); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return parseListText(v)
	case *string:
		if v == nil {
			return []string{}
		}
		return parseListText(*v)
	case json.RawMessage:
		return parseListText(string(v))
	case []byte:
		return parseListText(string(v))
	default:
		return []string{}
	}
}

// listItem keeps truthy list entries: non-blank strings, non-zero numbers and true.
func listItem(item any) (string, bool) {
	switch v := item.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case bool:
		return "true", v
	default:
		if n := SafeNumber(v); n != nil {
			if *n == 0 {
				return "", false
			}
			return strconv.FormatFloat(*n, 'f', -1, 64), true
		}
		return "", false
	}
}

func parseListText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err == nil {
		switch d := decoded.(type) {
		case nil:
			return []string{}
		case []any:
			return ParseStringList(d)
		case string:
			// double-encoded value, the inner text is strictly shorter
			return parseListText(d)
		}
	}

	return splitCommaList(text)
}

func splitCommaList(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseIntList parses a list of small integers such as schedule weekdays. Unlike
// ParseStringList it keeps zero values.
func ParseIntList(value any) []int {
	var items []any
	switch v := value.(type) {
	case nil:
		return []int{}
	case []int:
		return append([]int{}, v...)
	case []any:
		items = v
	case string, *string, []byte, json.RawMessage:
		var text string
		switch t := v.(type) {
		case string:
			text = t
		case *string:
			if t != nil {
				text = *t
			}
		case []byte:
			text = string(t)
		case json.RawMessage:
			text = string(t)
		}
		text = strings.TrimSpace(text)
		var decoded []any
		if err := json.Unmarshal([]byte(text), &decoded); err == nil {
			items = decoded
		} else {
			for _, p := range splitCommaList(text) {
				items = append(items, p)
			}
		}
	default:
		return []int{}
	}

	out := make([]int, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				out = append(out, n)
			}
		default:
			if n := SafeNumber(v); n != nil && *n == math.Trunc(*n) {
				out = append(out, int(*n))
			}
		}
	}
	return out
}

// SafeNumber returns the value as a float64 only when it already is a finite number.
// Strings are not parsed.
func SafeNumber(value any) *float64 {
	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case *int:
		if v == nil {
			return nil
		}
		f = float64(*v)
	case *int64:
		if v == nil {
			return nil
		}
		f = float64(*v)
	case *float64:
		if v == nil {
			return nil
		}
		f = *v
	default:
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Text returns the trimmed string or "" for nil
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// Bool reports whether the pointer is set and true
func Bool(b *bool) bool {
	return b != nil && *b
}

// ToDateKey truncates an epoch-ms timestamp to local midnight of its calendar day
func ToDateKey(ms int64) int64 {
	return ToDateKeyIn(ms, time.Local)
}

// ToDateKeyIn is ToDateKey for an explicit location
func ToDateKeyIn(ms int64, loc *time.Location) int64 {
	return StartOfDay(time.UnixMilli(ms).In(loc)).UnixMilli()
}

// StartOfDay returns midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from a to b in local time, ignoring DST shifts
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// FormatMinutes renders a minute count as "45 min" or "2h 5m"
func FormatMinutes(minutes float64) string {
	m := int(math.Round(minutes))
	if m < 60 {
		return fmt.Sprintf("%d min", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}
