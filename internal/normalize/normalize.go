// Package normalize provides type conversion functions for raw dataset values.
//
// Source rows arrive as loosely typed cells: CSV gives strings, JSON gives
// numbers, and either may be missing entirely. These functions handle the
// messy reality of that data:
//   - Numeric-looking strings with surrounding whitespace
//   - Multiple date formats (ISO dates, full timestamps, US/EU layouts)
//   - Whitespace-only and empty values
//
// All functions are total: unparsable or missing input resolves to absence
// (a nil pointer, or a zero Name), never to an error. Absent values map to
// missing fields in the destination document rather than zero values.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ISODate is the canonical date layout stored in documents.
const ISODate = "2006-01-02"

// Date layouts tried in order when parsing date strings. Timestamp layouts
// come first so a full timestamp is not truncated by a shorter prefix match.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02", "2006/01/02", "2006.01.02",
	"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006",
	"Jan 2, 2006", "2 Jan 2006",
	"20060102",
}

// ToInt converts a raw cell value to an optional integer.
// Accepts integer types, floats (truncated toward zero), and strings
// parseable as base-10 integers. Returns nil for nil, NaN, and unparsable
// input.
func ToInt(v any) *int {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return &x
	case int32:
		n := int(x)
		return &n
	case int64:
		n := int(x)
		return &n
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

func floatToInt(f float64) *int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(f)
	return &n
}

// ToFloat converts a raw cell value to an optional float.
// Returns nil for nil, NaN, and unparsable input.
func ToFloat(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return &x
	case float32:
		return ToFloat(float64(x))
	case int:
		f := float64(x)
		return &f
	case int64:
		f := float64(x)
		return &f
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// ToISODate converts a raw cell value to an optional YYYY-MM-DD string.
// Accepts time.Time values and date/timestamp strings in any of the
// supported layouts. Returns nil if the value is missing or unparsable.
func ToISODate(v any) *string {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		if x.IsZero() {
			return nil
		}
		s := x.Format(ISODate)
		return &s
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			t, err := time.Parse(layout, s)
			if err == nil {
				out := t.Format(ISODate)
				return &out
			}
		}
		return nil
	default:
		return nil
	}
}

// Name is a normalized person name pair.
// Full is a best-effort title-cased rendering for display; Normalized is
// the lowercase form used for searching. Both are nil when the source
// value is missing or blank.
type Name struct {
	Full       *string `bson:"full" json:"full"`
	Normalized *string `bson:"normalized" json:"normalized"`
}

// NormalizeName collapses internal whitespace and trims the input, then
// produces the {full, normalized} pair. Nil and whitespace-only inputs
// yield a zero Name.
func NormalizeName(v any) Name {
	if v == nil {
		return Name{}
	}
	s, ok := v.(string)
	if !ok {
		return Name{}
	}

	clean := strings.Join(strings.Fields(s), " ")
	if clean == "" {
		return Name{}
	}

	full := titleCase(clean)
	normalized := strings.ToLower(clean)
	return Name{Full: &full, Normalized: &normalized}
}

// titleCase capitalizes the first letter of each whitespace-separated token
// and lowercases the rest.
func titleCase(s string) string {
	tokens := strings.Fields(s)
	for i, tok := range tokens {
		runes := []rune(strings.ToLower(tok))
		runes[0] = unicode.ToUpper(runes[0])
		tokens[i] = string(runes)
	}
	return strings.Join(tokens, " ")
}

// ToText converts a raw cell value to an optional trimmed string.
// Returns nil if the value is missing or blank after trimming.
func ToText(v any) *string {
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Round2 rounds a float to 2 decimal places. Used for monetary amounts.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
