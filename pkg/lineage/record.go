package lineage

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// EdgeRecord is a single split or rename event: Dest was formed from Source
// within Region. Year is nil when the event carried no usable year.
//
// Records are expected to be clean: Source != Dest and all names trimmed.
// The ingest package enforces this for CSV and JSON input.
type EdgeRecord struct {
	Source string `json:"source" yaml:"source"`
	Dest   string `json:"dest" yaml:"dest"`
	Year   *int   `json:"year" yaml:"year"`
	Region string `json:"region" yaml:"region"`
}

// NewEdgeRecord creates a record, parsing rawYear with [ParseYear].
func NewEdgeRecord(source, dest, region string, rawYear any) EdgeRecord {
	return EdgeRecord{
		Source: source,
		Dest:   dest,
		Year:   ParseYear(rawYear),
		Region: region,
	}
}

// ParseYear converts a loosely typed year value into an integer year.
//
// Integers are taken as is. Floats and numeric strings are truncated toward
// zero, so 1960, 1960.0, "1960" and " 1960.0 " all yield 1960. Any value that
// cannot be read as a finite number (nil, "", "circa 1960", NaN) yields nil,
// and so does any year outside the int32 range.
// ParseYear never fails: an unreadable year is simply unknown.
func ParseYear(v any) *int {
	switch t := v.(type) {
	case nil:
		return nil
	case *int:
		if t == nil {
			return nil
		}
		return intYear(int64(*t))
	case int:
		return intYear(int64(t))
	case int8:
		return intYear(int64(t))
	case int16:
		return intYear(int64(t))
	case int32:
		return intYear(int64(t))
	case int64:
		return intYear(t)
	case uint:
		return uintYear(uint64(t))
	case uint8:
		return uintYear(uint64(t))
	case uint16:
		return uintYear(uint64(t))
	case uint32:
		return uintYear(uint64(t))
	case uint64:
		return uintYear(t)
	case float32:
		return floatYear(float64(t))
	case float64:
		return floatYear(t)
	case json.Number:
		return parseYearString(string(t))
	case string:
		return parseYearString(t)
	default:
		return nil
	}
}

func parseYearString(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return intYear(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return floatYear(f)
}

func floatYear(f float64) *int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	return intPtr(int(f))
}

// Years outside the int32 range are unknown, whatever the input type.
func intYear(n int64) *int {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return nil
	}
	return intPtr(int(n))
}

func uintYear(n uint64) *int {
	if n > math.MaxInt32 {
		return nil
	}
	return intPtr(int(n))
}

func intPtr(n int) *int { return &n }

func copyYear(y *int) *int {
	if y == nil {
		return nil
	}
	return intPtr(*y)
}

// FormatYear renders an optional year, using unknown for nil.
func FormatYear(y *int, unknown string) string {
	if y == nil {
		return unknown
	}
	return strconv.Itoa(*y)
}

func sameYear(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
