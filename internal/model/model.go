// Package model holds the record, field-dictionary and derived statistic types
// shared by every stage of the match-statistics pipeline.
package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is one flat key/value row from the data source. Keys are the free-text
// spreadsheet headers; values are string, float64 (JSON numbers), int or nil.
type Record map[string]any

// String returns the trimmed text of the value stored under key, or "" when the
// key is absent or empty.
func (r Record) String(key string) string {
	if r == nil || key == "" {
		return ""
	}
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return Record{key: float64(v)}.String(key)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Float returns the numeric value under key. Non-numeric text and missing keys
// yield (0, false).
func (r Record) Float(key string) (float64, bool) {
	if r == nil || key == "" {
		return 0, false
	}
	switch v := r[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Int returns the value under key truncated to an int, defaulting to 0.
// Values outside the int range also yield 0.
func (r Record) Int(key string) int {
	f, ok := r.Float(key)
	if !ok || math.IsNaN(f) || f >= math.MaxInt || f < math.MinInt {
		return 0
	}
	return int(f)
}

// Row is the displayed column values of one rendered table row.
type Row []string

// dateLayouts are the date shapes observed in spreadsheet exports, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// ParseDate parses a spreadsheet date cell and truncates it to a UTC day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
