package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseDuration safely parses duration string like "5m", falling back to def
func ParseDuration(d string, def time.Duration) time.Duration {
	if d == "" {
		return def
	}
	duration, err := time.ParseDuration(d)
	if err != nil || duration <= 0 {
		return def
	}
	return duration
}

// nullMarkers are cell contents read as a null value
var nullMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
}

// ParseCell parses a numeric cell. ok is false for an empty or null marker cell;
// anything else that is not a finite number is an error.
func ParseCell(s string) (v float64, ok bool, err error) {
	s = strings.TrimSpace(s)
	if nullMarkers[strings.ToLower(s)] {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("not a number: %q", s)
	}
	if math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("not a finite number: %q", s)
	}
	return f, true, nil
}

// ParseYear parses an integer year cell. Files written by dataframe tools may
// carry it as "2020.0".
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer year: %q", s)
	}
	return int(f), nil
}

// CleanHeader trims whitespace and quotes from a header cell and strips a UTF-8 BOM
func CleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSpace(h)
	return strings.ReplaceAll(h, `"`, "")
}

// FormatCell renders a table cell as text for CSV output; nil is an empty cell
func FormatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
