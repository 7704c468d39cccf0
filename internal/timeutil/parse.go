package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Layouts accepted for log record timestamps, most specific first. The naive
// layouts match Python's datetime.isoformat() without an offset and are read
// as UTC, as is a bare date.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// ParseTimestamp parses a log record timestamp. ok is false when s matches
// none of the supported layouts.
func ParseTimestamp(s string) (t time.Time, ok bool) {
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

var relativeTimePattern = regexp.MustCompile(`^(\d+)([smhdw])$`)

// ParseSince parses a --since value relative to now.
//
// Accepts multiple formats:
//   - Relative time: "1h", "30m", "2d", "45s", "1w"
//   - RFC3339: "2006-01-02T15:04:05Z" or "2006-01-02T15:04:05-07:00"
//   - DateTime: "2006-01-02 15:04:05" (local timezone)
//   - DateOnly: "2006-01-02" (local timezone, midnight)
//
// The result is in UTC, truncated to milliseconds.
func ParseSince(sinceStr string, now time.Time) (time.Time, error) {
	formats := []struct {
		layout   string
		useLocal bool // Interpret as local time when there is no offset
	}{
		{time.RFC3339Nano, false},
		{time.RFC3339, false},
		{time.DateTime, true},
		{"2006-01-02 15:04:05.999", true},
		{time.DateOnly, true},
	}

	for _, f := range formats {
		var t time.Time
		var err error
		if f.useLocal {
			t, err = time.ParseInLocation(f.layout, sinceStr, time.Local)
		} else {
			t, err = time.Parse(f.layout, sinceStr)
		}
		if err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
	}

	match := relativeTimePattern.FindStringSubmatch(sinceStr)
	if match == nil {
		return time.Time{}, fmt.Errorf("invalid --since format: '%s'. Use relative time ('w|d|h|m|s') or absolute (e.g., '2006-01-02 15:04:05', '2006-01-02T15:04:05Z', '2006-01-02')", sinceStr)
	}

	amount, err := strconv.Atoi(match[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid number in --since: %w", err)
	}

	var unit time.Duration
	switch match[2] {
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	case "w":
		unit = 7 * 24 * time.Hour
	}

	return now.Add(-time.Duration(amount) * unit).UTC().Truncate(time.Millisecond), nil
}
