package util

import (
	"strconv"
	"strings"
	"time"
)

var layouts = []string{
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseLayout accepts the timestamp layouts of price files: date, date-time
// with or without offset and RFC3339. The result is in UTC; layouts without an
// offset are read as UTC.
func ParseLayout(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseTime is ParseLayout plus unix seconds, for API queries.
func ParseTime(s string) (time.Time, bool) {
	if t, ok := ParseLayout(s); ok {
		return t, true
	}
	s = strings.TrimSpace(s)
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// IsMidnight reports whether t has no clock component.
func IsMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
