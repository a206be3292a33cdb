package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2024-10-10T10:10:10Z":      time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC),
		"2024-10-10T10:10:10+02:00": time.Date(2024, 10, 10, 8, 10, 10, 0, time.UTC),
		"2024-10-10 10:10:10":       time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC),
		"2024-10-10 10:10:10-04:00": time.Date(2024, 10, 10, 14, 10, 10, 0, time.UTC),
		"2024-10-10":                time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC),
		" 2024-10-10 ":              time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, ok := ParseTime(in)
		if assert.True(t, ok, in) {
			assert.True(t, want.Equal(got), "%s: got %v", in, got)
			assert.Equal(t, time.UTC, got.Location())
		}
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	assert.True(t, ok)
	assert.Equal(t, ts, got.Unix())
}

func TestParseLayoutRejectsUnix(t *testing.T) {
	for _, in := range []string{"20240105", "1728555010"} {
		_, ok := ParseLayout(in)
		assert.False(t, ok, in)
	}
	got, ok := ParseLayout("2024-01-05")
	assert.True(t, ok)
	assert.True(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC).Equal(got))
}

func TestParseTimeRejects(t *testing.T) {
	for _, in := range []string{"", "yesterday", "10/10/2024", "-5"} {
		_, ok := ParseTime(in)
		assert.False(t, ok, in)
	}
}

func TestIsMidnight(t *testing.T) {
	assert.True(t, IsMidnight(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsMidnight(time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)))
}
