package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestJSONFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	l.With(String("env", "test")).Info("symbol skipped",
		String("symbol", "GOOG"),
		Int("bars", 4),
		Strings("skipped", []string{"GOOG", "TINY"}),
		Duration("duration_ms", 1500*time.Millisecond),
		Error(errors.New("insufficient history")),
	)
	l.Debug("dropped by level")

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	m := lines[0]
	assert.Equal(t, "info", m["level"])
	assert.Equal(t, "symbol skipped", m["message"])
	assert.Equal(t, "test", m["env"])
	assert.Equal(t, "GOOG", m["symbol"])
	assert.Equal(t, float64(4), m["bars"])
	assert.Equal(t, "GOOG, TINY", m["skipped"])
	assert.Equal(t, float64(1500), m["duration_ms"])
	assert.Equal(t, "insufficient history", m["error"])
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error("nothing", Error(nil), Bool("ok", false))
	})
}
