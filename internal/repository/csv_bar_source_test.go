package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScan/internal/domain/models"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestParseBarsSortsAndIgnoresExtraColumns(t *testing.T) {
	in := `Datetime,Open,High,Low,Close,Adj Close,Volume
2024-01-03,3,3.5,2.5,3.2,3.1,300
2024-01-01,1,1.5,0.5,1.2,1.1,100
2024-01-02 00:00:00,2,2.5,1.5,2.2,2.1,200
`
	s, err := ParseBars("AAPL", strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, "AAPL", s.Symbol)
	assert.Equal(t, []float64{1.2, 2.2, 3.2}, s.Closes())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), s.Bars[0].Timestamp)
	assert.InDelta(t, 300.0, s.Bars[2].Volume, 1e-9)
	require.NoError(t, s.Validate())
}

func TestParseBarsTimezones(t *testing.T) {
	in := "Datetime,Open,High,Low,Close,Volume\n" +
		"2024-01-02 09:30:00-05:00,1,1,1,1,1\n" +
		"2024-01-02T15:30:00Z,2,2,2,2,2\n"
	s, err := ParseBars("X", strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), s.Bars[0].Timestamp)
	assert.Equal(t, time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC), s.Bars[1].Timestamp)
}

func TestParseBarsSchemaErrors(t *testing.T) {
	cases := map[string]string{
		"missing column": "Datetime,Open,High,Low,Volume\n2024-01-01,1,1,1,1\n",
		"case sensitive": "datetime,open,high,low,close,volume\n2024-01-01,1,1,1,1,1\n",
		"duplicate ts":   "Datetime,Open,High,Low,Close,Volume\n2024-01-01,1,1,1,1,1\n2024-01-01,2,2,2,2,2\n",
		"bad number":     "Datetime,Open,High,Low,Close,Volume\n2024-01-01,1,1,1,abc,1\n",
		"bad date":       "Datetime,Open,High,Low,Close,Volume\nyesterday,1,1,1,1,1\n",
		"compact date":   "Datetime,Open,High,Low,Close,Volume\n20240105,1,1,1,1,1\n20240108,2,2,2,2,2\n",
		"unix seconds":   "Datetime,Open,High,Low,Close,Volume\n1704412800,1,1,1,1,1\n",
		"ragged row":     "Datetime,Open,High,Low,Close,Volume\n2024-01-01,1,1\n",
		"empty file":     "",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBars("X", strings.NewReader(body))
			require.ErrorIs(t, err, models.ErrSchema)
		})
	}
}

func TestParseBarsMissingColumnMessage(t *testing.T) {
	_, err := ParseBars("X", strings.NewReader("Datetime,Open,High,Low,Volume\n"))
	require.Error(t, err)
	assert.Equal(t, "schema error: missing column Close", err.Error())
}

func TestCSVBarSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "MSFT.csv", "Datetime,Open,High,Low,Close,Volume\n2024-01-01,1,1,1,1,1\n")
	writeFile(t, dir, "AAPL.csv", "Datetime,Open,High,Low,Close,Volume\n2024-01-01,1,1,1,1,1\n2024-01-02,2,2,2,2,2\n")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	src := NewCSVBarSource(dir, "", nil)
	syms, err := src.Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, syms)

	s, err := src.Load(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	_, err = src.Load(context.Background(), "GONE")
	require.ErrorIs(t, err, models.ErrIO)
	f := models.FailureFrom("GONE", "load", err)
	assert.Equal(t, models.FailureIO, f.Kind)
	assert.Equal(t, "load", f.Stage)
}

func TestCSVBarSourceMissingDir(t *testing.T) {
	_, err := NewCSVBarSource(filepath.Join(t.TempDir(), "nope"), "*.csv", nil).Symbols(context.Background())
	require.ErrorIs(t, err, models.ErrIO)
}

func TestPrepareRawCSV(t *testing.T) {
	raw := `Price,Close,High,Low,Open,Volume
Ticker,AAPL,AAPL,AAPL,AAPL,AAPL
Date,,,,,
2024-01-03,3,3,3,3,300
not-a-date,9,9,9,9,900
2024-01-02,2,2,2,2,200
`
	var out strings.Builder
	stats, err := PrepareRawCSV(strings.NewReader(raw), &out)
	require.NoError(t, err)
	assert.Equal(t, PrepStats{Rows: 2, Dropped: 1}, stats)
	assert.Equal(t, "Datetime,Close,High,Low,Open,Volume\n2024-01-02,2,2,2,2,200\n2024-01-03,3,3,3,3,300\n", out.String())

	s, err := ParseBars("AAPL", strings.NewReader(out.String()))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, s.Closes())
}

func TestPrepareRawCSVRequiresPrice(t *testing.T) {
	_, err := PrepareRawCSV(strings.NewReader("Foo,Close\n"), &strings.Builder{})
	require.ErrorIs(t, err, models.ErrSchema)
}

func TestPrepareDir(t *testing.T) {
	raw, out := t.TempDir(), t.TempDir()
	writeFile(t, raw, "AAPL.csv", "Price,Close,High,Low,Open,Volume\nTicker,,,,,\nDate,,,,,\n2024-01-02,2,2,2,2,200\n")
	writeFile(t, raw, "BAD.csv", "Close,High\n1,2\n")

	rep, err := PrepareDir(context.Background(), raw, out, "*.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Files)
	assert.Equal(t, 1, rep.Rows)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "BAD", rep.Failures[0].Symbol)
	assert.Equal(t, models.FailureSchema, rep.Failures[0].Kind)

	_, err = os.Stat(filepath.Join(out, "AAPL.csv"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "BAD.csv"))
	assert.True(t, os.IsNotExist(err), "failed prep leaves no output file")
}
