package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScan/internal/domain/models"
)

var t0 = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

func sampleRows() []models.AggregatedSignal {
	return []models.AggregatedSignal{
		{Symbol: "AAPL", Timestamp: t0, Strategies: []string{"MACD", "RSI"}},
		{Symbol: "MSFT", Timestamp: t0.Add(-24 * time.Hour), Strategies: []string{"TEMA"}},
	}
}

func sampleEvents() []models.SignalEvent {
	return []models.SignalEvent{
		{Symbol: "AAPL", Timestamp: t0, Strategy: "MACD"},
		{Symbol: "AAPL", Timestamp: t0, Strategy: "RSI"},
		{Symbol: "MSFT", Timestamp: t0.Add(-24 * time.Hour), Strategy: "TEMA"},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestCSVSignalStoreWritesBothTables(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVSignalStore(dir, "signals_raw.csv", "consolidated_signals.csv", "", nil)
	require.NoError(t, s.Save(context.Background(), sampleEvents(), sampleRows()))

	assert.Equal(t,
		"Datetime,symbol,signal type\n"+
			"2024-01-05 00:00:00,AAPL,MACD\n"+
			"2024-01-05 00:00:00,AAPL,RSI\n"+
			"2024-01-04 00:00:00,MSFT,TEMA\n",
		readFile(t, filepath.Join(dir, "signals_raw.csv")))
	assert.Equal(t,
		"symbol,datetime,signals\n"+
			"AAPL,2024-01-05 00:00:00,\"MACD, RSI\"\n"+
			"MSFT,2024-01-04 00:00:00,TEMA\n",
		readFile(t, filepath.Join(dir, "consolidated_signals.csv")))
}

func TestCSVSignalStoreOverwrites(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVSignalStore(dir, "", "consolidated_signals.csv", "", nil)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, nil, sampleRows()))
	require.NoError(t, s.Save(ctx, nil, sampleRows()))
	first := readFile(t, filepath.Join(dir, "consolidated_signals.csv"))

	require.NoError(t, s.Save(ctx, nil, nil))
	assert.Equal(t, "symbol,datetime,signals\n", readFile(t, filepath.Join(dir, "consolidated_signals.csv")))
	assert.Contains(t, first, "AAPL")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestCSVSignalStoreBackup(t *testing.T) {
	dir, backups := t.TempDir(), filepath.Join(t.TempDir(), "archive")
	s := NewCSVSignalStore(dir, "", "consolidated_signals.csv", backups, nil)
	s.now = func() time.Time { return time.Date(2024, 3, 9, 17, 45, 0, 0, time.UTC) }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, nil, sampleRows()))
	_, err := os.Stat(backups)
	assert.True(t, os.IsNotExist(err), "nothing to back up on first run")

	require.NoError(t, s.Save(ctx, nil, nil))
	archived := readFile(t, filepath.Join(backups, "consolidated_signals_20240309_1745.csv"))
	assert.Contains(t, archived, "AAPL")
}

func TestCSVSignalStoreFailedSaveKeepsPreviousTable(t *testing.T) {
	dir, backups := t.TempDir(), filepath.Join(t.TempDir(), "archive")
	s := NewCSVSignalStore(dir, "signals_raw.csv", "consolidated_signals.csv", backups, nil)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, nil, sampleRows()))
	previous := readFile(t, filepath.Join(dir, "consolidated_signals.csv"))

	// a non-empty directory where the events table goes makes its rename fail
	blocker := filepath.Join(dir, "signals_raw.csv")
	require.NoError(t, os.Remove(blocker))
	require.NoError(t, os.MkdirAll(filepath.Join(blocker, "keep"), 0o755))

	err := s.Save(ctx, sampleEvents(), nil)
	require.ErrorIs(t, err, models.ErrIO)
	assert.Equal(t, previous, readFile(t, filepath.Join(dir, "consolidated_signals.csv")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
	_, err = os.Stat(backups)
	assert.True(t, os.IsNotExist(err), "no backup for a save that never committed")
}

func TestCSVSignalStoreUnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	s := NewCSVSignalStore(filepath.Join(file, "out"), "", "signals.csv", "", nil)
	err := s.Save(context.Background(), nil, sampleRows())
	require.ErrorIs(t, err, models.ErrIO)
}

func TestBackupName(t *testing.T) {
	assert.Equal(t, "consolidated_signals_20240102_0304.csv", BackupName(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}
