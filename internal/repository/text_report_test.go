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
	"SignalScan/internal/services/report"
)

func TestTextReportStoreWritesDigest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := NewTextReportStore(dir, "", nil)
	rep := &models.RunReport{
		RunAt:    time.Date(2024, 1, 6, 18, 30, 5, 0, time.UTC),
		Lookback: 72 * time.Hour,
		Symbols:  2,
		Signals:  sampleRows(),
		Failures: []models.SymbolFailure{{Symbol: "GOOG", Stage: "screen", Kind: models.FailureInsufficient, Reason: "4 bars"}},
	}
	require.NoError(t, s.WriteReport(context.Background(), rep))

	got := readFile(t, filepath.Join(dir, "signals_20240106_183005.txt"))
	assert.Equal(t, report.FormatRun(rep)+"\n", got)
	assert.True(t, strings.HasPrefix(got, report.Header))
	assert.Contains(t, got, "GOOG")
}

func TestTextReportStoreCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewTextReportStore(dir, "x", nil).WriteReport(ctx, &models.RunReport{RunAt: t0})
	require.ErrorIs(t, err, context.Canceled)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReportName(t *testing.T) {
	at := time.Date(2024, 3, 9, 17, 45, 1, 0, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "signals_20240309_224501.txt", ReportName("signals", at))
}
