package di

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScan/internal/domain/models"
	"SignalScan/internal/services/notify"
	"SignalScan/pkg/config"
	applogger "SignalScan/pkg/logger"
	"SignalScan/pkg/server"
)

func TestProvideDetectorsHonoursConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Screen.Strategies = []string{"MACD+TEMA", "RSI"}
	ds, err := ProvideDetectors(cfg)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "MACD+TEMA", ds[0].Name())

	cfg.Screen.Strategies = []string{"BOLLINGER"}
	_, err = ProvideDetectors(cfg)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
}

func TestProvideNotifier(t *testing.T) {
	cfg := config.Default()
	n, err := ProvideNotifier(cfg, nil, applogger.Nop())
	require.NoError(t, err)
	assert.Nil(t, n, "disabled")

	cfg.Notify.Enabled = true
	cfg.Notify.Telegram.Enabled = true
	cfg.Notify.Telegram.BotToken = "t"
	cfg.Notify.Telegram.ChatID = "1"
	n, err = ProvideNotifier(cfg, nil, applogger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &notify.Telegram{}, n)
}

func TestProvidePublisherDisabled(t *testing.T) {
	assert.Nil(t, ProvidePublisher(config.Default(), nil))
}

func TestProvideSignalStores(t *testing.T) {
	cfg := config.Default()
	stores := ProvideSignalStores(cfg, nil, applogger.Nop())
	require.Len(t, stores, 1)
	assert.Equal(t, "csv", stores[0].Name())

	cfg.Output.CSV.Enabled = false
	assert.Empty(t, ProvideSignalStores(cfg, nil, applogger.Nop()))
}

func writeBars(t *testing.T, dir, symbol string, closes []float64) {
	t.Helper()
	var b strings.Builder
	b.WriteString("Datetime,Open,High,Low,Close,Volume\n")
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		fmt.Fprintf(&b, "%s,%g,%g,%g,%g,1000\n", day.AddDate(0, 0, i).Format("2006-01-02"), c, c+1, c-1, c)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, symbol+".csv"), []byte(b.String()), 0o600))
}

func TestInitializeAppRunsCSVPipeline(t *testing.T) {
	data, out := t.TempDir(), t.TempDir()
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	writeBars(t, data, "AAPL", closes)
	writeBars(t, data, "TINY", closes[:4])

	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Source.DataDir = data
	cfg.Output.CSV.Dir = out
	require.NoError(t, cfg.Validate())

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, app.Run(context.Background(), server.ModeRun))
	b, err := os.ReadFile(filepath.Join(out, "consolidated_signals.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "symbol,datetime,signals\n"))
	_, err = os.Stat(filepath.Join(out, "signals_raw.csv"))
	assert.NoError(t, err)
	reports, err := filepath.Glob(filepath.Join(out, "signals_*.txt"))
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestProvideReportWriter(t *testing.T) {
	cfg := config.Default()
	assert.NotNil(t, ProvideReportWriter(cfg, applogger.Nop()))

	cfg.Output.CSV.ReportFile = false
	assert.Nil(t, ProvideReportWriter(cfg, applogger.Nop()))

	cfg = config.Default()
	cfg.Output.CSV.Enabled = false
	assert.Nil(t, ProvideReportWriter(cfg, applogger.Nop()))
}
