package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScan/internal/domain/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "csv", cfg.Source.Type)
	assert.Equal(t, 12, cfg.Indicators.MACD.Fast)
	assert.Equal(t, 26, cfg.Indicators.MACD.Slow)
	assert.Equal(t, 9, cfg.Indicators.MACD.Signal)
	assert.Equal(t, 14, cfg.Indicators.RSI.Period)
	assert.InDelta(t, 30.0, cfg.Indicators.RSI.Cutoff, 1e-9)
	assert.Equal(t, 20, cfg.Indicators.TEMA.Period)
	assert.Equal(t, 14, cfg.Indicators.ITGScalper.TEMAPeriod)
	assert.Equal(t, []string{"MACD", "RSI", "TEMA"}, cfg.Screen.Strategies)
	assert.Equal(t, 3, cfg.Screen.LookbackDays)
	assert.Equal(t, 72*time.Hour, cfg.Lookback())
	assert.True(t, cfg.Output.CSV.Enabled)
	assert.True(t, cfg.Output.CSV.ReportFile)
	assert.Equal(t, "signals", cfg.Output.CSV.ReportPrefix)
	assert.Equal(t, "memory", cfg.Output.Snapshot.Backend)
	assert.Equal(t, 15*time.Second, cfg.Notify.Timeout)
	assert.Equal(t, 1000, cfg.Output.Snapshot.MemoryMaxSize)
	assert.Equal(t, 5*time.Minute, cfg.Output.Snapshot.MemoryCleanup)
	assert.False(t, cfg.ClickHouse.AsyncInsert)
	assert.True(t, cfg.ClickHouse.WaitForAsync)
	assert.False(t, cfg.Kafka.Producer.AutoCreateTopic)
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
indicators:
  macd: {fast: 5, slow: 10, signal: 4}
screen:
  strategies: [MACD+TEMA]
  lookback_days: 7
output:
  csv:
    enabled: false
  snapshot:
    memory_cleanup: 30s
clickhouse:
  async_insert: true
kafka:
  producer:
    auto_create_topic: true
`))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Indicators.MACD.Fast)
	assert.Equal(t, 4, cfg.Indicators.MACD.Signal)
	assert.Equal(t, []string{"MACD+TEMA"}, cfg.Screen.Strategies)
	assert.Equal(t, 7, cfg.Screen.LookbackDays)
	assert.False(t, cfg.Output.CSV.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Output.Snapshot.MemoryCleanup)
	assert.True(t, cfg.ClickHouse.AsyncInsert)
	assert.True(t, cfg.Kafka.Producer.AutoCreateTopic)
	// untouched siblings keep their defaults
	assert.Equal(t, 14, cfg.Indicators.RSI.Period)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"fast not below slow": "indicators:\n  macd: {fast: 26, slow: 12}\n",
		"cutoff out of range": "indicators:\n  rsi: {cutoff: 120}\n",
		"zero lookback":       "screen:\n  lookback_days: 0\n",
		"unknown emission":    "screen:\n  emission: first\n",
		"telegram no token":   "notify:\n  telegram: {enabled: true, chat_id: \"1\"}\n",
		"kafka no brokers":    "output:\n  kafka: {enabled: true}\n",
		"unknown source":      "source:\n  type: s3\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.ErrorIs(t, err, models.ErrInvalidConfig)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrInvalidConfig)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SIGNALSCAN_DATA_DIR":      "/srv/bars",
		"SIGNALSCAN_LOOKBACK_DAYS": "5",
		"TELEGRAM_BOT_TOKEN":       "token",
		"TELEGRAM_CHAT_ID":         "42",
		"KAFKA_BROKERS":            "a:9092,b:9092",
	}
	cfg := Default()
	require.NoError(t, cfg.applyEnv(func(k string) string { return env[k] }))
	assert.Equal(t, "/srv/bars", cfg.Source.DataDir)
	assert.Equal(t, 5, cfg.Screen.LookbackDays)
	assert.Equal(t, "token", cfg.Notify.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Notify.Telegram.ChatID)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)

	env["SIGNALSCAN_LOOKBACK_DAYS"] = "three"
	require.ErrorIs(t, Default().applyEnv(func(k string) string { return env[k] }), models.ErrInvalidConfig)
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "secret")
	t.Setenv("TELEGRAM_CHAT_ID", "7")
	cfg, err := LoadWithEnv(writeConfig(t, "notify:\n  enabled: true\n  telegram: {enabled: true}\n"))
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Notify.Telegram.BotToken)
}
