package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScan/internal/domain/models"
	domrepo "SignalScan/internal/domain/repository"
)

func TestTableForTF(t *testing.T) {
	table, err := tableForTF("signalscan.bars", domrepo.TF1d)
	require.NoError(t, err)
	assert.Equal(t, "signalscan.bars_1d", table)

	_, err = tableForTF("bars", domrepo.Timeframe("1s"))
	require.ErrorIs(t, err, models.ErrInvalidConfig)
}

func TestBarQueries(t *testing.T) {
	assert.Equal(t, "SELECT DISTINCT symbol FROM db.bars_1d ORDER BY symbol", symbolsQuery("db.bars_1d"))
	q := barsQuery("db.bars_1d")
	assert.Contains(t, q, "FROM db.bars_1d FINAL")
	assert.Contains(t, q, "ORDER BY ts ASC")

	ddl, err := BarTableDDL("db.bars", domrepo.TF1h)
	require.NoError(t, err)
	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS db.bars_1h")
}

func TestSignalTableDDL(t *testing.T) {
	ddl := SignalTableDDL("db.signals")
	assert.Contains(t, ddl, "ENGINE = ReplacingMergeTree(run_at)")
	assert.Contains(t, ddl, "ORDER BY (symbol, datetime)")
}

func TestBuildSignalInsertsChunks(t *testing.T) {
	runAt := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rows := make([]models.AggregatedSignal, insertChunk+1)
	for i := range rows {
		rows[i] = models.AggregatedSignal{Symbol: "S", Timestamp: t0.Add(time.Duration(i) * time.Hour), Strategies: []string{"MACD"}}
	}
	stmts := buildSignalInserts("db.signals", rows, runAt)
	require.Len(t, stmts, 2)
	assert.Len(t, stmts[0].args, insertChunk*5)
	assert.Len(t, stmts[1].args, 5)
	assert.Equal(t, 1, strings.Count(stmts[1].query, "(?, ?, ?, ?, ?)"))
	assert.True(t, strings.HasPrefix(stmts[1].query, "INSERT INTO db.signals (symbol, datetime, signals, label, run_at) VALUES"))

	assert.Equal(t, []interface{}{"S", rows[insertChunk].Timestamp, []string{"MACD"}, "MACD", runAt}, stmts[1].args)
	assert.Empty(t, buildSignalInserts("db.signals", nil, runAt))
}
