package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScan/internal/domain/models"
	"SignalScan/pkg/cache"
)

func TestCacheSnapshotStore(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	s := NewCacheSnapshotStore(mc, time.Hour)
	ctx := context.Background()

	_, err := s.Latest(ctx)
	require.ErrorIs(t, err, models.ErrNoReport)

	in := &models.RunReport{
		RunAt:    t0,
		Lookback: 72 * time.Hour,
		Symbols:  3,
		Events:   2,
		Signals:  sampleRows(),
		Failures: []models.SymbolFailure{{Symbol: "BAD", Stage: "load", Kind: models.FailureSchema, Reason: "schema error: missing column Close"}},
	}
	require.NoError(t, s.Put(ctx, in))

	got, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, got.RunAt.Equal(in.RunAt))
	assert.Equal(t, in.Lookback, got.Lookback)
	assert.Equal(t, in.Failures, got.Failures)
	require.Len(t, got.Signals, 2)
	assert.Equal(t, "MACD, RSI", got.Signals[0].Label())
}
