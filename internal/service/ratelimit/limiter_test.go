package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterPerKey(t *testing.T) {
	l := New(2, 1)
	t0 := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	assert.True(t, l.AllowAt("10.0.0.1", t0))
	assert.False(t, l.AllowAt("10.0.0.1", t0.Add(time.Second)))
	assert.True(t, l.AllowAt("10.0.0.2", t0.Add(time.Second)), "keys have separate buckets")

	// 2/min refills one token every 30s
	assert.True(t, l.AllowAt("10.0.0.1", t0.Add(31*time.Second)))
}

func TestLimiterBurst(t *testing.T) {
	l := New(60, 3)
	t0 := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		assert.True(t, l.AllowAt("k", t0))
	}
	assert.False(t, l.AllowAt("k", t0))
}
