package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ BytesCache = (*TTLCache)(nil)
	_ BytesCache = (*RedisCache)(nil)
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes("digest", []byte("hello"), time.Minute))
	c.Set("forever", 1, 0)

	b, ok, err := c.GetBytes("digest")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", string(b))

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.GetBytes("digest")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	v, ok := c.Get("forever")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestTTLCacheDeleteAndTypeMismatch(t *testing.T) {
	c := NewTTLCache()
	c.Set("n", 42, time.Minute)
	_, ok, err := c.GetBytes("n")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Delete("n"))
	_, ok = c.Get("n")
	assert.False(t, ok)
}
