package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/tdee-service/internal/cache"
	"github.com/oggyb/tdee-service/internal/config"
)

func newCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Prefix = "test"

	c := cache.NewRedisCache(cfg)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestIncrWindow_CountsAndExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	require.NoError(t, c.Ping(ctx))

	key := c.KeyForRateLimit("10.0.0.1", time.Unix(1_700_000_040, 0))
	assert.Equal(t, "test:ratelimit:10.0.0.1:1700000040", key)

	for want := int64(1); want <= 3; want++ {
		n, err := c.IncrWindow(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(time.Minute + time.Second)
	n, err := c.IncrWindow(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "counter restarts after the window expires")
}

func TestIncrWindow_ServerDown(t *testing.T) {
	c, mr := newCache(t)
	mr.Close()

	_, err := c.IncrWindow(context.Background(), "k", time.Minute)
	assert.Error(t, err)
}
