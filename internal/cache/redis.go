package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/tdee-service/internal/config"
)

// incrWindow bumps a counter and sets its TTL only when the key is new, so a
// window never gets extended by later hits.
var incrWindow = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type RedisCache struct {
	Client *redis.Client
	prefix string
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{
		Client: redis.NewClient(opts),
		prefix: strings.TrimSpace(cfg.Redis.Prefix),
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForRateLimit generates the Redis key of one client's counter in the
// window starting at windowStart.
func (c *RedisCache) KeyForRateLimit(client string, windowStart time.Time) string {
	key := fmt.Sprintf("ratelimit:%s:%d", client, windowStart.Unix())
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// IncrWindow increments key and returns the new count. The key expires ttl
// after its first increment.
func (c *RedisCache) IncrWindow(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := incrWindow.Run(ctx, c.Client, []string{key}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("incr window %s: %w", key, err)
	}
	return n, nil
}
