package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/oggyb/tdee-service/internal/cache"
)

// Window is the span a per-minute limit is counted over.
const Window = time.Minute

// Result describes a single limiter decision.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter decides whether one more request for key fits within limit.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error)
}

type memoryEntry struct {
	limiter  *rate.Limiter
	limit    int
	lastSeen time.Time
}

// MemoryLimiter is a per-key token bucket refilled at limit tokens per minute.
// It is process-local, so each replica counts on its own.
type MemoryLimiter struct {
	mu        sync.Mutex
	entries   map[string]*memoryEntry
	lastSweep time.Time
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{entries: make(map[string]*memoryEntry)}
}

// Allow takes one token from key's bucket.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	perToken := Window / time.Duration(limit)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	entry := l.entries[key]
	if entry == nil || entry.limit != limit {
		entry = &memoryEntry{
			limiter: rate.NewLimiter(rate.Every(perToken), limit),
			limit:   limit,
		}
		l.entries[key] = entry
	}
	entry.lastSeen = now

	if !entry.limiter.AllowN(now, 1) {
		return Result{Allowed: false, Remaining: 0, Reset: now.Add(perToken)}, nil
	}
	remaining := int(entry.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, Reset: now.Add(perToken)}, nil
}

// sweep drops buckets idle for a full window; an idle bucket is full again
// anyway. Caller holds l.mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < Window {
		return
	}
	l.lastSweep = now
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) >= Window {
			delete(l.entries, k)
		}
	}
}

// RedisLimiter is a fixed one-minute window shared by every replica.
type RedisLimiter struct {
	cache *cache.RedisCache
}

// NewRedisLimiter constructs a RedisLimiter over an existing cache client.
func NewRedisLimiter(c *cache.RedisCache) *RedisLimiter {
	return &RedisLimiter{cache: c}
}

// Allow counts one request in the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	start := now.Truncate(Window)
	reset := start.Add(Window)

	count, err := l.cache.IncrWindow(ctx, l.cache.KeyForRateLimit(key, start), Window)
	if err != nil {
		return Result{}, err
	}
	if count > int64(limit) {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	return Result{Allowed: true, Remaining: limit - int(count), Reset: reset}, nil
}
