package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const breakerDuration = 30 * time.Second

// Manager enforces one per-minute limit, preferring a shared backend and
// falling back to the in-process limiter while the shared one is failing.
type Manager struct {
	limit    int
	shared   Limiter
	fallback Limiter
	nowFn    func() time.Time
	log      *slog.Logger

	mu           sync.Mutex
	breakerUntil time.Time
}

// NewManager builds a Manager. shared may be nil; nowFn and log default when nil.
func NewManager(limit int, shared Limiter, nowFn func() time.Time, log *slog.Logger) *Manager {
	if nowFn == nil {
		nowFn = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		limit:    limit,
		shared:   shared,
		fallback: NewMemoryLimiter(),
		nowFn:    nowFn,
		log:      log,
	}
}

// Enabled reports whether any limit is enforced.
func (m *Manager) Enabled() bool {
	return m != nil && m.limit > 0
}

// Limit returns the configured requests per minute.
func (m *Manager) Limit() int {
	return m.limit
}

// Allow checks one request for key.
func (m *Manager) Allow(ctx context.Context, key string) Result {
	if !m.Enabled() || key == "" {
		return Result{Allowed: true}
	}
	now := m.nowFn()

	if m.shared != nil && !m.breakerActive(now) {
		res, err := m.shared.Allow(ctx, key, m.limit, now)
		if err == nil {
			return res
		}
		m.tripBreaker(err, now)
	}

	res, _ := m.fallback.Allow(ctx, key, m.limit, now)
	return res
}

func (m *Manager) breakerActive(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.breakerUntil.IsZero() {
		return false
	}
	if now.Before(m.breakerUntil) {
		return true
	}
	m.breakerUntil = time.Time{}
	return false
}

func (m *Manager) tripBreaker(err error, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.breakerUntil.IsZero() && now.Before(m.breakerUntil) {
		return
	}
	m.breakerUntil = now.Add(breakerDuration)
	m.log.Warn("rate limit: redis unavailable, falling back to memory", "err", err, "retry_after", breakerDuration)
}
