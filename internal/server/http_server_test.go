package server_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/tdee-service/internal/app"
	"github.com/oggyb/tdee-service/internal/cache"
	"github.com/oggyb/tdee-service/internal/config"
	"github.com/oggyb/tdee-service/internal/logger"
	"github.com/oggyb/tdee-service/internal/ratelimit"
	"github.com/oggyb/tdee-service/internal/server"
	"github.com/oggyb/tdee-service/internal/service/tdee"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.App.ENV = "test"
	cfg.HTTP.AllowedOrigins = []string{"https://app.example.com"}
	return cfg
}

func newRouter(t *testing.T, appCtx *app.AppContext, limiter *ratelimit.Manager) *gin.Engine {
	t.Helper()
	return newRouterWith(t, testConfig(), appCtx, limiter)
}

func newRouterWith(t *testing.T, cfg *config.Config, appCtx *app.AppContext, limiter *ratelimit.Manager) *gin.Engine {
	t.Helper()
	return server.NewRouter(cfg, appCtx, limiter, tdee.NewRegistrar(appCtx))
}

func get(router http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz_WithoutStore(t *testing.T) {
	router := newRouter(t, app.New(nil, nil, logger.Discard()), nil)

	w := get(router, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthz_PingsStore(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	router := newRouter(t, app.New(gdb, nil, logger.Discard()), nil)
	assert.Equal(t, http.StatusOK, get(router, "/healthz", nil).Code)

	require.NoError(t, sqlDB.Close())
	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/healthz", nil).Code)
}

func TestRequestID(t *testing.T) {
	router := newRouter(t, app.New(nil, nil, logger.Discard()), nil)

	w := get(router, "/healthz", nil)
	assert.Len(t, w.Header().Get(server.HeaderRequestID), 36)

	w = get(router, "/healthz", map[string]string{server.HeaderRequestID: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(server.HeaderRequestID))
}

func TestRateLimit_Memory(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewManager(2, nil, func() time.Time { return now }, logger.Discard())
	router := newRouter(t, app.New(nil, nil, logger.Discard()), limiter)

	for i := 0; i < 2; i++ {
		w := get(router, "/tdee/macros?maintenance-calories=2000", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := get(router, "/tdee/macros?maintenance-calories=2000", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewManager(1, nil, func() time.Time { return now }, logger.Discard())
	router := newRouter(t, app.New(nil, nil, logger.Discard()), limiter)

	served := 0
	for i := 1; i <= 5; i++ {
		w := get(router, "/healthz", map[string]string{"X-Forwarded-For": fmt.Sprintf("203.0.113.%d", i)})
		if w.Code == http.StatusOK {
			served++
		} else {
			assert.Equal(t, http.StatusTooManyRequests, w.Code)
		}
	}
	assert.Equal(t, 1, served)
}

func TestRateLimit_ForwardedForFromTrustedProxy(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewManager(1, nil, func() time.Time { return now }, logger.Discard())
	cfg := testConfig()
	// httptest requests come from 192.0.2.1
	cfg.HTTP.TrustedProxies = []string{"192.0.2.0/24"}
	router := newRouterWith(t, cfg, app.New(nil, nil, logger.Discard()), limiter)

	xff := map[string]string{"X-Forwarded-For": "203.0.113.7"}
	assert.Equal(t, http.StatusOK, get(router, "/healthz", xff).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/healthz", xff).Code)
	assert.Equal(t, http.StatusOK, get(router, "/healthz", map[string]string{"X-Forwarded-For": "203.0.113.8"}).Code)
}

func TestRateLimit_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { rc.Close() })

	now := time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC)
	limiter := ratelimit.NewManager(1, ratelimit.NewRedisLimiter(rc), func() time.Time { return now }, logger.Discard())
	router := newRouter(t, app.New(nil, rc, logger.Discard()), limiter)

	assert.Equal(t, http.StatusOK, get(router, "/healthz", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/healthz", nil).Code)
	assert.NotEmpty(t, mr.Keys())
}

func TestCORS(t *testing.T) {
	router := newRouter(t, app.New(nil, nil, logger.Discard()), nil)

	req := httptest.NewRequest(http.MethodOptions, "/tdee/calculate", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(router, "/healthz", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStartHTTPServer_StopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Host = "127.0.0.1"
	cfg.HTTP.Port = freePort(t)
	router := newRouter(t, app.New(nil, nil, logger.Discard()), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.StartHTTPServer(ctx, cfg, router) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.HTTP.Addr() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStartHTTPServer_DrainsInFlightRequests(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Host = "127.0.0.1"
	cfg.HTTP.Port = freePort(t)

	entered := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		select {
		case <-r.Context().Done():
			http.Error(w, "canceled", http.StatusServiceUnavailable)
		case <-time.After(300 * time.Millisecond):
			_, _ = io.WriteString(w, "done")
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.StartHTTPServer(ctx, cfg, handler) }()

	type result struct {
		status int
		body   string
		err    error
	}
	got := make(chan result, 1)
	go func() {
		var resp *http.Response
		var err error
		// retry until the listener is up
		for i := 0; i < 100; i++ {
			resp, err = http.Get("http://" + cfg.HTTP.Addr() + "/slow")
			if err == nil {
				break
			}
			time.Sleep(20 * time.Millisecond)
		}
		if err != nil {
			got <- result{err: err}
			return
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		got <- result{status: resp.StatusCode, body: string(b), err: err}
	}()

	select {
	case <-entered:
	case <-time.After(3 * time.Second):
		t.Fatal("request never reached the handler")
	}
	cancel()

	res := <-got
	require.NoError(t, res.err)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "done", res.body)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func freePort(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(lis.Addr().String())
	require.NoError(t, err)
	require.NoError(t, lis.Close())
	return port
}
