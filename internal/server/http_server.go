package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oggyb/tdee-service/internal/app"
	"github.com/oggyb/tdee-service/internal/config"
	svcErr "github.com/oggyb/tdee-service/internal/errors"
	"github.com/oggyb/tdee-service/internal/ratelimit"
)

const shutdownTimeout = 10 * time.Second

// NewRouter builds the gin engine with middleware and all provided services.
func NewRouter(cfg *config.Config, appCtx *app.AppContext, limiter *ratelimit.Manager, registrars ...Registrar) *gin.Engine {
	if cfg.App.ENV != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	svcErr.UseWireFieldNames()

	engine := gin.New()
	// ClientIP keys the rate limiter, so forwarded headers only count from known proxies.
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		appCtx.Logger.Warn("invalid trusted proxies, trusting none", "proxies", cfg.HTTP.TrustedProxies, "err", err)
		_ = engine.SetTrustedProxies(nil)
	}
	engine.Use(
		RequestID(),
		RequestLogger(appCtx.Logger),
		Recovery(appCtx.Logger),
		cors.New(corsConfig(cfg.HTTP.AllowedOrigins)),
		RateLimit(limiter),
	)

	engine.GET("/healthz", health(appCtx))

	// register all services
	for _, r := range registrars {
		r.Register(engine)
	}
	return engine
}

// StartHTTPServer serves handler on cfg.HTTP.Addr() until ctx is done, then
// drains in-flight requests. Request contexts carry ctx's values but are not
// canceled with it.
func StartHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	addr := cfg.HTTP.Addr()
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(lis) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	c.AllowHeaders = append(c.AllowHeaders, HeaderRequestID)
	c.ExposeHeaders = []string{HeaderRequestID, "X-Next-Page-Token", "X-Total-Count", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	return c
}

func health(appCtx *app.AppContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		if appCtx.HasStore() {
			sqlDB, err := appCtx.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				appCtx.Logger.Error("health check: store unreachable", "err", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
