package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oggyb/tdee-service/internal/app"
	"github.com/oggyb/tdee-service/internal/cache"
	"github.com/oggyb/tdee-service/internal/config"
	"github.com/oggyb/tdee-service/internal/db"
	"github.com/oggyb/tdee-service/internal/logger"
	"github.com/oggyb/tdee-service/internal/ratelimit"
	"github.com/oggyb/tdee-service/internal/server"
	"github.com/oggyb/tdee-service/internal/service/history"
	"github.com/oggyb/tdee-service/internal/service/tdee"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB (nil when DB_DRIVER=none)
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis, only used to share rate limit counters between replicas
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache = cache.NewRedisCache(cfg)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unreachable, rate limiting stays in memory", "addr", cfg.Redis.Addr, "err", err)
			_ = redisCache.Close()
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	// Inject logger into app context
	appCtx := app.New(database, redisCache, log)

	var shared ratelimit.Limiter
	if redisCache != nil {
		shared = ratelimit.NewRedisLimiter(redisCache)
	}
	limiter := ratelimit.NewManager(cfg.RateLimit.PerMinute, shared, nil, log)

	registrars := []server.Registrar{
		tdee.NewRegistrar(appCtx),
	}
	if appCtx.HasStore() {
		registrars = append(registrars, history.NewRegistrar(appCtx))

		if cfg.App.SeedOnStart {
			if _, err := db.SeedIfEmpty(database, log); err != nil {
				log.Error("failed to seed", "err", err)
			}
		}
	} else {
		log.Info("persistence disabled, history routes not registered")
	}

	router := server.NewRouter(cfg, appCtx, limiter, registrars...)

	log.Info("starting HTTP server", "addr", cfg.HTTP.Addr(), "db_driver", cfg.DB.Driver, "redis", redisCache != nil)
	if err := server.StartHTTPServer(ctx, cfg, router); err != nil {
		log.Error("failed to start HTTP server", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
