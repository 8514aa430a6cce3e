package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/tdee-service/internal/cache"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
//
// DB is nil when the service runs without persistence; RedisCache is nil when
// Redis is disabled.
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
	}
}

// HasStore reports whether a persistence handle is wired in.
func (a *AppContext) HasStore() bool {
	return a != nil && a.DB != nil
}
