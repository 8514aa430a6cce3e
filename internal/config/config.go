package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverNone   = "none"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Log       LogConfig       `yaml:"log"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	HTTP      HTTPConfig      `yaml:"http"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// AppConfig holds process-level switches. SeedOnStart fills an empty history
// store with demo rows at startup.
type AppConfig struct {
	ENV         string `yaml:"env"`
	SeedOnStart bool   `yaml:"seed_on_start"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Component string `yaml:"component"`
	Source    bool   `yaml:"source"`
}

// DBConfig selects the history store. Driver "none" runs without persistence.
type DBConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	LogSQL   bool   `yaml:"log_sql"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// HTTPConfig configures the listener. TrustedProxies lists the proxy
// addresses/CIDRs whose X-Forwarded-For is believed; empty trusts none.
type HTTPConfig struct {
	Host           string   `yaml:"host"`
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// RateLimitConfig caps requests per client per minute. Zero disables it.
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"`
}

// Addr returns host:port for the HTTP listener.
func (h HTTPConfig) Addr() string {
	return h.Host + ":" + h.Port
}

// New builds config from defaults and environment variables (including a
// local .env file when present).
func New() *Config {
	_ = godotenv.Load()

	cfg := defaults()
	applyEnv(cfg)
	return cfg
}

// Load is New with a YAML file layered between defaults and the environment.
// An empty path or a missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}

	cfg.App.ENV = "production"

	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Log.Component = "http_server"

	cfg.DB.Driver = DriverSQLite
	cfg.DB.Path = "tdee.db"
	cfg.DB.Host = "localhost"
	cfg.DB.Port = "3306"
	cfg.DB.User = "root"
	cfg.DB.Name = "tdee"

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.Prefix = "tdee"

	cfg.HTTP.Host = "0.0.0.0"
	cfg.HTTP.Port = "8080"
	cfg.HTTP.AllowedOrigins = []string{"*"}

	cfg.RateLimit.PerMinute = 120

	return cfg
}

func applyEnv(cfg *Config) {
	cfg.App.ENV = getEnvDefault("APP_ENV", cfg.App.ENV)
	cfg.App.SeedOnStart = getEnvBool("SEED_ON_START", cfg.App.SeedOnStart)

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", cfg.Log.Component)
	cfg.Log.Source = getEnvBool("LOG_SOURCE", cfg.Log.Source)

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.Path = getEnvDefault("SQLITE_PATH", cfg.DB.Path)
	cfg.DB.DSN = getEnvDefault("MYSQL_DSN", cfg.DB.DSN)
	cfg.DB.Host = getEnvDefault("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnvDefault("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnvDefault("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnvDefault("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnvDefault("DB_NAME", cfg.DB.Name)
	cfg.DB.LogSQL = getEnvBool("DB_LOG_SQL", cfg.DB.LogSQL)
	if cfg.DB.Driver == DriverMySQL && cfg.DB.DSN == "" {
		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.Prefix = getEnvDefault("REDIS_PREFIX", cfg.Redis.Prefix)

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", cfg.HTTP.Host)
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", cfg.HTTP.Port)
	if origins := getEnvDefault("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.HTTP.AllowedOrigins = splitList(origins)
	}
	if proxies := getEnvDefault("TRUSTED_PROXIES", ""); proxies != "" {
		cfg.HTTP.TrustedProxies = splitList(proxies)
	}

	cfg.RateLimit.PerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimit.PerMinute)
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvBool(k string, def bool) bool {
	v, ok := os.LookupEnv(k)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return isTruthy(v)
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
