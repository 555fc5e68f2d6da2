// Package config provides environment-driven configuration for dietinsights.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/persistorai/dietinsights/internal/pipeline"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Store backends.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all application configuration values.
type Config struct {
	StoreBackend string
	DatabaseURL  Secret
	DBMaxConns   int32
	SQLitePath   string

	Port        string
	ListenHost  string
	MetricsPort string
	CORSOrigins []string

	LogLevel  string
	LogFormat string

	CacheBackend  string
	RedisURL      Secret
	StatsCacheTTL time.Duration
	CacheSize     int

	SourceContainer string
	SourceBlob      string
	SourceURL       string
	ResultKey       string
	WatchSource     bool

	CoercionPolicy  pipeline.CoercionPolicy
	IngestQueueSize int
	MaxUploadBytes  int64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		StoreBackend:    strings.ToLower(envOrDefault("STORE_BACKEND", StorePostgres)),
		DatabaseURL:     Secret(envOrDefault("DATABASE_URL", "")),
		SQLitePath:      envOrDefault("SQLITE_PATH", "./data/dietinsights.db"),
		Port:            envOrDefault("PORT", "3030"),
		ListenHost:      envOrDefault("LISTEN_HOST", "127.0.0.1"),
		MetricsPort:     envOrDefault("METRICS_PORT", "9090"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		CacheBackend:    strings.ToLower(envOrDefault("CACHE_BACKEND", CacheNone)),
		RedisURL:        Secret(envOrDefault("REDIS_URL", "")),
		SourceContainer: envOrDefault("SOURCE_CONTAINER", "./data/incoming"),
		SourceBlob:      envOrDefault("SOURCE_BLOB", "All_Diets.csv"),
		SourceURL:       envOrDefault("SOURCE_URL", ""),
		ResultKey:       envOrDefault("RESULT_KEY", "global_stats"),
		WatchSource:     envOrDefault("WATCH_SOURCE", "true") == "true",
	}

	dbMaxConns, err := strconv.Atoi(envOrDefault("DB_MAX_CONNS", "10"))
	if err != nil || dbMaxConns < 1 || dbMaxConns > 100 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be an integer between 1 and 100")
	}
	cfg.DBMaxConns = int32(dbMaxConns) //nolint:gosec // bounded above.

	ttl, err := time.ParseDuration(envOrDefault("STATS_CACHE_TTL", "5m"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("STATS_CACHE_TTL must be a positive duration")
	}
	cfg.StatsCacheTTL = ttl

	cacheSize, err := strconv.Atoi(envOrDefault("STATS_CACHE_SIZE", "64"))
	if err != nil || cacheSize < 1 {
		return nil, fmt.Errorf("STATS_CACHE_SIZE must be a positive integer")
	}
	cfg.CacheSize = cacheSize

	queueSize, err := strconv.Atoi(envOrDefault("INGEST_QUEUE_SIZE", "16"))
	if err != nil || queueSize < 1 || queueSize > 1024 {
		return nil, fmt.Errorf("INGEST_QUEUE_SIZE must be an integer between 1 and 1024")
	}
	cfg.IngestQueueSize = queueSize

	uploadMB, err := strconv.Atoi(envOrDefault("MAX_UPLOAD_MB", "32"))
	if err != nil || uploadMB < 1 || uploadMB > 256 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be an integer between 1 and 256")
	}
	cfg.MaxUploadBytes = int64(uploadMB) << 20

	policy, err := pipeline.ParseCoercionPolicy(envOrDefault("COERCION_POLICY", string(pipeline.ZeroFill)))
	if err != nil {
		return nil, fmt.Errorf("COERCION_POLICY: %w", err)
	}
	cfg.CoercionPolicy = policy

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3002")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
