package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/dietinsights/internal/api"
	"github.com/persistorai/dietinsights/internal/cache"
	"github.com/persistorai/dietinsights/internal/config"
	"github.com/persistorai/dietinsights/internal/db"
	"github.com/persistorai/dietinsights/internal/dbpool"
	"github.com/persistorai/dietinsights/internal/service"
	"github.com/persistorai/dietinsights/internal/store"
	"github.com/persistorai/dietinsights/internal/store/memory"
	"github.com/persistorai/dietinsights/internal/store/sqlite"
)

// backend is the selected result store. pool is set only for postgres.
type backend struct {
	stats         service.StatsStore
	recipes       service.RecipeStore
	pinger        api.Pinger
	pool          *dbpool.Pool
	schemaVersion int
	close         func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*backend, error) {
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}

		return &backend{
			stats:   s,
			recipes: s,
			pinger:  s,
			close: func() {
				if err := s.Close(); err != nil {
					log.WithError(err).Warn("closing sqlite store")
				}
			},
		}, nil

	case config.StoreMemory:
		s := memory.New()
		log.Warn("using in-memory store; results are lost on restart")

		return &backend{stats: s, recipes: s, pinger: s, close: func() {}}, nil

	default:
		pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), cfg.DBMaxConns)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}

		if err := db.RunMigrations(ctx, pool.ConnString(), log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}

		base := store.Base{DB: pool, Log: log}

		return &backend{
			stats:         store.NewStatsStore(base),
			recipes:       store.NewRecipeStore(base),
			pinger:        &base,
			pool:          pool,
			schemaVersion: db.SchemaVersion(),
			close:         pool.Close,
		}, nil
	}
}

// newStatsCache wraps stats in the configured cache, or returns nil when
// caching is disabled.
func newStatsCache(ctx context.Context, cfg *config.Config, stats service.StatsStore, log *logrus.Logger) (*cache.StatsCache, error) {
	switch cfg.CacheBackend {
	case config.CacheMemory:
		return cache.NewStatsCache(stats, cache.NewLRUBackend(cfg.CacheSize, cfg.StatsCacheTTL), log), nil

	case config.CacheRedis:
		opts, err := redis.ParseURL(cfg.RedisURL.Value())
		if err != nil {
			return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
		}

		backend := cache.NewRedisBackend(redis.NewClient(opts), cfg.StatsCacheTTL)
		if err := backend.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unreachable at startup, stats reads fall back to the store")
		}

		return cache.NewStatsCache(stats, backend, log), nil

	default:
		return nil, nil
	}
}
