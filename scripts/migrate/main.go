// Package main copies the stats documents and recipe records of a SQLite
// dietinsights store into PostgreSQL, for moving a single-node deployment
// onto a shared database.
//
// Usage:
//
//	SQLITE_PATH=data/dietinsights.db DATABASE_URL=postgres://... go run ./scripts/migrate
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/dietinsights/internal/db"
	"github.com/persistorai/dietinsights/internal/dbpool"
	"github.com/persistorai/dietinsights/internal/store"
	"github.com/persistorai/dietinsights/internal/store/sqlite"
)

// config holds environment-driven migration settings.
type config struct {
	SQLitePath  string
	DatabaseURL string
	DryRun      bool
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := loadConfig()
	if cfg.DatabaseURL == "" && !cfg.DryRun {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"sqlite":  cfg.SQLitePath,
		"dry_run": cfg.DryRun,
	}).Info("starting migration")

	start := time.Now()
	r, err := runMigration(context.Background(), cfg, log)
	r.Duration = time.Since(start)
	if err != nil {
		r.Err = err
		log.WithError(err).Error("migration failed")
	}
	printReport(os.Stdout, &r)
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration from environment variables.
func loadConfig() config {
	return config{
		SQLitePath:  envOr("SQLITE_PATH", "data/dietinsights.db"),
		DatabaseURL: envOr("DATABASE_URL", ""),
		DryRun:      os.Getenv("DRY_RUN") == "true" || os.Getenv("DRY_RUN") == "1",
	}
}

// runMigration opens both stores and copies everything across.
func runMigration(ctx context.Context, cfg config, log *logrus.Logger) (report, error) {
	r := report{
		Source: cfg.SQLitePath,
		Target: sanitizeURL(cfg.DatabaseURL),
		DryRun: cfg.DryRun,
	}

	if _, err := os.Stat(cfg.SQLitePath); err != nil {
		return r, fmt.Errorf("sqlite source: %w", err)
	}

	lite, err := sqlite.Open(ctx, cfg.SQLitePath, log)
	if err != nil {
		return r, fmt.Errorf("open sqlite: %w", err)
	}
	defer lite.Close()

	if cfg.DryRun {
		log.Info("dry run, skipping PostgreSQL writes")
		err := copyStore(ctx, lite, discard{}, &r)
		return r, err
	}

	if err := db.RunMigrations(ctx, cfg.DatabaseURL, log); err != nil {
		return r, fmt.Errorf("migrate postgres: %w", err)
	}

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL, 4)
	if err != nil {
		return r, fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	existing, err := countRecipes(ctx, pool)
	if err != nil {
		return r, fmt.Errorf("count target recipes: %w", err)
	}
	if existing > 0 {
		return r, fmt.Errorf("target already holds %d recipes, refusing to append", existing)
	}

	base := store.Base{DB: pool, Log: log}
	target := pgTarget{StatsStore: store.NewStatsStore(base), RecipeStore: store.NewRecipeStore(base)}

	if err := copyStore(ctx, lite, target, &r); err != nil {
		return r, err
	}

	r.RecipesVerified, err = countRecipes(ctx, pool)
	if err != nil {
		return r, fmt.Errorf("verify recipe count: %w", err)
	}

	return r, nil
}

// pgTarget joins the two PostgreSQL stores into one copy target.
type pgTarget struct {
	*store.StatsStore
	*store.RecipeStore
}

func countRecipes(ctx context.Context, pool *dbpool.Pool) (int, error) {
	var n int
	err := pool.QueryRow(ctx, `SELECT count(*) FROM recipes`).Scan(&n)
	return n, err
}

// sanitizeURL removes credentials from a database URL for display.
func sanitizeURL(raw string) string {
	if raw == "" {
		return "(none)"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable URL]"
	}
	u.User = nil
	return u.String()
}

// envOr returns the environment variable value or a default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
