// Package main is the dietinsights server: it ingests diet datasets, serves
// aggregate stats and recipe search over HTTP, and pushes ingestion events
// over WebSocket.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/persistorai/dietinsights/internal/api"
	"github.com/persistorai/dietinsights/internal/config"
	"github.com/persistorai/dietinsights/internal/dataset"
	"github.com/persistorai/dietinsights/internal/db"
	"github.com/persistorai/dietinsights/internal/service"
	"github.com/persistorai/dietinsights/internal/watch"
	"github.com/persistorai/dietinsights/internal/ws"
)

// Server timeouts.
const (
	readHeaderTimeout  = 10 * time.Second
	readTimeout        = 60 * time.Second
	writeTimeout       = 120 * time.Second
	idleTimeout        = 120 * time.Second
	shutdownTimeout    = 10 * time.Second
	sourceFetchTimeout = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dietinsights: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	log.WithFields(logrus.Fields{
		"version":       config.Version,
		"store_backend": cfg.StoreBackend,
		"cache_backend": cfg.CacheBackend,
		"database_url":  cfg.DatabaseURL,
	}).Info("starting dietinsights")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	statsCache, err := newStatsCache(ctx, cfg, b.stats, log)
	if err != nil {
		return err
	}

	var (
		statsStore  service.StatsStore = b.stats
		invalidator db.Invalidator
	)
	if statsCache != nil {
		statsStore = statsCache
		invalidator = statsCache
	}

	hub := ws.NewHub(log)

	fileSrc := dataset.NewFileSource(afero.NewOsFs(), cfg.SourceContainer, cfg.SourceBlob)
	var computeSrc dataset.Source = fileSrc
	if cfg.SourceURL != "" {
		computeSrc = dataset.NewHTTPSource(cfg.SourceURL, sourceFetchTimeout)
	}

	pipelineCfg := service.PipelineConfig{StatsKey: cfg.ResultKey, Policy: cfg.CoercionPolicy}
	ingestSvc := service.NewIngestService(statsStore, b.recipes, hub, fileSrc, pipelineCfg, log)
	statsSvc := service.NewStatsService(statsStore, computeSrc, pipelineCfg, log)
	searchSvc := service.NewSearchService(b.recipes, log)
	worker := service.NewIngestWorker(ingestSvc, log, cfg.IngestQueueSize)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})

	if cfg.WatchSource {
		w := watch.New(cfg.SourceContainer, cfg.SourceBlob, func() {
			if !worker.Enqueue(service.IngestJob{Source: fileSrc, Reason: "source changed"}) {
				log.Warn("ingest queue full, dropping source change")
			}
		}, log)

		g.Go(func() error { return w.Run(gctx) })
	}

	if b.pool != nil {
		bridge := db.NewNotifyBridge(log, b.pool, hub, invalidator)
		if err := bridge.Start(gctx); err != nil {
			return err
		}
	}

	router := api.NewRouter(gctx, &api.RouterDeps{
		Log:            log,
		Hub:            hub,
		Store:          b.pinger,
		Stats:          statsSvc,
		Recipes:        searchSvc,
		Ingest:         ingestSvc,
		CORSOrigins:    cfg.CORSOrigins,
		Version:        config.Version,
		StoreBackend:   cfg.StoreBackend,
		SchemaVersion:  b.schemaVersion,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g.Go(func() error { return serve(srv, log, "api") })
	g.Go(func() error { return serve(metricsSrv, log, "metrics") })

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(srv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})

	err = g.Wait()
	hub.Shutdown()

	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	log.Info("server shut down successfully")

	return nil
}

// serve runs srv until it is shut down.
func serve(srv *http.Server, log *logrus.Logger, name string) error {
	log.WithFields(logrus.Fields{"server": name, "addr": srv.Addr}).Info("listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}

	return nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if cfg.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}

	// Level was validated by config.Load.
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}
