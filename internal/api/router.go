package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/dietinsights/internal/middleware"
	"github.com/persistorai/dietinsights/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log            *logrus.Logger
	Hub            *ws.Hub
	Store          Pinger
	Stats          StatsService
	Recipes        RecipeSearcher
	Ingest         Ingester
	CORSOrigins    []string
	Version        string
	StoreBackend   string
	SchemaVersion  int
	MaxUploadBytes int64
}

// Router-level limits.
const (
	defaultMaxBodySize = 32 << 20 // 32 MB
	rateLimit          = 100      // requests per second per IP
	rateBurst          = 200      // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	maxBody := deps.MaxUploadBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}

	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBody))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	var hub ClientCounter
	if deps.Hub != nil {
		hub = deps.Hub
	}

	health := NewHealthHandler(deps.Store, hub, log, deps.Version, deps.StoreBackend, deps.SchemaVersion)
	stats := NewStatsHandler(deps.Stats, log)
	recipes := NewRecipeHandler(deps.Recipes, log)
	ingest := NewIngestHandler(deps.Ingest, log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Stats.
	api.GET("/stats", stats.GetStats)
	api.GET("/stats/compute", stats.Compute)

	// Recipes.
	api.GET("/recipes", recipes.Search)

	// Ingestion.
	api.POST("/ingest", ingest.Upload)

	// WebSocket endpoint.
	if deps.Hub != nil {
		api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins))
	}
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
