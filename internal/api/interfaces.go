package api

import (
	"context"

	"github.com/persistorai/dietinsights/internal/models"
)

// StatsService serves the stored aggregate and on-demand recomputation.
type StatsService interface {
	GetLatestStats(ctx context.Context) (*models.StatsResponse, error)
	ComputeStats(ctx context.Context, opts models.ComputeOptions) (*models.StatsResponse, error)
}

// RecipeSearcher runs paginated recipe searches.
type RecipeSearcher interface {
	Search(ctx context.Context, q models.SearchQuery) ([]models.RecipeRecord, error)
}

// Ingester processes an uploaded dataset.
type Ingester interface {
	IngestUpload(ctx context.Context, name string, data []byte) (*models.IngestReport, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
