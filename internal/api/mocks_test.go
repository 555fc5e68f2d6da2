package api_test

import (
	"context"

	"github.com/persistorai/dietinsights/internal/models"
)

// mockStatsService implements api.StatsService for testing.
type mockStatsService struct {
	latestFn  func(ctx context.Context) (*models.StatsResponse, error)
	computeFn func(ctx context.Context, opts models.ComputeOptions) (*models.StatsResponse, error)
}

func (m *mockStatsService) GetLatestStats(ctx context.Context) (*models.StatsResponse, error) {
	return m.latestFn(ctx)
}

func (m *mockStatsService) ComputeStats(ctx context.Context, opts models.ComputeOptions) (*models.StatsResponse, error) {
	return m.computeFn(ctx, opts)
}

// mockSearcher implements api.RecipeSearcher for testing.
type mockSearcher struct {
	searchFn func(ctx context.Context, q models.SearchQuery) ([]models.RecipeRecord, error)
}

func (m *mockSearcher) Search(ctx context.Context, q models.SearchQuery) ([]models.RecipeRecord, error) {
	return m.searchFn(ctx, q)
}

// mockIngester implements api.Ingester for testing.
type mockIngester struct {
	uploadFn func(ctx context.Context, name string, data []byte) (*models.IngestReport, error)
}

func (m *mockIngester) IngestUpload(ctx context.Context, name string, data []byte) (*models.IngestReport, error) {
	return m.uploadFn(ctx, name, data)
}

// mockPinger implements api.Pinger for testing.
type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }
