package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/dietinsights/internal/dataset"
	"github.com/persistorai/dietinsights/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

// mockStatsStore records calls and returns configured responses.
type mockStatsStore struct {
	mu    sync.Mutex
	calls []string
	put   []*models.StatsDocument

	putStats func(ctx context.Context, doc *models.StatsDocument) error
	getStats func(ctx context.Context, key string) (*models.StatsDocument, error)
}

func (m *mockStatsStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockStatsStore) PutStats(ctx context.Context, doc *models.StatsDocument) error {
	m.record("PutStats")
	m.mu.Lock()
	m.put = append(m.put, doc)
	m.mu.Unlock()
	if m.putStats == nil {
		return nil
	}
	return m.putStats(ctx, doc)
}

func (m *mockStatsStore) GetStats(ctx context.Context, key string) (*models.StatsDocument, error) {
	m.record("GetStats")
	return m.getStats(ctx, key)
}

// mockRecipeStore writes one record at a time.
type mockRecipeStore struct {
	mu      sync.Mutex
	written []models.RecipeRecord

	putRecipe    func(ctx context.Context, rec *models.RecipeRecord) error
	queryRecipes func(ctx context.Context, filter models.RecipeFilter, offset, limit int) ([]models.RecipeRecord, error)
}

func (m *mockRecipeStore) PutRecipe(ctx context.Context, rec *models.RecipeRecord) error {
	if m.putRecipe != nil {
		if err := m.putRecipe(ctx, rec); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, *rec)
	return nil
}

func (m *mockRecipeStore) QueryRecipes(ctx context.Context, filter models.RecipeFilter, offset, limit int) ([]models.RecipeRecord, error) {
	return m.queryRecipes(ctx, filter, offset, limit)
}

// mockBulkStore adds PutRecipes on top of mockRecipeStore.
type mockBulkStore struct {
	mockRecipeStore
	bulkCalls  int
	putRecipes func(ctx context.Context, recs []models.RecipeRecord) (int, error)
}

func (m *mockBulkStore) PutRecipes(ctx context.Context, recs []models.RecipeRecord) (int, error) {
	m.bulkCalls++
	return m.putRecipes(ctx, recs)
}

// mockPublisher captures broadcast events.
type mockPublisher struct {
	mu     sync.Mutex
	events []string
	data   []json.RawMessage
}

func (m *mockPublisher) BroadcastEvent(eventType string, data json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventType)
	m.data = append(m.data, data)
}

// mockArchiver captures archived uploads.
type mockArchiver struct {
	ids   []string
	names []string
	err   error
}

func (m *mockArchiver) Archive(ingestID, name string, _ []byte) (string, error) {
	m.ids = append(m.ids, ingestID)
	m.names = append(m.names, name)
	return "uploads/" + ingestID + "_" + name, m.err
}

// stringSource serves a fixed CSV body.
type stringSource struct {
	body  string
	name  string
	err   error
	opens int
}

func (s *stringSource) Open(context.Context) (io.ReadCloser, string, error) {
	s.opens++
	if s.err != nil {
		return nil, "", s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), s.name, nil
}

var _ dataset.Source = (*stringSource)(nil)

const veganCSV = "diet,protein,carbs,fat,calories\n" +
	"vegan,10,20,5,\n" +
	"vegan,30,10,5,\n"
