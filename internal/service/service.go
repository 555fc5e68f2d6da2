// Package service provides the ingestion, stats and recipe search logic
// for dietinsights. Storage is reached only through the interfaces below.
package service

import (
	"context"
	"encoding/json"

	"github.com/persistorai/dietinsights/internal/models"
)

// StatsStore persists and retrieves aggregate stats documents.
type StatsStore interface {
	PutStats(ctx context.Context, doc *models.StatsDocument) error
	GetStats(ctx context.Context, key string) (*models.StatsDocument, error)
}

// RecipeStore persists and queries recipe records.
type RecipeStore interface {
	PutRecipe(ctx context.Context, rec *models.RecipeRecord) error
	QueryRecipes(ctx context.Context, filter models.RecipeFilter, offset, limit int) ([]models.RecipeRecord, error)
}

// BulkRecipeWriter is implemented by recipe stores that can write many
// records per round trip. It returns how many were written before a failure.
type BulkRecipeWriter interface {
	PutRecipes(ctx context.Context, recs []models.RecipeRecord) (int, error)
}

// EventPublisher pushes events to connected clients.
type EventPublisher interface {
	BroadcastEvent(eventType string, data json.RawMessage)
}

// Archiver keeps a copy of an uploaded dataset.
type Archiver interface {
	Archive(ingestID, name string, data []byte) (string, error)
}

// Event types published by the ingest service.
const (
	EventIngestCompleted = "ingest.completed"
	EventIngestFailed    = "ingest.failed"
)

func publish(events EventPublisher, eventType string, payload any) {
	if events == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	events.BroadcastEvent(eventType, data)
}
