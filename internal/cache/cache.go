// Package cache puts a read-through cache in front of the stats store.
package cache

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/dietinsights/internal/metrics"
	"github.com/persistorai/dietinsights/internal/models"
)

// Store is the stats store being cached.
type Store interface {
	PutStats(ctx context.Context, doc *models.StatsDocument) error
	GetStats(ctx context.Context, key string) (*models.StatsDocument, error)
}

// Backend holds encoded stats documents by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	SetIfAbsent(ctx context.Context, key string, val []byte) error
	Del(ctx context.Context, key string) error
}

// StatsCache decorates a Store. Backend failures degrade to the store and
// not-found results are never cached.
type StatsCache struct {
	store   Store
	backend Backend
	log     *logrus.Logger
}

// NewStatsCache wraps store with backend.
func NewStatsCache(store Store, backend Backend, log *logrus.Logger) *StatsCache {
	return &StatsCache{store: store, backend: backend, log: log}
}

// GetStats returns the cached document or reads through to the store.
func (c *StatsCache) GetStats(ctx context.Context, key string) (*models.StatsDocument, error) {
	raw, ok, err := c.backend.Get(ctx, key)

	switch {
	case err != nil:
		metrics.StatsCacheRequests.WithLabelValues("error").Inc()
		c.log.WithError(err).WithField("key", key).Warn("stats cache read failed")
	case ok:
		var doc models.StatsDocument
		if err := json.Unmarshal(raw, &doc); err == nil {
			metrics.StatsCacheRequests.WithLabelValues("hit").Inc()
			return &doc, nil
		}

		metrics.StatsCacheRequests.WithLabelValues("error").Inc()
		c.log.WithField("key", key).Warn("discarding undecodable stats cache entry")
		c.Invalidate(ctx, key)
	default:
		metrics.StatsCacheRequests.WithLabelValues("miss").Inc()
	}

	doc, err := c.store.GetStats(ctx, key)
	if err != nil {
		return nil, err
	}

	// A concurrent PutStats may already have cached a newer document.
	c.fill(ctx, key, doc, c.backend.SetIfAbsent)

	return doc, nil
}

// PutStats writes through to the store, then replaces the cache entry.
func (c *StatsCache) PutStats(ctx context.Context, doc *models.StatsDocument) error {
	if err := c.store.PutStats(ctx, doc); err != nil {
		return err
	}

	c.fill(ctx, doc.ID, doc, c.backend.Set)

	return nil
}

// Invalidate drops the entry for key, forcing the next read to the store.
func (c *StatsCache) Invalidate(ctx context.Context, key string) {
	if err := c.backend.Del(ctx, key); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("stats cache invalidation failed")
	}
}

func (c *StatsCache) fill(
	ctx context.Context,
	key string,
	doc *models.StatsDocument,
	set func(context.Context, string, []byte) error,
) {
	raw, err := json.Marshal(doc)
	if err == nil {
		err = set(ctx, key, raw)
	}

	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("stats cache write failed")
		// A stale entry must not outlive a failed replace.
		c.Invalidate(ctx, key)
	}
}
