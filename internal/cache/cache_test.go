package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/dietinsights/internal/models"
)

// countingStore records how often the wrapped store is hit.
type countingStore struct {
	docs map[string]models.StatsDocument
	gets int
	err  error
	// afterRead runs once, between reading the document and returning it.
	afterRead func()
}

func (s *countingStore) PutStats(_ context.Context, doc *models.StatsDocument) error {
	if s.err != nil {
		return s.err
	}
	s.docs[doc.ID] = *doc
	return nil
}

func (s *countingStore) GetStats(_ context.Context, key string) (*models.StatsDocument, error) {
	s.gets++
	if s.err != nil {
		return nil, s.err
	}
	doc, ok := s.docs[key]
	if hook := s.afterRead; hook != nil {
		s.afterRead = nil
		hook()
	}
	if !ok {
		return nil, models.ErrStatsNotFound
	}
	return &doc, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func newRedisBackend(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBackend(client, time.Minute), mr
}

func doc(diet string) *models.StatsDocument {
	return &models.StatsDocument{
		ID:          models.DefaultStatsKey,
		Charts:      models.Charts{MacrosByDiet: []models.MacroAverage{{DietType: diet, ProteinG: 10}}},
		RecordCount: 1,
	}
}

func TestStatsCache_Backends(t *testing.T) {
	backends := map[string]func(t *testing.T) Backend{
		"redis": func(t *testing.T) Backend { b, _ := newRedisBackend(t); return b },
		"lru":   func(*testing.T) Backend { return NewLRUBackend(0, time.Minute) },
	}

	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			t.Run("Should serve repeated reads from cache", func(t *testing.T) {
				store := &countingStore{docs: map[string]models.StatsDocument{models.DefaultStatsKey: *doc("vegan")}}
				c := NewStatsCache(store, mk(t), testLogger())

				for range 3 {
					got, err := c.GetStats(ctx, models.DefaultStatsKey)
					require.NoError(t, err)
					assert.Equal(t, "vegan", got.MacrosByDiet[0].DietType)
				}
				assert.Equal(t, 1, store.gets)
			})

			t.Run("Should replace the entry on write", func(t *testing.T) {
				store := &countingStore{docs: map[string]models.StatsDocument{}}
				c := NewStatsCache(store, mk(t), testLogger())

				require.NoError(t, c.PutStats(ctx, doc("vegan")))
				require.NoError(t, c.PutStats(ctx, doc("keto")))

				got, err := c.GetStats(ctx, models.DefaultStatsKey)
				require.NoError(t, err)
				assert.Equal(t, "keto", got.MacrosByDiet[0].DietType)
				assert.Zero(t, store.gets)
			})

			t.Run("Should not cache not-found", func(t *testing.T) {
				store := &countingStore{docs: map[string]models.StatsDocument{}}
				c := NewStatsCache(store, mk(t), testLogger())

				_, err := c.GetStats(ctx, models.DefaultStatsKey)
				assert.ErrorIs(t, err, models.ErrStatsNotFound)
				_, err = c.GetStats(ctx, models.DefaultStatsKey)
				assert.ErrorIs(t, err, models.ErrStatsNotFound)
				assert.Equal(t, 2, store.gets)
			})

			t.Run("Should keep a newer write over a slower read-through fill", func(t *testing.T) {
				store := &countingStore{docs: map[string]models.StatsDocument{models.DefaultStatsKey: *doc("vegan")}}
				c := NewStatsCache(store, mk(t), testLogger())
				store.afterRead = func() { require.NoError(t, c.PutStats(ctx, doc("keto"))) }

				got, err := c.GetStats(ctx, models.DefaultStatsKey)
				require.NoError(t, err)
				assert.Equal(t, "vegan", got.MacrosByDiet[0].DietType)

				got, err = c.GetStats(ctx, models.DefaultStatsKey)
				require.NoError(t, err)
				assert.Equal(t, "keto", got.MacrosByDiet[0].DietType)
				assert.Equal(t, 1, store.gets)
			})

			t.Run("Should drop the entry on invalidate", func(t *testing.T) {
				store := &countingStore{docs: map[string]models.StatsDocument{models.DefaultStatsKey: *doc("vegan")}}
				c := NewStatsCache(store, mk(t), testLogger())

				_, _ = c.GetStats(ctx, models.DefaultStatsKey)
				c.Invalidate(ctx, models.DefaultStatsKey)
				_, _ = c.GetStats(ctx, models.DefaultStatsKey)
				assert.Equal(t, 2, store.gets)
			})
		})
	}
}

func TestStatsCache_Degradation(t *testing.T) {
	ctx := t.Context()

	t.Run("Should fall back to the store when redis is down", func(t *testing.T) {
		backend, mr := newRedisBackend(t)
		store := &countingStore{docs: map[string]models.StatsDocument{models.DefaultStatsKey: *doc("paleo")}}
		c := NewStatsCache(store, backend, testLogger())

		mr.Close()

		got, err := c.GetStats(ctx, models.DefaultStatsKey)
		require.NoError(t, err)
		assert.Equal(t, "paleo", got.MacrosByDiet[0].DietType)
	})

	t.Run("Should not fill the cache when the store write fails", func(t *testing.T) {
		backend := NewLRUBackend(1, time.Minute)
		store := &countingStore{docs: map[string]models.StatsDocument{}, err: models.ErrStoreWrite}
		c := NewStatsCache(store, backend, testLogger())

		err := c.PutStats(ctx, doc("vegan"))
		assert.ErrorIs(t, err, models.ErrStoreWrite)

		_, ok, _ := backend.Get(ctx, models.DefaultStatsKey)
		assert.False(t, ok)
	})

	t.Run("Should pass store read errors through", func(t *testing.T) {
		store := &countingStore{err: errors.Join(models.ErrStoreRead, errors.New("down"))}
		c := NewStatsCache(store, NewLRUBackend(1, time.Minute), testLogger())

		_, err := c.GetStats(ctx, models.DefaultStatsKey)
		assert.ErrorIs(t, err, models.ErrStoreRead)
	})

	t.Run("Should expire redis entries after the ttl", func(t *testing.T) {
		backend, mr := newRedisBackend(t)
		store := &countingStore{docs: map[string]models.StatsDocument{models.DefaultStatsKey: *doc("vegan")}}
		c := NewStatsCache(store, backend, testLogger())

		_, _ = c.GetStats(ctx, models.DefaultStatsKey)
		mr.FastForward(2 * time.Minute)
		_, _ = c.GetStats(ctx, models.DefaultStatsKey)
		assert.Equal(t, 2, store.gets)
	})
}
