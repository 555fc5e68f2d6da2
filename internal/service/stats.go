package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/dietinsights/internal/dataset"
	"github.com/persistorai/dietinsights/internal/models"
	"github.com/persistorai/dietinsights/internal/pipeline"
)

// cachedMsg is the meta.msg of a stats response served from the store.
const cachedMsg = "Served from the processed result store"

// StatsService serves the stored aggregate and recomputes it on demand.
type StatsService struct {
	store  StatsStore
	source dataset.Source
	cfg    PipelineConfig
	log    *logrus.Logger
	now    func() time.Time
}

// NewStatsService creates a StatsService. source feeds ComputeStats and may
// be nil when on-demand computation is not configured.
func NewStatsService(store StatsStore, source dataset.Source, cfg PipelineConfig, log *logrus.Logger) *StatsService {
	return &StatsService{store: store, source: source, cfg: cfg, log: log, now: time.Now}
}

// GetLatestStats returns the stored aggregate. It returns
// models.ErrStatsNotFound unwrapped when no ingestion has run yet, and
// any other store failure wrapped.
func (s *StatsService) GetLatestStats(ctx context.Context) (*models.StatsResponse, error) {
	doc, err := s.store.GetStats(ctx, s.cfg.key())
	if err != nil {
		if errors.Is(err, models.ErrStatsNotFound) {
			return nil, models.ErrStatsNotFound
		}

		return nil, fmt.Errorf("loading stats: %w", err)
	}

	updated := doc.UpdatedAt

	return &models.StatsResponse{
		Meta: models.StatsMeta{
			Records:   models.CachedRecords,
			Msg:       cachedMsg,
			UpdatedAt: &updated,
		},
		Charts: nonNilCharts(doc.Charts),
	}, nil
}

// ComputeStats recomputes the aggregate from a freshly read dataset,
// optionally filtered by minimum protein, and optionally persists it.
// A filtered aggregate is never persisted.
func (s *StatsService) ComputeStats(ctx context.Context, opts models.ComputeOptions) (*models.StatsResponse, error) {
	if math.IsNaN(opts.MinProtein) || math.IsInf(opts.MinProtein, 0) || opts.MinProtein < 0 {
		return nil, fmt.Errorf("%w: min_protein must be a non-negative number", models.ErrInvalidFilter)
	}

	if opts.Persist && opts.MinProtein > 0 {
		return nil, models.ErrPersistFiltered
	}

	if s.source == nil {
		return nil, fmt.Errorf("%w: no dataset source configured", models.ErrSourceNotFound)
	}

	start := time.Now()

	rc, name, err := s.source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	table, err := dataset.ReadTable(rc, name)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	res, err := pipeline.Normalize(table, s.cfg.options())
	if err != nil {
		return nil, err
	}

	rows := pipeline.FilterMinProtein(res.Rows, opts.MinProtein)
	charts := pipeline.Aggregate(rows)

	if opts.Persist {
		doc := &models.StatsDocument{
			ID:          s.cfg.key(),
			Charts:      charts,
			RecordCount: len(rows),
			UpdatedAt:   s.now().UTC(),
		}
		if err := s.store.PutStats(ctx, doc); err != nil {
			return nil, fmt.Errorf("persisting stats: %w", err)
		}
	}

	execMS := float64(time.Since(start).Microseconds()) / 1000

	s.log.WithFields(logrus.Fields{
		"rows":        len(res.Rows),
		"kept":        len(rows),
		"min_protein": opts.MinProtein,
		"persisted":   opts.Persist,
		"warnings":    len(res.Warnings),
		"exec_ms":     execMS,
	}).Info("stats computed on demand")

	return &models.StatsResponse{
		Meta: models.StatsMeta{
			Records: len(rows),
			Filters: &models.StatsFilters{MinProtein: opts.MinProtein},
			ExecMS:  execMS,
		},
		Charts: charts,
	}, nil
}

func nonNilCharts(c models.Charts) models.Charts {
	if c.MacrosByDiet == nil {
		c.MacrosByDiet = []models.MacroAverage{}
	}
	if c.CaloriesByDiet == nil {
		c.CaloriesByDiet = []models.CalorieAverage{}
	}
	if c.Trend == nil {
		c.Trend = []models.TrendPoint{}
	}
	return c
}
