package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/dietinsights/internal/dataset"
	"github.com/persistorai/dietinsights/internal/metrics"
	"github.com/persistorai/dietinsights/internal/models"
	"github.com/persistorai/dietinsights/internal/pipeline"
)

// maxWarningSamples bounds the warnings echoed in an IngestReport.
const maxWarningSamples = 20

// PipelineConfig carries the normalization settings shared by ingestion and
// on-demand computation.
type PipelineConfig struct {
	StatsKey string
	Aliases  pipeline.AliasTable
	Policy   pipeline.CoercionPolicy
}

func (c PipelineConfig) key() string {
	if c.StatsKey == "" {
		return models.DefaultStatsKey
	}
	return c.StatsKey
}

func (c PipelineConfig) options() pipeline.Options {
	return pipeline.Options{Aliases: c.Aliases, Policy: c.Policy}
}

// IngestService turns a raw dataset into a stats document plus recipe records.
type IngestService struct {
	stats    StatsStore
	recipes  RecipeStore
	events   EventPublisher
	archiver Archiver
	cfg      PipelineConfig
	log      *logrus.Logger
	now      func() time.Time
}

// NewIngestService creates an IngestService. events and archiver may be nil.
func NewIngestService(
	stats StatsStore,
	recipes RecipeStore,
	events EventPublisher,
	archiver Archiver,
	cfg PipelineConfig,
	log *logrus.Logger,
) *IngestService {
	return &IngestService{
		stats:    stats,
		recipes:  recipes,
		events:   events,
		archiver: archiver,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// IngestSource opens src and ingests it.
func (s *IngestService) IngestSource(ctx context.Context, src dataset.Source) (*models.IngestReport, error) {
	rc, name, err := src.Open(ctx)
	if err != nil {
		s.fail(uuid.NewString(), name, err)
		return nil, err
	}
	defer rc.Close()

	return s.run(ctx, uuid.NewString(), rc, name)
}

// IngestUpload archives an uploaded dataset, then ingests it. Archiving is
// best-effort.
func (s *IngestService) IngestUpload(ctx context.Context, name string, data []byte) (*models.IngestReport, error) {
	ingestID := uuid.NewString()

	if s.archiver != nil {
		path, err := s.archiver.Archive(ingestID, name, data)
		if err != nil {
			s.log.WithError(err).WithField("ingest_id", ingestID).Warn("upload archive failed")
		} else {
			s.log.WithFields(logrus.Fields{"ingest_id": ingestID, "path": path}).Debug("upload archived")
		}
	}

	return s.run(ctx, ingestID, bytes.NewReader(data), name)
}

// Ingest reads, normalizes and aggregates r, then persists the stats
// document followed by one record per row. A schema failure aborts before
// anything is written. A failed record write returns the report together
// with a *models.PartialBatchWriteError.
func (s *IngestService) Ingest(ctx context.Context, r io.Reader, name string) (*models.IngestReport, error) {
	return s.run(ctx, uuid.NewString(), r, name)
}

func (s *IngestService) run(ctx context.Context, ingestID string, r io.Reader, name string) (*models.IngestReport, error) {
	start := time.Now()
	log := s.log.WithFields(logrus.Fields{"ingest_id": ingestID, "source": name})

	table, err := dataset.ReadTable(r, name)
	if err != nil {
		s.fail(ingestID, name, err)
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	res, err := pipeline.Normalize(table, s.cfg.options())
	if err != nil {
		s.fail(ingestID, name, err)
		return nil, err
	}

	for _, w := range res.Warnings {
		metrics.CoercionWarnings.WithLabelValues(string(w.Field)).Inc()
		log.WithField("warning", w.String()).Debug("coercion warning")
	}

	now := s.now().UTC()
	doc := &models.StatsDocument{
		ID:          s.cfg.key(),
		Charts:      pipeline.Aggregate(res.Rows),
		RecordCount: len(res.Rows),
		IngestID:    ingestID,
		UpdatedAt:   now,
	}

	if err := s.stats.PutStats(ctx, doc); err != nil {
		s.fail(ingestID, name, err)
		return nil, fmt.Errorf("persisting stats: %w", err)
	}

	recs := pipeline.BuildRecords(res.Rows, ingestID, now)
	written, werr := s.writeRecipes(ctx, recs)
	metrics.RecipesWritten.Add(float64(written))
	metrics.IngestRows.Add(float64(len(res.Rows)))

	report := &models.IngestReport{
		IngestID:        ingestID,
		Source:          name,
		Rows:            len(res.Rows),
		RecipesWritten:  written,
		CaloriesDerived: res.Resolution.CaloriesDerived,
		Warnings:        pipeline.SummarizeWarnings(res.Warnings, maxWarningSamples),
		DurationMS:      float64(time.Since(start).Microseconds()) / 1000,
		UpdatedAt:       now,
	}

	metrics.IngestDuration.Observe(time.Since(start).Seconds())

	if werr != nil {
		perr := &models.PartialBatchWriteError{Written: written, Total: len(recs), Err: werr}
		s.fail(ingestID, name, perr)
		return report, perr
	}

	metrics.IngestRuns.WithLabelValues("success").Inc()
	log.WithFields(logrus.Fields{
		"rows":             report.Rows,
		"recipes_written":  report.RecipesWritten,
		"warnings":         report.Warnings.Total,
		"calories_derived": report.CaloriesDerived,
		"duration_ms":      report.DurationMS,
	}).Info("ingestion completed")

	publish(s.events, EventIngestCompleted, report)

	return report, nil
}

func (s *IngestService) writeRecipes(ctx context.Context, recs []models.RecipeRecord) (int, error) {
	if bulk, ok := s.recipes.(BulkRecipeWriter); ok {
		return bulk.PutRecipes(ctx, recs)
	}

	for i := range recs {
		if err := s.recipes.PutRecipe(ctx, &recs[i]); err != nil {
			return i, err
		}
	}

	return len(recs), nil
}

func (s *IngestService) fail(ingestID, name string, err error) {
	metrics.IngestRuns.WithLabelValues(failureOutcome(err)).Inc()
	s.log.WithError(err).WithFields(logrus.Fields{"ingest_id": ingestID, "source": name}).Error("ingestion failed")

	publish(s.events, EventIngestFailed, map[string]string{
		"ingest_id": ingestID,
		"source":    name,
		"error":     err.Error(),
	})
}

func failureOutcome(err error) string {
	var schemaErr *models.SchemaResolutionError
	var partialErr *models.PartialBatchWriteError

	switch {
	case errors.As(err, &schemaErr):
		return "schema_error"
	case errors.As(err, &partialErr):
		return "partial_write"
	case errors.Is(err, models.ErrSourceNotFound):
		return "source_not_found"
	default:
		return "failed"
	}
}
