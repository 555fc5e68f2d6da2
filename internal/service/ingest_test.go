package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/persistorai/dietinsights/internal/models"
	"github.com/persistorai/dietinsights/internal/pipeline"
)

func TestIngestService_Ingest(t *testing.T) {
	stats := &mockStatsStore{}
	recipes := &mockRecipeStore{}
	events := &mockPublisher{}
	svc := NewIngestService(stats, recipes, events, nil, PipelineConfig{}, testLogger())

	report, err := svc.Ingest(context.Background(), strings.NewReader(veganCSV), "All_Diets.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stats.put) != 1 {
		t.Fatalf("expected 1 PutStats, got %d", len(stats.put))
	}

	doc := stats.put[0]
	if doc.ID != models.DefaultStatsKey {
		t.Errorf("key = %q, want %q", doc.ID, models.DefaultStatsKey)
	}
	want := models.MacroAverage{DietType: "vegan", ProteinG: 20, CarbsG: 15, FatG: 5}
	if len(doc.MacrosByDiet) != 1 || doc.MacrosByDiet[0] != want {
		t.Errorf("macros = %+v, want [%+v]", doc.MacrosByDiet, want)
	}
	if len(doc.CaloriesByDiet) != 1 || doc.CaloriesByDiet[0].Calories != 185 {
		t.Errorf("calories = %+v, want 185", doc.CaloriesByDiet)
	}
	if len(doc.Trend) != 2 || doc.Trend[1].Index != 1 || doc.Trend[1].ProteinG != 30 {
		t.Errorf("unexpected trend %+v", doc.Trend)
	}

	if len(recipes.written) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes.written))
	}
	for _, r := range recipes.written {
		if r.IngestID != report.IngestID || r.IngestID != doc.IngestID {
			t.Errorf("recipe ingest id %q, report %q, doc %q", r.IngestID, report.IngestID, doc.IngestID)
		}
	}

	if report.Rows != 2 || report.RecipesWritten != 2 {
		t.Errorf("report rows=%d written=%d", report.Rows, report.RecipesWritten)
	}
	if len(events.events) != 1 || events.events[0] != EventIngestCompleted {
		t.Errorf("events = %v", events.events)
	}

	var published models.IngestReport
	if err := json.Unmarshal(events.data[0], &published); err != nil || published.IngestID != report.IngestID {
		t.Errorf("published report %+v (err %v)", published, err)
	}
}

func TestIngestService_DerivesMissingCaloriesColumn(t *testing.T) {
	stats := &mockStatsStore{}
	svc := NewIngestService(stats, &mockRecipeStore{}, nil, nil, PipelineConfig{}, testLogger())

	body := "Diet_type,Protein(g),Carbs(g),Fat(g)\nketo,10,0,10\n"
	report, err := svc.Ingest(context.Background(), strings.NewReader(body), "d.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.CaloriesDerived {
		t.Error("expected calories to be derived")
	}
	if got := stats.put[0].CaloriesByDiet[0].Calories; got != 130 {
		t.Errorf("calories = %v, want 130", got)
	}
}

func TestIngestService_SchemaErrorWritesNothing(t *testing.T) {
	stats := &mockStatsStore{}
	recipes := &mockRecipeStore{}
	events := &mockPublisher{}
	svc := NewIngestService(stats, recipes, events, nil, PipelineConfig{}, testLogger())

	_, err := svc.Ingest(context.Background(), strings.NewReader("diet,carbs,fat\nvegan,1,2\n"), "d.csv")

	var schemaErr *models.SchemaResolutionError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaResolutionError, got %v", err)
	}
	if schemaErr.Field != models.FieldProtein {
		t.Errorf("field = %q, want %q", schemaErr.Field, models.FieldProtein)
	}
	if len(stats.calls) != 0 || len(recipes.written) != 0 {
		t.Errorf("expected no writes, got stats=%v recipes=%d", stats.calls, len(recipes.written))
	}
	if len(events.events) != 1 || events.events[0] != EventIngestFailed {
		t.Errorf("events = %v", events.events)
	}
}

func TestIngestService_StatsWriteFailure(t *testing.T) {
	stats := &mockStatsStore{
		putStats: func(context.Context, *models.StatsDocument) error { return models.ErrStoreWrite },
	}
	recipes := &mockRecipeStore{}
	svc := NewIngestService(stats, recipes, nil, nil, PipelineConfig{}, testLogger())

	_, err := svc.Ingest(context.Background(), strings.NewReader(veganCSV), "d.csv")
	if !errors.Is(err, models.ErrStoreWrite) {
		t.Fatalf("expected ErrStoreWrite, got %v", err)
	}
	if len(recipes.written) != 0 {
		t.Errorf("expected no recipes after stats failure, got %d", len(recipes.written))
	}
}

func TestIngestService_PartialWrites(t *testing.T) {
	body := "diet,protein,carbs,fat\na,1,1,1\nb,2,2,2\nc,3,3,3\n"

	t.Run("bulk writer", func(t *testing.T) {
		bulk := &mockBulkStore{
			putRecipes: func(_ context.Context, recs []models.RecipeRecord) (int, error) {
				return 1, errors.New("connection reset")
			},
		}
		svc := NewIngestService(&mockStatsStore{}, bulk, nil, nil, PipelineConfig{}, testLogger())

		report, err := svc.Ingest(context.Background(), strings.NewReader(body), "d.csv")

		var perr *models.PartialBatchWriteError
		if !errors.As(err, &perr) {
			t.Fatalf("expected PartialBatchWriteError, got %v", err)
		}
		if perr.Written != 1 || perr.Total != 3 {
			t.Errorf("written=%d total=%d, want 1/3", perr.Written, perr.Total)
		}
		if report == nil || report.RecipesWritten != 1 {
			t.Errorf("unexpected report %+v", report)
		}
		if bulk.bulkCalls != 1 || len(bulk.written) != 0 {
			t.Errorf("expected bulk path only, bulk=%d single=%d", bulk.bulkCalls, len(bulk.written))
		}
	})

	t.Run("per-record writer", func(t *testing.T) {
		recipes := &mockRecipeStore{
			putRecipe: func(_ context.Context, rec *models.RecipeRecord) error {
				if rec.DietType == "c" {
					return models.ErrStoreWrite
				}
				return nil
			},
		}
		svc := NewIngestService(&mockStatsStore{}, recipes, nil, nil, PipelineConfig{}, testLogger())

		_, err := svc.Ingest(context.Background(), strings.NewReader(body), "d.csv")

		var perr *models.PartialBatchWriteError
		if !errors.As(err, &perr) || perr.Written != 2 {
			t.Fatalf("expected 2 written before failure, got %v", err)
		}
		if !errors.Is(err, models.ErrStoreWrite) {
			t.Error("partial error should unwrap to the store error")
		}
	})
}

func TestIngestService_ExcludePolicy(t *testing.T) {
	stats := &mockStatsStore{}
	cfg := PipelineConfig{StatsKey: "custom", Policy: pipeline.Exclude}
	svc := NewIngestService(stats, &mockRecipeStore{}, nil, nil, cfg, testLogger())

	body := "diet,protein,carbs,fat\nvegan,10,1,1\nvegan,n/a,1,1\n"
	report, err := svc.Ingest(context.Background(), strings.NewReader(body), "d.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.put[0].ID != "custom" {
		t.Errorf("key = %q, want custom", stats.put[0].ID)
	}
	if got := stats.put[0].MacrosByDiet[0].ProteinG; got != 10 {
		t.Errorf("protein mean = %v, want 10", got)
	}
	if report.Warnings.Total != 1 || report.Warnings.ByField[models.FieldProtein] != 1 {
		t.Errorf("warnings = %+v", report.Warnings)
	}
}

func TestIngestService_IngestUpload(t *testing.T) {
	archiver := &mockArchiver{err: errors.New("read-only fs")}
	svc := NewIngestService(&mockStatsStore{}, &mockRecipeStore{}, nil, archiver, PipelineConfig{}, testLogger())

	report, err := svc.IngestUpload(context.Background(), "upload.csv", []byte(veganCSV))
	if err != nil {
		t.Fatalf("archive failure must not fail ingestion: %v", err)
	}
	if len(archiver.ids) != 1 || archiver.ids[0] != report.IngestID {
		t.Errorf("archived ids %v, report id %q", archiver.ids, report.IngestID)
	}
}

func TestIngestService_IngestSource(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		src := &stringSource{body: veganCSV, name: "All_Diets.csv"}
		svc := NewIngestService(&mockStatsStore{}, &mockRecipeStore{}, nil, nil, PipelineConfig{}, testLogger())

		report, err := svc.IngestSource(context.Background(), src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Source != "All_Diets.csv" {
			t.Errorf("source = %q", report.Source)
		}
	})

	t.Run("missing source", func(t *testing.T) {
		src := &stringSource{err: models.ErrSourceNotFound}
		stats := &mockStatsStore{}
		svc := NewIngestService(stats, &mockRecipeStore{}, nil, nil, PipelineConfig{}, testLogger())

		if _, err := svc.IngestSource(context.Background(), src); !errors.Is(err, models.ErrSourceNotFound) {
			t.Fatalf("expected ErrSourceNotFound, got %v", err)
		}
		if len(stats.calls) != 0 {
			t.Errorf("unexpected store calls %v", stats.calls)
		}
	})
}
