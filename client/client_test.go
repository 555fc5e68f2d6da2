package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(srv.URL, WithTimeout(5*time.Second), WithRetries(0))
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "0.3.0", StoreBackend: "sqlite"})
		},
	})
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("got status %q, want ok", resp.Status)
	}
	if resp.StoreBackend != "sqlite" {
		t.Errorf("got backend %q, want sqlite", resp.StoreBackend)
	}
}

func TestReady_NotReady(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/ready": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 503, ReadyResponse{Status: "not_ready", Checks: map[string]string{"store": "error"}})
		},
	})
	_, err := c.Ready(context.Background())
	if err == nil {
		t.Fatal("expected error for 503")
	}
}

func TestStatsGet(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/stats": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, StatsResponse{
				Meta: StatsMeta{Records: "Cached", Msg: "Served from the processed result store"},
				Charts: Charts{
					MacrosByDiet: []MacroAverage{{DietType: "keto", ProteinG: 30, CarbsG: 5, FatG: 40}},
				},
			})
		},
	})
	resp, err := c.Stats.Get(context.Background())
	if err != nil {
		t.Fatalf("Stats.Get() error: %v", err)
	}
	if resp.Meta.Records != "Cached" {
		t.Errorf("got records %v, want Cached", resp.Meta.Records)
	}
	if len(resp.Charts.MacrosByDiet) != 1 || resp.Charts.MacrosByDiet[0].DietType != "keto" {
		t.Errorf("unexpected charts %+v", resp.Charts)
	}
}

func TestStatsGet_NotFound(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/stats": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]string{
				"code":       "not_found",
				"error":      "No stats found. Please upload the dataset to trigger processing.",
				"request_id": "rid-1",
			})
		},
	})
	_, err := c.Stats.Get(context.Background())
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got: %v", err)
	}
	if !strings.Contains(err.Error(), "upload the dataset") || !strings.Contains(err.Error(), "rid-1") {
		t.Errorf("error should carry message and request id: %v", err)
	}
}

func TestStatsCompute(t *testing.T) {
	var gotQuery string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/stats/compute": func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			jsonResponse(w, 200, StatsResponse{Meta: StatsMeta{Records: 42, Filters: &StatsFilters{MinProtein: 10}}})
		},
	})
	resp, err := c.Stats.Compute(context.Background(), ComputeOptions{MinProtein: 10})
	if err != nil {
		t.Fatalf("Stats.Compute() error: %v", err)
	}
	if gotQuery != "min_protein=10" {
		t.Errorf("got query %q, want min_protein=10", gotQuery)
	}
	if resp.Meta.Records != float64(42) {
		t.Errorf("got records %v, want 42", resp.Meta.Records)
	}
}

func TestRecipesSearch(t *testing.T) {
	var gotQuery string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/recipes": func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			jsonResponse(w, 200, []RecipeRecord{{ID: "r1", RecipeName: "Chicken Curry", DietType: "paleo"}})
		},
	})
	recs, err := c.Recipes.Search(context.Background(), "chicken", &SearchOptions{Diet: "paleo", Page: 2, Limit: 5})
	if err != nil {
		t.Fatalf("Recipes.Search() error: %v", err)
	}
	if gotQuery != "diet=paleo&limit=5&page=2&q=chicken" {
		t.Errorf("got query %q", gotQuery)
	}
	if len(recs) != 1 || recs[0].RecipeName != "Chicken Curry" {
		t.Errorf("unexpected recipes %+v", recs)
	}
}

func TestRecipesSearch_EmptyIsNonNil(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/recipes": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, []RecipeRecord{})
		},
	})
	recs, err := c.Recipes.Search(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("Recipes.Search() error: %v", err)
	}
	if recs == nil {
		t.Error("expected non-nil empty slice")
	}
}

func TestIngestUpload(t *testing.T) {
	const csv = "Diet_type,Protein(g),Carbs(g),Fat(g)\nvegan,10,20,5\n"
	var gotName, gotBody string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/ingest": func(w http.ResponseWriter, r *http.Request) {
			f, fh, err := r.FormFile("file")
			if err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
			defer f.Close()
			data, _ := io.ReadAll(f)
			gotName, gotBody = fh.Filename, string(data)
			jsonResponse(w, 201, IngestReport{IngestID: "ing-1", Source: fh.Filename, Rows: 1, RecipesWritten: 1})
		},
	})
	report, err := c.Ingest.Upload(context.Background(), "All_Diets.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Ingest.Upload() error: %v", err)
	}
	if gotName != "All_Diets.csv" || gotBody != csv {
		t.Errorf("server got %q / %q", gotName, gotBody)
	}
	if report.IngestID != "ing-1" || report.RecipesWritten != 1 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestIngestUpload_SchemaError(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/ingest": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 422, map[string]string{"code": "schema_error", "error": "no column found for required field protein_g"})
		},
	})
	_, err := c.Ingest.Upload(context.Background(), "bad.csv", strings.NewReader("a,b\n1,2\n"))
	if !IsSchemaError(err) {
		t.Errorf("expected schema error, got: %v", err)
	}
}

func TestRetriesServerErrorsOnGet(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		jsonResponse(w, 200, HealthResponse{Status: "ok"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, WithRetries(3))
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" || calls.Load() != 3 {
		t.Errorf("got status %q after %d calls", resp.Status, calls.Load())
	}
}

func TestAPIError_NonJSONBody(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/stats": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		},
	})
	_, err := c.Stats.Get(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "upstream exploded") {
		t.Errorf("expected raw body in error, got %v", err)
	}
	if IsNotFound(err) || IsRateLimited(err) {
		t.Errorf("misclassified error: %v", err)
	}
}
