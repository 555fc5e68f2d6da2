package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/dietinsights/internal/api"
	"github.com/persistorai/dietinsights/internal/models"
)

const sampleCSV = "Diet_type,Recipe_name,Protein(g),Carbs(g),Fat(g)\nvegan,Tofu Bowl,20,40,10\n"

func newIngestRouter(svc api.Ingester) *gin.Engine {
	r := gin.New()
	h := api.NewIngestHandler(svc, testLogger())
	r.POST("/ingest", h.Upload)

	return r
}

func TestIngest_RawBody(t *testing.T) {
	t.Parallel()

	var gotName string
	var gotData []byte
	svc := &mockIngester{
		uploadFn: func(_ context.Context, name string, data []byte) (*models.IngestReport, error) {
			gotName, gotData = name, data
			return &models.IngestReport{IngestID: "ing-1", Source: name, Rows: 1, RecipesWritten: 1}, nil
		},
	}

	w := doRequest(newIngestRouter(svc), http.MethodPost, "/ingest?name=../../All_Diets.csv", sampleCSV)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if gotName != "All_Diets.csv" {
		t.Errorf("expected base name All_Diets.csv, got %q", gotName)
	}
	if string(gotData) != sampleCSV {
		t.Errorf("unexpected data %q", gotData)
	}

	var report models.IngestReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if report.IngestID != "ing-1" || report.RecipesWritten != 1 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestIngest_Multipart(t *testing.T) {
	t.Parallel()

	var gotName string
	svc := &mockIngester{
		uploadFn: func(_ context.Context, name string, _ []byte) (*models.IngestReport, error) {
			gotName = name
			return &models.IngestReport{IngestID: "ing-2", Source: name}, nil
		},
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "diets.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(sampleCSV)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/ingest", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	newIngestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if gotName != "diets.csv" {
		t.Errorf("expected form file name, got %q", gotName)
	}
}

func TestIngest_EmptyBody(t *testing.T) {
	t.Parallel()

	svc := &mockIngester{
		uploadFn: func(context.Context, string, []byte) (*models.IngestReport, error) {
			t.Error("service must not be called for an empty body")
			return nil, nil
		},
	}

	w := doRequest(newIngestRouter(svc), http.MethodPost, "/ingest", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestIngest_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"schema", &models.SchemaResolutionError{Field: models.FieldProtein}, http.StatusUnprocessableEntity, api.ErrCodeSchemaError},
		{"partial", &models.PartialBatchWriteError{Written: 500, Total: 1200, Err: models.ErrStoreWrite}, http.StatusInternalServerError, api.ErrCodePartialWrite},
		{"unsupported", models.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, api.ErrCodeUnsupported},
		{"store", errors.Join(models.ErrStoreWrite, errors.New("down")), http.StatusInternalServerError, api.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockIngester{
				uploadFn: func(context.Context, string, []byte) (*models.IngestReport, error) {
					return &models.IngestReport{}, tt.err
				},
			}

			w := doRequest(newIngestRouter(svc), http.MethodPost, "/ingest", sampleCSV)

			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}

			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["code"] != tt.wantErr {
				t.Errorf("expected code %q, got %v", tt.wantErr, body["code"])
			}
		})
	}
}

func TestIngest_SchemaErrorNamesField(t *testing.T) {
	t.Parallel()

	svc := &mockIngester{
		uploadFn: func(context.Context, string, []byte) (*models.IngestReport, error) {
			return nil, &models.SchemaResolutionError{Field: models.FieldProtein}
		},
	}

	w := doRequest(newIngestRouter(svc), http.MethodPost, "/ingest", sampleCSV)

	if !bytes.Contains(w.Body.Bytes(), []byte("protein_g")) {
		t.Errorf("expected error to name protein_g, got %s", w.Body.String())
	}
}
