package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/dietinsights/internal/api"
	"github.com/persistorai/dietinsights/internal/models"
)

func newRecipeRouter(svc api.RecipeSearcher) *gin.Engine {
	r := gin.New()
	h := api.NewRecipeHandler(svc, testLogger())
	r.GET("/recipes", h.Search)

	return r
}

func TestSearchRecipes_Defaults(t *testing.T) {
	t.Parallel()

	var got models.SearchQuery
	svc := &mockSearcher{
		searchFn: func(_ context.Context, q models.SearchQuery) ([]models.RecipeRecord, error) {
			got = q
			return []models.RecipeRecord{}, nil
		},
	}

	w := doRequest(newRecipeRouter(svc), http.MethodGet, "/recipes", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got.Page != 1 || got.Limit != 10 {
		t.Errorf("expected page 1 limit 10, got %+v", got)
	}
	if w.Body.String() != "[]" {
		t.Errorf("expected empty JSON array, got %s", w.Body.String())
	}
}

func TestSearchRecipes_PassesFilters(t *testing.T) {
	t.Parallel()

	var got models.SearchQuery
	svc := &mockSearcher{
		searchFn: func(_ context.Context, q models.SearchQuery) ([]models.RecipeRecord, error) {
			got = q
			return []models.RecipeRecord{
				{ID: "r6", DietType: "paleo", RecipeName: "Chicken Soup"},
			}, nil
		},
	}

	w := doRequest(newRecipeRouter(svc), http.MethodGet, "/recipes?q=chicken&diet=paleo&page=2&limit=5", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	want := models.SearchQuery{Term: "chicken", Diet: "paleo", Page: 2, Limit: 5}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	var body []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body) != 1 || body[0]["recipe_name"] != "Chicken Soup" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestSearchRecipes_MalformedPagination(t *testing.T) {
	t.Parallel()

	svc := &mockSearcher{
		searchFn: func(context.Context, models.SearchQuery) ([]models.RecipeRecord, error) {
			t.Error("service must not be called for malformed pagination")
			return nil, nil
		},
	}

	for _, path := range []string{
		"/recipes?page=abc",
		"/recipes?limit=1.5",
		"/recipes?page=0",
		"/recipes?limit=-3",
	} {
		w := doRequest(newRecipeRouter(svc), http.MethodGet, path, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestSearchRecipes_StoreFailure(t *testing.T) {
	t.Parallel()

	svc := &mockSearcher{
		searchFn: func(context.Context, models.SearchQuery) ([]models.RecipeRecord, error) {
			return nil, models.ErrStoreRead
		},
	}

	w := doRequest(newRecipeRouter(svc), http.MethodGet, "/recipes?q=x", "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
}
