package pipeline

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/persistorai/dietinsights/internal/models"
)

type dietGroup struct {
	protein, carbs, fat, calories float64
	nProtein, nCarbs, nFat        int
	trend                         []models.TrendPoint
}

func (g *dietGroup) add(r *models.CanonicalRow) {
	if !r.Missing.Has(models.MissingProtein) {
		g.protein += r.ProteinG
		g.nProtein++
	}
	if !r.Missing.Has(models.MissingCarbs) {
		g.carbs += r.CarbsG
		g.nCarbs++
	}
	if !r.Missing.Has(models.MissingFat) {
		g.fat += r.FatG
		g.nFat++
	}
	g.calories += r.Calories

	g.trend = append(g.trend, models.TrendPoint{
		DietType: r.DietType,
		Index:    len(g.trend),
		ProteinG: r.ProteinG,
		CarbsG:   r.CarbsG,
	})
}

// Aggregate groups rows by diet type and returns per-diet macro means,
// calorie means and the per-row trend series. Groups are ordered by diet
// type; trend points are ordered by diet type then index. Empty input
// yields three empty slices.
func Aggregate(rows []models.CanonicalRow) models.Charts {
	groups := make(map[string]*dietGroup)
	for i := range rows {
		g, ok := groups[rows[i].DietType]
		if !ok {
			g = &dietGroup{}
			groups[rows[i].DietType] = g
		}
		g.add(&rows[i])
	}

	diets := make([]string, 0, len(groups))
	for d := range groups {
		diets = append(diets, d)
	}
	sort.Strings(diets)

	charts := models.Charts{
		MacrosByDiet:   make([]models.MacroAverage, 0, len(diets)),
		CaloriesByDiet: make([]models.CalorieAverage, 0, len(diets)),
		Trend:          make([]models.TrendPoint, 0, len(rows)),
	}

	for _, d := range diets {
		g := groups[d]
		charts.MacrosByDiet = append(charts.MacrosByDiet, models.MacroAverage{
			DietType: d,
			ProteinG: mean(g.protein, g.nProtein),
			CarbsG:   mean(g.carbs, g.nCarbs),
			FatG:     mean(g.fat, g.nFat),
		})
		charts.CaloriesByDiet = append(charts.CaloriesByDiet, models.CalorieAverage{
			DietType: d,
			Calories: mean(g.calories, len(g.trend)),
		})
		charts.Trend = append(charts.Trend, g.trend...)
	}

	return charts
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// BuildRecords turns canonical rows into recipe records for one ingestion run.
func BuildRecords(rows []models.CanonicalRow, ingestID string, now time.Time) []models.RecipeRecord {
	records := make([]models.RecipeRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, models.RecipeRecord{
			ID:              uuid.NewString(),
			IngestID:        ingestID,
			RowIndex:        r.Index,
			DietType:        r.DietType,
			RecipeName:      r.RecipeName,
			CuisineType:     r.CuisineType,
			ProteinG:        r.ProteinG,
			CarbsG:          r.CarbsG,
			FatG:            r.FatG,
			Calories:        r.Calories,
			CaloriesDerived: r.CaloriesDerived,
			CreatedAt:       now,
		})
	}
	return records
}

// SummarizeWarnings counts warnings per field and keeps the first few as samples.
func SummarizeWarnings(warnings []models.CoercionWarning, maxSamples int) models.WarningSummary {
	sum := models.WarningSummary{Total: len(warnings)}
	if len(warnings) == 0 {
		return sum
	}

	sum.ByField = make(map[models.Field]int)
	for _, w := range warnings {
		sum.ByField[w.Field]++
	}

	if maxSamples > len(warnings) {
		maxSamples = len(warnings)
	}
	sum.Samples = append([]models.CoercionWarning(nil), warnings[:maxSamples]...)

	return sum
}
