package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/dietinsights/internal/models"
)

func TestResolve(t *testing.T) {
	t.Run("Should match aliases regardless of case and whitespace", func(t *testing.T) {
		headers := []string{"  Diet_Type ", "Recipe_name", "Cuisine_type", "PROTEIN(G)", " Carbs(g)", "Fat(g) ", "Extraction_day"}
		res, err := Resolve(headers, nil)
		require.NoError(t, err)

		assert.Equal(t, 0, res.Columns[models.FieldDietType])
		assert.Equal(t, 1, res.Columns[models.FieldRecipeName])
		assert.Equal(t, 2, res.Columns[models.FieldCuisineType])
		assert.Equal(t, 3, res.Columns[models.FieldProtein])
		assert.Equal(t, 4, res.Columns[models.FieldCarbs])
		assert.Equal(t, 5, res.Columns[models.FieldFat])
		assert.True(t, res.CaloriesDerived)
	})

	t.Run("Should prefer the first alias in priority order", func(t *testing.T) {
		headers := []string{"carbs", "carbohydrates", "protein", "fat", "diet"}
		res, err := Resolve(headers, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Columns[models.FieldCarbs])
		assert.Equal(t, 4, res.Columns[models.FieldDietType])
	})

	t.Run("Should pick the leftmost header when names collide", func(t *testing.T) {
		headers := []string{"Protein", "protein ", "carbs", "fat"}
		res, err := Resolve(headers, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Columns[models.FieldProtein])
	})

	t.Run("Should resolve a calories column when present", func(t *testing.T) {
		headers := []string{"protein", "carbs", "fat", "KCAL"}
		res, err := Resolve(headers, nil)
		require.NoError(t, err)
		assert.False(t, res.CaloriesDerived)
		assert.Equal(t, 3, res.Columns[models.FieldCalories])
	})

	t.Run("Should strip a byte order mark from the first header", func(t *testing.T) {
		headers := []string{"\ufeffdiet", "protein", "carbs", "fat"}
		res, err := Resolve(headers, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Columns[models.FieldDietType])
	})

	t.Run("Should leave diet unresolved without failing", func(t *testing.T) {
		res, err := Resolve([]string{"protein", "carbs", "fat"}, nil)
		require.NoError(t, err)
		_, ok := res.Column(models.FieldDietType)
		assert.False(t, ok)
	})

	t.Run("Should name protein_g when no protein alias matches", func(t *testing.T) {
		_, err := Resolve([]string{"diet", "carbs", "fat", "calories"}, nil)
		require.Error(t, err)

		var schemaErr *models.SchemaResolutionError
		require.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, models.FieldProtein, schemaErr.Field)
		assert.Contains(t, err.Error(), "protein_g")
	})

	t.Run("Should honor a custom alias table", func(t *testing.T) {
		aliases := DefaultAliases()
		aliases[models.FieldProtein] = []string{"eiweiss"}
		res, err := Resolve([]string{"Eiweiss", "carbs", "fat"}, aliases)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Columns[models.FieldProtein])
	})
}

func TestParseCoercionPolicy(t *testing.T) {
	p, err := ParseCoercionPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ZeroFill, p)

	p, err = ParseCoercionPolicy(" EXCLUDE ")
	require.NoError(t, err)
	assert.Equal(t, Exclude, p)

	_, err = ParseCoercionPolicy("nan")
	assert.Error(t, err)
}
