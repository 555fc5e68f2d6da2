package api

import (
	"math"
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("finite", validateFinite) //nolint:errcheck // tag name is valid.
	}
}

// validateFinite rejects NaN and infinite floats.
func validateFinite(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Float32 && field.Kind() != reflect.Float64 {
		return true
	}

	f := field.Float()

	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
