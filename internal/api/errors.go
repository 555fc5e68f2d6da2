package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/dietinsights/internal/httputil"
	"github.com/persistorai/dietinsights/internal/metrics"
	"github.com/persistorai/dietinsights/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeInternalError  = "internal_error"
	ErrCodeSchemaError    = "schema_error"
	ErrCodePartialWrite   = "partial_write"
	ErrCodeUnsupported    = "unsupported_format"
)

// MsgStatsNotFound tells the caller how to get a first aggregate computed.
const MsgStatsNotFound = "No stats found. Please upload the dataset to trigger processing."

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondServiceError maps a service error onto the HTTP error taxonomy.
// Store failures are logged with op and never echoed to the caller.
func respondServiceError(c *gin.Context, log *logrus.Logger, op string, err error) {
	var schemaErr *models.SchemaResolutionError
	var partialErr *models.PartialBatchWriteError

	switch {
	case errors.Is(err, models.ErrStatsNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, MsgStatsNotFound)
	case errors.Is(err, models.ErrSourceNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "source dataset not found")
	case errors.As(err, &schemaErr):
		respondError(c, http.StatusUnprocessableEntity, ErrCodeSchemaError,
			fmt.Sprintf("no column found for required field %s", schemaErr.Field))
	case errors.As(err, &partialErr):
		log.WithError(err).Error(op)
		respondError(c, http.StatusInternalServerError, ErrCodePartialWrite,
			fmt.Sprintf("%d of %d recipes written before failure", partialErr.Written, partialErr.Total))
	case errors.Is(err, models.ErrEmptyDataset):
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "dataset is empty")
	case errors.Is(err, models.ErrUnsupportedFormat):
		respondError(c, http.StatusUnsupportedMediaType, ErrCodeUnsupported, "dataset must be CSV or XLSX")
	case errors.Is(err, models.ErrInvalidSearch),
		errors.Is(err, models.ErrInvalidFilter),
		errors.Is(err, models.ErrPersistFiltered):
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
	default:
		log.WithError(err).Error(op)
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
