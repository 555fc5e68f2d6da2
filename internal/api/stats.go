package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/dietinsights/internal/models"
)

// StatsHandler serves the aggregate stats endpoints.
type StatsHandler struct {
	svc StatsService
	log *logrus.Logger
}

// NewStatsHandler creates a StatsHandler with the given service and logger.
func NewStatsHandler(svc StatsService, log *logrus.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, log: log}
}

// computeQuery binds the on-demand stats parameters.
type computeQuery struct {
	MinProtein float64 `form:"min_protein" binding:"finite,gte=0"`
	Persist    bool    `form:"persist"`
}

// GetStats handles GET /api/v1/stats. It serves the stored aggregate only.
func (h *StatsHandler) GetStats(c *gin.Context) {
	resp, err := h.svc.GetLatestStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, "stats: get latest", err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": "stats.get"}).Info("audit")

	c.JSON(http.StatusOK, resp)
}

// Compute handles GET /api/v1/stats/compute. It recomputes from the raw
// dataset, optionally filtered by min_protein, and persists when asked.
func (h *StatsHandler) Compute(c *gin.Context) {
	var q computeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "min_protein must be a non-negative number and persist a boolean")

		return
	}

	resp, err := h.svc.ComputeStats(c.Request.Context(), models.ComputeOptions{
		MinProtein: q.MinProtein,
		Persist:    q.Persist,
	})
	if err != nil {
		respondServiceError(c, h.log, "stats: compute", err)

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":      "stats.compute",
		"min_protein": q.MinProtein,
		"persist":     q.Persist,
		"records":     resp.Meta.Records,
	}).Info("audit")

	c.JSON(http.StatusOK, resp)
}
