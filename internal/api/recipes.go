package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/dietinsights/internal/models"
)

// maxSearchQueryLen caps the length of search query strings.
const maxSearchQueryLen = 2000

// RecipeHandler serves the recipe search endpoint.
type RecipeHandler struct {
	svc RecipeSearcher
	log *logrus.Logger
}

// NewRecipeHandler creates a RecipeHandler with the given service and logger.
func NewRecipeHandler(svc RecipeSearcher, log *logrus.Logger) *RecipeHandler {
	return &RecipeHandler{svc: svc, log: log}
}

// searchQuery binds the recipe search parameters. Non-integer or
// non-positive page and limit fail binding.
type searchQuery struct {
	Q     string `form:"q" binding:"max=2000"`
	Diet  string `form:"diet" binding:"max=255"`
	Page  int    `form:"page,default=1" binding:"min=1"`
	Limit int    `form:"limit,default=10" binding:"min=1"`
}

// Search handles GET /api/v1/recipes.
func (h *RecipeHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "page and limit must be positive integers")

		return
	}

	recs, err := h.svc.Search(c.Request.Context(), models.SearchQuery{
		Term:  q.Q,
		Diet:  q.Diet,
		Page:  q.Page,
		Limit: q.Limit,
	})
	if err != nil {
		respondServiceError(c, h.log, "recipes: search", err)

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":  "recipes.search",
		"page":    q.Page,
		"limit":   q.Limit,
		"results": len(recs),
	}).Info("audit")

	c.JSON(http.StatusOK, recs)
}
