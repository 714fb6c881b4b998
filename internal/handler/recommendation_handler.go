package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnytics/insights-api/internal/middleware"
	"github.com/learnytics/insights-api/internal/models"
	appErrors "github.com/learnytics/insights-api/pkg/errors"
	"github.com/learnytics/insights-api/pkg/response"
)

type recommender interface {
	Recommend(ctx context.Context, studentID string) (models.Recommendation, error)
}

// RecommendationHandler exposes the per-student recommendation endpoint.
type RecommendationHandler struct {
	recommendations recommender
}

// NewRecommendationHandler constructs the recommendation handler.
func NewRecommendationHandler(recommendations recommender) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations}
}

// Recommend resolves a learning-style recommendation for the student. The
// payload always carries a source tag; an unreachable scoring service is
// answered from the local fallback and is never an error for the caller.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	studentID := c.Param("studentId")
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student id is required"))
		return
	}

	recommendation, err := h.recommendations.Recommend(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, false)
	response.JSON(c, http.StatusOK, recommendation, nil, middleware.ExtractMeta(c))
}
