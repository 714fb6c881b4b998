package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/learnytics/insights-api/internal/dto"
	"github.com/learnytics/insights-api/internal/middleware"
	"github.com/learnytics/insights-api/internal/models"
	appErrors "github.com/learnytics/insights-api/pkg/errors"
	"github.com/learnytics/insights-api/pkg/response"
)

type insightsProvider interface {
	Summary(ctx context.Context, filter models.ActivityFilter) (models.InsightsSummary, bool, error)
	KPI(ctx context.Context, filter models.ActivityFilter) (models.KPISummary, bool, error)
	Trend(ctx context.Context, filter models.ActivityFilter) ([]models.TrendPoint, bool, error)
	ModulePerformance(ctx context.Context, filter models.ActivityFilter) ([]models.ModulePerformance, bool, error)
	CompletionStatus(ctx context.Context, filter models.ActivityFilter) ([]models.CompletionStatus, bool, error)
	Leaderboard(ctx context.Context, module string, limit int) ([]models.LeaderboardEntry, int, bool, error)
	StudentDetail(ctx context.Context, studentID string) (models.StudentDetail, bool, error)
	SystemMetrics() models.SystemMetrics
}

// InsightsHandler exposes the dashboard aggregation endpoints.
type InsightsHandler struct {
	insights insightsProvider
}

// NewInsightsHandler constructs the insights handler.
func NewInsightsHandler(insights insightsProvider) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

// Summary returns the combined KPI/trend/module/completion payload.
func (h *InsightsHandler) Summary(c *gin.Context) {
	filter, err := parseActivityFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, cacheHit, err := h.insights.Summary(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, summary, cacheHit)
}

// KPI returns the headline figures.
func (h *InsightsHandler) KPI(c *gin.Context) {
	filter, err := parseActivityFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	kpi, cacheHit, err := h.insights.KPI(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, kpi, cacheHit)
}

// Trend returns the per-date average score series.
func (h *InsightsHandler) Trend(c *gin.Context) {
	filter, err := parseActivityFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	trend, cacheHit, err := h.insights.Trend(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, trend, cacheHit)
}

// Modules returns the per-module performance breakdown.
func (h *InsightsHandler) Modules(c *gin.Context) {
	filter, err := parseActivityFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	performance, cacheHit, err := h.insights.ModulePerformance(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, performance, cacheHit)
}

// Completion returns the completion-status buckets.
func (h *InsightsHandler) Completion(c *gin.Context) {
	filter, err := parseActivityFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	statuses, cacheHit, err := h.insights.CompletionStatus(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, statuses, cacheHit)
}

// Leaderboard returns the ranked student list with optional module and
// limit query parameters.
func (h *InsightsHandler) Leaderboard(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, total, cacheHit, err := h.insights.Leaderboard(c.Request.Context(), c.Query("module"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, dto.LeaderboardResponse{Leaderboard: entries, Total: total}, cacheHit)
}

// Student returns the per-student drill-down.
func (h *InsightsHandler) Student(c *gin.Context) {
	studentID := c.Param("studentId")
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student id is required"))
		return
	}
	detail, cacheHit, err := h.insights.StudentDetail(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, detail, cacheHit)
}

// System returns instrumentation metric snapshots.
func (h *InsightsHandler) System(c *gin.Context) {
	metrics := h.insights.SystemMetrics()
	respondWithMeta(c, metrics, false)
}

func respondWithMeta(c *gin.Context, data interface{}, cacheHit bool) {
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}

func parseActivityFilter(c *gin.Context) (models.ActivityFilter, error) {
	filter := models.ActivityFilter{
		Module:    c.Query("module"),
		StudentID: c.Query("student_id"),
		Search:    c.Query("search"),
	}
	if raw := c.Query("start"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid start parameter")
		}
		filter.Start = &parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid end parameter")
		}
		filter.End = &parsed
	}
	return filter, nil
}

func parseDateParam(raw string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", raw)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid limit parameter")
	}
	return limit, nil
}
