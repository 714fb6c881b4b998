package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/learnytics/insights-api/internal/models"
	appErrors "github.com/learnytics/insights-api/pkg/errors"
)

// ActivitySource abstracts where the activity snapshot comes from: the
// database view or the file-backed store. Implementations may push filters
// down; the canonical filtering always happens in memory afterwards.
type ActivitySource interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityRecord, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ActivityRecord, error)
}

// InsightsService fetches the record snapshot, applies filters and runs the
// aggregation core. A short-lived cache fronts the snapshot fetch so bursts
// of dashboard loads do not refetch the same data.
type InsightsService struct {
	source     ActivitySource
	sourceName string
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewInsightsService constructs an insights service. sourceName labels the
// snapshot source in metrics ("database" or "file").
func NewInsightsService(source ActivitySource, sourceName string, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *InsightsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightsService{source: source, sourceName: sourceName, cache: cache, metrics: metrics, logger: logger}
}

// Summary returns the combined dashboard payload. The boolean reports
// whether the snapshot came from cache.
func (s *InsightsService) Summary(ctx context.Context, filter models.ActivityFilter) (models.InsightsSummary, bool, error) {
	records, hit, err := s.snapshot(ctx)
	if err != nil {
		return models.InsightsSummary{}, false, err
	}
	return ComputeSummary(FilterRecords(records, filter)), hit, nil
}

// KPI returns the headline figures for the filtered snapshot.
func (s *InsightsService) KPI(ctx context.Context, filter models.ActivityFilter) (models.KPISummary, bool, error) {
	records, hit, err := s.snapshot(ctx)
	if err != nil {
		return models.KPISummary{}, false, err
	}
	return ComputeKPI(FilterRecords(records, filter)), hit, nil
}

// Trend returns the per-date average score series.
func (s *InsightsService) Trend(ctx context.Context, filter models.ActivityFilter) ([]models.TrendPoint, bool, error) {
	records, hit, err := s.snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	return ComputeTrend(FilterRecords(records, filter)), hit, nil
}

// ModulePerformance returns the per-module score breakdown.
func (s *InsightsService) ModulePerformance(ctx context.Context, filter models.ActivityFilter) ([]models.ModulePerformance, bool, error) {
	records, hit, err := s.snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	return ComputeModulePerformance(FilterRecords(records, filter)), hit, nil
}

// CompletionStatus returns the three fixed completion buckets.
func (s *InsightsService) CompletionStatus(ctx context.Context, filter models.ActivityFilter) ([]models.CompletionStatus, bool, error) {
	records, hit, err := s.snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	return ComputeCompletionStatus(FilterRecords(records, filter)), hit, nil
}

// Leaderboard ranks students over the optionally module-filtered snapshot.
// The returned total is the number of distinct students before the limit.
func (s *InsightsService) Leaderboard(ctx context.Context, module string, limit int) ([]models.LeaderboardEntry, int, bool, error) {
	records, hit, err := s.snapshot(ctx)
	if err != nil {
		return nil, 0, false, err
	}
	entries, total := BuildLeaderboard(FilterRecords(records, models.ActivityFilter{Module: module}), limit)
	return entries, total, hit, nil
}

// StudentDetail returns the drill-down payload for one student, or
// ErrStudentNotFound when the student has no activity.
func (s *InsightsService) StudentDetail(ctx context.Context, studentID string) (models.StudentDetail, bool, error) {
	cacheKey := makeInsightsCacheKey("student", studentID)
	var cached models.StudentDetail
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	records, err := s.source.ListByStudent(ctx, studentID)
	if err != nil {
		return models.StudentDetail{}, false, fmt.Errorf("fetch student records: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveSnapshotFetch(s.sourceName, time.Since(start))
	}
	if len(records) == 0 {
		return models.StudentDetail{}, false, appErrors.ErrStudentNotFound
	}

	detail := BuildStudentDetail(records)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, detail, 0); err != nil {
			s.logger.Warn("cache student detail", zap.Error(err))
		}
	}
	return detail, false, nil
}

// SystemMetrics returns the instrumentation snapshot.
func (s *InsightsService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{}
	}
	return s.metrics.Snapshot()
}

func (s *InsightsService) snapshot(ctx context.Context) ([]models.ActivityRecord, bool, error) {
	cacheKey := makeInsightsCacheKey("records")
	var cached []models.ActivityRecord
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get snapshot cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	records, err := s.source.List(ctx, models.ActivityFilter{})
	if err != nil {
		return nil, false, fmt.Errorf("fetch snapshot: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveSnapshotFetch(s.sourceName, time.Since(start))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, records, 0); err != nil {
			s.logger.Warn("cache snapshot", zap.Error(err))
		}
	}
	return records, false, nil
}

func makeInsightsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.WriteString("insights")
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}
