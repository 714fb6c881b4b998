package service

import (
	"math"
	"sort"
	"strings"

	"github.com/learnytics/insights-api/internal/models"
)

// The aggregation core. Every function here is a pure transformation over a
// filtered snapshot; empty input always yields empty (or zeroed) output and
// never an error.

// FilterRecords applies the optional predicates of the filter to the
// snapshot. Date bounds are inclusive, module and student id are exact
// matches, and search is a case-insensitive substring match against the
// student name or student id.
func FilterRecords(records []models.ActivityRecord, filter models.ActivityFilter) []models.ActivityRecord {
	if filter.IsZero() {
		return records
	}
	search := strings.ToLower(filter.Search)
	filtered := make([]models.ActivityRecord, 0, len(records))
	for _, r := range records {
		if filter.Start != nil && r.Date.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && r.Date.After(*filter.End) {
			continue
		}
		if filter.Module != "" && r.Module != filter.Module {
			continue
		}
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.StudentName), search) &&
			!strings.Contains(strings.ToLower(r.StudentID), search) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// ComputeKPI derives the headline figures. Averages are rounded to the
// nearest integer; the completion rate stays a fraction.
func ComputeKPI(records []models.ActivityRecord) models.KPISummary {
	if len(records) == 0 {
		return models.KPISummary{}
	}

	students := make(map[string]struct{}, len(records))
	var scoreSum, timeSum, completedCount int
	for _, r := range records {
		students[r.StudentID] = struct{}{}
		scoreSum += r.Score
		timeSum += r.DurationMinutes
		if r.Completed {
			completedCount++
		}
	}

	total := float64(len(records))
	return models.KPISummary{
		TotalStudents:  len(students),
		AvgScore:       int(math.Round(float64(scoreSum) / total)),
		CompletionRate: float64(completedCount) / total,
		AvgTimeSpent:   int(math.Round(float64(timeSum) / total)),
	}
}

// ComputeTrend buckets scores by calendar date and averages each bucket.
// Points are ordered ascending by date; one point per distinct date.
func ComputeTrend(records []models.ActivityRecord) []models.TrendPoint {
	type bucket struct {
		sum   int
		count int
	}
	buckets := make(map[string]*bucket)
	for _, r := range records {
		day := r.Day()
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.sum += r.Score
		b.count++
	}

	trend := make([]models.TrendPoint, 0, len(buckets))
	for day, b := range buckets {
		trend = append(trend, models.TrendPoint{
			Date:     day,
			AvgScore: float64(b.sum) / float64(b.count),
		})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })
	return trend
}

// ComputeModulePerformance averages scores per module. Rows are ordered by
// descending session count, module name breaking ties, so the breakdown is
// deterministic across runs.
func ComputeModulePerformance(records []models.ActivityRecord) []models.ModulePerformance {
	type bucket struct {
		sum   int
		count int
	}
	buckets := make(map[string]*bucket)
	for _, r := range records {
		b, ok := buckets[r.Module]
		if !ok {
			b = &bucket{}
			buckets[r.Module] = b
		}
		b.sum += r.Score
		b.count++
	}

	performance := make([]models.ModulePerformance, 0, len(buckets))
	for module, b := range buckets {
		performance = append(performance, models.ModulePerformance{
			Module:   module,
			AvgScore: float64(b.sum) / float64(b.count),
			Count:    b.count,
		})
	}
	sort.Slice(performance, func(i, j int) bool {
		if performance[i].Count != performance[j].Count {
			return performance[i].Count > performance[j].Count
		}
		return performance[i].Module < performance[j].Module
	})
	return performance
}

// ComputeCompletionStatus splits the snapshot into the three fixed buckets.
// Only the completed bucket is measured; the source data has no in-progress
// signal, so the incomplete remainder is split 60/40 by flooring division as
// a placeholder until a real in-progress status field exists. Flooring can
// lose up to one record from the bucket total; percentages are shares of the
// bucket sum, all zero when that sum is zero.
func ComputeCompletionStatus(records []models.ActivityRecord) []models.CompletionStatus {
	var completed int
	for _, r := range records {
		if r.Completed {
			completed++
		}
	}
	incomplete := len(records) - completed

	statuses := []models.CompletionStatus{
		{Status: models.StatusCompleted, Count: completed},
		{Status: models.StatusInProgress, Count: int(math.Floor(float64(incomplete) * 0.6))},
		{Status: models.StatusNotStarted, Count: int(math.Floor(float64(incomplete) * 0.4))},
	}

	var total int
	for _, s := range statuses {
		total += s.Count
	}
	if total > 0 {
		for i := range statuses {
			statuses[i].Percentage = float64(statuses[i].Count) / float64(total)
		}
	}
	return statuses
}

// ComputeSummary assembles the combined dashboard payload.
func ComputeSummary(records []models.ActivityRecord) models.InsightsSummary {
	return models.InsightsSummary{
		KPI:               ComputeKPI(records),
		Trend:             ComputeTrend(records),
		ModulePerformance: ComputeModulePerformance(records),
		CompletionStatus:  ComputeCompletionStatus(records),
	}
}
