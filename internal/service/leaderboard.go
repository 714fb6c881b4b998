package service

import (
	"math"
	"sort"

	"github.com/learnytics/insights-api/internal/models"
)

// BuildLeaderboard groups the snapshot by student, derives per-student
// metrics and assigns dense 1-based ranks. The sort is strictly prioritised:
// average score, then completion rate, then total time spent, all
// descending. Students tied on all three keys receive consecutive ranks in
// ascending student id order, keeping the ordering deterministic. A positive
// limit truncates the ranked list after ranking, never before; the returned
// total is the pre-limit number of distinct students.
func BuildLeaderboard(records []models.ActivityRecord, limit int) ([]models.LeaderboardEntry, int) {
	type group struct {
		entry     models.LeaderboardEntry
		scoreSum  int
		completed int
	}
	groups := make(map[string]*group)
	for _, r := range records {
		g, ok := groups[r.StudentID]
		if !ok {
			g = &group{entry: models.LeaderboardEntry{
				StudentID:   r.StudentID,
				StudentName: r.StudentName,
				Cohort:      r.Cohort,
			}}
			groups[r.StudentID] = g
		}
		g.scoreSum += r.Score
		g.entry.TotalTimeSpent += r.DurationMinutes
		g.entry.TotalActivities++
		if r.Completed {
			g.completed++
		}
	}

	leaderboard := make([]models.LeaderboardEntry, 0, len(groups))
	for _, g := range groups {
		total := float64(g.entry.TotalActivities)
		g.entry.AvgScore = int(math.Round(float64(g.scoreSum) / total))
		g.entry.CompletionRate = int(math.Round(float64(g.completed) / total * 100))
		leaderboard = append(leaderboard, g.entry)
	}

	sort.Slice(leaderboard, func(i, j int) bool {
		a, b := leaderboard[i], leaderboard[j]
		if a.AvgScore != b.AvgScore {
			return a.AvgScore > b.AvgScore
		}
		if a.CompletionRate != b.CompletionRate {
			return a.CompletionRate > b.CompletionRate
		}
		if a.TotalTimeSpent != b.TotalTimeSpent {
			return a.TotalTimeSpent > b.TotalTimeSpent
		}
		return a.StudentID < b.StudentID
	})

	for i := range leaderboard {
		leaderboard[i].Rank = i + 1
	}

	total := len(leaderboard)
	if limit > 0 && limit < total {
		leaderboard = leaderboard[:limit]
	}
	return leaderboard, total
}

// BuildStudentDetail derives the drill-down payload from one student's
// records. Module progress follows the first-occurrence order of modules in
// the snapshot; recent activity is the five most recent sessions.
func BuildStudentDetail(records []models.ActivityRecord) models.StudentDetail {
	if len(records) == 0 {
		return models.StudentDetail{}
	}

	type group struct {
		scoreSum  int
		timeSum   int
		completed int
		total     int
	}
	order := make([]string, 0)
	groups := make(map[string]*group)
	var scoreSum, timeSum, completedCount int

	for _, r := range records {
		g, ok := groups[r.Module]
		if !ok {
			g = &group{}
			groups[r.Module] = g
			order = append(order, r.Module)
		}
		g.scoreSum += r.Score
		g.timeSum += r.DurationMinutes
		g.total++
		if r.Completed {
			g.completed++
		}
		scoreSum += r.Score
		timeSum += r.DurationMinutes
		if r.Completed {
			completedCount++
		}
	}

	progress := make([]models.ModuleProgress, 0, len(order))
	for _, module := range order {
		g := groups[module]
		progress = append(progress, models.ModuleProgress{
			Module:         module,
			AvgScore:       float64(g.scoreSum) / float64(g.total),
			TotalTime:      g.timeSum,
			CompletionRate: float64(g.completed) / float64(g.total),
			SessionsCount:  g.total,
		})
	}

	scores := make([]models.ModuleScore, 0, len(records))
	for _, r := range records {
		scores = append(scores, models.ModuleScore{Module: r.Module, Score: r.Score, Completed: r.Completed})
	}

	recent := make([]models.ActivityRecord, len(records))
	copy(recent, records)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date.After(recent[j].Date) })
	if len(recent) > 5 {
		recent = recent[:5]
	}

	total := float64(len(records))
	return models.StudentDetail{
		StudentID:      records[0].StudentID,
		StudentName:    records[0].StudentName,
		Cohort:         records[0].Cohort,
		TotalSessions:  len(records),
		AvgScore:       int(math.Round(float64(scoreSum) / total)),
		TotalTimeSpent: timeSum,
		CompletionRate: float64(completedCount) / total,
		ModuleProgress: progress,
		ModuleScores:   scores,
		RecentActivity: recent,
	}
}
