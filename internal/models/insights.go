package models

// KPISummary holds the four headline dashboard figures. Every field is zero
// when the filtered snapshot is empty.
type KPISummary struct {
	TotalStudents  int     `json:"totalStudents"`
	AvgScore       int     `json:"avgScore"`
	CompletionRate float64 `json:"completionRate"`
	AvgTimeSpent   int     `json:"avgTimeSpent"`
}

// TrendPoint is the average score for one calendar date.
type TrendPoint struct {
	Date     string  `json:"date"`
	AvgScore float64 `json:"avgScore"`
}

// ModulePerformance aggregates scores per module.
type ModulePerformance struct {
	Module   string  `json:"module"`
	AvgScore float64 `json:"avgScore"`
	Count    int     `json:"count"`
}

// Completion status bucket labels.
const (
	StatusCompleted  = "completed"
	StatusInProgress = "in-progress"
	StatusNotStarted = "not-started"
)

// CompletionStatus is one of the three fixed completion buckets.
type CompletionStatus struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// InsightsSummary is the combined dashboard payload.
type InsightsSummary struct {
	KPI               KPISummary          `json:"kpi"`
	Trend             []TrendPoint        `json:"trend"`
	ModulePerformance []ModulePerformance `json:"modulePerformance"`
	CompletionStatus  []CompletionStatus  `json:"completionStatus"`
}

// LeaderboardEntry is one ranked student row.
type LeaderboardEntry struct {
	StudentID       string `json:"studentId"`
	StudentName     string `json:"studentName"`
	Cohort          string `json:"cohort"`
	AvgScore        int    `json:"avgScore"`
	CompletionRate  int    `json:"completionRate"`
	TotalTimeSpent  int    `json:"totalTimeSpent"`
	TotalActivities int    `json:"totalActivities"`
	Rank            int    `json:"rank"`
}

// ModuleProgress summarises one student's work inside a single module.
type ModuleProgress struct {
	Module         string  `json:"module"`
	AvgScore       float64 `json:"avgScore"`
	TotalTime      int     `json:"totalTime"`
	CompletionRate float64 `json:"completionRate"`
	SessionsCount  int     `json:"sessionsCount"`
}

// ModuleScore is a single session score used by the per-student scatter view.
type ModuleScore struct {
	Module    string `json:"module"`
	Score     int    `json:"score"`
	Completed bool   `json:"completed"`
}

// StudentDetail is the per-student drill-down payload.
type StudentDetail struct {
	StudentID      string           `json:"studentId"`
	StudentName    string           `json:"studentName"`
	Cohort         string           `json:"cohort"`
	TotalSessions  int              `json:"totalSessions"`
	AvgScore       int              `json:"avgScore"`
	TotalTimeSpent int              `json:"totalTimeSpent"`
	CompletionRate float64          `json:"completionRate"`
	ModuleProgress []ModuleProgress `json:"moduleProgress"`
	ModuleScores   []ModuleScore    `json:"moduleScores"`
	RecentActivity []ActivityRecord `json:"recentActivity"`
}
