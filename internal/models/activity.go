package models

import "time"

// ActivityRecord is one logged learning session by one student on one module.
// Records are never mutated after creation; every aggregation reads a snapshot.
type ActivityRecord struct {
	StudentID       string    `db:"student_id" json:"studentId"`
	StudentName     string    `db:"student_name" json:"studentName"`
	Cohort          string    `db:"cohort" json:"cohort"`
	Module          string    `db:"module" json:"module"`
	Date            time.Time `db:"date" json:"date"`
	DurationMinutes int       `db:"duration_minutes" json:"durationMinutes"`
	Score           int       `db:"score" json:"score"`
	Completed       bool      `db:"completed" json:"completed"`
}

// Day truncates the record timestamp to its calendar date in UTC.
func (r ActivityRecord) Day() string {
	return r.Date.UTC().Format("2006-01-02")
}

// ActivityFilter scopes a record snapshot. All predicates are optional and
// combined with AND. Date bounds are inclusive.
type ActivityFilter struct {
	Start     *time.Time
	End       *time.Time
	Module    string
	StudentID string
	Search    string
}

// IsZero reports whether no predicate is set.
func (f ActivityFilter) IsZero() bool {
	return f.Start == nil && f.End == nil && f.Module == "" && f.StudentID == "" && f.Search == ""
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
