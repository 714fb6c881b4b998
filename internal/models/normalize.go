package models

import (
	"strconv"
	"strings"
	"time"
)

// RawRow is one heterogeneous source row, as decoded from a CSV file or a
// JSON import body. Keys may be snake_case or camelCase and numeric or
// boolean values may arrive as strings.
type RawRow map[string]interface{}

// NormalizeRow maps a file-sourced row into the canonical ActivityRecord.
// Unparseable numeric fields coerce to zero so aggregation stays total;
// booleans accept "true" and "1" as truthy strings.
func NormalizeRow(row RawRow) ActivityRecord {
	return ActivityRecord{
		StudentID:       pickString(row, "studentId", "student_id"),
		StudentName:     pickString(row, "studentName", "student_name"),
		Cohort:          pickString(row, "cohort"),
		Module:          pickString(row, "module"),
		Date:            parseDate(pickString(row, "date")),
		DurationMinutes: pickInt(row, "durationMinutes", "duration_minutes"),
		Score:           pickInt(row, "score"),
		Completed:       pickBool(row, "completed"),
	}
}

// NormalizeRows maps a slice of raw rows, dropping rows without a student id.
func NormalizeRows(rows []RawRow) []ActivityRecord {
	records := make([]ActivityRecord, 0, len(rows))
	for _, row := range rows {
		record := NormalizeRow(row)
		if record.StudentID == "" {
			continue
		}
		records = append(records, record)
	}
	return records
}

func pickString(row RawRow, keys ...string) string {
	for _, key := range keys {
		if value, ok := row[key]; ok {
			if s := asString(value); s != "" {
				return s
			}
		}
	}
	return ""
}

func pickInt(row RawRow, keys ...string) int {
	for _, key := range keys {
		value, ok := row[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}

func pickBool(row RawRow, keys ...string) bool {
	for _, key := range keys {
		value, ok := row[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case bool:
			return v
		case string:
			trimmed := strings.TrimSpace(v)
			return trimmed == "true" || trimmed == "1"
		}
	}
	return false
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

func parseDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
