package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/learnytics/insights-api/internal/models"
)

// ActivityRepository reads the learning-activity snapshot from the
// student_learning_records view. The view exposes snake_case columns; sqlx
// tags on the model map them onto the canonical record.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository instantiates the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = "student_id, student_name, cohort, module, date, duration_minutes, score, completed"

// List returns activity records matching the provided filter, most recent
// first. Filters are pushed down to the view where possible.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityRecord, error) {
	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(activityColumns)
	builder.WriteString(" FROM student_learning_records WHERE 1=1")

	var args []interface{}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		builder.WriteString(fmt.Sprintf(" AND date >= $%d", len(args)))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		builder.WriteString(fmt.Sprintf(" AND date <= $%d", len(args)))
	}
	if filter.Module != "" {
		args = append(args, filter.Module)
		builder.WriteString(fmt.Sprintf(" AND module = $%d", len(args)))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		builder.WriteString(fmt.Sprintf(" AND student_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		builder.WriteString(fmt.Sprintf(" AND (LOWER(student_name) LIKE $%d OR LOWER(student_id) LIKE $%d)", len(args), len(args)))
	}
	builder.WriteString(" ORDER BY date DESC")

	var records []models.ActivityRecord
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query learning records: %w", err)
	}
	return records, nil
}

// ListByStudent returns all records for one student, most recent first.
func (r *ActivityRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ActivityRecord, error) {
	query := "SELECT " + activityColumns + " FROM student_learning_records WHERE student_id = $1 ORDER BY date DESC"

	var records []models.ActivityRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("query student records: %w", err)
	}
	return records, nil
}
