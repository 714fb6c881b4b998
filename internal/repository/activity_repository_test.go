package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnytics/insights-api/internal/models"
)

func newActivityMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func activityRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"student_id", "student_name", "cohort", "module", "date", "duration_minutes", "score", "completed"}).
		AddRow("s001", "Andi", "2025-A", "Algebra", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 30, 90, true)
}

func TestActivityRepositoryList(t *testing.T) {
	db, mock, cleanup := newActivityMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, student_name, cohort, module, date, duration_minutes, score, completed FROM student_learning_records WHERE 1=1 ORDER BY date DESC")).
		WillReturnRows(activityRows())

	records, err := repo.List(context.Background(), models.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "s001", records[0].StudentID)
	assert.Equal(t, 90, records[0].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryListPushesFiltersDown(t *testing.T) {
	db, mock, cleanup := newActivityMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, student_name, cohort, module, date, duration_minutes, score, completed FROM student_learning_records WHERE 1=1 AND date >= $1 AND date <= $2 AND module = $3 AND student_id = $4 AND (LOWER(student_name) LIKE $5 OR LOWER(student_id) LIKE $5) ORDER BY date DESC")).
		WithArgs(start, end, "Algebra", "s001", "%andi%").
		WillReturnRows(activityRows())

	filter := models.ActivityFilter{
		Start:     &start,
		End:       &end,
		Module:    "Algebra",
		StudentID: "s001",
		Search:    "Andi",
	}
	records, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newActivityMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, student_name, cohort, module, date, duration_minutes, score, completed FROM student_learning_records WHERE student_id = $1 ORDER BY date DESC")).
		WithArgs("s001").
		WillReturnRows(activityRows())

	records, err := repo.ListByStudent(context.Background(), "s001")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Algebra", records[0].Module)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryListQueryError(t *testing.T) {
	db, mock, cleanup := newActivityMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	_, err := repo.List(context.Background(), models.ActivityFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
