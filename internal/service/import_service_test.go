package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnytics/insights-api/internal/models"
	appErrors "github.com/learnytics/insights-api/pkg/errors"
)

type memoryRecordStore struct {
	records []models.ActivityRecord
}

func (m *memoryRecordStore) Load() ([]models.ActivityRecord, error) {
	return m.records, nil
}

func (m *memoryRecordStore) Replace(records []models.ActivityRecord) error {
	m.records = records
	return nil
}

func TestImportServiceImportCSV(t *testing.T) {
	store := &memoryRecordStore{}
	svc := NewImportService(store, nil, nil, zap.NewNop())

	csvBody := strings.Join([]string{
		"student_id,student_name,cohort,module,date,duration_minutes,score,completed",
		"s001,Andi,2025-A,Algebra,2025-03-01,30,90,true",
		"s002,Budi,2025-A,Geometry,2025-03-02,45,70,false",
	}, "\n")

	imported, err := svc.ImportCSV(context.Background(), "records.csv", strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	require.Len(t, store.records, 2)
	assert.Equal(t, "s001", store.records[0].StudentID)
	assert.Equal(t, 90, store.records[0].Score)
	assert.True(t, store.records[0].Completed)
	assert.Equal(t, "2025-03-01", store.records[0].Day())
}

func TestImportServiceImportCSVEmptyFile(t *testing.T) {
	svc := NewImportService(&memoryRecordStore{}, nil, nil, zap.NewNop())

	_, err := svc.ImportCSV(context.Background(), "empty.csv", strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestImportServiceImportCSVHeaderOnly(t *testing.T) {
	svc := NewImportService(&memoryRecordStore{}, nil, nil, zap.NewNop())

	_, err := svc.ImportCSV(context.Background(), "header.csv", strings.NewReader("student_id,score\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNoImportData)
}

func TestImportServiceImportJSON(t *testing.T) {
	store := &memoryRecordStore{}
	svc := NewImportService(store, nil, nil, zap.NewNop())

	rows := []models.RawRow{
		{"studentId": "s001", "studentName": "Andi", "module": "Algebra", "date": "2025-03-01", "durationMinutes": float64(30), "score": float64(90), "completed": true},
		{"studentName": "No ID", "module": "Algebra"},
	}

	imported, err := svc.ImportJSON(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	require.Len(t, store.records, 1)
	assert.Equal(t, "s001", store.records[0].StudentID)
}

func TestImportServiceImportJSONEmpty(t *testing.T) {
	svc := NewImportService(&memoryRecordStore{}, nil, nil, zap.NewNop())

	_, err := svc.ImportJSON(context.Background(), nil)
	assert.ErrorIs(t, err, appErrors.ErrNoImportData)
}

func TestImportServiceImportInvalidatesInsightsCache(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	require.NoError(t, cacheSvc.Set(context.Background(), "insights:records", []models.ActivityRecord{}, 0))

	svc := NewImportService(&memoryRecordStore{}, nil, cacheSvc, zap.NewNop())
	_, err := svc.ImportJSON(context.Background(), []models.RawRow{{"studentId": "s001"}})
	require.NoError(t, err)

	hit, err := cacheSvc.Get(context.Background(), "insights:records", &[]models.ActivityRecord{})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestImportServiceSample(t *testing.T) {
	store := &memoryRecordStore{records: sampleRecords()}
	svc := NewImportService(store, nil, nil, zap.NewNop())

	records, total, err := svc.Sample(1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, records, 1)
	assert.Equal(t, "s001", records[0].StudentID)
}

func TestImportServiceRecordsPagination(t *testing.T) {
	store := &memoryRecordStore{records: []models.ActivityRecord{
		{StudentID: "s001", Module: "Algebra"},
		{StudentID: "s002", Module: "Algebra"},
		{StudentID: "s003", Module: "Geometry"},
	}}
	svc := NewImportService(store, nil, nil, zap.NewNop())

	page, total, err := svc.Records(models.ActivityFilter{Module: "Algebra"}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "s002", page[0].StudentID)

	empty, total, err := svc.Records(models.ActivityFilter{}, 10, 99)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, empty)
}
