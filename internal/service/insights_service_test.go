package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnytics/insights-api/internal/models"
	appErrors "github.com/learnytics/insights-api/pkg/errors"
)

type mockActivitySource struct {
	records      []models.ActivityRecord
	listCalls    int
	studentCalls int
	listErr      error
	studentErr   error
}

func (m *mockActivitySource) List(_ context.Context, _ models.ActivityFilter) ([]models.ActivityRecord, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

func (m *mockActivitySource) ListByStudent(_ context.Context, studentID string) ([]models.ActivityRecord, error) {
	m.studentCalls++
	if m.studentErr != nil {
		return nil, m.studentErr
	}
	matched := make([]models.ActivityRecord, 0, len(m.records))
	for _, r := range m.records {
		if r.StudentID == studentID {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	s.store = nil
	return nil
}

func TestInsightsServiceSnapshotCaching(t *testing.T) {
	source := &mockActivitySource{records: sampleRecords()}
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewInsightsService(source, "file", cacheSvc, nil, zap.NewNop())

	ctx := context.Background()

	kpi, cacheHit, err := svc.KPI(ctx, models.ActivityFilter{})
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 1, source.listCalls)
	assert.Equal(t, 80, kpi.AvgScore)

	kpiCached, cacheHit2, err := svc.KPI(ctx, models.ActivityFilter{})
	require.NoError(t, err)
	assert.True(t, cacheHit2)
	assert.Equal(t, 1, source.listCalls)
	assert.Equal(t, kpi, kpiCached)

	// Every aggregation shares the snapshot, so trend also hits the cache.
	_, cacheHit3, err := svc.Trend(ctx, models.ActivityFilter{})
	require.NoError(t, err)
	assert.True(t, cacheHit3)
	assert.Equal(t, 1, source.listCalls)
}

func TestInsightsServiceWithoutCache(t *testing.T) {
	source := &mockActivitySource{records: sampleRecords()}
	svc := NewInsightsService(source, "file", nil, nil, zap.NewNop())

	ctx := context.Background()

	_, cacheHit, err := svc.Summary(ctx, models.ActivityFilter{})
	require.NoError(t, err)
	assert.False(t, cacheHit)

	_, cacheHit2, err := svc.Summary(ctx, models.ActivityFilter{})
	require.NoError(t, err)
	assert.False(t, cacheHit2)
	assert.Equal(t, 2, source.listCalls)
}

func TestInsightsServiceSourceErrorPassthrough(t *testing.T) {
	source := &mockActivitySource{listErr: assert.AnError}
	svc := NewInsightsService(source, "database", nil, nil, zap.NewNop())

	_, _, err := svc.KPI(context.Background(), models.ActivityFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestInsightsServiceLeaderboardFiltersByModule(t *testing.T) {
	source := &mockActivitySource{records: []models.ActivityRecord{
		{StudentID: "s001", Module: "Algebra", Score: 90, Completed: true},
		{StudentID: "s002", Module: "Geometry", Score: 95, Completed: true},
	}}
	svc := NewInsightsService(source, "file", nil, nil, zap.NewNop())

	entries, total, _, err := svc.Leaderboard(context.Background(), "Algebra", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, "s001", entries[0].StudentID)
}

func TestInsightsServiceStudentDetailNotFound(t *testing.T) {
	source := &mockActivitySource{records: sampleRecords()}
	svc := NewInsightsService(source, "file", nil, nil, zap.NewNop())

	_, _, err := svc.StudentDetail(context.Background(), "s999")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrStudentNotFound)
}

func TestInsightsServiceStudentDetailCaching(t *testing.T) {
	source := &mockActivitySource{records: sampleRecords()}
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewInsightsService(source, "file", cacheSvc, nil, zap.NewNop())

	ctx := context.Background()

	detail, cacheHit, err := svc.StudentDetail(ctx, "s001")
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 1, source.studentCalls)

	detailCached, cacheHit2, err := svc.StudentDetail(ctx, "s001")
	require.NoError(t, err)
	assert.True(t, cacheHit2)
	assert.Equal(t, 1, source.studentCalls)
	assert.Equal(t, detail.StudentID, detailCached.StudentID)
	assert.Equal(t, detail.TotalSessions, detailCached.TotalSessions)
}
