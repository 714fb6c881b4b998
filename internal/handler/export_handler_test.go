package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/learnytics/insights-api/internal/models"
	"github.com/learnytics/insights-api/internal/service"
)

type staticSource struct {
	records []models.ActivityRecord
}

func (s *staticSource) List(_ context.Context, _ models.ActivityFilter) ([]models.ActivityRecord, error) {
	return s.records, nil
}

func (s *staticSource) ListByStudent(_ context.Context, studentID string) ([]models.ActivityRecord, error) {
	matched := make([]models.ActivityRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.StudentID == studentID {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func newExportHandler() *ExportHandler {
	source := &staticSource{records: []models.ActivityRecord{
		{StudentID: "s001", StudentName: "Andi", Module: "Algebra", Score: 90, DurationMinutes: 30, Completed: true},
	}}
	insights := service.NewInsightsService(source, "file", nil, nil, zap.NewNop())
	return NewExportHandler(service.NewExportService(insights))
}

func TestExportHandlerLeaderboardCSV(t *testing.T) {
	handler := newExportHandler()

	rec := performRequest(handler.Leaderboard, "/insights/leaderboard/export?format=csv")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[1], "s001")
}

func TestExportHandlerUnsupportedFormat(t *testing.T) {
	handler := newExportHandler()

	rec := performRequest(handler.Leaderboard, "/insights/leaderboard/export?format=xlsx")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
