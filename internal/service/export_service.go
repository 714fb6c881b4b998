package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/learnytics/insights-api/internal/models"
	appErrors "github.com/learnytics/insights-api/pkg/errors"
	"github.com/learnytics/insights-api/pkg/export"
)

// Export formats supported for the leaderboard download.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportFile is a rendered leaderboard download.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders the ranked leaderboard into downloadable formats.
type ExportService struct {
	insights *InsightsService
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	now      func() time.Time
}

// NewExportService constructs an export service.
func NewExportService(insights *InsightsService) *ExportService {
	return &ExportService{
		insights: insights,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		now:      time.Now,
	}
}

// Leaderboard renders the ranked leaderboard in the requested format.
func (s *ExportService) Leaderboard(ctx context.Context, module string, limit int, format string) (*ExportFile, error) {
	entries, _, _, err := s.insights.Leaderboard(ctx, module, limit)
	if err != nil {
		return nil, err
	}

	dataset := leaderboardDataset(entries)
	stamp := s.now().UTC().Format("20060102-150405")

	switch format {
	case ExportFormatCSV, "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, fmt.Errorf("render leaderboard csv: %w", err)
		}
		return &ExportFile{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("leaderboard-%s.csv", stamp),
		}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, "Leaderboard")
		if err != nil {
			return nil, fmt.Errorf("render leaderboard pdf: %w", err)
		}
		return &ExportFile{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("leaderboard-%s.pdf", stamp),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+format)
	}
}

func leaderboardDataset(entries []models.LeaderboardEntry) export.Dataset {
	headers := []string{"rank", "student_id", "student_name", "cohort", "avg_score", "completion_rate", "total_time_spent", "total_activities"}
	rows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]string{
			"rank":             strconv.Itoa(e.Rank),
			"student_id":       e.StudentID,
			"student_name":     e.StudentName,
			"cohort":           e.Cohort,
			"avg_score":        strconv.Itoa(e.AvgScore),
			"completion_rate":  strconv.Itoa(e.CompletionRate),
			"total_time_spent": strconv.Itoa(e.TotalTimeSpent),
			"total_activities": strconv.Itoa(e.TotalActivities),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
