package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnytics/insights-api/internal/models"
	appErrors "github.com/learnytics/insights-api/pkg/errors"
	"github.com/learnytics/insights-api/pkg/storage"
)

// RecordStore is the writable side of the file-backed record source.
type RecordStore interface {
	Load() ([]models.ActivityRecord, error)
	Replace(records []models.ActivityRecord) error
}

// ImportService ingests CSV uploads and JSON payloads into the file-backed
// store. Headers may be snake_case or camelCase; rows pass through the
// normalizer. A successful import replaces the snapshot and invalidates the
// insights cache.
type ImportService struct {
	store   RecordStore
	uploads *storage.LocalStorage
	cache   *CacheService
	logger  *zap.Logger
}

// NewImportService constructs an import service. uploads may be nil, in
// which case raw upload copies are not kept.
func NewImportService(store RecordStore, uploads *storage.LocalStorage, cache *CacheService, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{store: store, uploads: uploads, cache: cache, logger: logger}
}

// ImportCSV parses the uploaded CSV stream and replaces the stored
// snapshot, returning the number of imported records.
func (s *ImportService) ImportCSV(ctx context.Context, filename string, r io.Reader) (int, error) {
	if s.uploads != nil {
		r = s.teeUpload(filename, r)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return 0, appErrors.Clone(appErrors.ErrValidation, "csv file is empty")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid csv header")
	}

	var rows []models.RawRow
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid csv row")
		}
		row := make(models.RawRow, len(header))
		for i, column := range header {
			if i < len(fields) {
				row[column] = fields[i]
			}
		}
		rows = append(rows, row)
	}

	return s.replace(ctx, models.NormalizeRows(rows))
}

// ImportJSON replaces the stored snapshot from already-decoded rows.
func (s *ImportService) ImportJSON(ctx context.Context, rows []models.RawRow) (int, error) {
	if len(rows) == 0 {
		return 0, appErrors.ErrNoImportData
	}
	return s.replace(ctx, models.NormalizeRows(rows))
}

// Sample returns the first limit records plus the total count.
func (s *ImportService) Sample(limit int) ([]models.ActivityRecord, int, error) {
	records, err := s.store.Load()
	if err != nil {
		return nil, 0, err
	}
	total := len(records)
	if limit > 0 && limit < total {
		records = records[:limit]
	}
	return records, total, nil
}

// Records returns a filtered, paginated page of the stored snapshot.
func (s *ImportService) Records(filter models.ActivityFilter, limit, offset int) ([]models.ActivityRecord, int, error) {
	records, err := s.store.Load()
	if err != nil {
		return nil, 0, err
	}
	filtered := FilterRecords(records, filter)
	total := len(filtered)

	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return filtered[offset:end], total, nil
}

func (s *ImportService) replace(ctx context.Context, records []models.ActivityRecord) (int, error) {
	if len(records) == 0 {
		return 0, appErrors.ErrNoImportData
	}
	if err := s.store.Replace(records); err != nil {
		return 0, fmt.Errorf("replace records: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "insights:*"); err != nil {
			s.logger.Warn("invalidate insights cache", zap.Error(err))
		}
	}
	s.logger.Info("records imported", zap.Int("count", len(records)))
	return len(records), nil
}

// teeUpload keeps a raw copy of the upload for troubleshooting. Uploads are
// small enough to buffer whole.
func (s *ImportService) teeUpload(filename string, r io.Reader) io.Reader {
	data, err := io.ReadAll(r)
	if err != nil {
		s.logger.Warn("buffer upload", zap.String("file", filename), zap.Error(err))
		return bytes.NewReader(nil)
	}
	name := uuid.NewString() + "-" + filename
	if _, err := s.uploads.Save(name, data); err != nil {
		s.logger.Warn("save upload copy", zap.String("file", name), zap.Error(err))
	}
	return bytes.NewReader(data)
}
