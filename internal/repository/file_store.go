package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/learnytics/insights-api/internal/models"
)

// FileStore is the file-backed record source used by the companion data
// endpoints. Records live in a single JSON file; rows are normalised on
// load so imports with snake_case headers read back identically.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore opens (or prepares) a JSON-file-backed store at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		path = "./data/records.json"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads and normalises all records. A missing file yields an empty
// snapshot, never an error.
func (s *FileStore) Load() ([]models.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}

	var rows []models.RawRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode data file: %w", err)
	}
	return models.NormalizeRows(rows), nil
}

// List returns the full snapshot. Predicate evaluation is left to the
// aggregation core, so the filter argument is accepted for interface parity
// only.
func (s *FileStore) List(_ context.Context, _ models.ActivityFilter) ([]models.ActivityRecord, error) {
	return s.Load()
}

// ListByStudent returns the records belonging to one student.
func (s *FileStore) ListByStudent(_ context.Context, studentID string) ([]models.ActivityRecord, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	matched := make([]models.ActivityRecord, 0, len(records))
	for _, r := range records {
		if r.StudentID == studentID {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// Replace overwrites the store with the provided snapshot. The write goes
// through a temp file and rename so readers never observe a partial file.
func (s *FileStore) Replace(records []models.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}
