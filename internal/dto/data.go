package dto

import "github.com/learnytics/insights-api/internal/models"

// SampleResponse returns the head of the stored snapshot.
type SampleResponse struct {
	Count   int                     `json:"count"`
	Records []models.ActivityRecord `json:"records"`
}

// ImportRequest carries inline JSON rows as an alternative to a CSV upload.
type ImportRequest struct {
	Data []models.RawRow `json:"data" binding:"required,min=1"`
}

// ImportResponse reports how many records were ingested.
type ImportResponse struct {
	Imported int `json:"imported"`
}
