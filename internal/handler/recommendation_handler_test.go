package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnytics/insights-api/internal/models"
	appErrors "github.com/learnytics/insights-api/pkg/errors"
)

type fakeRecommender struct {
	result models.Recommendation
	err    error
	lastID string
}

func (f *fakeRecommender) Recommend(_ context.Context, studentID string) (models.Recommendation, error) {
	f.lastID = studentID
	return f.result, f.err
}

func TestRecommendationHandlerSuccess(t *testing.T) {
	srv := &fakeRecommender{result: models.Recommendation{
		StudentID: "494342",
		Insight:   models.InsightFastLearner,
		Source:    models.SourceMLService,
	}}
	handler := NewRecommendationHandler(srv)

	rec := performRequest(handler.Recommend, "/ml/recommendation/494342", gin.Param{Key: "studentId", Value: "494342"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "494342", srv.lastID)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var payload models.Recommendation
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, models.InsightFastLearner, payload.Insight)
	assert.Equal(t, models.SourceMLService, payload.Source)
}

func TestRecommendationHandlerStudentNotFound(t *testing.T) {
	handler := NewRecommendationHandler(&fakeRecommender{err: appErrors.ErrStudentNotFound})

	rec := performRequest(handler.Recommend, "/ml/recommendation/s999", gin.Param{Key: "studentId", Value: "s999"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
}

func TestRecommendationHandlerMissingStudentID(t *testing.T) {
	handler := NewRecommendationHandler(&fakeRecommender{})

	rec := performRequest(handler.Recommend, "/ml/recommendation/")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
