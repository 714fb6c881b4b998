package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnytics/insights-api/internal/models"
	"github.com/learnytics/insights-api/internal/service"
)

type memoryStore struct {
	records []models.ActivityRecord
}

func (m *memoryStore) Load() ([]models.ActivityRecord, error) {
	return m.records, nil
}

func (m *memoryStore) Replace(records []models.ActivityRecord) error {
	m.records = records
	return nil
}

func newDataHandler(store *memoryStore) *DataHandler {
	imports := service.NewImportService(store, nil, nil, zap.NewNop())
	return NewDataHandler(imports, 10)
}

func TestDataHandlerImportCSVUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &memoryStore{}
	handler := newDataHandler(store)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "records.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("student_id,student_name,module,date,duration_minutes,score,completed\ns001,Andi,Algebra,2025-03-01,30,90,true\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/data/import", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())

	handler.Import(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var payload struct {
		Imported int `json:"imported"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, 1, payload.Imported)
	require.Len(t, store.records, 1)
	assert.Equal(t, "s001", store.records[0].StudentID)
}

func TestDataHandlerImportJSONBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &memoryStore{}
	handler := newDataHandler(store)

	payload := `{"data":[{"studentId":"s001","studentName":"Andi","module":"Algebra","score":85}]}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/data/import", strings.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Import(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.records, 1)
	assert.Equal(t, 85, store.records[0].Score)
}

func TestDataHandlerImportEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDataHandler(&memoryStore{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/data/import", strings.NewReader(`{"data":[]}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Import(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "no data provided", body.Message)
}

func TestDataHandlerSample(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &memoryStore{records: []models.ActivityRecord{
		{StudentID: "s001", Module: "Algebra"},
		{StudentID: "s002", Module: "Geometry"},
	}}
	handler := newDataHandler(store)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/data/sample", nil)

	handler.Sample(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var payload struct {
		Count   int                     `json:"count"`
		Records []models.ActivityRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, 2, payload.Count)
	assert.Len(t, payload.Records, 2)
}

func TestDataHandlerRecordsPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &memoryStore{records: []models.ActivityRecord{
		{StudentID: "s001"},
		{StudentID: "s002"},
		{StudentID: "s003"},
	}}
	handler := newDataHandler(store)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/records?limit=2&offset=1", nil)

	handler.Records(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 3, envelope.Pagination.Total)
	assert.Equal(t, 2, envelope.Pagination.Limit)
	assert.Equal(t, 1, envelope.Pagination.Offset)

	var records []models.ActivityRecord
	require.NoError(t, json.Unmarshal(envelope.Data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "s002", records[0].StudentID)
}
