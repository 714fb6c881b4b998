package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/learnytics/insights-api/internal/dto"
	"github.com/learnytics/insights-api/internal/middleware"
	"github.com/learnytics/insights-api/internal/models"
	"github.com/learnytics/insights-api/internal/service"
	appErrors "github.com/learnytics/insights-api/pkg/errors"
	"github.com/learnytics/insights-api/pkg/response"
)

// DataHandler exposes the file-backed data endpoints: sample, import and
// the raw records listing.
type DataHandler struct {
	imports    *service.ImportService
	sampleSize int
}

// NewDataHandler constructs the data handler.
func NewDataHandler(imports *service.ImportService, sampleSize int) *DataHandler {
	if sampleSize <= 0 {
		sampleSize = 10
	}
	return &DataHandler{imports: imports, sampleSize: sampleSize}
}

// Sample returns the head of the stored snapshot.
func (h *DataHandler) Sample(c *gin.Context) {
	records, total, err := h.imports.Sample(h.sampleSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	if records == nil {
		records = []models.ActivityRecord{}
	}
	response.JSON(c, http.StatusOK, dto.SampleResponse{Count: total, Records: records}, nil, middleware.ExtractMeta(c))
}

// Import ingests either a multipart CSV upload (field "file") or an inline
// JSON body {"data": [...]}. Headers accept snake_case or camelCase.
func (h *DataHandler) Import(c *gin.Context) {
	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cannot read uploaded file"))
			return
		}
		defer src.Close() //nolint:errcheck

		imported, err := h.imports.ImportCSV(c.Request.Context(), file.Filename, src)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, dto.ImportResponse{Imported: imported}, nil, middleware.ExtractMeta(c))
		return
	}

	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrNoImportData)
		return
	}
	imported, err := h.imports.ImportJSON(c.Request.Context(), req.Data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ImportResponse{Imported: imported}, nil, middleware.ExtractMeta(c))
}

// Records returns a filtered, paginated page of the stored snapshot.
func (h *DataHandler) Records(c *gin.Context) {
	filter, err := parseActivityFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit := parseIntDefault(c.Query("limit"), 100)
	offset := parseIntDefault(c.Query("offset"), 0)

	records, total, err := h.imports.Records(filter, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Total: total, Limit: limit, Offset: offset}
	response.JSON(c, http.StatusOK, records, pagination, middleware.ExtractMeta(c))
}

func parseIntDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
