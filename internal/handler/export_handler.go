package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnytics/insights-api/internal/service"
	"github.com/learnytics/insights-api/pkg/response"
)

// ExportHandler serves leaderboard downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Leaderboard streams the ranked leaderboard as CSV (default) or PDF.
func (h *ExportHandler) Leaderboard(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.exports.Leaderboard(c.Request.Context(), c.Query("module"), limit, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
