package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/padel-board-api/internal/service"
	"github.com/noah-isme/padel-board-api/pkg/response"
)

// ExportHandler serves week downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Week godoc
// @Summary Download the visible week as CSV or PDF
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param start query string false "Any date of the week (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /exports/week [get]
func (h *ExportHandler) Week(c *gin.Context) {
	weekStart, err := parseWeekQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.Week(c.Request.Context(), weekStart, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.ContentType, result.Filename, result.Body)
}
