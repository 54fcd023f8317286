package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hisab-api/internal/application/service"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/response"
)

// ReportHandler handles report HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Monthly returns the per-month totals, oldest first
func (h *ReportHandler) Monthly(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	buckets, err := h.reportService.Monthly(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Monthly report retrieved successfully", buckets)
}

// Summary returns all-time ledger totals
func (h *ReportHandler) Summary(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	summary, err := h.reportService.Summary(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Summary retrieved successfully", summary)
}

// MonthlyXLSX downloads the monthly report as a spreadsheet
func (h *ReportHandler) MonthlyXLSX(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.reportService.ExportMonthlyXLSX(c.Request.Context(), sess, &buf); err != nil {
		response.Error(c, err)
		return
	}

	attachment(c, xlsxContentType, "monthly-report.xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
