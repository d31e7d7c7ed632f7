package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mobilia/erp-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
}

func NewReportHandler(reportService *services.ReportService, exportService *services.ExportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, exportService: exportService}
}

func asOfDate(c *gin.Context) time.Time {
	if raw := c.Query("as_of"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return t
		}
	}
	return time.Now()
}

// Aging returns the AR or AP aging report as JSON
func (h *ReportHandler) Aging(c *gin.Context) {
	kind := c.DefaultQuery("kind", "receivable")

	report, err := h.reportService.Aging(c.Request.Context(), kind, asOfDate(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// AgingXLSX downloads the aging report as a spreadsheet
func (h *ReportHandler) AgingXLSX(c *gin.Context) {
	kind := c.DefaultQuery("kind", "receivable")

	data, filename, err := h.exportService.ExportAgingXLSX(c.Request.Context(), kind, asOfDate(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
