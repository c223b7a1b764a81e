package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/scan-registration/internal/models"
	"github.com/noah-isme/scan-registration/internal/web"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
	"github.com/noah-isme/scan-registration/pkg/response"
)

type scanLogReader interface {
	ListRecent(ctx context.Context, limit int) ([]models.ScanLog, error)
}

// ScanLogHandler serves the read side of the scan log.
type ScanLogHandler struct {
	service scanLogReader
	export  exporter
}

// NewScanLogHandler creates a new handler.
func NewScanLogHandler(svc scanLogReader, export exporter) *ScanLogHandler {
	return &ScanLogHandler{service: svc, export: export}
}

// Page renders the recent scans table.
func (h *ScanLogHandler) Page(c *gin.Context) {
	page := web.Page{Title: "Scan logs"}
	logs, err := h.service.ListRecent(c.Request.Context(), 0)
	if err != nil {
		renderPageError(c, web.PageScanLogs, page, err)
		return
	}
	page.Logs = logs
	renderPage(c, http.StatusOK, web.PageScanLogs, page)
}

// List godoc
// @Summary List recent scans
// @Description Most recent first. limit defaults to the configured value and is capped at 500.
// @Tags ScanLogs
// @Produce json
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope{data=[]models.ScanLog}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /api/scan_logs [get]
func (h *ScanLogHandler) List(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	logs, err := h.service.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, map[string]interface{}{"count": len(logs)})
}

// Export streams recent scans as CSV or PDF.
func (h *ScanLogHandler) Export(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := models.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(models.ExportFormatCSV))))
	res, err := h.export.ScanLogs(c.Request.Context(), format, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendExport(c, res)
}

func parseLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, appErrors.Clone(appErrors.ErrInvalidInput, "limit must be a non-negative integer")
	}
	return limit, nil
}
