package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/scan-registration/internal/web"
)

// PageHandler renders the static operator pages.
type PageHandler struct{}

// NewPageHandler creates a new handler.
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Index renders the scanning page.
func (h *PageHandler) Index(c *gin.Context) {
	renderPage(c, http.StatusOK, web.PageIndex, web.Page{Title: "Scan"})
}

// ManualEntry renders the manual entry form.
func (h *PageHandler) ManualEntry(c *gin.Context) {
	renderPage(c, http.StatusOK, web.PageManualEntry, web.Page{Title: "Manual entry"})
}
