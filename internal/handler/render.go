package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/scan-registration/internal/middleware"
	"github.com/noah-isme/scan-registration/internal/web"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
	"github.com/noah-isme/scan-registration/pkg/flash"
)

// renderPage fills the operator name and any pending flash notice, then renders.
func renderPage(c *gin.Context, status int, name string, page web.Page) {
	if session := middleware.SessionFromContext(c); session != nil {
		page.Username = session.Username
	}
	if page.Notice == nil {
		if notice, ok := flash.ReadAndClear(c.Writer, c.Request); ok {
			page.Notice = &notice
		}
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(status, name, page)
}

// renderPageError re-renders a page with the error message and the error's status.
func renderPageError(c *gin.Context, name string, page web.Page, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	page.Notice = &flash.Notice{Kind: flash.KindError, Message: appErr.Message}
	renderPage(c, appErr.Status, name, page)
}
