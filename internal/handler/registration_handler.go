package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/scan-registration/internal/models"
	"github.com/noah-isme/scan-registration/internal/web"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
	"github.com/noah-isme/scan-registration/pkg/flash"
	"github.com/noah-isme/scan-registration/pkg/response"
)

type registrar interface {
	Register(ctx context.Context, identifier string, scanType models.ScanType) (*models.RegistrationResult, error)
}

// RegistrationHandler exposes the registration workflow.
type RegistrationHandler struct {
	service registrar
}

// NewRegistrationHandler creates a new handler.
func NewRegistrationHandler(svc registrar) *RegistrationHandler {
	return &RegistrationHandler{service: svc}
}

// Scan godoc
// @Summary Register a scanned barcode
// @Description Registers the student behind a decoded barcode. Not found and already registered are 200 outcomes.
// @Tags Registration
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Decoded barcode"
// @Success 200 {object} response.Envelope{data=models.RegistrationResult}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /api/scan [post]
func (h *RegistrationHandler) Scan(c *gin.Context) {
	h.registerJSON(c, models.ScanTypeBarcode)
}

// ManualRegisterAPI godoc
// @Summary Register a typed student ID
// @Tags Registration
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Student ID"
// @Success 200 {object} response.Envelope{data=models.RegistrationResult}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /api/manual_register [post]
func (h *RegistrationHandler) ManualRegisterAPI(c *gin.Context) {
	h.registerJSON(c, models.ScanTypeManual)
}

func (h *RegistrationHandler) registerJSON(c *gin.Context, scanType models.ScanType) {
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "invalid registration payload"))
		return
	}
	res, err := h.service.Register(c.Request.Context(), req.StudentID, scanType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// ManualRegister handles the manual entry form and re-renders it with the outcome.
func (h *RegistrationHandler) ManualRegister(c *gin.Context) {
	page := web.Page{Title: "Manual entry"}
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		renderPageError(c, web.PageManualEntry, page, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "invalid registration payload"))
		return
	}
	res, err := h.service.Register(c.Request.Context(), req.StudentID, models.ScanTypeManual)
	if err != nil {
		page.Form = map[string]string{"student_id": req.StudentID}
		renderPageError(c, web.PageManualEntry, page, err)
		return
	}
	page.Result = res
	page.Notice = &flash.Notice{Kind: noticeKind(res.Action), Message: res.PopupMessage}
	renderPage(c, http.StatusOK, web.PageManualEntry, page)
}

func noticeKind(action models.ScanStatus) flash.Kind {
	switch action {
	case models.ScanStatusRegistered:
		return flash.KindSuccess
	case models.ScanStatusAlreadyRegistered:
		return flash.KindInfo
	default:
		return flash.KindError
	}
}
