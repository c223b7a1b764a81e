package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/scan-registration/internal/models"
	"github.com/noah-isme/scan-registration/internal/service"
	"github.com/noah-isme/scan-registration/internal/web"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
	"github.com/noah-isme/scan-registration/pkg/response"
)

const maxRosterSize = 5 << 20

type studentDirectory interface {
	List(ctx context.Context) ([]models.Student, error)
	Create(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error)
	ImportCSV(ctx context.Context, r io.Reader) (*models.ImportSummary, error)
}

type exporter interface {
	Students(ctx context.Context, format models.ExportFormat) (*service.ExportResult, error)
	ScanLogs(ctx context.Context, format models.ExportFormat, limit int) (*service.ExportResult, error)
}

// StudentHandler manages student directory endpoints.
type StudentHandler struct {
	service studentDirectory
	export  exporter
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(svc studentDirectory, export exporter) *StudentHandler {
	return &StudentHandler{service: svc, export: export}
}

// Page renders the student table.
func (h *StudentHandler) Page(c *gin.Context) {
	page := web.Page{Title: "Students"}
	students, err := h.service.List(c.Request.Context())
	if err != nil {
		renderPageError(c, web.PageStudents, page, err)
		return
	}
	page.Students = students
	renderPage(c, http.StatusOK, web.PageStudents, page)
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.Student}
// @Failure 401 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /api/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, map[string]interface{}{"total": len(students)})
}

// Create godoc
// @Summary Provision a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body models.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope{data=models.Student}
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req models.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Import godoc
// @Summary Import a student roster
// @Description Upserts students from a CSV file by student_id. Existing registrations are kept.
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Roster CSV"
// @Success 200 {object} response.Envelope{data=models.ImportSummary}
// @Failure 400 {object} response.Envelope
// @Router /api/students/import [post]
func (h *StudentHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "roster file is required"))
		return
	}
	if header.Size > maxRosterSize {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidInput, "roster file is too large"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "roster file is unreadable"))
		return
	}
	defer file.Close()

	summary, err := h.service.ImportCSV(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Export streams the directory as CSV or PDF.
func (h *StudentHandler) Export(c *gin.Context) {
	format := models.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(models.ExportFormatCSV))))
	res, err := h.export.Students(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendExport(c, res)
}

func sendExport(c *gin.Context, res *service.ExportResult) {
	c.Header("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, res.ContentType, res.Payload)
}
