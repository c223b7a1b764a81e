package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/scan-registration/internal/models"
	"github.com/noah-isme/scan-registration/pkg/export"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
)

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

type studentLister interface {
	List(ctx context.Context) ([]models.Student, error)
}

type scanLogLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.ScanLog, error)
}

// ExportResult is a rendered download.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the student directory and scan log as CSV or PDF.
type ExportService struct {
	students studentLister
	logs     scanLogLister
	csv      renderer
	pdf      renderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the pkg/export defaults.
func NewExportService(students studentLister, logs scanLogLister, logger *zap.Logger, csv, pdf renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		students: students,
		logs:     logs,
		csv:      csv,
		pdf:      pdf,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Students renders the full directory.
func (s *ExportService) Students(ctx context.Context, format models.ExportFormat) (*ExportResult, error) {
	r, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}
	dataset := export.Dataset{
		Title:   "Students",
		Headers: []string{"Student ID", "Name", "Email", "Age", "Competition", "Registered"},
	}
	for _, st := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student ID":  st.StudentID,
			"Name":        st.Name,
			"Email":       st.Email,
			"Age":         strconv.Itoa(st.Age),
			"Competition": yesNo(st.Competition),
			"Registered":  yesNo(st.RegistrationStatus),
		})
	}
	return s.render(r, dataset, "students")
}

// ScanLogs renders the most recent limit scan log entries.
func (s *ExportService) ScanLogs(ctx context.Context, format models.ExportFormat, limit int) (*ExportResult, error) {
	r, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	logs, err := s.logs.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	dataset := export.Dataset{
		Title:   "Scan Logs",
		Headers: []string{"Timestamp", "Student ID", "Student Name", "Status", "Scan Type"},
	}
	for _, entry := range logs {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Timestamp":    entry.Timestamp.UTC().Format(time.RFC3339),
			"Student ID":   entry.StudentID,
			"Student Name": entry.StudentName,
			"Status":       string(entry.Status),
			"Scan Type":    string(entry.ScanType),
		})
	}
	return s.render(r, dataset, "scan_logs")
}

func (s *ExportService) renderer(format models.ExportFormat) (renderer, error) {
	switch format {
	case models.ExportFormatCSV, "":
		return s.csv, nil
	case models.ExportFormatPDF:
		return s.pdf, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *ExportService) render(r renderer, dataset export.Dataset, name string) (*ExportResult, error) {
	payload, err := r.Render(dataset)
	if err != nil {
		s.logger.Error("export render failed", zap.String("export", name), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("%s_%s.%s", name, s.now().Format("20060102_150405"), r.Extension()),
		ContentType: r.ContentType(),
		Payload:     payload,
	}, nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
