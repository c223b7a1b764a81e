// Package web holds the operator pages rendered by the HTTP surface.
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/noah-isme/scan-registration/internal/models"
	"github.com/noah-isme/scan-registration/pkg/flash"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page template names.
const (
	PageLogin       = "login.html"
	PageIndex       = "index.html"
	PageManualEntry = "manual_entry.html"
	PageStudents    = "students.html"
	PageScanLogs    = "scan_logs.html"
)

// Page is the view model shared by every template.
type Page struct {
	Title    string
	Username string
	Notice   *flash.Notice
	Error    string
	Students []models.Student
	Logs     []models.ScanLog
	Result   *models.RegistrationResult
	Form     map[string]string
}

var funcs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04:05")
	},
	"yesNo": func(v bool) string {
		if v {
			return "Yes"
		}
		return "No"
	},
}

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
}
