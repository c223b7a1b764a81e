package models

// RegisterRequest carries an identifier submitted from the scanner or the manual form.
type RegisterRequest struct {
	StudentID string `json:"student_id" form:"student_id"`
}

// RegistrationResult is returned for every completed registration attempt,
// including the informational not-found and already-registered outcomes.
type RegistrationResult struct {
	Verified     bool       `json:"verified"`
	Action       ScanStatus `json:"action"`
	Message      string     `json:"message"`
	PopupMessage string     `json:"popup_message"`
	StudentID    string     `json:"student_id"`
	ScanType     ScanType   `json:"scan_type"`
	Student      *Student   `json:"student,omitempty"`
}

// ExportFormat selects the rendering of a download.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)
