package models

import (
	"strings"
	"time"
)

// ScanType tags how an identifier reached the registration workflow.
type ScanType string

const (
	ScanTypeBarcode ScanType = "barcode"
	ScanTypeManual  ScanType = "manual"
)

// Valid reports whether the scan type is one of the known tags.
func (t ScanType) Valid() bool {
	return t == ScanTypeBarcode || t == ScanTypeManual
}

// ScanStatus is the outcome recorded for a registration attempt.
type ScanStatus string

const (
	ScanStatusRegistered        ScanStatus = "registered"
	ScanStatusAlreadyRegistered ScanStatus = "already_registered"
	ScanStatusNotFound          ScanStatus = "not_found"
)

// Valid reports whether the status is one of the recorded outcomes.
func (s ScanStatus) Valid() bool {
	switch s {
	case ScanStatusRegistered, ScanStatusAlreadyRegistered, ScanStatusNotFound:
		return true
	}
	return false
}

// UnknownStudentName is recorded when the identifier matched no student.
const UnknownStudentName = "unknown"

// ScanLog is an immutable record of one registration attempt.
type ScanLog struct {
	ID          string     `db:"id" json:"id"`
	StudentID   string     `db:"student_id" json:"student_id"`
	StudentName string     `db:"student_name" json:"student_name"`
	Status      ScanStatus `db:"status" json:"status"`
	ScanType    ScanType   `db:"scan_type" json:"scan_type"`
	Timestamp   time.Time  `db:"timestamp" json:"timestamp"`
}

// Valid reports whether an entry read from the store is well formed.
func (l *ScanLog) Valid() bool {
	return l != nil && strings.TrimSpace(l.StudentID) != "" && l.Status.Valid() && l.ScanType.Valid()
}
