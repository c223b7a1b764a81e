package models

import (
	"strings"
	"time"
)

// Student is a pre-provisioned attendee. Only the registration workflow
// mutates RegistrationStatus, and only from false to true.
type Student struct {
	ID                 string    `db:"id" json:"id"`
	StudentID          string    `db:"student_id" json:"student_id"`
	Name               string    `db:"name" json:"name"`
	Email              string    `db:"email" json:"email"`
	Age                int       `db:"age" json:"age"`
	Competition        bool      `db:"competition" json:"competition"`
	RegistrationStatus bool      `db:"registration_status" json:"registration_status"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// Valid reports whether a record read from the store carries its business key.
func (s *Student) Valid() bool {
	return s != nil && strings.TrimSpace(s.StudentID) != ""
}

// StudentField names a student attribute a roster import may overwrite.
type StudentField string

const (
	StudentFieldName               StudentField = "name"
	StudentFieldEmail              StudentField = "email"
	StudentFieldAge                StudentField = "age"
	StudentFieldCompetition        StudentField = "competition"
	StudentFieldRegistrationStatus StudentField = "registration_status"
)

// StudentFields is the set of attributes an upsert writes on an existing
// record. Attributes outside the set keep their stored value.
type StudentFields map[StudentField]bool

// Has reports whether f is part of the set.
func (f StudentFields) Has(field StudentField) bool {
	return f[field]
}

// CreateStudentRequest provisions a new student record.
type CreateStudentRequest struct {
	StudentID          string `json:"student_id" form:"student_id" validate:"required,max=64"`
	Name               string `json:"name" form:"name" validate:"required,max=200"`
	Email              string `json:"email" form:"email" validate:"omitempty,email"`
	Age                int    `json:"age" form:"age" validate:"gte=0,lte=150"`
	Competition        bool   `json:"competition" form:"competition"`
	RegistrationStatus bool   `json:"registration_status" form:"registration_status"`
}

// ImportSummary reports the outcome of a roster import.
type ImportSummary struct {
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`
	Synced  int `json:"synced"`
}
