package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/scan-registration/internal/models"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, student *models.Student) error
	Upsert(ctx context.Context, student *models.Student, fields models.StudentFields) error
	InsertMany(ctx context.Context, students []models.Student) error
}

// StudentService handles directory reads and student provisioning.
type StudentService struct {
	repo         studentRepository
	validator    *validator.Validate
	logger       *zap.Logger
	storeTimeout time.Duration
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger, storeTimeout time.Duration) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger, storeTimeout: storeTimeout}
}

// List returns every student ordered by name.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()
	students, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("list students failed", zap.Error(err))
		return nil, storeError(err, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

// Create provisions a single student.
func (s *StudentService) Create(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := &models.Student{
		StudentID:          req.StudentID,
		Name:               req.Name,
		Email:              req.Email,
		Age:                req.Age,
		Competition:        req.Competition,
		RegistrationStatus: req.RegistrationStatus,
	}
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, err
		}
		s.logger.Error("create student failed", zap.String("student_id", student.StudentID), zap.Error(err))
		return nil, storeError(err, "failed to create student")
	}
	return student, nil
}

// SampleStudents is the development roster inserted into an empty directory.
func SampleStudents() []models.Student {
	return []models.Student{
		{StudentID: "124BTEX2008", Name: "John Doe", Age: 25, Email: "john.doe@example.com", RegistrationStatus: true, Competition: true},
		{StudentID: "22UF17309EC077", Name: "Sid", Age: 25, Email: "sid@example.com"},
		{StudentID: "23UF12345678EC076", Name: "Jane Smith", Age: 22, Email: "jane.smith@example.com", Competition: true},
		{StudentID: "123456789", Name: "Bob Johnson", Age: 21, Email: "bob.johnson@example.com"},
		{StudentID: "987654321", Name: "Alice Brown", Age: 24, Email: "alice.brown@example.com", RegistrationStatus: true, Competition: true},
	}
}

// SeedSamples inserts the sample roster when the directory is empty and
// returns how many students were inserted.
func (s *StudentService) SeedSamples(ctx context.Context) (int, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, storeError(err, "failed to count students")
	}
	if total > 0 {
		return 0, nil
	}
	samples := SampleStudents()
	if err := s.repo.InsertMany(ctx, samples); err != nil {
		return 0, storeError(err, "failed to insert sample students")
	}
	s.logger.Info("sample students created", zap.Int("count", len(samples)))
	return len(samples), nil
}

type rosterField int

const (
	fieldIgnored rosterField = iota
	fieldStudentID
	fieldName
	fieldEmail
	fieldAge
	fieldCompetition
	fieldRegistration
)

var rosterHeaders = map[string]rosterField{
	"student_id":          fieldStudentID,
	"id":                  fieldStudentID,
	"student id":          fieldStudentID,
	"name":                fieldName,
	"student_name":        fieldName,
	"full_name":           fieldName,
	"email":               fieldEmail,
	"email_address":       fieldEmail,
	"age":                 fieldAge,
	"competition":         fieldCompetition,
	"in_competition":      fieldCompetition,
	"registration_status": fieldRegistration,
	"registered":          fieldRegistration,
	"status":              fieldRegistration,
}

// ImportCSV upserts a roster export keyed by student_id. The first row is
// the header. Rows without an id, or shorter than the header, are skipped.
func (s *StudentService) ImportCSV(ctx context.Context, r io.Reader) (*models.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, appErrors.Clone(appErrors.ErrInvalidInput, "roster file is empty")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "roster file is not valid CSV")
	}
	fields := make([]rosterField, len(header))
	hasID := false
	for i, name := range header {
		fields[i] = rosterHeaders[strings.ToLower(strings.TrimSpace(name))]
		if fields[i] == fieldStudentID {
			hasID = true
		}
	}
	if !hasID {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "roster header has no student id column")
	}

	summary := &models.ImportSummary{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "roster file is not valid CSV")
		}
		summary.Rows++
		if len(row) < len(header) {
			summary.Skipped++
			continue
		}
		student, present := rosterStudent(fields, row)
		if student.StudentID == "" {
			summary.Skipped++
			continue
		}
		if err := s.upsert(ctx, &student, present); err != nil {
			s.logger.Error("roster upsert failed", zap.String("student_id", student.StudentID), zap.Error(err))
			return summary, storeError(err, fmt.Sprintf("failed to import student %s", student.StudentID))
		}
		summary.Synced++
	}
	s.logger.Info("roster imported", zap.Int("rows", summary.Rows), zap.Int("synced", summary.Synced), zap.Int("skipped", summary.Skipped))
	return summary, nil
}

func (s *StudentService) upsert(ctx context.Context, student *models.Student, fields models.StudentFields) error {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.repo.Upsert(ctx, student, fields)
}

// rosterStudent maps one row and reports which attributes the row carried.
// An unparsable age is treated as absent.
func rosterStudent(fields []rosterField, row []string) (models.Student, models.StudentFields) {
	var student models.Student
	present := models.StudentFields{}
	for i, field := range fields {
		value := strings.TrimSpace(row[i])
		switch field {
		case fieldStudentID:
			student.StudentID = value
		case fieldName:
			student.Name = value
			present[models.StudentFieldName] = true
		case fieldEmail:
			student.Email = value
			present[models.StudentFieldEmail] = true
		case fieldAge:
			if age, err := strconv.Atoi(value); err == nil && age >= 0 {
				student.Age = age
				present[models.StudentFieldAge] = true
			}
		case fieldCompetition:
			student.Competition = truthy(value, false)
			present[models.StudentFieldCompetition] = true
		case fieldRegistration:
			student.RegistrationStatus = truthy(value, true)
			present[models.StudentFieldRegistrationStatus] = true
		}
	}
	return student, present
}

func truthy(raw string, allowRegistered bool) bool {
	switch strings.ToLower(raw) {
	case "true", "yes", "1", "y":
		return true
	case "registered":
		return allowRegistered
	default:
		return false
	}
}
