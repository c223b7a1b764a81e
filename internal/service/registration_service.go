package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/scan-registration/internal/models"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
)

type registrationDirectory interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	MarkRegistered(ctx context.Context, studentID string) (bool, error)
}

type scanLogAppender interface {
	Append(ctx context.Context, entry *models.ScanLog) error
}

// RegistrationConfig bounds the store calls made per attempt.
type RegistrationConfig struct {
	StoreTimeout time.Duration
}

// RegistrationService runs the lookup, status flip and scan log append for one identifier.
type RegistrationService struct {
	students registrationDirectory
	logs     scanLogAppender
	metrics  *MetricsService
	logger   *zap.Logger
	config   RegistrationConfig
	now      func() time.Time
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(students registrationDirectory, logs scanLogAppender, metrics *MetricsService, logger *zap.Logger, config RegistrationConfig) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		students: students,
		logs:     logs,
		metrics:  metrics,
		logger:   logger,
		config:   config,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register registers the student behind identifier. Not found and already
// registered are returned as results, never as errors. Every result is
// backed by exactly one scan log entry.
func (s *RegistrationService) Register(ctx context.Context, identifier string, scanType models.ScanType) (*models.RegistrationResult, error) {
	studentID := strings.TrimSpace(identifier)
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "student ID is required")
	}
	if !scanType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("unknown scan type %q", scanType))
	}

	student, err := s.find(ctx, studentID)
	if err != nil {
		s.logger.Error("student lookup failed", zap.String("student_id", studentID), zap.Error(err))
		s.metrics.RecordRegistration("error", scanType)
		return nil, storeError(err, "student directory unavailable")
	}

	var result *models.RegistrationResult
	switch {
	case student == nil:
		result = notFoundResult(studentID, scanType)
	case student.RegistrationStatus:
		result = alreadyRegisteredResult(student, scanType)
	default:
		changed, err := s.markRegistered(ctx, studentID)
		if err != nil {
			s.logger.Error("registration status update failed", zap.String("student_id", studentID), zap.Error(err))
			s.metrics.RecordRegistration("error", scanType)
			return nil, storeError(err, "student directory unavailable")
		}
		if !changed {
			s.logger.Info("registration already applied by a concurrent attempt", zap.String("student_id", studentID))
			student.RegistrationStatus = true
			result = alreadyRegisteredResult(student, scanType)
		} else {
			student.RegistrationStatus = true
			result = registeredResult(student, scanType)
		}
	}

	entry := &models.ScanLog{
		StudentID:   studentID,
		StudentName: models.UnknownStudentName,
		Status:      result.Action,
		ScanType:    scanType,
		Timestamp:   s.now(),
	}
	if student != nil {
		entry.StudentName = student.Name
	}
	if err := s.appendLog(ctx, entry); err != nil {
		s.logger.Error("scan log write failed",
			zap.String("student_id", studentID),
			zap.String("status", string(result.Action)),
			zap.Bool("status_changed", result.Action == models.ScanStatusRegistered),
			zap.Error(err))
		s.metrics.RecordRegistration("error", scanType)
		return nil, storeError(err, "scan log unavailable")
	}

	s.metrics.RecordRegistration(string(result.Action), scanType)
	return result, nil
}

func (s *RegistrationService) find(ctx context.Context, studentID string) (*models.Student, error) {
	ctx, cancel := withStoreTimeout(ctx, s.config.StoreTimeout)
	defer cancel()
	start := time.Now()
	student, err := s.students.FindByStudentID(ctx, studentID)
	s.metrics.ObserveStoreCall("find_student", time.Since(start))
	if errors.Is(err, appErrors.ErrRecordNotFound) {
		return nil, nil
	}
	return student, err
}

func (s *RegistrationService) markRegistered(ctx context.Context, studentID string) (bool, error) {
	ctx, cancel := withStoreTimeout(ctx, s.config.StoreTimeout)
	defer cancel()
	start := time.Now()
	changed, err := s.students.MarkRegistered(ctx, studentID)
	s.metrics.ObserveStoreCall("mark_registered", time.Since(start))
	return changed, err
}

func (s *RegistrationService) appendLog(ctx context.Context, entry *models.ScanLog) error {
	ctx, cancel := withStoreTimeout(ctx, s.config.StoreTimeout)
	defer cancel()
	start := time.Now()
	err := s.logs.Append(ctx, entry)
	s.metrics.ObserveStoreCall("append_scan_log", time.Since(start))
	return err
}

func registeredResult(student *models.Student, scanType models.ScanType) *models.RegistrationResult {
	return &models.RegistrationResult{
		Verified:     true,
		Action:       models.ScanStatusRegistered,
		Message:      fmt.Sprintf("Registration completed for %s!", student.Name),
		PopupMessage: fmt.Sprintf("✅ %s has been successfully registered!", student.Name),
		StudentID:    student.StudentID,
		ScanType:     scanType,
		Student:      student,
	}
}

func alreadyRegisteredResult(student *models.Student, scanType models.ScanType) *models.RegistrationResult {
	return &models.RegistrationResult{
		Verified:     true,
		Action:       models.ScanStatusAlreadyRegistered,
		Message:      fmt.Sprintf("%s is already registered", student.Name),
		PopupMessage: fmt.Sprintf("ℹ️ %s is already registered!", student.Name),
		StudentID:    student.StudentID,
		ScanType:     scanType,
		Student:      student,
	}
}

func notFoundResult(studentID string, scanType models.ScanType) *models.RegistrationResult {
	return &models.RegistrationResult{
		Verified:     false,
		Action:       models.ScanStatusNotFound,
		Message:      fmt.Sprintf("Student ID %s not found in database", studentID),
		PopupMessage: fmt.Sprintf("❌ Student ID %s not found in database!", studentID),
		StudentID:    studentID,
		ScanType:     scanType,
	}
}
