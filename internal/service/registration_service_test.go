package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/scan-registration/internal/models"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
)

type mockDirectory struct {
	students    map[string]*models.Student
	findErr     error
	markErr     error
	loseRace    bool
	mutations   int
	hadDeadline bool
}

func newMockDirectory(students ...models.Student) *mockDirectory {
	m := &mockDirectory{students: make(map[string]*models.Student)}
	for i := range students {
		s := students[i]
		m.students[s.StudentID] = &s
	}
	return m
}

func (m *mockDirectory) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	_, m.hadDeadline = ctx.Deadline()
	if m.findErr != nil {
		return nil, m.findErr
	}
	s, ok := m.students[studentID]
	if !ok {
		return nil, appErrors.ErrRecordNotFound
	}
	found := *s
	return &found, nil
}

func (m *mockDirectory) MarkRegistered(ctx context.Context, studentID string) (bool, error) {
	if m.markErr != nil {
		return false, m.markErr
	}
	if m.loseRace {
		return false, nil
	}
	s, ok := m.students[studentID]
	if !ok || s.RegistrationStatus {
		return false, nil
	}
	s.RegistrationStatus = true
	m.mutations++
	return true, nil
}

type mockScanLog struct {
	entries   []models.ScanLog
	appendErr error
}

func (m *mockScanLog) Append(ctx context.Context, entry *models.ScanLog) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, *entry)
	return nil
}

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newRegistrationServiceForTest(dir *mockDirectory, logs *mockScanLog) *RegistrationService {
	svc := NewRegistrationService(dir, logs, NewMetricsService(), zap.NewNop(), RegistrationConfig{StoreTimeout: time.Second})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func johnDoe(registered bool) models.Student {
	return models.Student{StudentID: "124BTEX2008", Name: "John Doe", Email: "john.doe@example.com", Age: 20, RegistrationStatus: registered}
}

func TestRegisterUnregisteredStudent(t *testing.T) {
	dir := newMockDirectory(johnDoe(false))
	logs := &mockScanLog{}
	svc := newRegistrationServiceForTest(dir, logs)

	res, err := svc.Register(context.Background(), "124BTEX2008", models.ScanTypeBarcode)
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, models.ScanStatusRegistered, res.Action)
	assert.Equal(t, "Registration completed for John Doe!", res.Message)
	assert.Equal(t, "✅ John Doe has been successfully registered!", res.PopupMessage)
	require.NotNil(t, res.Student)
	assert.True(t, res.Student.RegistrationStatus)
	assert.True(t, dir.students["124BTEX2008"].RegistrationStatus)

	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.ScanLog{
		StudentID:   "124BTEX2008",
		StudentName: "John Doe",
		Status:      models.ScanStatusRegistered,
		ScanType:    models.ScanTypeBarcode,
		Timestamp:   fixedNow,
	}, logs.entries[0])
	assert.True(t, dir.hadDeadline)
}

func TestRegisterAlreadyRegisteredStudent(t *testing.T) {
	dir := newMockDirectory(johnDoe(true))
	logs := &mockScanLog{}
	svc := newRegistrationServiceForTest(dir, logs)

	res, err := svc.Register(context.Background(), "124BTEX2008", models.ScanTypeManual)
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, models.ScanStatusAlreadyRegistered, res.Action)
	assert.Equal(t, "John Doe is already registered", res.Message)
	assert.Equal(t, "ℹ️ John Doe is already registered!", res.PopupMessage)
	assert.Zero(t, dir.mutations)

	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.ScanStatusAlreadyRegistered, logs.entries[0].Status)
	assert.Equal(t, models.ScanTypeManual, logs.entries[0].ScanType)
}

func TestRegisterUnknownStudent(t *testing.T) {
	dir := newMockDirectory(johnDoe(false))
	logs := &mockScanLog{}
	svc := newRegistrationServiceForTest(dir, logs)

	res, err := svc.Register(context.Background(), "999NOPE", models.ScanTypeManual)
	require.NoError(t, err)
	assert.False(t, res.Verified)
	assert.Equal(t, models.ScanStatusNotFound, res.Action)
	assert.Equal(t, "Student ID 999NOPE not found in database", res.Message)
	assert.Equal(t, "❌ Student ID 999NOPE not found in database!", res.PopupMessage)
	assert.Nil(t, res.Student)
	assert.Zero(t, dir.mutations)
	assert.False(t, dir.students["124BTEX2008"].RegistrationStatus)

	require.Len(t, logs.entries, 1)
	assert.Equal(t, "999NOPE", logs.entries[0].StudentID)
	assert.Equal(t, models.UnknownStudentName, logs.entries[0].StudentName)
	assert.Equal(t, models.ScanStatusNotFound, logs.entries[0].Status)
	assert.Equal(t, models.ScanTypeManual, logs.entries[0].ScanType)
}

func TestRegisterTwiceMutatesOnce(t *testing.T) {
	dir := newMockDirectory(johnDoe(false))
	logs := &mockScanLog{}
	svc := newRegistrationServiceForTest(dir, logs)

	first, err := svc.Register(context.Background(), "124BTEX2008", models.ScanTypeBarcode)
	require.NoError(t, err)
	second, err := svc.Register(context.Background(), "124BTEX2008", models.ScanTypeBarcode)
	require.NoError(t, err)

	assert.Equal(t, models.ScanStatusRegistered, first.Action)
	assert.Equal(t, models.ScanStatusAlreadyRegistered, second.Action)
	assert.Equal(t, 1, dir.mutations)
	require.Len(t, logs.entries, 2)
	assert.Equal(t, models.ScanStatusRegistered, logs.entries[0].Status)
	assert.Equal(t, models.ScanStatusAlreadyRegistered, logs.entries[1].Status)
}

func TestRegisterTrimsIdentifier(t *testing.T) {
	dir := newMockDirectory(johnDoe(false))
	logs := &mockScanLog{}
	svc := newRegistrationServiceForTest(dir, logs)

	res, err := svc.Register(context.Background(), "  124BTEX2008\n", models.ScanTypeBarcode)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusRegistered, res.Action)
	assert.Equal(t, "124BTEX2008", logs.entries[0].StudentID)
}

func TestRegisterRejectsBlankIdentifier(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		dir := newMockDirectory(johnDoe(false))
		logs := &mockScanLog{}
		svc := newRegistrationServiceForTest(dir, logs)

		res, err := svc.Register(context.Background(), input, models.ScanTypeManual)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
		assert.Empty(t, logs.entries)
	}
}

func TestRegisterRejectsUnknownScanType(t *testing.T) {
	dir := newMockDirectory(johnDoe(false))
	logs := &mockScanLog{}
	svc := newRegistrationServiceForTest(dir, logs)

	_, err := svc.Register(context.Background(), "124BTEX2008", models.ScanType("camera"))
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
	assert.Empty(t, logs.entries)
	assert.Zero(t, dir.mutations)
}

func TestRegisterLookupFailureWritesNoLog(t *testing.T) {
	dir := newMockDirectory()
	dir.findErr = context.DeadlineExceeded
	logs := &mockScanLog{}
	svc := newRegistrationServiceForTest(dir, logs)

	_, err := svc.Register(context.Background(), "124BTEX2008", models.ScanTypeBarcode)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrStorageUnavailable)
	assert.Equal(t, 503, appErrors.FromError(err).Status)
	assert.Empty(t, logs.entries)
}

func TestRegisterMalformedRecordKeepsDecodeKind(t *testing.T) {
	dir := newMockDirectory()
	dir.findErr = appErrors.Clone(appErrors.ErrDecode, "student document has no student_id")
	logs := &mockScanLog{}
	svc := newRegistrationServiceForTest(dir, logs)

	_, err := svc.Register(context.Background(), "124BTEX2008", models.ScanTypeBarcode)
	assert.ErrorIs(t, err, appErrors.ErrDecode)
	assert.Empty(t, logs.entries)
}

func TestRegisterStatusUpdateFailure(t *testing.T) {
	dir := newMockDirectory(johnDoe(false))
	dir.markErr = errors.New("connection refused")
	logs := &mockScanLog{}
	svc := newRegistrationServiceForTest(dir, logs)

	_, err := svc.Register(context.Background(), "124BTEX2008", models.ScanTypeBarcode)
	assert.ErrorIs(t, err, appErrors.ErrStorageUnavailable)
	assert.Empty(t, logs.entries)
}

func TestRegisterLogFailureKeepsStatusFlip(t *testing.T) {
	dir := newMockDirectory(johnDoe(false))
	logs := &mockScanLog{appendErr: errors.New("write concern timeout")}
	svc := newRegistrationServiceForTest(dir, logs)

	res, err := svc.Register(context.Background(), "124BTEX2008", models.ScanTypeBarcode)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, appErrors.ErrStorageUnavailable)
	assert.True(t, dir.students["124BTEX2008"].RegistrationStatus)
	assert.Equal(t, 1, dir.mutations)
}

func TestRegisterLostRaceReportsAlreadyRegistered(t *testing.T) {
	dir := newMockDirectory(johnDoe(false))
	dir.loseRace = true
	logs := &mockScanLog{}
	svc := newRegistrationServiceForTest(dir, logs)

	res, err := svc.Register(context.Background(), "124BTEX2008", models.ScanTypeBarcode)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusAlreadyRegistered, res.Action)
	assert.True(t, res.Student.RegistrationStatus)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.ScanStatusAlreadyRegistered, logs.entries[0].Status)
}
