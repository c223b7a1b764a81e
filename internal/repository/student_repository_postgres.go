package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/scan-registration/internal/models"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
)

const studentColumns = "id, student_id, name, email, age, competition, registration_status, created_at, updated_at"

const uniqueViolation = "23505"

// PostgresStudentRepository stores the student directory in PostgreSQL.
type PostgresStudentRepository struct {
	db *sqlx.DB
}

// NewPostgresStudentRepository constructs a PostgresStudentRepository.
func NewPostgresStudentRepository(db *sqlx.DB) *PostgresStudentRepository {
	return &PostgresStudentRepository{db: db}
}

// FindByStudentID fetches a student by business identifier.
func (r *PostgresStudentRepository) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE student_id = $1 LIMIT 1"
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	if !student.Valid() {
		return nil, appErrors.Clone(appErrors.ErrDecode, "student row has no student_id")
	}
	return &student, nil
}

// MarkRegistered flips registration_status to true only if it is currently false.
// It reports whether this call performed the flip.
func (r *PostgresStudentRepository) MarkRegistered(ctx context.Context, studentID string) (bool, error) {
	const query = "UPDATE students SET registration_status = TRUE, updated_at = $2 WHERE student_id = $1 AND registration_status = FALSE"
	res, err := r.db.ExecContext(ctx, query, studentID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("mark registered: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark registered rows: %w", err)
	}
	return affected == 1, nil
}

// List returns every student ordered by name.
func (r *PostgresStudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students ORDER BY name ASC, student_id ASC"
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	for i := range students {
		if !students[i].Valid() {
			return nil, appErrors.Clone(appErrors.ErrDecode, fmt.Sprintf("student row %s has no student_id", students[i].ID))
		}
	}
	return students, nil
}

// Count returns the number of provisioned students.
func (r *PostgresStudentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// Create inserts a new student, rejecting a duplicate student_id.
func (r *PostgresStudentRepository) Create(ctx context.Context, student *models.Student) error {
	stamp(student)
	const query = `INSERT INTO students (` + studentColumns + `)
        VALUES (:id, :student_id, :name, :email, :age, :competition, :registration_status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student ID %s already exists", student.StudentID))
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// upsertColumns lists, in statement order, the columns a roster upsert may overwrite.
var upsertColumns = []struct {
	field models.StudentField
	set   string
}{
	{models.StudentFieldName, "name = EXCLUDED.name"},
	{models.StudentFieldEmail, "email = EXCLUDED.email"},
	{models.StudentFieldAge, "age = EXCLUDED.age"},
	{models.StudentFieldCompetition, "competition = EXCLUDED.competition"},
	{models.StudentFieldRegistrationStatus, "registration_status = students.registration_status OR EXCLUDED.registration_status"},
}

// Upsert inserts or refreshes a student by student_id. On an existing row
// only the columns in fields are overwritten, and a stored registration is
// never reset by an incoming false.
func (r *PostgresStudentRepository) Upsert(ctx context.Context, student *models.Student, fields models.StudentFields) error {
	stamp(student)
	assignments := make([]string, 0, len(upsertColumns)+1)
	for _, col := range upsertColumns {
		if fields.Has(col.field) {
			assignments = append(assignments, col.set)
		}
	}
	assignments = append(assignments, "updated_at = EXCLUDED.updated_at")

	query := `INSERT INTO students (` + studentColumns + `)
        VALUES (:id, :student_id, :name, :email, :age, :competition, :registration_status, :created_at, :updated_at)
        ON CONFLICT (student_id) DO UPDATE SET ` + strings.Join(assignments, ", ")
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}
	return nil
}

// InsertMany inserts the given students in one transaction.
func (r *PostgresStudentRepository) InsertMany(ctx context.Context, students []models.Student) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert students: %w", err)
	}
	const query = `INSERT INTO students (` + studentColumns + `)
        VALUES (:id, :student_id, :name, :email, :age, :competition, :registration_status, :created_at, :updated_at)`
	for i := range students {
		stamp(&students[i])
		if _, err := tx.NamedExecContext(ctx, query, &students[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert student %s: %w", students[i].StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert students: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *PostgresStudentRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func stamp(student *models.Student) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
}
