package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/scan-registration/internal/models"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
)

// PostgresScanLogRepository is the append-only scan log in PostgreSQL.
type PostgresScanLogRepository struct {
	db *sqlx.DB
}

// NewPostgresScanLogRepository constructs a PostgresScanLogRepository.
func NewPostgresScanLogRepository(db *sqlx.DB) *PostgresScanLogRepository {
	return &PostgresScanLogRepository{db: db}
}

// Append writes one scan log entry.
func (r *PostgresScanLogRepository) Append(ctx context.Context, entry *models.ScanLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	const query = `INSERT INTO scan_logs (id, student_id, student_name, status, scan_type, timestamp)
        VALUES (:id, :student_id, :student_name, :status, :scan_type, :timestamp)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("append scan log: %w", err)
	}
	return nil
}

// ListRecent returns up to limit entries, newest first.
func (r *PostgresScanLogRepository) ListRecent(ctx context.Context, limit int) ([]models.ScanLog, error) {
	const query = `SELECT id, student_id, student_name, status, scan_type, timestamp FROM scan_logs ORDER BY timestamp DESC LIMIT $1`
	var logs []models.ScanLog
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("list scan logs: %w", err)
	}
	for i := range logs {
		if !logs[i].Valid() {
			return nil, appErrors.Clone(appErrors.ErrDecode, fmt.Sprintf("scan log row %s is malformed", logs[i].ID))
		}
	}
	return logs, nil
}

// PostgresAuditRepository mirrors session events into audit_logs.
type PostgresAuditRepository struct {
	db *sqlx.DB
}

// NewPostgresAuditRepository constructs a PostgresAuditRepository.
func NewPostgresAuditRepository(db *sqlx.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

// CreateAuditLog stores an audit log entry.
func (r *PostgresAuditRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, action, username, session_id, ip_address, user_agent, created_at)
        VALUES (:id, :action, :username, :session_id, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
