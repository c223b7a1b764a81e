package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/scan-registration/internal/models"
	"github.com/noah-isme/scan-registration/internal/repository"
	"github.com/noah-isme/scan-registration/internal/service"
	"github.com/noah-isme/scan-registration/pkg/cache"
	"github.com/noah-isme/scan-registration/pkg/config"
	"github.com/noah-isme/scan-registration/pkg/database"
)

// StudentStore is the student directory as seen by every service.
type StudentStore interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	MarkRegistered(ctx context.Context, studentID string) (bool, error)
	List(ctx context.Context) ([]models.Student, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, student *models.Student) error
	Upsert(ctx context.Context, student *models.Student, fields models.StudentFields) error
	InsertMany(ctx context.Context, students []models.Student) error
	Ping(ctx context.Context) error
}

// ScanLogStore is the append-only scan log.
type ScanLogStore interface {
	Append(ctx context.Context, entry *models.ScanLog) error
	ListRecent(ctx context.Context, limit int) ([]models.ScanLog, error)
}

// AuditStore records login and logout events.
type AuditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SessionStore persists operator sessions.
type SessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Stores holds the opened backends and how to release them.
type Stores struct {
	Students StudentStore
	ScanLogs ScanLogStore
	Audit    AuditStore
	closers  []func(context.Context) error
}

// Checks returns the readiness probes for the opened backends.
func (s *Stores) Checks() map[string]service.Pinger {
	return map[string]service.Pinger{"students": s.Students}
}

// Close releases every backend, returning the first error.
func (s *Stores) Close(ctx context.Context) error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenStores connects the document store selected by STORE_DRIVER.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := database.NewPostgres(cfg.Database, cfg.Store.Timeout)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := database.MigratePostgres(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		logger.Info("student directory connected", zap.String("driver", config.StorePostgres), zap.String("database", cfg.Database.Name))
		return &Stores{
			Students: repository.NewPostgresStudentRepository(db),
			ScanLogs: repository.NewPostgresScanLogRepository(db),
			Audit:    repository.NewPostgresAuditRepository(db),
			closers:  []func(context.Context) error{func(context.Context) error { return db.Close() }},
		}, nil
	default:
		client, err := database.NewMongo(ctx, cfg.Mongo, cfg.Store.Timeout)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		db := client.Database(cfg.Mongo.Database)
		students := repository.NewMongoStudentRepository(db.Collection(cfg.Mongo.StudentsCollection))
		logs := repository.NewMongoScanLogRepository(db.Collection(cfg.Mongo.ScanLogsCollection))

		indexCtx, cancel := context.WithTimeout(ctx, cfg.Store.Timeout)
		defer cancel()
		if err := students.EnsureIndexes(indexCtx); err != nil {
			logger.Warn("ensure student indexes failed", zap.Error(err))
		}
		if err := logs.EnsureIndexes(indexCtx); err != nil {
			logger.Warn("ensure scan log indexes failed", zap.Error(err))
		}

		logger.Info("student directory connected", zap.String("driver", config.StoreMongo), zap.String("database", cfg.Mongo.Database))
		return &Stores{
			Students: students,
			ScanLogs: logs,
			Audit:    repository.NewMongoAuditRepository(db.Collection(cfg.Mongo.SessionsCollection)),
			closers:  []func(context.Context) error{client.Disconnect},
		}, nil
	}
}

// OpenSessions returns the session store selected by SESSION_STORE. The
// returned close func is never nil.
func OpenSessions(cfg *config.Config, logger *zap.Logger) (SessionStore, func() error, error) {
	if cfg.Session.Store != config.SessionStoreRedis {
		return repository.NewMemorySessionRepository(), func() error { return nil }, nil
	}
	client, err := cache.NewRedis(cfg.Redis, cfg.Store.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("open redis: %w", err)
	}
	logger.Info("session store connected", zap.String("driver", config.SessionStoreRedis), zap.String("addr", client.Options().Addr))
	return repository.NewRedisSessionRepository(client), client.Close, nil
}
