package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/scan-registration/internal/models"
)

// MaxScanLogLimit caps a single scan log read.
const MaxScanLogLimit = 500

type scanLogReader interface {
	ListRecent(ctx context.Context, limit int) ([]models.ScanLog, error)
}

// ScanLogService serves the read side of the scan log.
type ScanLogService struct {
	repo         scanLogReader
	logger       *zap.Logger
	defaultLimit int
	storeTimeout time.Duration
}

// NewScanLogService constructs a ScanLogService.
func NewScanLogService(repo scanLogReader, logger *zap.Logger, defaultLimit int, storeTimeout time.Duration) *ScanLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &ScanLogService{repo: repo, logger: logger, defaultLimit: defaultLimit, storeTimeout: storeTimeout}
}

// ListRecent returns up to limit entries, newest first. A non-positive limit
// uses the configured default.
func (s *ScanLogService) ListRecent(ctx context.Context, limit int) ([]models.ScanLog, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > MaxScanLogLimit {
		limit = MaxScanLogLimit
	}
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()
	logs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error("list scan logs failed", zap.Error(err))
		return nil, storeError(err, "failed to list scan logs")
	}
	if logs == nil {
		logs = []models.ScanLog{}
	}
	return logs, nil
}
