package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/scan-registration/internal/models"
)

// Pinger is satisfied by every store that supports a shallow connectivity check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService runs readiness checks against the configured stores.
type HealthService struct {
	checks  map[string]Pinger
	metrics *MetricsService
	logger  *zap.Logger
	timeout time.Duration
}

// NewHealthService constructs a HealthService. checks maps a component name to its pinger.
func NewHealthService(checks map[string]Pinger, metrics *MetricsService, logger *zap.Logger, timeout time.Duration) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthService{checks: checks, metrics: metrics, logger: logger, timeout: timeout}
}

// Ready pings each dependency once.
func (s *HealthService) Ready(ctx context.Context) models.Readiness {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	result := models.Readiness{Status: "ready", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.checks[name].Ping(pingCtx)
		cancel()
		if err != nil {
			s.logger.Warn("readiness check failed", zap.String("component", name), zap.Error(err))
			result.Status = "unavailable"
			result.Checks[name] = "down"
			continue
		}
		result.Checks[name] = "up"
	}
	result.Metrics = s.metrics.Snapshot()
	return result
}
