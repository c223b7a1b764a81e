package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/scan-registration/api/swagger"
	"github.com/noah-isme/scan-registration/internal/app"
	"github.com/noah-isme/scan-registration/internal/handler"
	"github.com/noah-isme/scan-registration/internal/service"
	"github.com/noah-isme/scan-registration/pkg/config"
	"github.com/noah-isme/scan-registration/pkg/logger"
	"github.com/noah-isme/scan-registration/pkg/sessioncookie"
)

// @title Student Scan Registration API
// @version 1.0.0
// @description Operator console for registering students by barcode or typed ID.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := app.OpenStores(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open student directory", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			logr.Warn("closing stores failed", zap.Error(err))
		}
	}()

	sessions, closeSessions, err := app.OpenSessions(cfg, logr)
	if err != nil {
		logr.Fatal("failed to open session store", zap.Error(err))
	}
	defer closeSessions() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()

	authSvc := service.NewAuthService(sessions, stores.Audit, validate, logr, service.AuthConfig{
		Admin:        cfg.Admin,
		Secret:       cfg.Session.Secret,
		SessionTTL:   cfg.Session.TTL,
		StoreTimeout: cfg.Store.Timeout,
	})
	registrationSvc := service.NewRegistrationService(stores.Students, stores.ScanLogs, metrics, logr, service.RegistrationConfig{
		StoreTimeout: cfg.Store.Timeout,
	})
	studentSvc := service.NewStudentService(stores.Students, validate, logr, cfg.Store.Timeout)
	scanLogSvc := service.NewScanLogService(stores.ScanLogs, logr, cfg.ScanLogs.DefaultLimit, cfg.Store.Timeout)
	exportSvc := service.NewExportService(studentSvc, scanLogSvc, logr, nil, nil)

	checks := stores.Checks()
	checks["sessions"] = sessions
	healthSvc := service.NewHealthService(checks, metrics, logr, cfg.Store.Timeout)

	if cfg.Debug {
		seeded, err := studentSvc.SeedSamples(ctx)
		if err != nil {
			logr.Warn("seeding sample students failed", zap.Error(err))
		} else if seeded > 0 {
			logr.Info("seeded sample students", zap.Int("count", seeded))
		}
	}

	policy := sessioncookie.Policy{Secure: cfg.Session.CookieSecure, TTL: cfg.Session.TTL}
	router := handler.NewRouter(handler.RouterConfig{
		Logger:         logr,
		Metrics:        metrics,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		CookiePolicy:   policy,
		EnableDocs:     cfg.Env != config.EnvProduction,
	}, authSvc, handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc, policy, logr),
		Pages:        handler.NewPageHandler(),
		Registration: handler.NewRegistrationHandler(registrationSvc),
		Students:     handler.NewStudentHandler(studentSvc, exportSvc),
		ScanLogs:     handler.NewScanLogHandler(scanLogSvc, exportSvc),
		Health:       handler.NewHealthHandler(healthSvc, metrics),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
