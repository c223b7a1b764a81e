package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/scan-registration/internal/middleware"
	"github.com/noah-isme/scan-registration/internal/service"
	"github.com/noah-isme/scan-registration/internal/web"
	"github.com/noah-isme/scan-registration/pkg/logger"
	corsmiddleware "github.com/noah-isme/scan-registration/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/scan-registration/pkg/middleware/requestid"
	"github.com/noah-isme/scan-registration/pkg/sessioncookie"
)

// RouterConfig carries the cross-cutting settings of the HTTP surface.
type RouterConfig struct {
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	AllowedOrigins []string
	CookiePolicy   sessioncookie.Policy
	EnableDocs     bool
}

// Handlers groups every route handler.
type Handlers struct {
	Auth         *AuthHandler
	Pages        *PageHandler
	Registration *RegistrationHandler
	Students     *StudentHandler
	ScanLogs     *ScanLogHandler
	Health       *HealthHandler
}

// NewRouter builds the gin engine. Every route except login, health, readiness,
// metrics and docs sits behind the session guard.
func NewRouter(cfg RouterConfig, guard middleware.SessionResolver, h Handlers) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.SetHTMLTemplate(web.Templates())

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", h.Health.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/login", h.Auth.LoginPage)
	r.POST("/login", h.Auth.Login)

	protected := r.Group("/")
	protected.Use(middleware.RequireSession(guard, cfg.CookiePolicy))
	{
		protected.GET("/logout", h.Auth.Logout)
		protected.GET("/", h.Pages.Index)
		protected.GET("/manual_entry", h.Pages.ManualEntry)
		protected.POST("/manual_register", h.Registration.ManualRegister)
		protected.GET("/students", h.Students.Page)
		protected.GET("/students/export", h.Students.Export)
		protected.GET("/scan_logs", h.ScanLogs.Page)
		protected.GET("/scan_logs/export", h.ScanLogs.Export)
	}

	api := r.Group("/api")
	api.Use(middleware.RequireSession(guard, cfg.CookiePolicy))
	{
		api.POST("/scan", h.Registration.Scan)
		api.POST("/manual_register", h.Registration.ManualRegisterAPI)
		api.GET("/students", h.Students.List)
		api.POST("/students", h.Students.Create)
		api.POST("/students/import", h.Students.Import)
		api.GET("/scan_logs", h.ScanLogs.List)
	}

	return r
}
