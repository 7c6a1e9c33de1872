package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/linguacare/admin-api/internal/config"
	"github.com/linguacare/admin-api/internal/handler/appointment"
	"github.com/linguacare/admin-api/internal/handler/audit"
	"github.com/linguacare/admin-api/internal/handler/auth"
	"github.com/linguacare/admin-api/internal/handler/facility"
	"github.com/linguacare/admin-api/internal/handler/health"
	"github.com/linguacare/admin-api/internal/handler/interpreter"
	"github.com/linguacare/admin-api/internal/handler/invoice"
	"github.com/linguacare/admin-api/internal/handler/notification"
	"github.com/linguacare/admin-api/internal/handler/patient"
	"github.com/linguacare/admin-api/internal/middleware"
	"github.com/linguacare/admin-api/internal/model"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health       *health.Handler
	Auth         *auth.Handler
	Appointment  *appointment.Handler
	Notification *notification.Handler
	Facility     *facility.Handler
	Interpreter  *interpreter.Handler
	Patient      *patient.Handler
	Invoice      *invoice.Handler
	Audit        *audit.Handler
}

// New assembles the gin engine: middleware chain, public endpoints, then
// the authenticated /api/v1 surface. Entity writes and audit reads are
// admin-only.
func New(cfg *config.Config, authMW *middleware.AuthMiddleware, h Handlers) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		corsCfg.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.Security.AllowedHeaders
	}
	r.Use(middleware.CORS(corsCfg))

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		r.Use(limiter.RateLimit())
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/api/v1")
	h.Health.RegisterRoutes(public)
	h.Auth.RegisterRoutes(public)

	protected := r.Group("/api/v1")
	protected.Use(authMW.Authenticate())
	h.Appointment.RegisterRoutes(protected)
	h.Notification.RegisterRoutes(protected)
	h.Facility.RegisterRoutes(protected)
	h.Interpreter.RegisterRoutes(protected)
	h.Patient.RegisterRoutes(protected)
	h.Invoice.RegisterRoutes(protected)

	adminOnly := r.Group("/api/v1")
	adminOnly.Use(authMW.Authenticate(), authMW.RequireRole(model.RoleAdmin))
	h.Facility.RegisterAdminRoutes(adminOnly)
	h.Interpreter.RegisterAdminRoutes(adminOnly)
	h.Patient.RegisterAdminRoutes(adminOnly)
	h.Audit.RegisterRoutes(adminOnly)

	return r
}
