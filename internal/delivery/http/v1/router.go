package v1

import (
	"net/http"
	"time"

	"iisa-recruitment-backend/config"
	"iisa-recruitment-backend/internal/delivery/http/middleware"
	"iisa-recruitment-backend/internal/delivery/http/response"
	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/internal/navigation"
	"iisa-recruitment-backend/internal/usecase"
	"iisa-recruitment-backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC      domain.AuthUsecase
	CandidateUC domain.CandidateUsecase
	DashboardUC domain.DashboardUsecase
	HealthUC    usecase.HealthUsecase
	Tokens      middleware.TokenParser
	Registry    *navigation.Registry
	// LoginGuard is optional; nil disables the failed-login lockout
	LoginGuard *security.LoginGuard
	Window     domain.EditWindow
	Clock      domain.Clock
	// ImageHosts are added to the CSP img-src
	ImageHosts []string
	Config     *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Clock == nil {
		deps.Clock = domain.RealClock{}
	}
	if deps.Registry == nil {
		deps.Registry = navigation.NewRegistry()
	}
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.Origins(), cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(deps.ImageHosts...))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		status, ok := deps.HealthUC.Check(c)
		if !ok {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	submitLimit := middleware.RateLimitMiddleware(middleware.PublicRateLimitConfig(cfg.RateLimitPublicThreshold, window))
	loginLimit := middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(cfg.RateLimitLoginThreshold, window))
	NewPublicHandler(v1, deps, submitLimit)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.CSRFMiddleware(cfg.CookieSecure, middleware.AuthCookie))
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.AuthUC))
	{
		NewAuthHandler(v1, protected, deps, loginLimit)
		NewCandidateHandler(protected, deps)
		NewNavigationHandler(protected, deps)
		NewDashboardHandler(protected, deps)
	}

	return r
}
