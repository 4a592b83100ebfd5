package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iisa-recruitment-backend/config"
	_ "iisa-recruitment-backend/docs" // Important for Swagger
	v1 "iisa-recruitment-backend/internal/delivery/http/v1"
	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/internal/navigation"
	"iisa-recruitment-backend/internal/repository/postgres"
	"iisa-recruitment-backend/internal/usecase"
	"iisa-recruitment-backend/pkg/auth"
	"iisa-recruitment-backend/pkg/database"
	"iisa-recruitment-backend/pkg/email"
	"iisa-recruitment-backend/pkg/geocoding"
	"iisa-recruitment-backend/pkg/logger"
	"iisa-recruitment-backend/pkg/redis"
	"iisa-recruitment-backend/pkg/security"
	"iisa-recruitment-backend/pkg/storage"
	"iisa-recruitment-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// @title           IISA Recruitment API
// @version         1.0
// @description     Candidate registration, self-edit and admin dashboard.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 2. Setup Logger
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	logger.Log.Info("Starting IISA recruitment backend", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, dbPool); err != nil {
			logger.Log.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// 4. Setup Redis (optional)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory fallbacks", "error", err)
		}
		defer redis.Close()
	}

	// 5. Setup Object Storage
	s3cfg := storage.S3ClientConfig{
		Provider:        storage.S3Provider(cfg.S3Provider),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	}
	s3Client, err := storage.NewS3Client(ctx, s3cfg)
	if err != nil {
		logger.Log.Error("Failed to create object storage client", "error", err)
		os.Exit(1)
	}
	images := storage.NewProfileImages(storage.NewBucket(s3Client, cfg.S3Bucket, s3cfg.PublicURLPrefix()))

	// 6. Setup Repositories
	candidateRepo := postgres.NewCandidateRepository(dbPool)
	adminRepo := postgres.NewAdminRepository(dbPool)
	analyticsRepo := postgres.NewAnalyticsRepository(dbPool)

	// 7. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - registration confirmations disabled")
	}

	// 8. Setup Geocoding
	var geoCache geocoding.Cache = geocoding.NewMemoryCache()
	if client := redis.Client(); client != nil {
		geoCache = geocoding.NewRedisCache(client, cfg.GeocodeCacheTTL)
	}
	var geoProvider geocoding.Provider
	if cfg.GoogleMapsAPIKey != "" {
		geoProvider = geocoding.NewGoogleProvider(cfg.GoogleMapsAPIKey, cfg.GeocodeEndpoint)
	}
	geocoder := geocoding.New(geoCache, geoProvider)

	// 9. Setup UseCases
	validate := validation.New()
	window := domain.EditWindow{Days: cfg.EditWindowDays, Location: cfg.EditWindowLocation}
	clock := domain.RealClock{}
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AdminTokenTTL, auth.NewProvider(cfg.JWKSURL))

	candidateUC := usecase.NewCandidateUsecase(candidateRepo, images, analyticsRepo, tokens, emailService, validate, window, clock)
	authUC := usecase.NewAuthUsecase(adminRepo, tokens, validate)
	dashboardUC := usecase.NewDashboardUsecase(candidateRepo, analyticsRepo, geocoder, cfg.EditWindowLocation, clock)

	checks := map[string]usecase.HealthCheck{
		"database": func(ctx context.Context) error { return dbPool.Ping(ctx) },
		"redis":    nil,
	}
	if redis.Client() != nil {
		checks["redis"] = redis.HealthCheck
	}
	healthUC := usecase.NewHealthUsecase(checks)

	// 10. Live navigation: rebuild every dashboard index on candidate changes
	registry := navigation.NewRegistry()
	go func() {
		if err := navigation.Follow(ctx, postgres.NewCandidateListener(dbPool), candidateRepo, registry); err != nil {
			logger.Log.Error("Candidate change listener stopped", "error", err)
		}
	}()

	// 11. Failed-login lockout with its own audit log
	audit := security.NewProductionAuditLogger("iisa-recruitment", cfg.IsProduction())
	defer audit.Sync()
	guardCfg := security.DefaultGuardConfig()
	guardCfg.MaxAttempts = cfg.LoginMaxAttempts
	guardCfg.BlockDuration = cfg.LoginBlockDuration
	loginGuard := security.NewLoginGuard(guardCfg, redis.Client(), audit)

	// 12. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:      authUC,
		CandidateUC: candidateUC,
		DashboardUC: dashboardUC,
		HealthUC:    healthUC,
		Tokens:      tokens,
		Registry:    registry,
		LoginGuard:  loginGuard,
		Window:      window,
		Clock:       clock,
		ImageHosts:  []string{s3cfg.PublicURLPrefix()},
		Config:      cfg,
	})

	// 13. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
