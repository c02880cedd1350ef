package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"studiofinder_backend/database"
	"studiofinder_backend/internal/auth"
	"studiofinder_backend/internal/cache"
	"studiofinder_backend/internal/config"
	"studiofinder_backend/internal/email"
	"studiofinder_backend/internal/geocoding"
	"studiofinder_backend/internal/handlers"
	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/metrics"
	"studiofinder_backend/internal/middleware"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/internal/routes"
	"studiofinder_backend/internal/services"
	"studiofinder_backend/internal/services/payments"
	"studiofinder_backend/internal/storage"
	"studiofinder_backend/internal/validator"
	"studiofinder_backend/internal/workers"
	"studiofinder_backend/pkg/apperrors"
)

const shutdownTimeout = 10 * time.Second

// Run поднимает БД, воркер и HTTP сервер; блокируется до SIGINT/SIGTERM.
func Run(cfg *config.Config) error {
	InitLogging(cfg)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	if err := InitSentry(cfg); err != nil {
		logger.Warn("Sentry disabled", "error", err)
	} else if cfg.Sentry.DSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	gormDB, sqlDB, err := OpenDatabase(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate || cfg.Database.SQLMigrations {
		if err := database.Migrate(gormDB, cfg.Database); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if _, err := database.SeedFirstAdmin(gormDB, cfg.FirstAdminEmail, cfg.FirstAdminPassword); err != nil {
		return fmt.Errorf("failed to seed first admin user: %w", err)
	}

	deps, err := BuildDependencies(cfg)
	if err != nil {
		return err
	}
	container := services.NewServiceContainer(deps)
	router := SetupRouter(cfg, gormDB, sqlDB, deps, container)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := workers.NewEnforcementWorker(gormDB, container.EnforcementService, cfg.Cron.Schedule)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Start(ctx); err != nil {
			logger.Error("Enforcement worker failed", "error", err)
		}
	}()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			<-workerDone
			return fmt.Errorf("server startup error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	<-workerDone
	logger.Info("Server stopped")
	return nil
}

func InitLogging(cfg *config.Config) {
	logger.Init(logger.Options{Env: cfg.Server.Env, File: cfg.Logging.File})
	apperrors.SetDebug(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
}

// InitSentry is a no-op without a DSN.
func InitSentry(cfg *config.Config) error {
	if cfg.Sentry.DSN == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Server.Env,
		EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
	})
}

func OpenDatabase(cfg *config.Config) (*gorm.DB, *sql.DB, error) {
	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Connect(cfg.Database, cfg.IsDevelopment())
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get *sql.DB from GORM: %w", err)
	}
	logger.Info("Database connected")
	return gormDB, sqlDB, nil
}

// BuildDependencies собирает внешние интеграции из конфигурации. Каждая
// интеграция без настроек деградирует до локальной реализации.
func BuildDependencies(cfg *config.Config) (services.Dependencies, error) {
	templates, err := email.NewDefaultTemplateManager()
	if err != nil {
		return services.Dependencies{}, fmt.Errorf("load email templates: %w", err)
	}
	emailProvider := email.NewProvider(cfg.Email, templates)

	storageInstance, err := storage.NewStorage(cfg)
	if err != nil {
		return services.Dependencies{}, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	geocoder, err := geocoding.New(cfg.Google.MapsAPIKey)
	if err != nil {
		return services.Dependencies{}, fmt.Errorf("failed to initialize geocoder: %w", err)
	}

	suggestionCache, err := cache.New(cfg.Redis, cfg.SuggestionTTL())
	if err != nil {
		logger.Warn("Redis unavailable, using in-process suggestion cache", "error", err)
		suggestionCache = cache.NewMemoryCache(cfg.SuggestionTTL())
	}

	paypalGateway, err := payments.NewPayPalGateway(cfg.PayPal)
	if err != nil {
		return services.Dependencies{}, fmt.Errorf("failed to initialize paypal: %w", err)
	}
	gateways := []payments.Gateway{payments.NewStripeGateway(cfg.Stripe), paypalGateway}
	for _, g := range gateways {
		logger.Info("Payment provider", "provider", g.Provider(), "enabled", g.Enabled())
	}

	return services.Dependencies{
		Tokens:          auth.NewTokenManager(cfg.JWT.Secret, cfg.JWTTTL()),
		Email:           emailProvider,
		Storage:         storageInstance,
		Geocoder:        geocoder,
		Cache:           suggestionCache,
		Gateways:        gateways,
		BaseURL:         cfg.Server.BaseURL,
		EmailRatePerSec: cfg.Email.SendRatePerSecond,
	}, nil
}

func SetupRouter(
	cfg *config.Config,
	gormDB *gorm.DB,
	sqlDB *sql.DB,
	deps services.Dependencies,
	container *services.ServiceContainer,
) *gin.Engine {
	router := initializeGinRouter(cfg, gormDB)

	if local, ok := deps.Storage.(*storage.LocalStorage); ok {
		router.Static(uploadsPath(cfg.Storage.BaseURL), local.BasePath())
	}

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	guards := handlers.Guards{
		Auth:      middleware.AuthMiddleware(deps.Tokens, repositories.NewUserRepository()),
		Admin:     middleware.RequireRoles(models.UserRoleAdmin),
		RateLimit: limiter.Middleware(),
		Cron:      middleware.CronAuthMiddleware(cfg.Cron.Secret),
	}
	base := handlers.NewBaseHandler(validator.New(), guards)
	appHandlers := handlers.NewAppHandlers(base, container, sqlDB, !cfg.IsDevelopment())

	routes.RegisterRoutes(router, appHandlers)
	return router
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	if cfg.Sentry.DSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Middleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins()))
	router.Use(middleware.DBMiddleware(db))
	return router
}

// uploadsPath is the URL path local files are served under.
func uploadsPath(baseURL string) string {
	if u, err := url.Parse(baseURL); err == nil && u.Path != "" && u.Path != "/" {
		return u.Path
	}
	return "/uploads"
}
