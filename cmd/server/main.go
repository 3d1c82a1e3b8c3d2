package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	app "github.com/skc/procurement/internal/application/requisition"
	"github.com/skc/procurement/internal/infrastructure/auth"
	"github.com/skc/procurement/internal/infrastructure/config"
	"github.com/skc/procurement/internal/infrastructure/logger"
	"github.com/skc/procurement/internal/infrastructure/persistence"
	infraref "github.com/skc/procurement/internal/infrastructure/reference"
	"github.com/skc/procurement/internal/infrastructure/seed"
	"github.com/skc/procurement/internal/infrastructure/telemetry"
	"github.com/skc/procurement/internal/interfaces/http/handler"
	"github.com/skc/procurement/internal/interfaces/http/middleware"
	"github.com/skc/procurement/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting procurement backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.Server.Port),
	)

	ctx := context.Background()

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		GormLogger: gormLog,
		Tracing:    cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories, reference data and application services
	repo := persistence.NewGormRequisitionRepository(db.DB)
	catalog := infraref.NewInMemoryCatalog(log)
	requisitionService := app.NewService(repo, log, cfg.Service.SlowCallThreshold)
	itemService := app.NewItemService(repo, catalog, log, cfg.Service.SlowCallThreshold)

	// Demo data (config-gated, empty stores only)
	if cfg.Seed.Demo {
		if err := seed.NewSeeder(repo, catalog, log).Run(ctx); err != nil {
			log.Fatal("Failed to seed demo data", zap.Error(err))
		}
	}

	// Basic Auth
	authenticator, err := auth.NewAuthenticator(cfg.Auth.Users, log)
	if err != nil {
		log.Fatal("Failed to initialize authentication", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithOrigins(cfg.Server.CORSOrigins))
	engine.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.Telemetry.Enabled,
	}))

	// Health check endpoint (outside API versioning and auth)
	healthHandler := handler.NewHealthHandler(db)
	engine.GET("/health", healthHandler.Check)

	// Versioned, authenticated API surface
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithGroupMiddleware(authenticator.Middleware()),
	)
	r.Register(handler.NewRequisitionHandler(requisitionService)).
		Register(handler.NewRequisitionItemHandler(itemService)).
		Register(handler.NewReferenceHandler(catalog)).
		Register(handler.NewAuthHandler())
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	db.LogStats(log)
	log.Info("Server exited gracefully")
}
