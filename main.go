package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/wellness-tracker/internal/adherence"
	"github.com/vcscsvcscs/wellness-tracker/internal/audit"
	"github.com/vcscsvcscs/wellness-tracker/internal/config"
	"github.com/vcscsvcscs/wellness-tracker/internal/handler"
	"github.com/vcscsvcscs/wellness-tracker/internal/metrics"
	"github.com/vcscsvcscs/wellness-tracker/internal/middleware"
	"github.com/vcscsvcscs/wellness-tracker/internal/pdf"
	"github.com/vcscsvcscs/wellness-tracker/internal/repository"
	"github.com/vcscsvcscs/wellness-tracker/internal/service"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger, err := config.NewLogger(cfg.Server, cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Calendar-day bucketing everywhere follows time.Local
	loc, _ := cfg.Analytics.Location()
	time.Local = loc

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("timezone", loc.String()),
	)

	ctx := context.Background()

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, cfg.Database.URL, logger); err != nil {
			logger.Fatal("Failed to apply database migrations", zap.Error(err))
		}
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to parse database URL", zap.Error(err))
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Successfully connected to database")

	// Initialize repositories
	episodeRepo := repository.NewEpisodeRepository(pool, logger)
	healthDataRepo := repository.NewHealthDataRepository(pool, logger)
	medicationRepo := repository.NewMedicationRepository(pool, logger)
	transformationRepo := repository.NewTransformationRepository(pool, logger)

	// Initialize services
	engine := adherence.NewEngine(transformationRepo, adherence.Options{
		WorkoutWeeklyTarget:    cfg.Analytics.WorkoutWeeklyTarget,
		DefaultProteinMinGrams: cfg.Analytics.DefaultProteinMinGrams,
	}, logger)
	summaryService := service.NewSummaryService(episodeRepo, healthDataRepo, medicationRepo, logger)
	reportService := service.NewReportService(episodeRepo, summaryService, pdf.NewPDFGenerator(logger), logger)
	adherenceService := service.NewAdherenceService(engine, medicationRepo, logger)

	m := metrics.New()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Recovery must be first
	r.Use(middleware.RecoveryMiddleware(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID", "X-Report-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(m.Middleware())
	r.Use(middleware.RequestLoggingMiddleware(logger))
	r.Use(middleware.ErrorLoggingMiddleware(logger))
	r.Use(middleware.SlowRequestMiddleware(logger, 1*time.Second))

	handler.RegisterRoutes(r, handler.Handlers{
		Health:    handler.NewHealthHandler(pool, version, logger),
		Migraine:  handler.NewMigraineHandler(summaryService, reportService, audit.NewLogger(pool, logger), m, logger),
		Adherence: handler.NewAdherenceHandler(adherenceService, m, logger),
		Metrics:   m.Handler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
