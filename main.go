package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/sari-inventory-api/config"
	"github.com/kendall-kelly/sari-inventory-api/controllers"
	"github.com/kendall-kelly/sari-inventory-api/middleware"
	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/kendall-kelly/sari-inventory-api/services"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

// app owns every long-lived resource behind the HTTP server
type app struct {
	router            *gin.Engine
	db                *gorm.DB
	redis             *redis.Client
	shutdownTelemetry config.ShutdownFunc
	logger            *logrus.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := config.NewLogger(cfg)
	logger.Info("Starting Sari Inventory API server...")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize application")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Server is running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shut down")
	}
	a.close(shutdownCtx)
	logger.Info("Server stopped")
}

// newApp connects the database, optional redis and S3, migrates the schema and builds the router
func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app, error) {
	shutdownTelemetry, err := config.InitTelemetry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{shutdownTelemetry: shutdownTelemetry, logger: logger}

	a.db, err = config.ConnectDatabase(cfg)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	if err := a.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		a.close(ctx)
		return nil, err
	}
	logger.Info("Database migration completed successfully")

	a.redis, err = config.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, running without dashboard cache and import lock")
	}
	var locker *redislock.Client
	if a.redis != nil {
		locker = redislock.New(a.redis)
	}

	metrics, err := services.NewMetrics()
	if err != nil {
		logger.WithError(err).Warn("failed to register metrics")
	}

	var store services.ReportStore
	if cfg.S3Enabled() {
		s3Service, err := services.NewS3Service(ctx, cfg)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		store = s3Service
	} else {
		logger.Info("AWS_S3_BUCKET not set, report archiving disabled")
	}

	guards, err := middleware.WriteGuards(cfg, logger)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	a.router = controllers.NewRouter(controllers.Dependencies{
		DB:           a.db,
		Cache:        services.NewCache(a.redis, cfg.DashboardCacheTTL, logger),
		Metrics:      metrics,
		Locker:       locker,
		ReportStore:  store,
		PhoneRegion:  cfg.PhoneRegion,
		Logger:       logger,
		WriteGuards:  guards,
		CORSOrigins:  cfg.CORSAllowedOrigins,
		AllowAllCORS: !cfg.IsProduction(),
		ServiceName:  cfg.ServiceName,
	})
	return a, nil
}

// close releases resources in reverse order of acquisition
func (a *app) close(ctx context.Context) {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.WithError(err).Warn("failed to close redis client")
		}
	}
	if err := config.CloseDatabase(a.db); err != nil {
		a.logger.WithError(err).Warn("failed to close database")
	}
	if a.shutdownTelemetry != nil {
		if err := a.shutdownTelemetry(ctx); err != nil {
			a.logger.WithError(err).Warn("failed to flush telemetry")
		}
	}
}
