// Package main runs the event booking HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yug49/multi-tenant-event-booking-system/config"
	"github.com/yug49/multi-tenant-event-booking-system/internal/allocations"
	"github.com/yug49/multi-tenant-event-booking-system/internal/auth"
	"github.com/yug49/multi-tenant-event-booking-system/internal/events"
	"github.com/yug49/multi-tenant-event-booking-system/internal/middleware"
	"github.com/yug49/multi-tenant-event-booking-system/internal/organizations"
	"github.com/yug49/multi-tenant-event-booking-system/internal/registrations"
	"github.com/yug49/multi-tenant-event-booking-system/internal/reports"
	"github.com/yug49/multi-tenant-event-booking-system/internal/resources"
	"github.com/yug49/multi-tenant-event-booking-system/internal/users"
	"github.com/yug49/multi-tenant-event-booking-system/internal/worker"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/database"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/queue"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/redis"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/response"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ReportsBucket:        cfg.AWS.ReportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Organizations
	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo, logger)

	// Users + auth
	userRepo := users.NewRepository(pool)
	userHandler := users.NewHandler(userRepo, orgRepo, logger)
	authHandler := auth.NewHandler(userRepo, jwtService, logger)

	// Resources
	resourceRepo := resources.NewRepository(pool)
	resourceHandler := resources.NewHandler(resourceRepo, orgRepo, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventSvc := events.NewService(eventRepo, logger)
	eventHandler := events.NewHandler(eventSvc, logger)

	// Registrations
	registrationRepo := registrations.NewRepository(pool)
	registrationSvc := registrations.NewService(registrationRepo, logger)
	registrationHandler := registrations.NewHandler(registrationSvc, logger)

	// Allocations
	allocationRepo := allocations.NewRepository(pool)
	allocationSvc := allocations.NewService(allocationRepo, logger)
	allocationHandler := allocations.NewHandler(allocationSvc, logger)

	// Reports
	reportRepo := reports.NewRepository(pool)
	utilizationCache := reports.NewCache(rdb.Client,
		time.Duration(cfg.Reports.UtilizationCacheTTLMin)*time.Minute, logger)
	var snapshotter reports.Snapshotter
	if s3Client != nil {
		snapshotter = s3Client
	}
	reportSvc := reports.NewService(reportRepo, utilizationCache, jobQueue, snapshotter, cfg.Reports.ExternalAttendeeThreshold, logger)
	reportHandler := reports.NewHandler(reportSvc, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	router.POST("/auth/login", authHandler.Login)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Organizations
		api.POST("/organizations", orgHandler.Create)
		api.GET("/organizations", orgHandler.List)
		api.GET("/organizations/:id", orgHandler.GetByID)
		api.PATCH("/organizations/:id", orgHandler.Update)
		api.DELETE("/organizations/:id", orgHandler.Delete)

		// Users
		api.POST("/users", userHandler.Create)
		api.GET("/users", userHandler.List)
		api.GET("/users/:id", userHandler.GetByID)
		api.PATCH("/users/:id", userHandler.Update)
		api.DELETE("/users/:id", userHandler.Delete)

		// Resources
		api.POST("/resources", resourceHandler.Create)
		api.GET("/resources", resourceHandler.List)
		api.GET("/resources/:id", resourceHandler.GetByID)
		api.PATCH("/resources/:id", resourceHandler.Update)
		api.DELETE("/resources/:id", resourceHandler.Delete)
		api.GET("/resources/:id/allocations", allocationHandler.ListByResource)

		// Events
		api.POST("/events", eventHandler.Create)
		api.GET("/events", eventHandler.List)
		api.GET("/events/:id", eventHandler.GetByID)
		api.PATCH("/events/:id", eventHandler.Update)
		api.DELETE("/events/:id", eventHandler.Delete)
		api.GET("/events/:id/children", eventHandler.ListChildren)

		// Registrations
		api.POST("/events/:id/registrations/user", registrationHandler.RegisterUser)
		api.POST("/events/:id/registrations/external", registrationHandler.RegisterExternal)
		api.GET("/events/:id/registrations", registrationHandler.ListByEvent)
		api.POST("/registrations/:id/checkin", registrationHandler.Checkin)
		api.DELETE("/registrations/:id", registrationHandler.Cancel)

		// Allocations
		api.POST("/allocations", allocationHandler.Create)
		api.DELETE("/allocations/:id", allocationHandler.Remove)
		api.GET("/events/:id/allocations", allocationHandler.ListByEvent)

		// Reports
		api.GET("/reports/double-booked-users", reportHandler.DoubleBookedUsers)
		api.GET("/reports/exclusive-conflicts", reportHandler.ExclusiveConflicts)
		api.GET("/reports/shareable-overallocations", reportHandler.ShareableOverAllocations)
		api.GET("/reports/consumable-overallocations", reportHandler.ConsumableOverAllocations)
		api.GET("/reports/resource-violations", reportHandler.ResourceViolations)
		api.GET("/reports/peak-usage", reportHandler.PeakUsage)
		api.GET("/reports/parent-child-violations", reportHandler.ParentChildViolations)
		api.GET("/reports/external-attendees", reportHandler.ExternalAttendees)
		api.GET("/reports/utilization", reportHandler.Utilization)
		api.POST("/reports/utilization/refresh", reportHandler.RefreshUtilization)
		api.POST("/reports/violations/export", reportHandler.ExportViolations)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process report worker; a dedicated worker binary exists for
	// deployments that split the queue consumer out.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	processor := worker.NewUtilizationProcessor(reportSvc, jobQueue,
		time.Duration(cfg.Reports.UtilizationRefreshMin)*time.Minute, logger)
	go processor.Run(workerCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
