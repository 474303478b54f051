// Package main runs the background report worker (utilization refresh).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yug49/multi-tenant-event-booking-system/config"
	"github.com/yug49/multi-tenant-event-booking-system/internal/reports"
	"github.com/yug49/multi-tenant-event-booking-system/internal/worker"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/database"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/queue"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	reportRepo := reports.NewRepository(pool)
	utilizationCache := reports.NewCache(rdb.Client,
		time.Duration(cfg.Reports.UtilizationCacheTTLMin)*time.Minute, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	reportSvc := reports.NewService(reportRepo, utilizationCache, jobQueue, nil, cfg.Reports.ExternalAttendeeThreshold, logger)

	processor := worker.NewUtilizationProcessor(reportSvc, jobQueue,
		time.Duration(cfg.Reports.UtilizationRefreshMin)*time.Minute, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
