// Package main runs the background job worker (report archival to S3).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/assembleia-vote/backend/config"
	"github.com/assembleia-vote/backend/internal/events"
	"github.com/assembleia-vote/backend/internal/participants"
	"github.com/assembleia-vote/backend/internal/reports"
	"github.com/assembleia-vote/backend/internal/results"
	"github.com/assembleia-vote/backend/internal/worker"
	"github.com/assembleia-vote/backend/pkg/database"
	"github.com/assembleia-vote/backend/pkg/queue"
	"github.com/assembleia-vote/backend/pkg/redis"
	"github.com/assembleia-vote/backend/pkg/storage"
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

	s3Cfg := storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		ReportsBucket:        cfg.AWS.ReportsBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}
	s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	eventService := events.NewService(events.NewRepository(pool), logger)
	participantService := participants.NewService(participants.NewRepository(pool), logger)
	resultService := results.NewService(results.NewRepository(pool), logger)
	reportRepo := reports.NewRepository(pool)
	reportService := reports.NewService(reportRepo, eventService, participantService, resultService, nil, logger)

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewReportProcessor(reportService, reportRepo, s3Client, jobQueue, logger)

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
