// Package main runs the municipal voting platform HTTP server with live
// tally WebSocket feed and graceful shutdown.
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

	"github.com/assembleia-vote/backend/config"
	"github.com/assembleia-vote/backend/internal/auth"
	"github.com/assembleia-vote/backend/internal/events"
	"github.com/assembleia-vote/backend/internal/middleware"
	"github.com/assembleia-vote/backend/internal/models"
	"github.com/assembleia-vote/backend/internal/municipalities"
	"github.com/assembleia-vote/backend/internal/participants"
	"github.com/assembleia-vote/backend/internal/realtime"
	"github.com/assembleia-vote/backend/internal/reports"
	"github.com/assembleia-vote/backend/internal/results"
	"github.com/assembleia-vote/backend/internal/votes"
	"github.com/assembleia-vote/backend/pkg/database"
	"github.com/assembleia-vote/backend/pkg/queue"
	"github.com/assembleia-vote/backend/pkg/redis"
	"github.com/assembleia-vote/backend/pkg/response"
	"github.com/assembleia-vote/backend/pkg/storage"
	"github.com/assembleia-vote/backend/pkg/utils"
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
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)
	bootstrapAdmin(ctx, authRepo, cfg.Admin, logger)

	// Municipalities
	municipalityRepo := municipalities.NewRepository(pool)
	municipalityHandler := municipalities.NewHandler(municipalityRepo)

	// Events
	eventRepo := events.NewRepository(pool)
	eventService := events.NewService(eventRepo, logger)

	// Participants
	participantRepo := participants.NewRepository(pool)
	participantService := participants.NewService(participantRepo, logger)
	participantHandler := participants.NewHandler(participantService)
	eventHandler := events.NewHandler(eventService, participantService, logger)

	// Results + live tally broadcaster
	resultRepo := results.NewRepository(pool)
	resultService := results.NewService(resultRepo, logger)
	resultHandler := results.NewHandler(resultService)
	broadcaster := results.NewBroadcaster(resultService, hub,
		time.Duration(cfg.Tally.IntervalSec)*time.Second, logger)
	defer broadcaster.Close()
	hub.SetOccupancyChangeHandler(broadcaster.OnOccupancyChange)

	// Votes
	voteRepo := votes.NewRepository(pool)
	voteService := votes.NewService(voteRepo, logger)
	voteService.SetVoteHook(broadcaster.PushNow)
	voteHandler := votes.NewHandler(voteService)

	// Reports (CSV export; archived to S3 on event close)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	reportRepo := reports.NewRepository(pool)
	var enqueuer reports.Enqueuer
	if s3Client != nil {
		enqueuer = jobQueue
	}
	reportService := reports.NewService(reportRepo, eventService, participantService, resultService, enqueuer, logger)
	reportHandler := reports.NewHandler(reportService, s3Client, logger)
	eventService.SetCloseHook(reportService.Schedule)

	jwtValidate := func(token string) (userID, role string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID.String(), claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	router.POST("/auth/login", authHandler.Login)

	admin := string(models.RoleAdmin)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Users (admin only; for roster assembly)
		api.GET("/users", middleware.RequireRole(admin), authHandler.List)

		// Municipalities
		api.GET("/municipalities", municipalityHandler.List)
		api.PATCH("/municipalities/:id/weight", middleware.RequireRole(admin), municipalityHandler.UpdateWeight)

		// Events (lifecycle is admin only)
		api.GET("/events", eventHandler.List)
		api.POST("/events", middleware.RequireRole(admin), eventHandler.Create)
		api.GET("/events/:id", eventHandler.Get)
		api.POST("/events/:id/start", middleware.RequireRole(admin), eventHandler.Start)
		api.POST("/events/:id/release", middleware.RequireRole(admin), eventHandler.Release)
		api.POST("/events/:id/close", middleware.RequireRole(admin), eventHandler.Close)
		api.DELETE("/events/:id", middleware.RequireRole(admin), eventHandler.Delete)

		// Roster and presence
		api.POST("/events/:id/participants", middleware.RequireRole(admin), participantHandler.Enroll)
		api.GET("/events/:id/participants", participantHandler.Roster)
		api.POST("/events/:id/presence", participantHandler.ConfirmPresence)
		api.GET("/events/:id/quorum", participantHandler.Quorum)

		// Votes
		api.POST("/events/:id/votes", voteHandler.Cast)
		api.GET("/events/:id/votes/status", voteHandler.Status)

		// Results
		api.GET("/events/:id/results", resultHandler.Get)

		// Reports
		api.GET("/events/:id/report.csv", reportHandler.Download)
		api.GET("/events/:id/report/download-url", reportHandler.DownloadURL)
	}

	// WebSocket live tally feed (token in query; no Authorization header required)
	router.GET("/ws", func(c *gin.Context) {
		realtime.ServeWs(hub, logger, jwtValidate, broadcaster.ServeRequest)(c)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// bootstrapAdmin guarantees an ADMIN account exists so a fresh install can
// log in. Skipped when ADMIN_PASSWORD is unset.
func bootstrapAdmin(ctx context.Context, repo *auth.Repository, cfg config.AdminConfig, logger *zap.Logger) {
	if cfg.Password == "" {
		logger.Warn("ADMIN_PASSWORD not set, skipping admin bootstrap")
		return
	}
	hash, err := utils.HashPassword(cfg.Password)
	if err != nil {
		logger.Error("hash admin password", zap.Error(err))
		return
	}
	if err := repo.EnsureAdmin(ctx, cfg.CPF, cfg.Name, hash); err != nil {
		logger.Error("ensure admin", zap.Error(err))
		return
	}
	logger.Info("admin account ensured", zap.String("cpf", cfg.CPF))
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
