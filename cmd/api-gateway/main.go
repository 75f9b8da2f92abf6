package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/eventsync/eventsync-api/api/swagger"
	"github.com/eventsync/eventsync-api/internal/handler"
	"github.com/eventsync/eventsync-api/internal/middleware"
	"github.com/eventsync/eventsync-api/internal/models"
	"github.com/eventsync/eventsync-api/internal/repository"
	"github.com/eventsync/eventsync-api/internal/service"
	"github.com/eventsync/eventsync-api/pkg/cache"
	"github.com/eventsync/eventsync-api/pkg/config"
	"github.com/eventsync/eventsync-api/pkg/database"
	"github.com/eventsync/eventsync-api/pkg/export"
	"github.com/eventsync/eventsync-api/pkg/jobs"
	"github.com/eventsync/eventsync-api/pkg/logger"
	corsmiddleware "github.com/eventsync/eventsync-api/pkg/middleware/cors"
	reqidmiddleware "github.com/eventsync/eventsync-api/pkg/middleware/requestid"
	"github.com/eventsync/eventsync-api/pkg/storage"
)

// @title EventSync API
// @version 1.0.0
// @description Event lifecycle, enrollment and participation platform
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, leaderboard cache disabled", "error", err)
		redisClient = nil
	}

	certStore, err := storage.NewLocalStorage(cfg.Certificates.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare certificate storage", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	leagues := service.NewLeagueTable(cfg.Leagues.Tiers)
	metricsService := service.NewMetricsService()

	notificationService := service.NewNotificationService(notificationRepo, logr)
	notificationQueue := jobs.NewQueue("notifications", notificationService.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Notify.Workers,
		BufferSize: cfg.Notify.BufferSize,
		MaxRetries: cfg.Notify.MaxRetries,
		RetryDelay: cfg.Notify.RetryDelay,
		Logger:     logr,
	})
	notificationService.Attach(notificationQueue)

	authService := service.NewAuthService(userRepo, leagues, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "eventsync-api",
	})
	eventService := service.NewEventService(eventRepo, enrollmentRepo, reviewRepo, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, eventRepo, notificationService, export.NewCSVExporter(), logr)
	checkinService := service.NewCheckinService(enrollmentRepo, eventRepo, logr)
	socialService := service.NewSocialService(friendshipRepo, messageRepo, enrollmentRepo, validate, logr)

	rankingService := service.NewRankingService(userRepo, nil, leagues, metricsService, cfg.Rankings, logr)
	if redisClient != nil {
		rankingService = service.NewRankingService(userRepo, repository.NewCacheRepository(redisClient, logr), leagues, metricsService, cfg.Rankings, logr)
	}

	reviewService := service.NewReviewService(reviewRepo, enrollmentRepo, eventRepo, userRepo, rankingService, cfg.Reputation, validate, logr)

	renderer := export.NewCertificatePDF(cfg.Certificates.ValidationURL)
	signer := storage.NewSignedURLSigner(cfg.Certificates.SignedURLSecret, cfg.Certificates.SignedURLTTL)
	certificateService := service.NewCertificateService(certificateRepo, enrollmentRepo, eventRepo, userRepo, renderer, certStore, signer, logr)

	authHandler := handler.NewAuthHandler(authService)
	eventHandler := handler.NewEventHandler(eventService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	checkinHandler := handler.NewCheckinHandler(checkinService)
	certificateHandler := handler.NewCertificateHandler(certificateService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	rankingHandler := handler.NewRankingHandler(rankingService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	socialHandler := handler.NewSocialHandler(socialService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", middleware.JWT(authService), authHandler.Me)
	api.PUT("/auth/me", middleware.JWT(authService), authHandler.UpdateMe)

	// Public reads. Event detail takes optional auth so per-caller flags
	// resolve for logged-in visitors.
	api.GET("/events", middleware.OptionalJWT(authService), eventHandler.List)
	api.GET("/events/:id", middleware.OptionalJWT(authService), eventHandler.Get)
	api.GET("/events/:id/reviews", reviewHandler.List)
	api.GET("/certificates/validate/:code", certificateHandler.Validate)
	api.GET("/certificates/download", certificateHandler.Download)
	api.GET("/rankings/organizers", rankingHandler.Leaderboard)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	authed.POST("/events/:id/enrollments", enrollmentHandler.Request)
	authed.GET("/enrollments/mine", enrollmentHandler.ListMine)
	authed.POST("/events/:id/reviews", reviewHandler.Submit)
	authed.POST("/events/:id/certificate", certificateHandler.Generate)
	authed.GET("/notifications", notificationHandler.ListMine)
	authed.PUT("/notifications/:id/read", notificationHandler.MarkRead)
	authed.POST("/friendships", socialHandler.RequestFriendship)
	authed.GET("/friendships", socialHandler.ListFriendships)
	authed.PUT("/friendships/:id/accept", socialHandler.Accept)
	authed.PUT("/friendships/:id/reject", socialHandler.Reject)
	authed.POST("/messages", socialHandler.SendMessage)
	authed.GET("/messages", socialHandler.ListMessages)
	authed.PUT("/messages/:id/read", socialHandler.MarkMessageRead)

	organizer := api.Group("")
	organizer.Use(middleware.JWT(authService), middleware.RequireRoles(models.RoleOrganizer))
	organizer.POST("/events", eventHandler.Create)
	organizer.PUT("/events/:id/publish", eventHandler.Publish)
	organizer.PUT("/events/:id/start", eventHandler.Start)
	organizer.PUT("/events/:id/finish", eventHandler.Finish)
	organizer.PUT("/events/:id/cancel", eventHandler.Cancel)
	organizer.GET("/events/:id/enrollments", enrollmentHandler.ListForEvent)
	organizer.GET("/events/:id/enrollments/export", enrollmentHandler.Export)
	organizer.PUT("/enrollments/:id/approve", enrollmentHandler.Approve)
	organizer.PUT("/enrollments/:id/reject", enrollmentHandler.Reject)
	organizer.POST("/checkins", checkinHandler.CheckIn)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationQueue.Start(ctx)
	defer notificationQueue.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
