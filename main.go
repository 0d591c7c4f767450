package main

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NomadCrew/nomad-feedback-backend/config"
	"github.com/NomadCrew/nomad-feedback-backend/docs"
	"github.com/NomadCrew/nomad-feedback-backend/handlers"
	"github.com/NomadCrew/nomad-feedback-backend/internal/events"
	"github.com/NomadCrew/nomad-feedback-backend/internal/llm"
	"github.com/NomadCrew/nomad-feedback-backend/internal/store/filestore"
	"github.com/NomadCrew/nomad-feedback-backend/logger"
	"github.com/NomadCrew/nomad-feedback-backend/middleware"
	"github.com/NomadCrew/nomad-feedback-backend/router"
	"github.com/NomadCrew/nomad-feedback-backend/services"
	"github.com/NomadCrew/nomad-feedback-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 5 * time.Second

// @title Feedback API
// @version 1.0
// @description Collects user feedback and relays chat messages to a text-generation provider.
// @BasePath /api
func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	feedbackStore := filestore.NewFeedbackStore(cfg.Storage.DataFile)

	chatClient, err := llm.NewFactory(&cfg.Chat).CreateClient(ctx)
	if err != nil {
		log.Fatalf("Failed to create chat client: %v", err)
	}
	if closer, ok := chatClient.(io.Closer); ok {
		defer closer.Close()
	}

	// Optional feedback event stream
	var publisher types.EventPublisher = events.NoopPublisher{}
	var redisPinger services.Pinger
	if cfg.Redis.Enabled {
		redisOptions := &redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		if cfg.IsProduction() {
			redisOptions.TLSConfig = &tls.Config{
				ServerName: cfg.Redis.Address,
				MinVersion: tls.VersionTLS12,
			}
		}
		redisClient := redis.NewClient(redisOptions)
		defer redisClient.Close()

		redisPublisher := events.NewRedisPublisher(redisClient, events.Config{
			Channel:        cfg.Redis.Channel,
			PublishTimeout: time.Duration(cfg.Redis.PublishTimeoutSeconds) * time.Second,
		}, reg)
		if err := redisPublisher.Ping(ctx); err != nil {
			log.Warnw("Redis is not reachable, feedback events will fail until it recovers", "error", err)
		}
		publisher = redisPublisher
		redisPinger = redisPublisher
		log.Infow("Feedback events enabled", "channel", cfg.Redis.Channel)
	}

	// Optional new-feedback notifications, delivered by the worker pool
	var emailService types.EmailService
	var notificationPool *services.WorkerPool
	if cfg.Email.Enabled {
		emailService = services.NewEmailServiceWithRegistry(&cfg.Email, reg)
		notificationPool = services.NewWorkerPool(cfg.WorkerPool, reg)
		notificationPool.Start()
		log.Infow("Feedback email notifications enabled", "recipient", logger.MaskEmail(cfg.Email.NotifyAddress))
	}

	feedbackService := services.NewFeedbackService(feedbackStore, publisher, emailService, reg)
	if notificationPool != nil {
		feedbackService.WithNotificationQueue(notificationPool)
	}
	chatService := services.NewChatService(chatClient, time.Duration(cfg.Chat.TimeoutSeconds)*time.Second, reg)
	healthService := services.NewHealthService(feedbackStore, redisPinger, cfg.Chat.Provider, llm.IsConfigured(chatClient), cfg.Server.Version)

	docs.SwaggerInfo.BasePath = cfg.Server.BasePath
	docs.SwaggerInfo.Version = cfg.Server.Version

	r := router.SetupRouter(router.Dependencies{
		Config:          cfg,
		FeedbackHandler: handlers.NewFeedbackHandler(feedbackService),
		ChatHandler:     handlers.NewChatHandler(chatService),
		HealthHandler:   handlers.NewHealthHandler(healthService),
		HTTPMetrics:     middleware.NewHTTPMetrics(reg),
		MetricsHandler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "base_path", cfg.Server.BasePath, "data_file", cfg.Storage.DataFile)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Graceful shutdown failed", "error", err)
	}

	if notificationPool != nil {
		poolCtx, poolCancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.WorkerPool.ShutdownTimeoutSeconds)*time.Second)
		defer poolCancel()
		if err := notificationPool.Shutdown(poolCtx); err != nil {
			log.Warnw("Pending notification emails were not delivered", "error", err)
		}
	}
	log.Info("Server stopped")
}
