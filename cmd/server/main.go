package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/yukikurage/workboard-api/internal/config"
	"github.com/yukikurage/workboard-api/internal/database"
	"github.com/yukikurage/workboard-api/internal/handlers"
	"github.com/yukikurage/workboard-api/internal/logging"
	"github.com/yukikurage/workboard-api/internal/middleware"
	"github.com/yukikurage/workboard-api/internal/observability"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/router"
	"github.com/yukikurage/workboard-api/internal/services"
	"github.com/yukikurage/workboard-api/internal/storage"
	"github.com/yukikurage/workboard-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	// Connect to database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	// Profile images are optional; without a bucket the upload route answers 503.
	var store storage.ObjectStore
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			UsePathStyle:  cfg.S3UsePathStyle,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.WithError(err).Fatal("Failed to configure object storage")
		}
		store = s3Store
	} else {
		logger.Warn("S3_BUCKET not set, profile image uploads are disabled")
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	tokens := services.NewTokenService(services.TokenConfig{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.JWTAccessTTL,
		RefreshTTL:    cfg.JWTRefreshTTL,
	})

	authService := services.NewAuthService(userRepo, hasher, tokens, metrics, logger)
	userService := services.NewUserService(userRepo, hasher, store, cfg.S3KeyPrefix, metrics, logger)
	taskService := services.NewTaskService(taskRepo, userRepo, logger)

	created, err := authService.EnsureSuperAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
	if err != nil {
		logger.WithError(err).Fatal("Failed to bootstrap super admin")
	}
	if created {
		logger.WithField("email", cfg.BootstrapAdminEmail).Info("Bootstrap super admin created")
	}

	// Initialize Gin router
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger, metrics))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Workboard API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.Register(r, router.Deps{
		Auth:          handlers.NewAuthHandler(authService, cfg.IsProduction(), logger),
		Users:         handlers.NewUserHandler(userService, logger),
		Tasks:         handlers.NewTaskHandler(taskService, logger),
		Authenticator: authService,
		Metrics:       metrics,
		Log:           logger,
	})

	// Start server
	logger.WithField("port", cfg.Port).Info("Server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}
