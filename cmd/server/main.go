package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jypark/reviewmoa-backend/config"
	"github.com/jypark/reviewmoa-backend/internal/app/controller"
	"github.com/jypark/reviewmoa-backend/internal/app/repository"
	"github.com/jypark/reviewmoa-backend/internal/app/service"
	"github.com/jypark/reviewmoa-backend/internal/db"
	"github.com/jypark/reviewmoa-backend/internal/middleware"
	"github.com/jypark/reviewmoa-backend/internal/router"
	"github.com/jypark/reviewmoa-backend/internal/scheduler"
	"github.com/jypark/reviewmoa-backend/internal/storage"
	"github.com/jypark/reviewmoa-backend/internal/websocket"
	"github.com/jypark/reviewmoa-backend/pkg/logger"
	"github.com/jypark/reviewmoa-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting REVIEWMOA Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed operator accounts (optional)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize Redis (optional: 없어도 DB 집계로 동작)
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, rating cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close redis connection", err)
			}
		}()
	}

	// Initialize image storage
	var imageStore storage.ImageStore
	if cfg.Upload.Backend == "s3" {
		imageStore = storage.NewS3Storage(
			cfg.Upload.S3.Region,
			cfg.Upload.S3.Bucket,
			cfg.Upload.S3.AccessKeyID,
			cfg.Upload.S3.SecretAccessKey,
			cfg.Upload.S3.BaseURL,
		)
	} else {
		imageStore, err = storage.NewLocalStorage(cfg.Upload.LocalDir)
		if err != nil {
			logger.Fatal("Failed to initialize local storage", err)
		}
	}

	// Start websocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())
	graphRepo := repository.NewGraphRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo, reviewRepo, imageStore)
	reviewService := service.NewReviewService(reviewRepo, productRepo, graphRepo, imageStore, hub)
	graphService := service.NewGraphService(graphRepo, reviewRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService, imageStore, cfg.Upload.MaxImageSize)
	reviewController := controller.NewReviewController(reviewService, imageStore, cfg.Upload.MaxImageSize)
	graphController := controller.NewGraphController(graphService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start aggregate repair scheduler
	if cfg.Scheduler.Enabled {
		ratingScheduler := scheduler.NewRatingScheduler(reviewService, cfg.Scheduler.RatingRepairCron)
		if err := ratingScheduler.Start(); err != nil {
			logger.Warn("Failed to start rating scheduler", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer ratingScheduler.Stop()
		}
	}

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		reviewController,
		graphController,
		authMiddleware,
		hub,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
