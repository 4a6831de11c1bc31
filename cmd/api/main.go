package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/returnpoint/backend/docs"
	"github.com/returnpoint/backend/internal/auth/middleware"
	"github.com/returnpoint/backend/internal/auth/service"
	"github.com/returnpoint/backend/internal/config"
	"github.com/returnpoint/backend/internal/database"
	"github.com/returnpoint/backend/internal/handlers"
	"github.com/returnpoint/backend/internal/logger"
	sharedMiddleware "github.com/returnpoint/backend/internal/middleware"
	"github.com/returnpoint/backend/internal/repositories"
	"github.com/returnpoint/backend/internal/services"
	"github.com/returnpoint/backend/internal/storage"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title ReturnPoint API
// @version 1.0
// @description Lost and found item registry
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting ReturnPoint API", zap.String("environment", cfg.Environment))

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db, cfg.Database.Driver, database.MigrationsPath(cfg.Database.Driver)); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT token generator
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.TokenExpiry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	itemRepo := repositories.NewItemRepository(db, logger.Logger)

	// Initialize services
	photoStorage := storage.NewLocalStorage(cfg.Uploads.Dir)
	attachmentService := services.NewAttachmentService(photoStorage, cfg.Uploads.BaseURL, cfg.Uploads.MaxImageDimension, logger.Logger)
	authService := services.NewAuthService(userRepo, tokenGenerator, logger.Logger)
	profileService := services.NewProfileService(userRepo, logger.Logger)
	itemService := services.NewItemService(itemRepo, attachmentService, logger.Logger)

	// Initialize handlers
	development := cfg.IsDevelopment()
	authHandler := handlers.NewAuthHandler(authService, logger.Logger, development)
	profileHandler := handlers.NewProfileHandler(profileService, logger.Logger, development)
	itemHandler := handlers.NewItemHandler(itemService, logger.Logger, development)
	healthHandler := handlers.NewHealthHandler(logger.Logger)
	uploadsHandler := handlers.NewUploadsHandler(photoStorage, logger.Logger)

	// Initialize auth middleware
	authMiddleware := middleware.AuthMiddleware(tokenGenerator, userRepo, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(sharedMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.Server.RateLimitPerMinute, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(cfg.Server.MaxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Uploaded photos are served locally unless references point to another host
	if strings.HasPrefix(cfg.Uploads.BaseURL, "/") {
		uploadsHandler.RegisterRoutes(r, cfg.Uploads.BaseURL)
	}

	healthHandler.RegisterRoutes(r)

	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		profileHandler.RegisterRoutes(r, authMiddleware)
		itemHandler.RegisterRoutes(r, authMiddleware)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
