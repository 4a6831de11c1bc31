package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/returnpoint/backend/internal/auth/service"
	"github.com/returnpoint/backend/internal/config"
	"github.com/returnpoint/backend/internal/database"
	"github.com/returnpoint/backend/internal/logger"
	"github.com/returnpoint/backend/internal/models"
	"github.com/returnpoint/backend/internal/repositories"
	"github.com/returnpoint/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "admin@returnpoint.com", "admin email")
	password := flag.String("password", "admin123", "admin password")
	flag.Parse()

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

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db, cfg.Database.Driver, database.MigrationsPath(cfg.Database.Driver)); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	userRepo := repositories.NewUserRepository(db, logger.Logger)
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	authService := services.NewAuthService(userRepo, tokenGenerator, logger.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, created, err := authService.CreateAdmin(ctx, &models.RegisterRequest{
		Username: *username,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		logger.Logger.Fatal("Failed to create admin user", zap.String("reason", models.Message(err)), zap.Error(err))
	}

	if !created {
		logger.Logger.Info("Admin user already exists", zap.Int("userId", user.ID), zap.String("email", user.Email))
		return
	}
	logger.Logger.Info("Admin user created", zap.Int("userId", user.ID), zap.String("username", user.Username), zap.String("email", user.Email))
}
