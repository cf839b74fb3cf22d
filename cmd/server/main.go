package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lumenops/identity/configs"
	"github.com/lumenops/identity/internal/application/services"
	"github.com/lumenops/identity/internal/core/ports"
	"github.com/lumenops/identity/internal/infrastructure/credentials"
	"github.com/lumenops/identity/internal/infrastructure/db"
	"github.com/lumenops/identity/internal/infrastructure/email"
	"github.com/lumenops/identity/internal/infrastructure/health"
	"github.com/lumenops/identity/internal/infrastructure/httpserver"
	"github.com/lumenops/identity/internal/infrastructure/redis"
	"github.com/lumenops/identity/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := configs.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.WithFields(logrus.Fields{
		"uniqueness_scope": cfg.Identity.Policy.UniquenessScope,
		"identifier_mode":  cfg.Identity.Policy.IdentifierMode,
		"token_store":      cfg.Identity.TokenStore,
	}).Info("Starting identity service...")

	// Initialize database
	database, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// Repositories
	accountRepo := repositories.NewAccountRepository(database, logger)
	emailRepo := repositories.NewEmailRepository(database, logger)

	healthCheckers := []ports.HealthChecker{health.NewDBHealthChecker(database)}

	// Token store: Postgres by default, Redis when configured.
	var tokenRepo ports.TokenRepository
	if cfg.Identity.TokenStore == "redis" {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()
		logger.Info("Connected to Redis successfully")
		tokenRepo = repositories.NewTokenRedisRepository(redisClient, logger)
		healthCheckers = append(healthCheckers, health.NewRedisHealthChecker(redisClient))
	} else {
		tokenRepo = repositories.NewTokenDBRepository(database, logger)
	}

	// Delivery transport
	delivery, err := email.NewSendGridDelivery(&email.DeliveryConfig{
		SendGridAPIKey: cfg.Email.SendGridAPIKey,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
		CompanyName:    cfg.Email.CompanyName,
		BaseURL:        cfg.Email.BaseURL,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize delivery transport:", err)
	}

	// Core services
	policy := cfg.Identity.Policy
	credStore := credentials.NewBcryptStore(accountRepo, logger)
	emailSvc := services.NewEmailService(emailRepo, policy, logger)
	tokenSvc := services.NewTokenService(tokenRepo, emailRepo, policy, logger)
	authenticator := services.NewAuthenticator(accountRepo, emailRepo, credStore, policy, logger)
	signupSvc := services.NewSignupService(accountRepo, emailSvc, tokenSvc, credStore, delivery, policy, logger)
	display := services.NewDisplayService(emailRepo)

	// Background sweep of expired confirmation tokens
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go runTokenSweep(sweepCtx, tokenSvc, cfg.Identity.SweepInterval, logger)

	// HTTP server
	server := httpserver.NewServer(&cfg.Server, &cfg.JWT, logger, httpserver.ServerDeps{
		SignupService:  signupSvc,
		Authenticator:  authenticator,
		EmailService:   emailSvc,
		TokenService:   tokenSvc,
		Delivery:       delivery,
		Display:        display,
		Accounts:       accountRepo,
		Policy:         policy,
		HealthCheckers: healthCheckers,
	})

	go func() {
		if err := server.Start(); err != nil {
			logger.Info("Server stopped:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

// runTokenSweep periodically drops expired confirmation tokens.
func runTokenSweep(ctx context.Context, tokens ports.TokenService, interval time.Duration, logger *logrus.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := tokens.ExpireSweep(ctx, time.Now()); err != nil {
				logger.WithError(err).Warn("expired token sweep failed")
			}
		}
	}
}
