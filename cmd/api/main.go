package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"auth-api/internal/config"
	"auth-api/internal/db"
	"auth-api/internal/email"
	apihttp "auth-api/internal/http"
	"auth-api/internal/repository"
	"auth-api/internal/service"
	"auth-api/internal/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := db.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	resetRepo := repository.NewPgPasswordResetRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	uploader := storage.NewDisabledUploader("asset uploader not configured")
	if cfg.S3Bucket != "" {
		s3Uploader, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			logger.Warn("s3 uploader init failed", zap.Error(err))
		} else {
			uploader = s3Uploader
		}
	}

	tokenSvc := service.NewTokenService(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute,
		time.Duration(cfg.RefreshTokenTTLDays)*24*time.Hour,
	)
	hasher := service.NewBcryptHasher()
	authSvc := service.NewAuthService(
		logger,
		userRepo,
		resetRepo,
		hasher,
		emailSender,
		uploader,
		time.Duration(cfg.OTPTTLMinutes)*time.Minute,
		time.Duration(cfg.EmailTimeoutSeconds)*time.Second,
	)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, tokenSvc, cfg.CookieSecure)
	userHandler := apihttp.NewUserHandler(logger, userRepo)
	router := apihttp.NewRouter(logger, tokenSvc, authHandler, userHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
