package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/yoyda/auth-service/config"
	"github.com/yoyda/auth-service/internal/handler"
	"github.com/yoyda/auth-service/internal/mail"
	"github.com/yoyda/auth-service/internal/repository"
	"github.com/yoyda/auth-service/internal/router"
	"github.com/yoyda/auth-service/internal/service"
	"github.com/yoyda/auth-service/pkg/crypto"
	"github.com/yoyda/auth-service/pkg/database"
	"github.com/yoyda/auth-service/pkg/logger"
	"github.com/yoyda/auth-service/pkg/redis"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(cfg.App.Environment); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	db, err := database.NewPostgresDB(database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	redisClient, err := redis.NewClient(redis.Config{
		Addr:         cfg.RedisAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.Database,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	codec, err := crypto.NewCodec([]byte(cfg.Session.EncryptionKey))
	if err != nil {
		logger.GetLogger().Fatal("Invalid session encryption key", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)

	// Mail boundary
	enqueuer := mail.NewEnqueuer(redisClient, cfg.Mail.QueueKey)
	renderer, err := mail.NewRenderer()
	if err != nil {
		logger.GetLogger().Fatal("Failed to parse mail templates", zap.Error(err))
	}
	sender := mail.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.FromAddress)
	worker := mail.NewWorker(redisClient, cfg.Mail.QueueKey, renderer, sender)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go worker.Run(workerCtx)

	// Services
	userService := service.NewUserService(userRepo)
	tokenService := service.NewTokenService(tokenRepo, userRepo)
	sessionService := service.NewSessionService(sessionRepo)
	twoFactorService := service.NewTwoFactorService(userRepo, codec, cfg.TwoFactor.Issuer)
	pendingService := service.NewPendingTwoFaService(codec)
	verificationService := service.NewVerificationService(verificationRepo, userRepo, enqueuer, cfg.Mail.FrontendURL)
	authService := service.NewAuthService(
		userService,
		tokenService,
		sessionService,
		twoFactorService,
		pendingService,
		verificationService,
		service.NewGoogleProvider(),
	)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, userService, verificationService, cfg.Session)
	twoFactorHandler := handler.NewTwoFactorHandler(twoFactorService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	r := router.NewRouter(
		authHandler,
		twoFactorHandler,
		sessionHandler,
		healthHandler,
		tokenService,
		cfg,
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", cfg.App.Port),
		)
		if err := r.Run(":" + cfg.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", cfg.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}
