package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/bullpair-events/config"
	"github.com/Dosada05/bullpair-events/db"
	"github.com/Dosada05/bullpair-events/handlers"
	"github.com/Dosada05/bullpair-events/repositories"
	api "github.com/Dosada05/bullpair-events/routes"
	"github.com/Dosada05/bullpair-events/services"
	"github.com/Dosada05/bullpair-events/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

// @title Bull Pair Events API
// @version 1.0
// @description Многодневные соревнования пар быков: регистрации, игровые дни, результаты и рейтинги.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Конфигурация нужна раньше логгера: из неё берётся уровень
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.DBAutoMigrate {
		migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
		err := db.Migrate(migrateCtx, dbConn, logger)
		cancelMigrate()
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Архив результатов в Cloudflare R2 (необязательный)
	publisher := newResultPublisher(cfg, logger)

	transactor := repositories.NewPostgresTransactor(dbConn, repositories.TxOptions{
		MaxAttempts:    cfg.Tx.MaxAttempts,
		InitialBackoff: cfg.Tx.InitialBackoff,
		MaxBackoff:     cfg.Tx.MaxBackoff,
		LockTimeout:    cfg.Tx.LockTimeout,
	}, logger)

	// Инициализация репозиториев
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	eventDayRepo := repositories.NewPostgresEventDayRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	dayEntryRepo := repositories.NewPostgresDayEntryRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	eventService := services.NewEventService(transactor, eventRepo, eventDayRepo, logger)
	registrationService := services.NewRegistrationService(
		transactor,
		eventRepo,
		eventDayRepo,
		registrationRepo,
		teamRepo,
		logger,
		nil,
	)
	eventDayService := services.NewEventDayService(transactor, eventRepo, eventDayRepo, logger)
	gameplayService := services.NewGameplayService(
		transactor,
		eventDayRepo,
		registrationRepo,
		dayEntryRepo,
		teamRepo,
		publisher,
		logger,
		nil,
	)
	statsService := services.NewStatsService(eventRepo, eventDayRepo, dayEntryRepo, teamRepo)
	logger.Info("Services initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			JWTSecret:      cfg.JWTSecretKey,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			RequestTimeout: cfg.RequestTimeout,
			Logger:         logger,
		},
		api.Handlers{
			Events:        handlers.NewEventHandler(eventService, logger),
			Registrations: handlers.NewRegistrationHandler(registrationService, logger),
			Days:          handlers.NewEventDayHandler(eventDayService, logger),
			Gameplay:      handlers.NewGameplayHandler(gameplayService, logger),
			Stats:         handlers.NewStatsHandler(statsService, logger),
			Health:        handlers.NewHealthHandler(dbConn, logger),
		},
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// newResultPublisher returns nil unless every R2 variable is set.
func newResultPublisher(cfg *config.Config, logger *slog.Logger) services.ResultPublisher {
	r2 := storage.CloudflareR2Config{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		BucketName:      cfg.R2.BucketName,
		PublicBaseURL:   cfg.R2.PublicBaseURL,
	}
	if !r2.IsComplete() {
		if r2 != (storage.CloudflareR2Config{}) {
			logger.Warn("R2 configuration is incomplete, result archive disabled")
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	uploader, err := storage.NewCloudflareR2Uploader(ctx, r2, logger)
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader, result archive disabled", slog.Any("error", err))
		return nil
	}
	logger.Info("Cloudflare R2 result archive enabled", slog.String("bucket", r2.BucketName))
	return storage.NewResultArchive(uploader)
}
