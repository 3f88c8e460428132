package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"melodybot/internal/config"
	"melodybot/internal/handler"
	"melodybot/internal/health"
	"melodybot/internal/middleware"
	"melodybot/internal/repository/kv"
	"melodybot/internal/service"
	"melodybot/internal/storage/backend"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Melody Bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully", zap.String("store_driver", cfg.StoreDriver))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open store (postgres connects with retries and runs migrations)
	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close()

	logger.Info("Store opened")

	// Initialize repositories
	catalogRepo := kv.NewCatalogRepo(store, cfg.CatalogSeed)
	sessionRepo := kv.NewSessionRepo(store)

	// Initialize services
	quizService := service.NewQuizService(catalogRepo, sessionRepo, cfg.StoreTimeout, logger)
	janitorService := service.NewJanitorService(store, cfg.SessionMaxAge, logger)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("Bot error", zap.Error(err))
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	bot.Use(middleware.Logger(logger), middleware.Recover(logger))

	// Initialize handler
	h := handler.NewHandler(bot, quizService, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Start cleanup job in background
	go runCleanupJob(ctx, janitorService, logger)

	// Start health endpoint if configured
	var server *http.Server
	if cfg.HealthAddr != "" {
		server = &http.Server{
			Addr:              cfg.HealthAddr,
			Handler:           health.NewHandler(store, cfg.StoreTimeout, logger).Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Health endpoint listening", zap.String("addr", cfg.HealthAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Health endpoint failed", zap.Error(err))
			}
		}()
	}

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	cancel()

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Health endpoint forced to shutdown", zap.Error(err))
		}
	}

	logger.Info("Bot stopped gracefully")
}

// runCleanupJob periodically removes abandoned sessions
func runCleanupJob(ctx context.Context, janitor *service.JanitorService, logger *zap.Logger) {
	// Run cleanup once at startup
	if _, err := janitor.CleanupStaleSessions(ctx); err != nil {
		logger.Error("Failed to run initial cleanup", zap.Error(err))
	}

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup job stopped")
			return
		case <-ticker.C:
			logger.Info("Running scheduled cleanup")
			if _, err := janitor.CleanupStaleSessions(ctx); err != nil {
				logger.Error("Failed to run scheduled cleanup", zap.Error(err))
			}
		}
	}
}
