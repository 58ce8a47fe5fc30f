package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"xui-shop-bot/internal/config"
	"xui-shop-bot/internal/permissions"
	"xui-shop-bot/internal/services"
	"xui-shop-bot/internal/storage"
	"xui-shop-bot/internal/web"
	"xui-shop-bot/pkg/telegrambot"
	"xui-shop-bot/pkg/xuiclient"
)

func main() {
	// Setup logger
	logger := setupLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: ", err)
	}

	// Open database
	store, err := storage.New(cfg.Database.DSN, logger)
	if err != nil {
		logger.Fatal("Failed to open database: ", err)
	}

	// Initialize services
	panelClient := xuiclient.NewClient(cfg.Panel, logger)
	stateService := services.NewUserStateService(logger)
	promocodeService := services.NewPromocodeService(store, logger)
	vpnService := services.NewVPNService(panelClient, store, promocodeService, cfg.Panel, logger)
	qrService := services.NewQRService(logger)

	// Setup permission controller
	permController := permissions.NewController(cfg.Telegram.AdminIDs, logger)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Panel login must succeed before serving subscription requests
	if err := vpnService.Initialize(ctx); err != nil {
		logger.Fatal("Failed to log into panel: ", err)
	}

	// Initialize bot
	bot, err := telegrambot.NewBot(cfg, store, stateService, vpnService, promocodeService, qrService, permController, logger)
	if err != nil {
		logger.Fatal("Failed to create bot: ", err)
	}

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	// Start HTTP surface
	webServer := web.NewServer(cfg, store, logger)
	go func() {
		if err := webServer.Start(ctx); err != nil {
			logger.Errorf("HTTP server failed: %v", err)
		}
	}()

	// Start bot
	logger.Info("Starting VPN shop bot")
	if err := bot.Start(ctx); err != nil {
		logger.Fatal("Bot failed: ", err)
	}
}

// setupLogger sets up the logger
func setupLogger() *logrus.Logger {
	logger := logrus.New()

	// Set log level from environment variable or default to info
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Printf("Invalid log level %s, defaulting to info", logLevel)
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	// Set formatter
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return logger
}
