package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/sticker-bot/internal/bot"
	"github.com/xaenox/sticker-bot/internal/downloader"
	"github.com/xaenox/sticker-bot/internal/fetcher"
	"github.com/xaenox/sticker-bot/internal/metadata"
	"github.com/xaenox/sticker-bot/internal/picker"
	"github.com/xaenox/sticker-bot/internal/provider"
	"github.com/xaenox/sticker-bot/internal/session"
	"github.com/xaenox/sticker-bot/internal/storage"
	"github.com/xaenox/sticker-bot/pkg/config"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	configPath := "config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", configPath))
	}

	// Initialize catalog
	var catalog storage.Catalog
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory catalog")
		catalog = storage.NewMemoryCatalog()
	} else {
		logger.Info("Using PostgreSQL catalog")
		catalog, err = storage.NewPostgresCatalog(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize catalog", zap.Error(err))
		}
	}
	defer catalog.Close()

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Telegram.Token, cfg.Telegram.APIBase+"/bot%s/%s")
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}
	api.Debug = cfg.Telegram.Debug
	logger.Info("Authorized on account", zap.String("username", api.Self.UserName))

	store := metadata.NewStore()
	tg := provider.NewTelegram(api, logger)
	httpClient := &http.Client{Timeout: cfg.Download.HTTPTimeout}
	f := fetcher.New(tg, httpClient, cfg.Telegram.APIBase, cfg.Telegram.Token, logger)

	b := bot.New(
		api,
		bot.NewTelegramMessenger(api),
		session.NewManager(),
		downloader.New(tg, f, store, catalog, logger),
		picker.New(store, logger),
		catalog,
		bot.Config{
			RootDir:     cfg.Storage.RootDir,
			DirPrefix:   cfg.Storage.DirPrefix,
			PollTimeout: cfg.Telegram.PollTimeout,
		},
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the bot
	if err := b.Start(ctx); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}
