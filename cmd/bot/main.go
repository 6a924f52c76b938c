package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"dns-manager-backend/internal/app"
	"dns-manager-backend/internal/handler/telegram"
	"dns-manager-backend/pkg/config"
	"dns-manager-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.BotEnabled() {
		log.Fatal("TELEGRAM_BOT_TOKEN and TELEGRAM_ALLOWED_USERS are required")
	}

	lg, flush := logger.New(cfg.LogLevel)
	defer flush()

	ctx := context.Background()
	application, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to initialize", zap.Error(err))
	}
	defer application.Close(ctx)

	zones, err := application.DNS.ListZones(ctx)
	if err != nil {
		lg.Fatal("failed to reach DNS provider", zap.Error(err))
	}
	lg.Info("connected to DNS provider", zap.String("provider", cfg.DNSProvider), zap.Int("zones", len(zones)))

	bot := telegram.NewBot(application.DNS, cfg.TelegramBotToken, cfg.TelegramAllowedUsers, lg)
	go func() {
		lg.Info("starting Telegram bot")
		if err := bot.Start(); err != nil {
			lg.Fatal("bot error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	lg.Info("shutting down")
	if err := bot.Stop(); err != nil {
		lg.Warn("error stopping bot", zap.Error(err))
	}
}
