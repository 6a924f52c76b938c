package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"dns-manager-backend/internal/app"
	"dns-manager-backend/internal/handler"
	"dns-manager-backend/internal/handler/rest"
	"dns-manager-backend/internal/handler/telegram"
	"dns-manager-backend/pkg/config"
	"dns-manager-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, flush := logger.New(cfg.LogLevel)
	defer flush()

	ctx := context.Background()
	application, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to initialize", zap.Error(err))
	}
	defer func() {
		if err := application.Close(ctx); err != nil {
			lg.Warn("failed to close store", zap.Error(err))
		}
	}()

	servers := []handler.Server{
		rest.NewServer(rest.Options{
			Port:      cfg.Port,
			Mode:      cfg.GinMode,
			UploadDir: cfg.UploadDir,
		}, application.DNS, application.Imports, application.Auth, lg),
	}
	if cfg.BotEnabled() {
		servers = append(servers, telegram.NewBot(application.DNS, cfg.TelegramBotToken, cfg.TelegramAllowedUsers, lg))
	}

	errCh := make(chan error, len(servers))
	for _, s := range servers {
		go func(s handler.Server) {
			errCh <- s.Start()
		}(s)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		lg.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			lg.Error("server stopped", zap.Error(err))
		}
	}

	for _, s := range servers {
		if err := s.Stop(); err != nil {
			lg.Warn("failed to stop server", zap.Error(err))
		}
	}
}
