package main

import (
	"context"
	"log"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"dns-manager-backend/internal/app"
	"dns-manager-backend/internal/handler/mcpserver"
	"dns-manager-backend/pkg/config"
	"dns-manager-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// stdout carries the MCP protocol; the logger writes to stderr
	lg, flush := logger.New(cfg.LogLevel)
	defer flush()

	ctx := context.Background()
	application, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to initialize", zap.Error(err))
	}
	defer application.Close(ctx)

	s := mcpserver.NewServer(mcpserver.NewTools(application.DNS, cfg.MCPOwner, lg))

	lg.Info("starting MCP stdio server")
	if err := server.ServeStdio(s); err != nil {
		lg.Error("MCP server error", zap.Error(err))
	}
}
