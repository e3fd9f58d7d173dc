// ====================================
// File: cmd/server/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/app"
	"github.com/goldenbao/jinvault/internal/config"
	"github.com/goldenbao/jinvault/internal/utils/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to optional config file (yaml/json)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	appLogger, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting JinVault server",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("blockchain_enabled", cfg.BlockchainEnabled),
		zap.Duration("distribution_interval", cfg.DistributionInterval))

	a, err := app.New(ctx, cfg, appLogger.Logger)
	if err != nil {
		appLogger.Error("Failed to initialize", zap.Error(err))
		_ = appLogger.Sync()
		os.Exit(1)
	}

	runErr := a.RunServer(ctx)
	if runErr != nil {
		appLogger.Error("Server stopped with error", zap.Error(runErr))
	}
	if err := a.Close(); err != nil {
		appLogger.Error("Shutdown completed with errors", zap.Error(err))
	}
	appLogger.Info("JinVault server stopped")

	if runErr != nil {
		_ = appLogger.Sync()
		os.Exit(1)
	}
}
