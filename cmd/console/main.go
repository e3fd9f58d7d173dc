// ====================================
// File: cmd/console/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/app"
	"github.com/goldenbao/jinvault/internal/config"
	"github.com/goldenbao/jinvault/internal/console"
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

	// Под TUI пишем только в файл
	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	logCfg.Quiet = true
	appLogger, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	a, err := app.New(ctx, cfg, appLogger.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			appLogger.Error("Shutdown completed with errors", zap.Error(err))
		}
	}()

	program := tea.NewProgram(
		console.New(ctx, a.Chain(), a.Store(), a.Runner()),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		appLogger.Error("Console failed", zap.Error(err))
	}
}
