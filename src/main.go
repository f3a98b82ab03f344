package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contre95/autoimport/src/features/config"
	"github.com/contre95/autoimport/src/features/hosting"
	"github.com/contre95/autoimport/src/features/importing"
	"github.com/contre95/autoimport/src/features/logging"
	"github.com/contre95/autoimport/src/infra/database"
	"github.com/contre95/autoimport/src/infra/media"
	"github.com/contre95/autoimport/src/infra/resolve"
	"github.com/contre95/autoimport/src/infra/settings"
	"github.com/contre95/autoimport/src/infra/trash"
	"github.com/contre95/autoimport/src/infra/watcher"
)

func main() {
	configPath := os.Getenv("AUTOIMPORT_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load configuration
	cfgManager, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := cfgManager.Get()

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	settingsStore := settings.NewJSONStore(cfg.SettingsPath)

	// Create the resolution history
	history, err := database.NewSqliteHistory(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to open history database: %v", err)
	}
	defer history.Close()

	// The watcher produces, the controller loop consumes
	events := make(chan importing.FileEvent, 64)
	folderWatcher := watcher.NewWatcher(events, cfg.Watch.Extensions)

	bridge := resolve.NewBridge(cfg.Resolve.Python, cfg.Resolve.ModulesPath, time.Duration(cfg.Resolve.TimeoutSecs)*time.Second)
	editor := resolve.NewAdapter(bridge, cfg.Resolve.TimelineName)

	board := importing.NewBoard()
	importingService := importing.NewService(cfgManager, folderWatcher, editor, trash.NewBin(), settingsStore, history, events, board)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create and start the Telegram bot if enabled
	var telegramBot *hosting.TelegramBot
	if cfg.Telegram.Enabled {
		telegramHandler := importing.NewTelegramHandler(importingService, cfgManager)
		telegramBot, err = hosting.NewTelegramBot(cfgManager, telegramHandler)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			importingService.AddSurface(telegramHandler)
			go telegramBot.Start()
			go telegramHandler.Run(ctx, telegramBot.API())
			slog.Info("Telegram bot started")
		}
	}

	controllerDone := make(chan struct{})
	go func() {
		defer close(controllerDone)
		if err := importingService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Importing controller stopped", "error", err)
		}
	}()

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, importingService, board, media.NewInspector())
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfg.Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down...")

	cancel()
	<-controllerDone

	if err := editor.Close(); err != nil {
		slog.Warn("Failed to stop Resolve bridge", "error", err)
	}

	// Shutdown the Telegram bot
	if telegramBot != nil {
		telegramBot.Stop()
		slog.Info("Telegram bot stopped")
	}

	// Shutdown the server
	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
