package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/stockimport/internal/config"
	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/JonMunkholm/stockimport/internal/logging"
	"github.com/JonMunkholm/stockimport/internal/metrics"
	"github.com/JonMunkholm/stockimport/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	layout := config.DefaultLayout()
	if cfg.Generate.LayoutFile != "" {
		layout, err = config.LoadLayout(cfg.Generate.LayoutFile)
		if err != nil {
			slog.Error("failed to load layout", "path", cfg.Generate.LayoutFile, "error", err)
			os.Exit(1)
		}
		slog.Info("layout loaded", "path", cfg.Generate.LayoutFile)
	}

	service, err := core.NewService(cfg.Generate.Dialect)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(cfg, service, layout, metrics.New().WithRuntime())

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if active := server.Limiter().ActiveCount(); active > 0 {
			slog.Info("waiting for generations to complete", "active", active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr(), "dialect", service.Dialect().Name())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
