package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/fileparser/internal/config"
	"github.com/JonMunkholm/fileparser/internal/core"
	_ "github.com/JonMunkholm/fileparser/internal/core/analyzers" // Register all analyzers
	"github.com/JonMunkholm/fileparser/internal/logging"
	"github.com/JonMunkholm/fileparser/internal/web"
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

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"max_file_size", cfg.Upload.MaxFileSize,
		"supported_types", cfg.Upload.SupportedTypes,
		"max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	svcCfg := core.ServiceConfigFrom(cfg)
	svcCfg.SpoolScope = "http"
	service, err := core.NewService(svcCfg)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	slog.Info("analyzers registered",
		"count", core.AnalyzerCount(),
		"enabled", service.SupportedTypes(),
	)

	var janitor *core.Janitor
	if cfg.Janitor.Enabled {
		janitor, err = core.NewJanitor(service, cfg.Janitor.Schedule, cfg.Janitor.MaxAge)
		if err != nil {
			slog.Error("failed to create spool janitor", "error", err)
			os.Exit(1)
		}
		janitor.Start()
	}

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}

		// Wait for running analyses (with timeout)
		if status := service.LimiterStatus(); status.Active+status.Waiting > 0 {
			slog.Info("waiting for jobs to complete", "active", status.Active, "waiting", status.Waiting)
		}
		if err := service.Shutdown(shutdownCtx); err != nil {
			slog.Warn("jobs did not complete in time", "error", err)
		}

		if janitor != nil {
			janitor.Stop(shutdownCtx)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
