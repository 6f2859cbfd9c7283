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

	"github.com/JonMunkholm/sheethooks/internal/config"
	"github.com/JonMunkholm/sheethooks/internal/core"
	_ "github.com/JonMunkholm/sheethooks/internal/core/modules" // Register all modules
	"github.com/JonMunkholm/sheethooks/internal/gsheets"
	"github.com/JonMunkholm/sheethooks/internal/logging"
	"github.com/JonMunkholm/sheethooks/internal/web"
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

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"read_range", cfg.Google.ReadRange,
		"execute_max_concurrent", cfg.Execute.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"api_key_required", cfg.Security.RequireAPIKey,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	// A bad service account disables writes but reads keep working.
	saJSON, err := cfg.Google.ServiceAccount()
	if err != nil {
		slog.Warn("service account unavailable", "error", err)
	}

	ctx := context.Background()
	sheets, err := gsheets.New(ctx, gsheets.Options{
		APIKey:             cfg.Google.APIKey,
		ServiceAccountJSON: saJSON,
		Endpoint:           cfg.Google.Endpoint,
		ReadTimeout:        cfg.Google.ReadTimeout,
		WriteTimeout:       cfg.Google.WriteTimeout,
	})
	if err != nil {
		slog.Error("failed to create sheets client", "error", err)
		os.Exit(1)
	}
	if err := sheets.CanWrite(); err != nil {
		slog.Warn("write modules will fail until credentials are fixed", "error", err)
	}

	service := core.NewService(sheets, cfg)

	modules := service.ListModules()
	slog.Info("modules registered", "count", len(modules))
	for _, m := range modules {
		slog.Debug("module", "key", m.Key, "writes", m.Writes)
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

		// Wait for in-flight executions so no write is cut off mid-batch
		status := service.LimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for executions to complete", "active", status.Active)
			if err := service.WaitForExecutions(shutdownCtx); err != nil {
				slog.Warn("executions did not complete in time", "error", err)
			} else {
				slog.Info("all executions completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
