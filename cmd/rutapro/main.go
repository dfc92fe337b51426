package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"rutapro/internal/backend"
	"rutapro/internal/cli"
	apphttp "rutapro/internal/http"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	store, closeStore, err := backend.Open(backendCfg, logger)
	if err != nil {
		logger.Error("Failed to open backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	server := apphttp.NewServer(":"+cfg.Port, store)

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
		}
		if closeStore != nil {
			if err := closeStore(); err != nil {
				logger.Error("Backend close failed", "error", err)
			}
		}
	})

	logger.Info("Starting rutapro API",
		"port", cfg.Port,
		"backend", cfg.DataBackend)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
