// Package cli provides common CLI initialization utilities shared by
// cmd/rutapro and cmd/rutapro-worker.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rutapro/internal/config"
	"rutapro/internal/log"
	"rutapro/internal/storage"
)

// SetupLogger installs the process logger. Format and level come from
// LOG_FORMAT and LOG_LEVEL.
func SetupLogger() *slog.Logger {
	logger := slog.New(log.NewHandler())
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is not
// an error; production sets real environment variables.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads the configuration from the environment,
// exiting the process when it does not validate.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the SQLite repository, exiting the process on failure.
func InitSQLite(logger *slog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// GracefulShutdown returns a context cancelled on SIGINT/SIGTERM. On a
// signal the cleanup function runs with the given timeout as a hard
// deadline, then done closes.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		<-ctx.Done()
		stop()
		logger.Info("Shutdown signal received")

		// A second signal or a hung cleanup must not wedge the process.
		deadline := time.AfterFunc(timeout, func() {
			logger.Warn("Shutdown timeout reached, exiting")
			os.Exit(1)
		})
		defer deadline.Stop()

		if cleanup != nil {
			cleanup()
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the shutdown sequence has finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
