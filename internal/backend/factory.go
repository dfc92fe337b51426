package backend

import (
	"fmt"
	"log/slog"

	"rutapro/internal/adapters"
	"rutapro/internal/amqp"
	"rutapro/internal/journal/memory"
	"rutapro/internal/services"
	"rutapro/internal/storage"
)

// Open builds the configured store. The returned close function
// releases its resources; it is nil for stores with nothing to close.
func Open(cfg Config, logger *slog.Logger) (Backend, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Type {
	case SQLiteBackend:
		return openSQLite(cfg, logger)
	case MemoryBackend:
		logger.Info("Initialized memory backend")
		return memory.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func openSQLite(cfg Config, logger *slog.Logger) (Backend, func() error, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize sqlite repository: %w", err)
	}

	// AMQP is optional; without it closed days stay pending until the
	// worker's reconcile loop picks them up.
	var broker *amqp.Client
	if cfg.AMQPURL != "" {
		broker, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, export messages disabled", "error", err)
			broker = nil
		} else {
			logger.Info("Connected to AMQP broker",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	shifts := services.NewShiftService(repo, broker)

	logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", broker != nil)

	return adapters.NewSQLiteAdapter(repo, shifts), shifts.Close, nil
}
