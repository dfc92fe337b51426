package backend

import (
	"fmt"

	"rutapro/internal/config"
)

// FromAppConfig derives the backend selection from the application
// config, rejecting unknown backend names up front.
func FromAppConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	t := BackendType(cfg.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("unknown data backend %q (want sqlite or memory)", cfg.DataBackend)
	}

	return Config{
		Type:         t,
		SQLiteDBPath: cfg.SQLiteDBPath,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
		AMQPQueue:    cfg.AMQPQueue,
	}, nil
}

// Validate checks the per-backend requirements. AMQP settings are not
// checked here: export publishing is optional for the sqlite backend.
func (c Config) Validate() error {
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("sqlite backend requires a database path")
		}
	case MemoryBackend:
		// nothing beyond the type itself
	default:
		return fmt.Errorf("unknown backend type: %s", c.Type)
	}
	return nil
}
