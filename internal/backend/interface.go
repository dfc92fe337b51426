package backend

import "rutapro/internal/journal"

// Backend is the unified store interface the HTTP layer runs against.
type Backend interface {
	journal.DayLister
	journal.ActiveDayReader
	journal.DayWriter
	journal.EntryWriter
	journal.PauseWriter
	journal.ProfileStore
}

// Config selects and parameterizes the store.
type Config struct {
	Type BackendType

	// sqlite only; AMQP settings are optional even then.
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType names a store implementation.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) IsValid() bool {
	return bt == SQLiteBackend || bt == MemoryBackend
}
