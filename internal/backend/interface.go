package backend

import (
	"context"

	"expenses/internal/services"
)

// Store is a complete ledger backend.
type Store interface {
	services.LedgerStore
	services.ReportStore
	Ping(ctx context.Context) error
	Close() error
}

type CleanupFunc func() error

// BackendResult holds the wired services and the function releasing
// their resources.
type BackendResult struct {
	Store   Store
	Ledger  *services.LedgerService
	Reports *services.ReportService
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific: directory holding seed_categories.txt
	DataDirectory string

	// Optional change events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
