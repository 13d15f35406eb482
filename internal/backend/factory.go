package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expenses/internal/amqp"
	"expenses/internal/memory"
	"expenses/internal/services"
	"expenses/internal/storage"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store Store
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		store, err = storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		dir := config.DataDirectory
		if dir == "" {
			dir = "data"
		}
		store = memory.NewFromFiles(dir)
		f.logger.InfoContext(ctx, "Initialized memory backend", "data_directory", dir)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	publisher := f.connectPublisher(ctx, config)

	result := &BackendResult{
		Store:   store,
		Reports: services.NewReportService(store),
		Cleanup: store.Close,
	}
	if publisher != nil {
		result.Ledger = services.NewLedgerService(store, publisher)
		result.Cleanup = func() error {
			return errors.Join(publisher.Close(), store.Close())
		}
	} else {
		// A nil *amqp.Client must not reach the interface field.
		result.Ledger = services.NewLedgerService(store, nil)
	}

	return result, nil
}

// connectPublisher dials the broker when configured. Failure leaves the
// ledger running without change events.
func (f *DefaultFactory) connectPublisher(ctx context.Context, config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", "error", err)
		return nil
	}

	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
