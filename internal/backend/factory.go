package backend

import (
	"context"
	"errors"
	"fmt"

	"pocketbook/internal/amqp"
	"pocketbook/internal/log"
	"pocketbook/internal/sheets"
	gsheet "pocketbook/internal/sheets/google"
	"pocketbook/internal/sheets/memory"
	"pocketbook/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend. Notifications and the
// sheets export are optional: failing to reach them is logged and the
// backend is returned without them.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	persister, err := f.createPersister(config)
	if err != nil {
		return nil, err
	}

	result := &BackendResult{Persister: persister}
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without notifications", log.FieldError, err)
		} else {
			result.Notifier = amqpClient
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Stats = f.createStatsWriter(ctx, config)

	result.Cleanup = func() error {
		var errs []error
		if amqpClient != nil {
			errs = append(errs, amqpClient.Close())
		}
		errs = append(errs, persister.Close())
		return errors.Join(errs...)
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		log.FieldBackend, config.Type.String(),
		"amqp_enabled", result.Notifier != nil)
	return result, nil
}

func (f *DefaultFactory) createPersister(config Config) (Persister, error) {
	switch config.Type {
	case SQLiteBackend:
		p, err := storage.NewSQLitePersister(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite persister: %w", err)
		}
		f.logger.Info("Initialized SQLite persister", "db_path", config.SQLiteDBPath)
		return p, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory persister")
		return storage.NewMemoryPersister(f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createStatsWriter(ctx context.Context, config Config) sheets.StatsWriter {
	if config.GoogleSpreadsheetID == "" {
		return memory.New()
	}
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
		StatsSheetName:     config.GoogleStatsSheetName,
	}, f.logger)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize Google Sheets client, stats export stays in memory", log.FieldError, err)
		return memory.New()
	}
	f.logger.InfoContext(ctx, "Initialized Google Sheets stats export")
	return client
}
