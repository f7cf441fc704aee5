package backend

import (
	"context"
	"io"

	"pocketbook/internal/services"
	"pocketbook/internal/sheets"
	"pocketbook/internal/store"
)

// Persister is a store.Persister that holds resources to release.
type Persister interface {
	store.Persister
	io.Closer
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds everything a ledger process needs from the outside
// world. Notifier is nil when notifications are disabled.
type BackendResult struct {
	Persister Persister
	Notifier  services.Notifier
	Stats     sheets.StatsWriter
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Optional balance notifications
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Optional Google Sheets stats export
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	GoogleStatsSheetName     string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
