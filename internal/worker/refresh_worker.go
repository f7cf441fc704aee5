// Package worker runs the ledger's periodic jobs in a headless process:
// refreshing balances and exporting yearly statistics.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pocketbook/internal/core"
	"pocketbook/internal/log"
	"pocketbook/internal/sheets"
)

// Ledger is the part of services.LedgerService the worker drives.
type Ledger interface {
	Refresh(ctx context.Context) (core.BalanceSnapshot, error)
	ExportYear(ctx context.Context, w sheets.StatsWriter, year int) error
	Now() time.Time
}

// Config holds configuration for the refresh worker
type Config struct {
	// RefreshInterval is how often balances are refreshed (default: 1h)
	RefreshInterval time.Duration

	// ExportInterval is how often the current year is exported (default: 24h)
	ExportInterval time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RefreshInterval: time.Hour,
		ExportInterval:  24 * time.Hour,
	}
}

// RefreshWorker periodically refreshes the ledger, which rolls periods
// over, materializes subscriptions, reallocates goals and publishes the
// balance snapshot. With a stats writer it also exports the current year.
type RefreshWorker struct {
	ledger Ledger
	stats  sheets.StatsWriter
	config Config
	logger *log.Logger

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRefreshWorker creates a worker; stats may be nil to disable exports.
func NewRefreshWorker(ledger Ledger, stats sheets.StatsWriter, config Config, logger *log.Logger) *RefreshWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &RefreshWorker{
		ledger: ledger,
		stats:  stats,
		config: config,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Start begins the refresh loop. Returns an error if already running.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("refresh worker is already running")
	}
	if w.config.RefreshInterval <= 0 {
		w.mu.Unlock()
		return fmt.Errorf("invalid refresh interval %v", w.config.RefreshInterval)
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	go w.runLoop(ctx, stopCh, doneCh)

	w.logger.InfoContext(ctx, "Refresh worker started",
		"refresh_interval", w.config.RefreshInterval,
		"export_interval", w.config.ExportInterval,
		"export_enabled", w.stats != nil)

	return nil
}

// Stop gracefully stops the worker and waits for the loop to exit.
func (w *RefreshWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.running = false
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		w.logger.InfoContext(ctx, "Refresh worker stopped gracefully")
		return nil
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Refresh worker stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the worker is currently running
func (w *RefreshWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *RefreshWorker) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	refreshTicker := time.NewTicker(w.config.RefreshInterval)
	defer refreshTicker.Stop()

	// a nil channel never fires, which disables exports
	var exportC <-chan time.Time
	if w.stats != nil && w.config.ExportInterval > 0 {
		exportTicker := time.NewTicker(w.config.ExportInterval)
		defer exportTicker.Stop()
		exportC = exportTicker.C
	}

	// Refresh immediately on startup
	w.refresh(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-refreshTicker.C:
			w.refresh(ctx)
		case <-exportC:
			w.export(ctx)
		}
	}
}

func (w *RefreshWorker) refresh(ctx context.Context) {
	snap, err := w.ledger.Refresh(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Refresh failed",
			log.NewFields().WithOperation(log.OpRefresh).WithError(err).ToSlice()...)
		return
	}
	w.logger.DebugContext(ctx, "Refresh complete",
		log.FieldPeriodKey, snap.PeriodKey,
		log.FieldBalance, snap.Balance)
}

func (w *RefreshWorker) export(ctx context.Context) {
	year := w.ledger.Now().Year()
	if err := w.ledger.ExportYear(ctx, w.stats, year); err != nil {
		w.logger.ErrorContext(ctx, "Stats export failed",
			log.FieldYear, year,
			log.FieldError, err)
	}
}
