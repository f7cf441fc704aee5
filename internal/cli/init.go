// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/ledger-worker and cmd/ledgerctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pocketbook/internal/backend"
	"pocketbook/internal/config"
	"pocketbook/internal/log"
	"pocketbook/internal/services"
	"pocketbook/internal/store"
)

// SetupLogger initializes structured logging at the given level.
// Returns the configured logger and sets it as the default logger.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Ledger bundles an opened ledger with the backend it runs on.
type Ledger struct {
	*services.LedgerService
	Backend *backend.BackendResult
}

// Close releases the backend's resources.
func (l *Ledger) Close() error {
	if l.Backend == nil || l.Backend.Cleanup == nil {
		return nil
	}
	return l.Backend.Cleanup()
}

// OpenLedger builds the backend described by cfg, loads the store and runs
// the startup refresh. The caller must Close the returned ledger.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Ledger, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	window, err := services.GetDedupWindow(services.WindowPolicy(cfg.SubscriptionWindow))
	if err != nil {
		return nil, err
	}

	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	opts := []services.Option{
		services.WithLocation(cfg.Location()),
		services.WithDedupWindow(window),
	}
	if res.Notifier != nil {
		opts = append(opts, services.WithNotifier(res.Notifier))
	}
	ledger := &Ledger{
		LedgerService: services.NewLedgerService(store.New(res.Persister, logger), logger, opts...),
		Backend:       res,
	}

	snap, err := ledger.Open(ctx)
	if err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	logger.InfoContext(ctx, "Ledger opened",
		log.FieldBackend, backendCfg.Type.String(),
		log.FieldPeriodKey, snap.PeriodKey,
		log.FieldBalance, snap.Balance)
	return ledger, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
