package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"pocketbook/internal/config"
	"pocketbook/internal/log"
)

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug")
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
	logger = SetupLogger("error")
	if logger.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn level should be disabled at error level")
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	if _, err := LoadAndValidateConfig(); err != nil {
		t.Fatalf("LoadAndValidateConfig() error = %v", err)
	}

	t.Setenv("SUBSCRIPTION_WINDOW", "fortnight")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Error("expected validation error for unknown window")
	}
}

func TestOpenLedger(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		DataBackend:          "sqlite",
		SQLiteDBPath:         filepath.Join(t.TempDir(), "ledger.db"),
		GoogleStatsSheetName: "Stats",
		SubscriptionWindow:   "calendarMonth",
		Timezone:             "UTC",
	}

	ledger, err := OpenLedger(ctx, cfg, log.Discard())
	if err != nil {
		t.Fatalf("OpenLedger() error = %v", err)
	}
	if ledger.Backend.Notifier != nil {
		t.Error("Notifier should be nil without AMQP_URL")
	}
	if ledger.Store().LastPeriodKey() == "" {
		t.Error("Open should record the current period key")
	}
	if err := ledger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestOpenLedger_UnknownWindow(t *testing.T) {
	cfg := &config.Config{DataBackend: "memory", SubscriptionWindow: "weekly", Timezone: "UTC"}
	if _, err := OpenLedger(context.Background(), cfg, log.Discard()); err == nil {
		t.Error("expected error for unknown subscription window")
	}
}
