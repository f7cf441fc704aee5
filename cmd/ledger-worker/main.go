package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"pocketbook/internal/cache"
	"pocketbook/internal/cli"
	apphttp "pocketbook/internal/http"
	"pocketbook/internal/sheets"
	"pocketbook/internal/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting ledger-worker")

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		return 1
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	ledger, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger", "error", err)
		return 1
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Error("Failed to close backend", "error", err)
		}
	}()

	caches := cache.NewManager(logger)
	caches.Register(ledger.Statistics().Cleaner())
	caches.StartCleanup(cfg.CacheCleanupInterval)
	defer caches.Stop()

	// Only export when a real spreadsheet is configured
	var stats sheets.StatsWriter
	if cfg.SheetsEnabled() {
		stats = ledger.Backend.Stats
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	refresher := worker.NewRefreshWorker(ledger, stats, worker.Config{
		RefreshInterval: cfg.RefreshInterval,
		ExportInterval:  24 * time.Hour,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := refresher.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()

		logger.Info("Shutting down worker...")
		stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer stopCancel()
		return refresher.Stop(stopCtx)
	})

	if cfg.StatusEnabled() {
		srv := apphttp.NewServer(cfg.StatusAddr, ledger, logger)
		g.Go(func() error {
			logger.Info("Status API listening", "addr", cfg.StatusAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker exited with error", "error", err)
		return 1
	}
	logger.Info("Worker shutdown complete")
	return 0
}
