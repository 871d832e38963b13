package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abristow3/Hunt-Bot/internal/adapter/chatlog"
	"github.com/abristow3/Hunt-Bot/internal/adapter/sheets"
	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/hunt"
	"github.com/abristow3/Hunt-Bot/internal/orchestrator"
	"github.com/abristow3/Hunt-Bot/internal/platform/config"
	"github.com/abristow3/Hunt-Bot/internal/platform/logging"
	"github.com/abristow3/Hunt-Bot/internal/sheet"
	"github.com/abristow3/Hunt-Bot/internal/statestore"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupSheets(cfg *config.Config) domain.SheetSource {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := sheets.NewClient(ctx, cfg.CredentialsFile, cfg.SpreadsheetID)
	if err != nil {
		slog.Error("Failed to create sheets client", "error", err)
		os.Exit(1)
	}
	return client
}

func setupState(cfg *config.Config, clock clockwork.Clock) (*hunt.State, *statestore.Store) {
	state := hunt.NewState(clock)
	store := statestore.NewStore(cfg.StateFile, clock)

	snap, found, err := store.Load()
	if err != nil {
		slog.Error("Failed to load state snapshot", "error", err)
		os.Exit(1)
	}
	if found {
		if err := state.Restore(snap); err != nil {
			slog.Warn("Stale state snapshot ignored", "error", err)
		} else {
			slog.Info("State restored", "started", snap.Started, "ended", snap.Ended)
		}
	}
	return state, store
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server error", "error", err)
		}
	}()
	return srv
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Hunt bot starting", "sheet", cfg.SheetName, "config_table", cfg.ConfigTableName)

	source := setupSheets(cfg)
	provider := sheet.NewProvider(source, cfg.SheetName)
	state, store := setupState(cfg, clock)

	// The platform client is injected here; chatlog is the dry-run backend.
	chat := chatlog.New(clock)

	orch := orchestrator.New(cfg, chat, provider, state, store, clock)

	metricsSrv := startMetricsServer(cfg.MetricsAddr)

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Metrics server shutdown error", "error", err)
		}

		orch.Stop()
		cancel()
	}()

	orch.Run(ctx)
	slog.Info("Hunt bot stopped")
}
