package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/utxo-watch/internal/metrics"
	"github.com/goodnatureofminers/utxo-watch/internal/transport"
	"github.com/goodnatureofminers/utxo-watch/internal/watch/model"
	"github.com/goodnatureofminers/utxo-watch/internal/watch/reconciler"
	"github.com/goodnatureofminers/utxo-watch/internal/watch/repository/clickhouse"
	"github.com/goodnatureofminers/utxo-watch/internal/watch/repository/sql"
	"github.com/goodnatureofminers/utxo-watch/internal/watch/state/pebble"
	"github.com/goodnatureofminers/utxo-watch/internal/watch/webhook"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	storeClickhouse = "clickhouse"
	statePebble     = "pebble"
	stateSQL        = "sql"
)

type config struct {
	Network              model.Network `long:"network" env:"UTXO_WATCH_NETWORK" description:"cardano network (mainnet, preprod, preview)" default:"mainnet"`
	WatchedAddress       string        `long:"watched-address" env:"UTXO_WATCH_ADDRESS" description:"address whose UTXOs are kept" required:"true"`
	WebhookURL           string        `long:"webhook-url" env:"UTXO_WATCH_WEBHOOK_URL" description:"webhook receiving balance notifications" required:"true"`
	WebhookRPS           int           `long:"webhook-rps" env:"UTXO_WATCH_WEBHOOK_RPS" description:"max webhook posts per second, 0 disables the limit" default:"0"`
	WebhookTimeout       time.Duration `long:"webhook-timeout" env:"UTXO_WATCH_WEBHOOK_TIMEOUT" description:"HTTP timeout for webhook posts" default:"10s"`
	Store                string        `long:"store" env:"UTXO_WATCH_STORE" description:"UTXO store backend" choice:"clickhouse" choice:"postgres" choice:"sqlite" default:"postgres"`
	StoreDSN             string        `long:"store-dsn" env:"UTXO_WATCH_STORE_DSN" description:"UTXO store DSN" required:"true"`
	StateStore           string        `long:"state-store" env:"UTXO_WATCH_STATE_STORE" description:"reconciler flag store" choice:"pebble" choice:"sql" default:"pebble"`
	StateDir             string        `long:"state-dir" env:"UTXO_WATCH_STATE_DIR" description:"pebble directory for reconciler flags" default:"data/state"`
	ResetDirtyOnRollback bool          `long:"reset-dirty-on-rollback" env:"UTXO_WATCH_RESET_DIRTY_ON_ROLLBACK" description:"drop a pending balance change when the host rolls back"`
	Addr                 string        `long:"addr" env:"UTXO_WATCH_ADDR" description:"address for the host event API" default:":8080"`
	MetricsAddr          string        `long:"metrics-addr" env:"UTXO_WATCH_METRICS_ADDR" description:"address for metrics server" default:":2112"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("utxo watcher failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	if err := webhook.ValidateURL(cfg.WebhookURL); err != nil {
		return err
	}
	if err := model.ValidateAddress(cfg.Network, cfg.WatchedAddress); err != nil {
		return fmt.Errorf("invalid watched address: %w", err)
	}

	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.close(); closeErr != nil {
			logger.Error("failed to close storage", zap.Error(closeErr))
		}
	}()

	notifier, err := webhook.NewClient(webhook.Config{
		URL:     cfg.WebhookURL,
		RPS:     cfg.WebhookRPS,
		Timeout: cfg.WebhookTimeout,
	}, nil, metrics.NewWebhook(), logger)
	if err != nil {
		return fmt.Errorf("init webhook client: %w", err)
	}

	rec, err := reconciler.NewReconciler(reconciler.Config{
		Network:              cfg.Network,
		WatchedAddress:       cfg.WatchedAddress,
		ResetDirtyOnRollback: cfg.ResetDirtyOnRollback,
	}, st.flags, st.repo, notifier, metrics.NewReconciler(string(cfg.Network)), logger.Named("reconciler"))
	if err != nil {
		return fmt.Errorf("init reconciler: %w", err)
	}

	snapshot, err := rec.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read reconciler state: %w", err)
	}
	logger.Info("reconciler ready",
		zap.String("network", string(cfg.Network)),
		zap.String("store", cfg.Store),
		zap.String("state_store", cfg.StateStore),
		zap.Int64("last_reconciled_slot", snapshot.LastReconciledSlot),
		zap.Bool("utxo_found", snapshot.UtxoFound),
	)

	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	mux := http.NewServeMux()
	transport.NewHookHandler(rec, metrics.NewHook(), logger).Register(mux)

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server", zap.String("addr", cfg.Addr))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

type storage struct {
	repo    reconciler.Repository
	flags   reconciler.FlagStore
	closers []func() error
}

func (s storage) close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openStorage(cfg config) (storage, error) {
	var st storage

	switch cfg.Store {
	case storeClickhouse:
		if cfg.StateStore == stateSQL {
			return st, errors.New("state store sql requires a postgres or sqlite store")
		}
		repo, err := clickhouse.NewRepository(cfg.StoreDSN, metrics.NewRepository(cfg.Store))
		if err != nil {
			return st, fmt.Errorf("init clickhouse repository: %w", err)
		}
		st.repo = repo
		st.closers = append(st.closers, repo.Close)
	default:
		repo, err := sql.NewRepository(cfg.Store, cfg.StoreDSN, metrics.NewRepository(cfg.Store))
		if err != nil {
			return st, fmt.Errorf("init %s repository: %w", cfg.Store, err)
		}
		st.repo = repo
		st.closers = append(st.closers, repo.Close)
		if cfg.StateStore == stateSQL {
			st.flags = repo
		}
	}

	if cfg.StateStore == statePebble {
		store, err := pebble.Open(cfg.StateDir)
		if err != nil {
			_ = st.close()
			return storage{}, fmt.Errorf("open pebble state: %w", err)
		}
		st.flags = store
		st.closers = append(st.closers, store.Close)
	}

	return st, nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
