// Package reconciler keeps a watched-address UTXO table consistent with the spend table
// and notifies about balance changes once the indexing host is at the chain tip.
package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/goodnatureofminers/utxo-watch/internal/watch/model"
	"go.uber.org/zap"
)

// Config holds reconciler settings.
type Config struct {
	Network        model.Network
	WatchedAddress string
	// ResetDirtyOnRollback clears a pending balance change when the host rolls back.
	// Off by default, so a change recorded before a rollback is still notified after replay.
	ResetDirtyOnRollback bool
}

// Reconciler dispatches host events to the filter, spend cleaner and balance notifier.
// The host must not call its methods concurrently.
type Reconciler struct {
	logger               *zap.Logger
	state                *State
	filter               AddressFilter
	cleaner              SpendCleaner
	notifier             BalanceNotifier
	resetDirtyOnRollback bool
}

// NewReconciler validates cfg and wires the reconciler components.
func NewReconciler(
	cfg Config,
	store FlagStore,
	repo Repository,
	notifier Notifier,
	metrics Metrics,
	logger *zap.Logger,
) (*Reconciler, error) {
	if err := model.ValidateAddress(cfg.Network, cfg.WatchedAddress); err != nil {
		return nil, fmt.Errorf("invalid watched address: %w", err)
	}
	if store == nil {
		return nil, errors.New("flag store is required")
	}
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	if metrics == nil {
		return nil, errors.New("reconciler metrics is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	logger = logger.With(zap.String("address", cfg.WatchedAddress))
	state := NewState(store)

	return &Reconciler{
		logger:               logger,
		state:                state,
		resetDirtyOnRollback: cfg.ResetDirtyOnRollback,
		filter: &addressFilter{
			address: cfg.WatchedAddress,
			state:   state,
			metrics: metrics,
		},
		cleaner: &pendingSpendCleaner{
			repo:    repo,
			state:   state,
			metrics: metrics,
			logger:  logger.Named("spendCleaner"),
		},
		notifier: &balanceChangeNotifier{
			address:  cfg.WatchedAddress,
			repo:     repo,
			notifier: notifier,
			state:    state,
			metrics:  metrics,
			logger:   logger.Named("balanceNotifier"),
		},
	}, nil
}

// OnNewBatch returns the records of the batch the host should persist.
func (r *Reconciler) OnNewBatch(ctx context.Context, event model.NewBatchEvent) ([]model.UtxoRecord, error) {
	kept, err := r.filter.Filter(ctx, event.Records)
	if err != nil {
		return nil, fmt.Errorf("filter batch: %w", err)
	}
	if len(kept) > 0 {
		r.logger.Debug("kept watched utxos", zap.Int("kept", len(kept)), zap.Int("total", len(event.Records)))
	}
	return kept, nil
}

// OnCommit cleans orphan spends and then notifies about a balance change.
// A cleanup failure aborts the commit before the balance is read.
func (r *Reconciler) OnCommit(ctx context.Context, event model.CommitEvent) (model.CommitResult, error) {
	deleted, err := r.cleaner.OnCommit(ctx, event.Slot)
	if err != nil {
		return model.CommitResult{}, fmt.Errorf("clean orphan spends: %w", err)
	}

	notified, err := r.notifier.OnCommit(ctx, event.AtTip, event.Block)
	if err != nil {
		return model.CommitResult{DeletedSpends: deleted}, fmt.Errorf("notify balance change: %w", err)
	}

	return model.CommitResult{DeletedSpends: deleted, Notified: notified}, nil
}

// OnRollback rewinds the watermark to the rollback slot.
func (r *Reconciler) OnRollback(ctx context.Context, event model.RollbackEvent) error {
	if err := r.state.SetLastReconciledSlot(ctx, event.RollbackToSlot); err != nil {
		return fmt.Errorf("reset watermark: %w", err)
	}
	if r.resetDirtyOnRollback {
		if err := r.state.ClearUtxoFound(ctx); err != nil {
			return fmt.Errorf("clear utxo found flag: %w", err)
		}
	}
	r.logger.Info("rolled back watermark", zap.Int64("slot", event.RollbackToSlot))
	return nil
}

// Snapshot reads the current flags.
func (r *Reconciler) Snapshot(ctx context.Context) (model.StateSnapshot, error) {
	slot, err := r.state.LastReconciledSlot(ctx)
	if err != nil {
		return model.StateSnapshot{}, fmt.Errorf("read watermark: %w", err)
	}
	found, err := r.state.UtxoFound(ctx)
	if err != nil {
		return model.StateSnapshot{}, fmt.Errorf("read utxo found flag: %w", err)
	}
	return model.StateSnapshot{LastReconciledSlot: slot, UtxoFound: found}, nil
}
