package reconciler

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/utxo-watch/internal/watch/model"
	"go.uber.org/zap"
)

type balanceChangeNotifier struct {
	address  string
	repo     BalanceRepository
	notifier Notifier
	state    *State
	metrics  Metrics
	logger   *zap.Logger
}

// OnCommit sends at most one notification per dirty flag. The flag is cleared before
// anything else so a failing webhook is not retried on every following commit.
// Changes observed while the host is still syncing are dropped.
func (n *balanceChangeNotifier) OnCommit(ctx context.Context, atTip bool, block int64) (bool, error) {
	found, err := n.state.UtxoFound(ctx)
	if err != nil {
		return false, fmt.Errorf("read utxo found flag: %w", err)
	}
	if !found {
		return false, nil
	}
	if err := n.state.ClearUtxoFound(ctx); err != nil {
		return false, fmt.Errorf("clear utxo found flag: %w", err)
	}

	if !atTip {
		n.metrics.ObserveNotification(NotificationSuppressed)
		n.logger.Debug("balance changed before reaching tip; notification suppressed", zap.Int64("block", block))
		return false, nil
	}

	balance, err := n.repo.UnspentBalance(ctx, n.address)
	if err != nil {
		return false, fmt.Errorf("query unspent balance: %w", err)
	}

	notification := model.BalanceNotification{
		Address: n.address,
		Balance: balance,
		Block:   block,
	}
	if err := n.notifier.Notify(ctx, notification); err != nil {
		n.metrics.ObserveNotification(NotificationFailed)
		n.logger.Warn("balance notification failed",
			zap.Error(err),
			zap.Int64("balance", balance),
			zap.Int64("block", block),
		)
		return false, nil
	}

	n.metrics.ObserveNotification(NotificationSent)
	n.logger.Info("balance notification sent",
		zap.Int64("balance", balance),
		zap.Int64("block", block),
	)
	return true, nil
}
