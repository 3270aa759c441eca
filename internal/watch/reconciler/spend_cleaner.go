package reconciler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// pendingSpendCleaner purges tx_input rows whose output belongs to another address.
// Such rows are written by the host regardless of the filter and can never be matched.
type pendingSpendCleaner struct {
	repo    SpendRepository
	state   *State
	metrics Metrics
	logger  *zap.Logger
}

func (c *pendingSpendCleaner) OnCommit(ctx context.Context, batchEndSlot int64) (deleted int64, err error) {
	started := time.Now()
	defer func() {
		c.metrics.ObserveCleanup(err, deleted, started)
	}()

	watermark, err := c.state.LastReconciledSlot(ctx)
	if err != nil {
		return 0, fmt.Errorf("read watermark: %w", err)
	}

	c.logger.Debug("deleting orphan spends", zap.Int64("after_slot", watermark))
	deleted, err = c.repo.DeleteOrphanSpends(ctx, watermark)
	if err != nil {
		return 0, fmt.Errorf("delete orphan spends after slot %d: %w", watermark, err)
	}
	if deleted > 0 {
		c.logger.Info("deleted orphan spends",
			zap.Int64("count", deleted),
			zap.Int64("after_slot", watermark),
		)
	}

	// A commit below the watermark means the host is replaying; the next commit
	// then rescans everything written since this slot.
	if batchEndSlot < watermark {
		c.logger.Info("commit slot behind watermark; lowering watermark",
			zap.Int64("slot", batchEndSlot),
			zap.Int64("watermark", watermark),
		)
	}
	if err = c.state.SetLastReconciledSlot(ctx, batchEndSlot); err != nil {
		return deleted, fmt.Errorf("advance watermark: %w", err)
	}
	return deleted, nil
}
