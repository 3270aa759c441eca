package sql

import (
	"context"
	"fmt"
	"time"
)

// DeleteOrphanSpends removes tx_input rows spent after afterSlot whose output is not in address_utxo.
func (r *Repository) DeleteOrphanSpends(ctx context.Context, afterSlot int64) (deleted int64, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("delete_orphan_spends", err, start)
	}()

	const query = `
DELETE FROM tx_input
WHERE spent_at_slot > :after_slot
  AND NOT EXISTS (
    SELECT 1 FROM address_utxo au
    WHERE au.tx_hash = tx_input.tx_hash
      AND au.output_index = tx_input.output_index
  )`

	res, err := r.db.NamedExecContext(ctx, query, map[string]any{"after_slot": afterSlot})
	if err != nil {
		return 0, fmt.Errorf("delete orphan spends: %w", err)
	}

	deleted, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("orphan spends rows affected: %w", err)
	}
	return deleted, nil
}
