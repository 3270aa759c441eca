package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/utxo-watch/pkg/safe"
)

// DeleteOrphanSpends removes tx_input rows spent after afterSlot whose output is not in address_utxo.
// ClickHouse reports no affected rows for DELETE, so the orphans are counted first.
func (r *Repository) DeleteOrphanSpends(ctx context.Context, afterSlot int64) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("delete_orphan_spends", err, start)
	}()

	slot, err := safe.Uint64(afterSlot)
	if err != nil {
		return 0, fmt.Errorf("convert slot: %w", err)
	}

	const countQuery = `
SELECT count() AS orphans
FROM tx_input FINAL
WHERE spent_at_slot > ?
  AND (tx_hash, output_index) NOT IN (SELECT tx_hash, output_index FROM address_utxo)`

	var orphans uint64
	if err = queryScalar(ctx, r.conn, &orphans, countQuery, slot); err != nil {
		err = fmt.Errorf("count orphan spends: %w", err)
		return 0, err
	}
	if orphans == 0 {
		return 0, nil
	}

	const deleteQuery = `
DELETE FROM tx_input
WHERE spent_at_slot > ?
  AND (tx_hash, output_index) NOT IN (SELECT tx_hash, output_index FROM address_utxo)`

	if err = r.conn.Exec(ctx, deleteQuery, slot); err != nil {
		err = fmt.Errorf("delete orphan spends: %w", err)
		return 0, err
	}

	deleted, err := safe.Int64(orphans)
	if err != nil {
		err = fmt.Errorf("convert deleted count: %w", err)
		return 0, err
	}
	return deleted, nil
}
