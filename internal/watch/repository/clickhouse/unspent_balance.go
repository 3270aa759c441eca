package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// UnspentBalance sums lovelace of the address outputs that have no tx_input row.
func (r *Repository) UnspentBalance(ctx context.Context, address string) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("unspent_balance", err, start)
	}()

	const query = `
SELECT coalesce(sum(lovelace_amount), toInt64(0)) AS balance
FROM address_utxo FINAL
WHERE owner_addr = ?
  AND (tx_hash, output_index) NOT IN (SELECT tx_hash, output_index FROM tx_input)`

	var balance int64
	if err = queryScalar(ctx, r.conn, &balance, query, address); err != nil {
		err = fmt.Errorf("query unspent balance: %w", err)
		return 0, err
	}
	return balance, nil
}
