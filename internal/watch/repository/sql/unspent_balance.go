package sql

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// UnspentBalance sums lovelace of the address outputs that have no tx_input row.
func (r *Repository) UnspentBalance(ctx context.Context, address string) (balance int64, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("unspent_balance", err, start)
	}()

	const query = `
SELECT CAST(COALESCE(SUM(au.lovelace_amount), 0) AS BIGINT) AS balance
FROM address_utxo au
WHERE au.owner_addr = :address
  AND NOT EXISTS (
    SELECT 1 FROM tx_input ti
    WHERE ti.tx_hash = au.tx_hash
      AND ti.output_index = au.output_index
  )`

	q, args, err := sqlx.Named(query, map[string]any{"address": address})
	if err != nil {
		return 0, fmt.Errorf("bind unspent balance query: %w", err)
	}

	if err = r.db.GetContext(ctx, &balance, r.db.Rebind(q), args...); err != nil {
		return 0, fmt.Errorf("query unspent balance: %w", err)
	}
	return balance, nil
}
