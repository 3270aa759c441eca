package clickhouse

import (
	"context"
	"errors"
	"fmt"
)

var errNoRows = errors.New("no rows")

// queryScalar runs a single-row, single-column query.
func queryScalar(ctx context.Context, conn Conn, dest any, query string, args ...any) (err error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return err
		}
		return errNoRows
	}
	if err = rows.Scan(dest); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return rows.Err()
}
