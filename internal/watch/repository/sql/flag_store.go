package sql

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"time"
)

// Get reads a flag from watch_state.
func (r *Repository) Get(ctx context.Context, key string) (value []byte, found bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("get_flag", err, start)
	}()

	const query = `SELECT state_value FROM watch_state WHERE state_key = ?`

	if err = r.db.GetContext(ctx, &value, r.db.Rebind(query), key); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query flag %s: %w", key, err)
	}
	return value, true, nil
}

// Put upserts a flag into watch_state.
func (r *Repository) Put(ctx context.Context, key string, value []byte) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("put_flag", err, start)
	}()

	const query = `
INSERT INTO watch_state (state_key, state_value)
VALUES (:state_key, :state_value)
ON CONFLICT (state_key) DO UPDATE SET state_value = excluded.state_value`

	if _, err = r.db.NamedExecContext(ctx, query, map[string]any{
		"state_key":   key,
		"state_value": value,
	}); err != nil {
		return fmt.Errorf("upsert flag %s: %w", key, err)
	}
	return nil
}

// Remove deletes a flag from watch_state.
func (r *Repository) Remove(ctx context.Context, key string) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("remove_flag", err, start)
	}()

	const query = `DELETE FROM watch_state WHERE state_key = ?`

	if _, err = r.db.ExecContext(ctx, r.db.Rebind(query), key); err != nil {
		return fmt.Errorf("delete flag %s: %w", key, err)
	}
	return nil
}
