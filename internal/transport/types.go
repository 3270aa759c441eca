package transport

import (
	"context"
	"time"

	"github.com/goodnatureofminers/utxo-watch/internal/watch/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Reconciler handles host events.
	Reconciler interface {
		OnNewBatch(ctx context.Context, event model.NewBatchEvent) ([]model.UtxoRecord, error)
		OnCommit(ctx context.Context, event model.CommitEvent) (model.CommitResult, error)
		OnRollback(ctx context.Context, event model.RollbackEvent) error
		Snapshot(ctx context.Context) (model.StateSnapshot, error)
	}
	Metrics interface {
		ObserveRequest(event string, code int, started time.Time)
	}
)
