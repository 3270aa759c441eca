package reconciler

import (
	"context"
	"time"

	"github.com/goodnatureofminers/utxo-watch/internal/watch/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// FlagStore persists small reconciler flags across restarts.
	FlagStore interface {
		Get(ctx context.Context, key string) ([]byte, bool, error)
		Put(ctx context.Context, key string, value []byte) error
		Remove(ctx context.Context, key string) error
	}
	SpendRepository interface {
		DeleteOrphanSpends(ctx context.Context, afterSlot int64) (int64, error)
	}
	BalanceRepository interface {
		UnspentBalance(ctx context.Context, address string) (int64, error)
	}
	Repository interface {
		SpendRepository
		BalanceRepository
	}
	Notifier interface {
		Notify(ctx context.Context, n model.BalanceNotification) error
	}
	Metrics interface {
		ObserveFilter(total, kept int)
		ObserveCleanup(err error, deleted int64, started time.Time)
		ObserveNotification(outcome string)
	}

	AddressFilter interface {
		Filter(ctx context.Context, records []model.UtxoRecord) ([]model.UtxoRecord, error)
	}
	SpendCleaner interface {
		OnCommit(ctx context.Context, batchEndSlot int64) (int64, error)
	}
	BalanceNotifier interface {
		OnCommit(ctx context.Context, atTip bool, block int64) (bool, error)
	}
)
