package reconciler

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/utxo-watch/internal/watch/model"
)

type addressFilter struct {
	address string
	state   *State
	metrics Metrics
}

// Filter keeps the records owned by the watched address, preserving order.
// A non-empty result marks the UTXO set as changed.
func (f *addressFilter) Filter(ctx context.Context, records []model.UtxoRecord) ([]model.UtxoRecord, error) {
	kept := make([]model.UtxoRecord, 0)
	for _, record := range records {
		if record.OwnerAddr == f.address {
			kept = append(kept, record)
		}
	}
	f.metrics.ObserveFilter(len(records), len(kept))

	if len(kept) == 0 {
		return kept, nil
	}
	if err := f.state.MarkUtxoFound(ctx); err != nil {
		return nil, fmt.Errorf("mark utxo found: %w", err)
	}
	return kept, nil
}
