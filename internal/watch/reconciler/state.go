package reconciler

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// State gives typed access to the reconciler flags kept in a FlagStore.
type State struct {
	store FlagStore
}

// NewState wraps store.
func NewState(store FlagStore) *State {
	return &State{store: store}
}

// LastReconciledSlot returns the watermark, 0 when it was never written.
func (s *State) LastReconciledSlot(ctx context.Context) (int64, error) {
	var slot int64
	found, err := s.get(ctx, lastReconciledSlotKey, &slot)
	if err != nil || !found {
		return 0, err
	}
	return slot, nil
}

// SetLastReconciledSlot stores the watermark.
func (s *State) SetLastReconciledSlot(ctx context.Context, slot int64) error {
	return s.put(ctx, lastReconciledSlotKey, slot)
}

// UtxoFound reports whether a batch kept records since the flag was last cleared.
func (s *State) UtxoFound(ctx context.Context) (bool, error) {
	var found bool
	ok, err := s.get(ctx, utxoFoundKey, &found)
	if err != nil || !ok {
		return false, err
	}
	return found, nil
}

// MarkUtxoFound sets the dirty flag.
func (s *State) MarkUtxoFound(ctx context.Context) error {
	return s.put(ctx, utxoFoundKey, true)
}

// ClearUtxoFound removes the dirty flag.
func (s *State) ClearUtxoFound(ctx context.Context) error {
	if err := s.store.Remove(ctx, utxoFoundKey); err != nil {
		return fmt.Errorf("remove %s: %w", utxoFoundKey, err)
	}
	return nil
}

func (s *State) get(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := msgpack.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *State) put(ctx context.Context, key string, value any) error {
	raw, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.store.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
