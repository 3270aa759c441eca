package model

// NewBatchEvent carries the UTXO records of one ingestion batch before persistence.
type NewBatchEvent struct {
	Records []UtxoRecord `json:"records"`
}

// CommitEvent is published by the host at the end of every batch.
type CommitEvent struct {
	Slot  int64 `json:"slot"`
	Block int64 `json:"block"`
	// AtTip reports whether the host has caught up with the live chain.
	AtTip bool `json:"at_tip"`
}

// RollbackEvent asks the reconciler to rewind to a slot.
type RollbackEvent struct {
	RollbackToSlot int64 `json:"rollback_to_slot"`
}

// CommitResult summarises what a commit did.
type CommitResult struct {
	DeletedSpends int64 `json:"deleted_spends"`
	Notified      bool  `json:"notified"`
}

// StateSnapshot exposes the reconciler flags for diagnostics.
type StateSnapshot struct {
	LastReconciledSlot int64 `json:"last_reconciled_slot"`
	UtxoFound          bool  `json:"utxo_found"`
}
