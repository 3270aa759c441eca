package reconciler

const (
	lastReconciledSlotKey = "watch.last_reconciled_slot"
	utxoFoundKey          = "watch.utxo_found"
)

// Notification outcomes reported to Metrics.
const (
	NotificationSent       = "sent"
	NotificationFailed     = "failed"
	NotificationSuppressed = "suppressed"
)
