package model

// BalanceNotification describes the unspent balance of the watched address at a block.
type BalanceNotification struct {
	Address string
	Balance int64
	Block   int64
}
