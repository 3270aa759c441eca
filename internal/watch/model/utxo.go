// Package model defines domain models for watched-address UTXO reconciliation.
package model

import "time"

// UtxoRecord is an unspent output as written by the indexing host into address_utxo.
type UtxoRecord struct {
	TxHash         string    `json:"tx_hash"`
	OutputIndex    uint32    `json:"output_index"`
	Slot           int64     `json:"slot"`
	BlockNumber    int64     `json:"block"`
	BlockHash      string    `json:"block_hash"`
	BlockTime      time.Time `json:"block_time"`
	OwnerAddr      string    `json:"owner_addr"`
	OwnerStakeAddr string    `json:"owner_stake_addr,omitempty"`
	LovelaceAmount int64     `json:"lovelace_amount"`
	DataHash       string    `json:"data_hash,omitempty"`
}

// SpendRecord is a tx_input row claiming that an output was spent at a slot.
// It is written independently of the address filter.
type SpendRecord struct {
	TxHash       string `json:"tx_hash"`
	OutputIndex  uint32 `json:"output_index"`
	SpentAtSlot  int64  `json:"spent_at_slot"`
	SpentAtBlock int64  `json:"spent_at_block"`
	SpentTxHash  string `json:"spent_tx_hash"`
}
