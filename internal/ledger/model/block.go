// Package model defines domain models for ledger ingestion.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Network names the ledger a node serves.
type Network string

var (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// Address is an opaque account identifier, the vertex key of the transaction graph.
type Address string

// Block represents a ledger block persisted to the block store.
type Block struct {
	Number       uint64
	Timestamp    time.Time
	Transactions []Transaction
	// Placeholder marks a block inserted after the node returned nothing for its number.
	Placeholder bool
}

// Transaction is a single value transfer. A nil To is a contract creation.
type Transaction struct {
	From  Address
	To    *Address
	Value decimal.Decimal
	Data  []byte
}

// IsSelfTransfer reports whether the transaction sends value back to its sender.
func (t Transaction) IsSelfTransfer() bool {
	return t.To != nil && *t.To == t.From
}

// CarriesData reports whether the transaction has a non-empty input payload.
func (t Transaction) CarriesData() bool {
	return len(t.Data) > 0
}

// NewPlaceholderBlock returns the empty block stored when a number cannot be fetched.
func NewPlaceholderBlock(number uint64) Block {
	return Block{
		Number:       number,
		Timestamp:    time.Unix(0, 0).UTC(),
		Transactions: []Transaction{},
		Placeholder:  true,
	}
}
