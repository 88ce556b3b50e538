// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package types

import (
	"math/big"

	"github.com/lumenchain/lumen/common"
)

// Receipt statuses.
const (
	ReceiptStatusFailed = uint64(0)
	ReceiptStatusSuccessful = uint64(1)
)

// Log is one event emitted during transaction execution (spec.md §3.5).
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte

	// Populated after the surrounding block is known.
	BlockNumber uint64
	TxHash      common.Hash
	TxIndex     uint
	BlockHash   common.Hash
	Index       uint
	Removed     bool
}

// Receipt is produced by every executed transaction (spec.md §3.5).
type Receipt struct {
	Type              TxType
	Status            uint64
	CumulativeGasUsed uint64
	Bloom             Bloom
	Logs              []*Log

	TxHash          common.Hash
	ContractAddress common.Address
	GasUsed         uint64

	BlobGasUsed  uint64
	BlobGasPrice *big.Int

	BlockHash        common.Hash
	BlockNumber      *big.Int
	TransactionIndex uint
}

// Receipts is a list of receipts; the receipts trie and the block-level
// requests extraction both operate on this slice.
type Receipts []*Receipt

// Failed reports whether the transaction's outcome was unsuccessful.
func (r *Receipt) Failed() bool { return r.Status == ReceiptStatusFailed }
