// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package types

import "github.com/lumenchain/lumen/common"

// Block is a header plus body (spec.md §3.3).
type Block struct {
	header       *Header
	transactions []*Transaction
	withdrawals  Withdrawals
	requests     Requests

	hash *common.Hash
}

// NewBlock assembles a block from its parts. The caller is responsible for
// having already set TxHash/WithdrawalsHash/RequestsHash on header to match
// the supplied bodies; NewBlock does not recompute them.
func NewBlock(header *Header, txs []*Transaction, withdrawals Withdrawals, requests Requests) *Block {
	return &Block{header: header, transactions: txs, withdrawals: withdrawals, requests: requests}
}

func (b *Block) Header() *Header            { return b.header }
func (b *Block) Transactions() []*Transaction { return b.transactions }
func (b *Block) Withdrawals() Withdrawals    { return b.withdrawals }
func (b *Block) Requests() Requests          { return b.requests }
func (b *Block) Number() uint64              { return b.header.NumberU64() }
func (b *Block) GasLimit() uint64            { return b.header.GasLimit }
func (b *Block) Time() uint64                { return b.header.Time }
func (b *Block) ParentHash() common.Hash     { return b.header.ParentHash }

// BeaconRoot returns the Cancun+ parent beacon block root, or nil pre-Cancun.
func (b *Block) BeaconRoot() *common.Hash { return b.header.ParentBeaconBlockRoot }

// Hash returns the header hash, computed once and cached.
func (b *Block) Hash() common.Hash {
	if b.hash != nil {
		return *b.hash
	}
	h := b.header.Hash()
	b.hash = &h
	return h
}
