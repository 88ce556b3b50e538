// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package eth implements the eth/68 wire sub-protocol (spec.md §6):
// chain status handshake, header/body/receipt propagation and
// request/response, and pending-transaction gossip.
package eth

import (
	"math/big"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/types"
)

// Message codes, per eth/68.
const (
	StatusMsg                     uint64 = 0x00
	NewBlockHashesMsg              uint64 = 0x01
	TransactionsMsg                uint64 = 0x02
	GetBlockHeadersMsg             uint64 = 0x03
	BlockHeadersMsg                uint64 = 0x04
	GetBlockBodiesMsg              uint64 = 0x05
	BlockBodiesMsg                 uint64 = 0x06
	NewBlockMsg                    uint64 = 0x07
	NewPooledTransactionHashesMsg  uint64 = 0x08
	GetPooledTransactionsMsg       uint64 = 0x09
	PooledTransactionsMsg          uint64 = 0x0a
	GetReceiptsMsg                 uint64 = 0x0f
	ReceiptsMsg                    uint64 = 0x10
)

// Status is the handshake exchanged once, immediately after a
// connection negotiates the eth protocol: each side confirms the
// other is on a compatible chain before any other message is sent.
type Status struct {
	ProtocolVersion uint32
	NetworkID       uint64
	TotalDifficulty *big.Int
	Head            common.Hash
	Genesis         common.Hash
	ForkID          ForkID
}

// ForkID identifies a chain's activated-fork history as a single
// comparable value so a peer on an incompatible fork schedule is
// rejected during the handshake rather than mid-sync.
type ForkID struct {
	Hash [4]byte
	Next uint64
}

// NewBlockHashesPacket announces new block hashes available on the
// sender without the full block bodies.
type NewBlockHashesPacket struct {
	Entries []BlockHashEntry
}

// BlockHashEntry pairs a block hash with its number.
type BlockHashEntry struct {
	Hash   common.Hash
	Number uint64
}

// TransactionsPacket propagates full transactions to a peer's pool.
type TransactionsPacket struct {
	Transactions []*types.Transaction
}

// HashOrNumber selects a GetBlockHeaders request's origin by hash or
// by number; exactly one of Hash/Number is meaningful, distinguished
// by IsHash.
type HashOrNumber struct {
	Hash   common.Hash
	Number uint64
	IsHash bool
}

// GetBlockHeadersRequest requests a run of headers starting at Origin.
type GetBlockHeadersRequest struct {
	Origin  HashOrNumber
	Amount  uint64
	Skip    uint64
	Reverse bool
}

// GetBlockHeadersPacket is GetBlockHeadersRequest wrapped with the
// request ID every eth/68 request/response pair echoes.
type GetBlockHeadersPacket struct {
	RequestID uint64
	Request   GetBlockHeadersRequest
}

// BlockHeadersPacket answers a GetBlockHeadersPacket.
type BlockHeadersPacket struct {
	RequestID uint64
	Headers   []*types.Header
}

// GetBlockBodiesPacket requests bodies for the given block hashes.
type GetBlockBodiesPacket struct {
	RequestID uint64
	Hashes    []common.Hash
}

// BlockBody is one block's transaction and withdrawal list (headers
// are fetched separately, so a body omits them).
type BlockBody struct {
	Transactions []*types.Transaction
	Withdrawals  types.Withdrawals
}

// BlockBodiesPacket answers a GetBlockBodiesPacket.
type BlockBodiesPacket struct {
	RequestID uint64
	Bodies    []BlockBody
}

// NewBlockPacket announces a freshly built or received block to a
// peer along with the chain's total difficulty through it.
type NewBlockPacket struct {
	Block           *types.Block
	TotalDifficulty *big.Int
}

// NewPooledTransactionHashesPacket announces pending transactions by
// hash (plus type and encoded size) without sending their bodies,
// letting the receiver pull only the ones it is missing.
type NewPooledTransactionHashesPacket struct {
	Types  []byte
	Sizes  []uint32
	Hashes []common.Hash
}

// GetPooledTransactionsPacket requests specific pending transactions
// by hash, typically ones just announced.
type GetPooledTransactionsPacket struct {
	RequestID uint64
	Hashes    []common.Hash
}

// PooledTransactionsPacket answers a GetPooledTransactionsPacket.
type PooledTransactionsPacket struct {
	RequestID    uint64
	Transactions []*types.Transaction
}

// GetReceiptsPacket requests receipts for the given block hashes.
type GetReceiptsPacket struct {
	RequestID uint64
	Hashes    []common.Hash
}

// ReceiptsPacket answers a GetReceiptsPacket, one receipt list per
// requested block in the same order.
type ReceiptsPacket struct {
	RequestID uint64
	Receipts  [][]*types.Receipt
}
