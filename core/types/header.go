// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package types

import (
	"math/big"

	"github.com/lumenchain/lumen/common"
)

// Header carries every field of a block header relevant to execution
// (spec.md §3.3), across the full fork range from Frontier to Amsterdam.
type Header struct {
	ParentHash  common.Hash
	Coinbase    common.Address // block reward/tip recipient
	Root        common.Hash    // state root
	TxHash      common.Hash    // transactions root
	ReceiptHash common.Hash    // receipts root
	Bloom       Bloom
	Difficulty  *big.Int
	Number      *big.Int
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   common.Hash // prev-randao post-Paris
	Nonce       [8]byte     // legacy PoW nonce

	// London+
	BaseFee *big.Int

	// Shanghai+
	WithdrawalsHash *common.Hash

	// Cancun+
	BlobGasUsed           *uint64
	ExcessBlobGas         *uint64
	ParentBeaconBlockRoot *common.Hash

	// Prague+
	RequestsHash *common.Hash

	// Amsterdam+ (REDESIGN FLAG: block-access-list commitment)
	BlockAccessListHash *common.Hash
}

// NumberU64 returns Number as a uint64, 0 if Number is nil.
func (h *Header) NumberU64() uint64 {
	if h.Number == nil {
		return 0
	}
	return h.Number.Uint64()
}

// Hash returns the keccak-256 of the header's RLP encoding. Fields
// introduced by a later fork are included only when non-nil so that a
// pre-fork header's hash is unaffected by the struct's wider shape.
func (h *Header) Hash() common.Hash {
	return encodeAndHashHeader(h)
}
