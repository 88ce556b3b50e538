// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package types

import (
	"github.com/lumenchain/lumen/cryptoutil"
	"github.com/lumenchain/lumen/rlp"
)

// headerFields returns h's fields in wire order, stopping at the last
// non-nil fork-conditional field. This mirrors go-ethereum's header RLP
// encoding, where the list only grows as forks activate rather than always
// carrying every possible field.
func headerFields(h *Header) []interface{} {
	fields := []interface{}{
		h.ParentHash, h.Coinbase, h.Root, h.TxHash, h.ReceiptHash, h.Bloom[:],
		h.Difficulty, h.Number, h.GasLimit, h.GasUsed, h.Time, h.Extra,
		h.MixDigest, h.Nonce[:],
	}
	if h.BaseFee != nil {
		fields = append(fields, h.BaseFee)
	}
	if h.WithdrawalsHash != nil {
		fields = append(fields, *h.WithdrawalsHash)
	}
	if h.BlobGasUsed != nil {
		fields = append(fields, *h.BlobGasUsed)
	}
	if h.ExcessBlobGas != nil {
		fields = append(fields, *h.ExcessBlobGas)
	}
	if h.ParentBeaconBlockRoot != nil {
		fields = append(fields, *h.ParentBeaconBlockRoot)
	}
	if h.RequestsHash != nil {
		fields = append(fields, *h.RequestsHash)
	}
	if h.BlockAccessListHash != nil {
		fields = append(fields, *h.BlockAccessListHash)
	}
	return fields
}

func encodeAndHashHeader(h *Header) (out [32]byte) {
	enc, err := rlp.Encode(headerFields(h))
	if err != nil {
		// Header fields are all RLP-representable primitives; a failure
		// here indicates a programming error, not a runtime condition.
		panic(err)
	}
	return cryptoutil.Keccak256(enc)
}
