// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package core

import (
	"crypto/sha256"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/rlp"
	"github.com/lumenchain/lumen/trie"
)

// DeriveTransactionsRoot builds the ephemeral index-keyed trie over a
// block's transaction list and returns its root, the value post-
// execution validation compares against header.TxHash.
func DeriveTransactionsRoot(txs []*types.Transaction) (common.Hash, error) {
	t := trie.New(common.Hash{}, nil)
	for i, tx := range txs {
		enc, err := tx.MarshalBinary()
		if err != nil {
			return common.Hash{}, err
		}
		key, _ := rlp.Encode(uint64(i))
		if err := t.Insert(key, enc); err != nil {
			return common.Hash{}, err
		}
	}
	return t.Root(), nil
}

// DeriveReceiptsRoot builds the ephemeral index-keyed trie over a
// block's receipts and returns its root, compared against
// header.ReceiptHash.
func DeriveReceiptsRoot(receipts []*types.Receipt) (common.Hash, error) {
	t := trie.New(common.Hash{}, nil)
	for i, r := range receipts {
		enc, err := marshalReceipt(r)
		if err != nil {
			return common.Hash{}, err
		}
		key, _ := rlp.Encode(uint64(i))
		if err := t.Insert(key, enc); err != nil {
			return common.Hash{}, err
		}
	}
	return t.Root(), nil
}

// DeriveWithdrawalsRoot builds the ephemeral index-keyed trie over a
// Shanghai+ block's withdrawals and returns its root, compared against
// header.WithdrawalsHash.
func DeriveWithdrawalsRoot(withdrawals types.Withdrawals) (common.Hash, error) {
	t := trie.New(common.Hash{}, nil)
	for i, w := range withdrawals {
		enc, err := rlp.Encode([]interface{}{w.Index, w.ValidatorIndex, w.Address, w.AmountGwei})
		if err != nil {
			return common.Hash{}, err
		}
		key, _ := rlp.Encode(uint64(i))
		if err := t.Insert(key, enc); err != nil {
			return common.Hash{}, err
		}
	}
	return t.Root(), nil
}

// DeriveRequestsHash implements EIP-7685's commitment: the sha256 of
// the concatenation of each non-empty request type's sha256, in turn
// computed over that type's flattened `type_byte || request_data`
// bytes in block order. Unlike the transactions/receipts/withdrawals
// roots, this is a plain digest rather than a trie root.
func DeriveRequestsHash(requests types.Requests) common.Hash {
	byType := make(map[types.RequestType][]byte)
	var order []types.RequestType
	for _, r := range requests {
		if _, ok := byType[r.Type]; !ok {
			order = append(order, r.Type)
		}
		byType[r.Type] = append(byType[r.Type], r.Data...)
	}
	var digest []byte
	for _, t := range order {
		sum := sha256.Sum256(append([]byte{byte(t)}, byType[t]...))
		digest = append(digest, sum[:]...)
	}
	sum := sha256.Sum256(digest)
	return common.Hash(sum)
}
