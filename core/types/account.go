// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package types defines the wire- and state-level data model: accounts,
// headers, the transaction type union, receipts, logs, withdrawals and
// requests (spec.md §3).
package types

import (
	"github.com/holiman/uint256"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/cryptoutil"
	"github.com/lumenchain/lumen/rlp"
)

// Account is the state-trie leaf value for an externally owned or contract
// account (spec.md §3.2).
type Account struct {
	Nonce    uint64
	Balance  *uint256.Int
	Root     common.Hash // storage trie root; empty-trie hash when no storage
	CodeHash common.Hash // keccak("") for accounts without code
}

// NewEmptyAccount returns the canonical zero-value account: nonce 0, balance
// 0, no code, no storage.
func NewEmptyAccount() *Account {
	return &Account{
		Balance:  new(uint256.Int),
		Root:     cryptoutil.EmptyRootHash,
		CodeHash: cryptoutil.EmptyCodeHash,
	}
}

// IsEmpty reports whether the account satisfies the EIP-161 emptiness test:
// zero nonce, zero balance, and no code. Empty accounts must not appear as
// trie leaves after the EIP-158 state-clearing fork.
func (a *Account) IsEmpty() bool {
	return a.Nonce == 0 && (a.Balance == nil || a.Balance.IsZero()) && a.CodeHash == cryptoutil.EmptyCodeHash
}

// HasStorage reports whether the account's storage root differs from the
// canonical empty-trie sentinel.
func (a *Account) HasStorage() bool {
	return a.Root != cryptoutil.EmptyRootHash && a.Root != (common.Hash{})
}

// Copy returns a deep copy safe to mutate independently of a.
func (a *Account) Copy() *Account {
	cp := *a
	if a.Balance != nil {
		cp.Balance = new(uint256.Int).Set(a.Balance)
	}
	return &cp
}

// rlpAccount mirrors Account's on-wire shape; Balance is RLP'd as a
// minimal big-endian byte string rather than uint256's fixed internal form.
type rlpAccount struct {
	Nonce    uint64
	Balance  *uint256.Int
	Root     common.Hash
	CodeHash common.Hash
}

// EncodeRLP returns the canonical RLP encoding of the account record.
func (a *Account) EncodeRLP() ([]byte, error) {
	return rlp.Encode(&rlpAccount{a.Nonce, a.Balance, a.Root, a.CodeHash})
}

// DecodeRLPAccount parses the RLP encoding produced by EncodeRLP.
func DecodeRLPAccount(data []byte) (*Account, error) {
	item, _, err := rlp.Decode(data)
	if err != nil {
		return nil, err
	}
	if len(item.List) != 4 {
		return nil, rlp.ErrMalformed
	}
	nonce := bytesToUint64(item.List[0].Bytes)
	balance := new(uint256.Int).SetBytes(item.List[1].Bytes)
	return &Account{
		Nonce:    nonce,
		Balance:  balance,
		Root:     common.BytesToHash(item.List[2].Bytes),
		CodeHash: common.BytesToHash(item.List[3].Bytes),
	}, nil
}

func bytesToUint64(b []byte) uint64 {
	var n uint64
	for _, x := range b {
		n = n<<8 | uint64(x)
	}
	return n
}
