// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package types

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/cryptoutil"
)

// TxType tags the historical transaction type space (spec.md §3.3).
type TxType byte

const (
	LegacyTxType TxType = iota
	AccessListTxType
	DynamicFeeTxType
	BlobTxType
	SetCodeTxType // EIP-7702 authorization-list transactions
	InternalTxType // privileged L2 system transaction, treated as external-collaborator surface
)

// AccessTuple is one entry of an EIP-2930 access list.
type AccessTuple struct {
	Address     common.Address
	StorageKeys []common.Hash
}

// Addr returns the tuple's address, satisfying state.AccessTupleLike.
func (a AccessTuple) Addr() common.Address { return a.Address }

// Keys returns the tuple's pre-warmed storage keys, satisfying
// state.AccessTupleLike.
func (a AccessTuple) Keys() []common.Hash { return a.StorageKeys }

// AccessList is the EIP-2930 access list.
type AccessList []AccessTuple

// Authorization is one EIP-7702 authorization tuple.
type Authorization struct {
	ChainID uint64
	Address common.Address
	Nonce   uint64
	V       uint8
	R, S    *uint256.Int
}

// Transaction is the tagged union over every transaction type the core
// accepts. Rather than model each type as a distinct Go type behind an
// interface (which would force every call site to type-switch), the core
// uses one struct with type-conditional fields, following the same "wide
// struct, narrow validity" shape the teacher's params/extras packages use
// for fork-conditional chain config.
type Transaction struct {
	Type TxType

	ChainID   *big.Int // nil for an unprotected legacy transaction
	Nonce     uint64
	GasTipCap *big.Int // effective for type >= 2
	GasFeeCap *big.Int
	GasPrice  *big.Int // legacy/access-list gas price
	Gas       uint64
	To        *common.Address // nil marks a contract-creation transaction
	Value     *uint256.Int
	Data      []byte

	AccessList      AccessList
	BlobVersionedHashes []common.Hash // type 3 only, each must be a version-1 KZG commitment hash
	AuthList        []Authorization  // type 4 only

	V, R, S *uint256.Int // signature

	hash   *common.Hash
	sender *common.Address
}

// IsCreate reports whether the transaction deploys a new contract.
func (tx *Transaction) IsCreate() bool { return tx.To == nil }

// EffectiveGasTipCap returns the priority fee, capped by the fee-market
// constraint tip <= feeCap - baseFee for types >= 2.
func (tx *Transaction) EffectiveGasTipCap(baseFee *big.Int) *big.Int {
	if tx.Type == LegacyTxType || tx.Type == AccessListTxType || baseFee == nil {
		return new(big.Int).Set(tx.GasPrice)
	}
	headroom := new(big.Int).Sub(tx.GasFeeCap, baseFee)
	if headroom.Cmp(tx.GasTipCap) < 0 {
		return headroom
	}
	return new(big.Int).Set(tx.GasTipCap)
}

// GasFeeCapValue returns the max-fee-per-gas the sender is willing to pay,
// normalizing legacy/access-list transactions (which only carry GasPrice).
func (tx *Transaction) GasFeeCapValue() *big.Int {
	if tx.Type == LegacyTxType || tx.Type == AccessListTxType {
		return tx.GasPrice
	}
	return tx.GasFeeCap
}

// Hash returns the transaction's keccak-256 identity hash, computed once and
// cached.
func (tx *Transaction) Hash() common.Hash {
	if tx.hash != nil {
		return *tx.hash
	}
	h := computeTxHash(tx)
	tx.hash = &h
	return h
}

// Sender returns the address recovered from the transaction's signature. The
// recovery is performed once and cached; a transaction without a
// recoverable sender must be rejected before execution (spec.md §3.3).
func (tx *Transaction) Sender(signer Signer) (common.Address, error) {
	if tx.sender != nil {
		return *tx.sender, nil
	}
	addr, err := signer.Sender(tx)
	if err != nil {
		return common.Address{}, err
	}
	tx.sender = &addr
	return addr, nil
}

func computeTxHash(tx *Transaction) common.Hash {
	enc := encodeTxForHashing(tx, true)
	return cryptoutil.Keccak256(enc)
}

// MarshalBinary returns the transaction's canonical wire encoding: the
// raw RLP list for a legacy transaction, or the EIP-2718 typed envelope
// (type byte followed by the RLP payload) for every other type. This is
// the encoding stored in the transactions trie and gossiped over eth/68.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	return encodeTxForHashing(tx, true), nil
}
