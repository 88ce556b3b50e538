// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package types

import (
	"errors"
	"math/big"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/cryptoutil"
	"github.com/lumenchain/lumen/rlp"
)

// ErrInvalidSig is returned when a transaction's signature does not recover
// to a valid public key.
var ErrInvalidSig = errors.New("types: invalid transaction signature")

// Signer computes transaction signing hashes and recovers senders. Distinct
// signer implementations exist per fork only insofar as the chain ID
// inclusion rule changed (EIP-155); typed transactions always include the
// chain ID, so a single implementation parameterized by chain ID covers
// every post-EIP-155 fork, matching go-ethereum's londonSigner lineage.
type Signer interface {
	Hash(tx *Transaction) common.Hash
	Sender(tx *Transaction) (common.Address, error)
	ChainID() *big.Int
}

// MakeSigner returns the signer for chainID. Every fork since EIP-155
// shares one implementation, so unlike the teacher's
// types.MakeSigner(config, number, time) it takes no block number or time.
func MakeSigner(chainID *big.Int) Signer {
	return &protectedSigner{chainID: chainID}
}

type protectedSigner struct{ chainID *big.Int }

func (s *protectedSigner) ChainID() *big.Int { return s.chainID }

func (s *protectedSigner) Hash(tx *Transaction) common.Hash {
	return cryptoutil.Keccak256(encodeTxForHashing(tx, false))
}

func (s *protectedSigner) Sender(tx *Transaction) (common.Address, error) {
	if tx.V == nil || tx.R == nil || tx.S == nil {
		return common.Address{}, ErrInvalidSig
	}
	sighash := s.Hash(tx)
	sig := make([]byte, 65)
	copy(sig[0:32], leftPad32(tx.R.Bytes()))
	copy(sig[32:64], leftPad32(tx.S.Bytes()))
	sig[64] = recoveryID(tx)
	return cryptoutil.RecoverSender(sighash, sig)
}

// recoveryID normalizes the legacy EIP-155 V encoding and the typed-tx
// 0/1 parity bit down to a single recovery byte.
func recoveryID(tx *Transaction) byte {
	if tx.Type != LegacyTxType {
		return byte(tx.V.Uint64())
	}
	v := tx.V.Uint64()
	if v >= 35 {
		return byte((v - 35) % 2)
	}
	return byte(v - 27)
}

func leftPad32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

// encodeTxForHashing returns the type-specific signing payload. When
// withSignature is true, V/R/S are appended to produce the identity hash
// used by Transaction.Hash; otherwise it is the payload the signature is
// computed over.
func encodeTxForHashing(tx *Transaction, withSignature bool) []byte {
	switch tx.Type {
	case LegacyTxType:
		fields := []interface{}{tx.Nonce, tx.GasPrice, tx.Gas, tx.To, tx.Value, tx.Data}
		if withSignature {
			fields = append(fields, tx.V, tx.R, tx.S)
		} else if tx.ChainID != nil && tx.ChainID.Sign() > 0 {
			fields = append(fields, tx.ChainID, uint64(0), uint64(0))
		}
		enc, _ := rlp.Encode(fields)
		return enc
	default:
		fields := []interface{}{tx.ChainID, tx.Nonce, tx.GasTipCap, tx.GasFeeCap, tx.Gas, tx.To, tx.Value, tx.Data, accessListRLP(tx.AccessList)}
		if tx.Type == BlobTxType {
			fields = append(fields, tx.BlobVersionedHashes)
		}
		if tx.Type == SetCodeTxType {
			fields = append(fields, tx.AuthList)
		}
		if withSignature {
			fields = append(fields, tx.V, tx.R, tx.S)
		}
		body, _ := rlp.Encode(fields)
		return append([]byte{byte(tx.Type)}, body...)
	}
}

func accessListRLP(al AccessList) []interface{} {
	out := make([]interface{}, len(al))
	for i, tuple := range al {
		keys := make([]interface{}, len(tuple.StorageKeys))
		for j, k := range tuple.StorageKeys {
			keys[j] = k
		}
		out[i] = []interface{}{tuple.Address, keys}
	}
	return out
}
