// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package cryptoutil wires the keccak-256 and secp256k1 primitives the core
// depends on: trie/account/transaction hashing and ECDSA sender recovery.
package cryptoutil

import (
	"golang.org/x/crypto/sha3"

	"github.com/lumenchain/lumen/common"
)

// Keccak256 hashes the concatenation of data and returns the digest.
func Keccak256(data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out common.Hash
	h.Sum(out[:0])
	return out
}

// Keccak256Bytes is like Keccak256 but returns a plain byte slice, handy for
// RLP-encoded node hashing where the caller wants []byte rather than Hash.
func Keccak256Bytes(data ...[]byte) []byte {
	h := Keccak256(data...)
	return h[:]
}

// EmptyCodeHash is keccak("").
var EmptyCodeHash = Keccak256(nil)

// EmptyRootHash is keccak(RLP(nil)) == keccak(0x80), the canonical hash of
// the empty trie (spec.md §3.4).
var EmptyRootHash = Keccak256([]byte{0x80})
