// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package cryptoutil

import (
	luxcrypto "github.com/luxfi/crypto"

	"github.com/lumenchain/lumen/common"
)

// Sign produces a recoverable ECDSA signature (r, s, v) over digest using
// the secp256k1 implementation from github.com/luxfi/crypto.
func Sign(digest common.Hash, prv []byte) (sig [65]byte, err error) {
	out, err := luxcrypto.Sign(digest[:], prv)
	if err != nil {
		return sig, err
	}
	copy(sig[:], out)
	return sig, nil
}

// RecoverSender recovers the signing address from a signature over digest.
// The transaction-signing invariant in spec.md §3.3 treats a failure here as
// "no recoverable sender", which callers must surface as an intrinsic
// validation error rather than executing the transaction.
func RecoverSender(digest common.Hash, sig []byte) (common.Address, error) {
	pub, err := luxcrypto.Ecrecover(digest[:], sig)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(Keccak256(pub[1:])[12:]), nil
}

// CreateAddress derives a CREATE contract address from the sender and nonce.
func CreateAddress(sender common.Address, nonce uint64) common.Address {
	nb := uint64ToMinimalBytes(nonce)
	enc, _ := rlpListAddressNonce(sender, nb)
	return common.BytesToAddress(Keccak256(enc)[12:])
}

// CreateAddress2 derives a CREATE2 contract address (EIP-1014).
func CreateAddress2(sender common.Address, salt [32]byte, initCodeHash common.Hash) common.Address {
	data := make([]byte, 0, 1+20+32+32)
	data = append(data, 0xff)
	data = append(data, sender[:]...)
	data = append(data, salt[:]...)
	data = append(data, initCodeHash[:]...)
	return common.BytesToAddress(Keccak256(data)[12:])
}

func uint64ToMinimalBytes(n uint64) []byte {
	if n == 0 {
		return nil
	}
	var b [8]byte
	for i := 7; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	start := 0
	for start < 7 && b[start] == 0 {
		start++
	}
	return b[start:]
}

// rlpListAddressNonce builds the two-element RLP list [address, nonce] used
// by CREATE address derivation without importing the rlp package, keeping
// cryptoutil a low-level primitive package with no lumen dependencies.
func rlpListAddressNonce(addr common.Address, nonce []byte) ([]byte, error) {
	enc := []byte{0x94} // 0x80 + 20
	enc = append(enc, addr[:]...)
	if len(nonce) == 1 && nonce[0] < 0x80 {
		enc = append(enc, nonce...)
	} else {
		enc = append(enc, byte(0x80+len(nonce)))
		enc = append(enc, nonce...)
	}
	body := enc
	var head []byte
	if len(body) < 56 {
		head = []byte{0xc0 + byte(len(body))}
	} else {
		head = []byte{0xf7 + 1, byte(len(body))}
	}
	return append(head, body...), nil
}
