// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package snap implements the snap/1 wire sub-protocol (spec.md §4.5):
// account and storage range downloads with Merkle boundary proofs, and
// trie-node healing requests, used to bootstrap a node's state without
// replaying every historical block.
package snap

import (
	"github.com/lumenchain/lumen/common"
)

// Message codes, per snap/1.
const (
	GetAccountRangeMsg uint64 = 0x00
	AccountRangeMsg    uint64 = 0x01
	GetStorageRangesMsg uint64 = 0x02
	StorageRangesMsg   uint64 = 0x03
	GetByteCodesMsg    uint64 = 0x04
	ByteCodesMsg       uint64 = 0x05
	GetTrieNodesMsg    uint64 = 0x06
	TrieNodesMsg       uint64 = 0x07
)

// Response size and count ceilings, mirrored on both sides of the wire
// so a requester never asks for more than a well-behaved responder
// will ever return in one message.
const (
	MaxAccountRangeResponse = 4096
	MaxStorageRangeResponse = 4096
	MaxByteCodesResponse    = 1024
	MaxTrieNodesResponse    = 4096
	MaxResponseBytes        = 2 * 1024 * 1024
)

// AccountEntry is one account leaf in a range response: the account's
// trie key (spec.md's raw, non-secure key space — see core/state) and
// its RLP-encoded body.
type AccountEntry struct {
	Key  common.Hash
	Body []byte
}

// GetAccountRangePacket requests accounts in [Start, End] under Root,
// bounded to at most Bytes of response payload.
type GetAccountRangePacket struct {
	RequestID uint64
	Root      common.Hash
	Start     common.Hash
	End       common.Hash
	Bytes     uint64
}

// AccountRangePacket answers a GetAccountRangePacket. Proof proves the
// returned range's boundaries under Root; Accounts is empty with a
// present Proof when nothing in range exists on this responder.
type AccountRangePacket struct {
	RequestID uint64
	Accounts  []AccountEntry
	Proof     [][]byte
}

// StorageEntry is one storage-slot leaf in a range response.
type StorageEntry struct {
	Key  common.Hash
	Body []byte
}

// GetStorageRangesPacket requests storage slots in [Start, End] for a
// single account's storage trie, rooted within Root's account range.
type GetStorageRangesPacket struct {
	RequestID uint64
	Root      common.Hash
	Account   common.Hash
	Start     common.Hash
	End       common.Hash
	Bytes     uint64
}

// StorageRangesPacket answers a GetStorageRangesPacket.
type StorageRangesPacket struct {
	RequestID uint64
	Slots     []StorageEntry
	Proof     [][]byte
}

// GetByteCodesPacket requests contract bytecode by hash.
type GetByteCodesPacket struct {
	RequestID uint64
	Hashes    []common.Hash
	Bytes     uint64
}

// ByteCodesPacket answers a GetByteCodesPacket; Codes is parallel to
// the subset of the request's Hashes the responder had, in the same
// relative order, with no marker for which were skipped (the caller
// must re-request anything still missing after matching by hash).
type ByteCodesPacket struct {
	RequestID uint64
	Codes     [][]byte
}

// GetTrieNodesPacket requests raw trie nodes by path, used during
// healing once a range walk leaves gaps (spec.md §4.5).
type GetTrieNodesPacket struct {
	RequestID uint64
	Root      common.Hash
	Paths     [][]byte
	Bytes     uint64
}

// TrieNodesPacket answers a GetTrieNodesPacket; Nodes is positional
// with the request's Paths, with a nil entry where the responder did
// not have that node.
type TrieNodesPacket struct {
	RequestID uint64
	Nodes     [][]byte
}
