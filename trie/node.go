// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package trie implements the Merkle-Patricia trie used for state, storage,
// and transaction/receipt roots (spec.md §3.4, §4.3).
package trie

import "github.com/lumenchain/lumen/common"

// Node is any of the four trie node representations: the unexpanded
// hashNode/valueNode leaves of a partially-loaded trie, and the expanded
// shortNode (leaf or extension, disambiguated by whether Key carries the
// terminator nibble) and fullNode (16-way branch plus an optional value).
type Node interface {
	cache() (hashNode, bool)
}

type (
	// hashNode is an unresolved reference: the keccak-256 of a child's RLP
	// encoding, or the encoding itself when it is shorter than 32 bytes.
	hashNode []byte
	// valueNode is a raw leaf value (an RLP-encoded account or storage
	// value), never itself hashed separately from its parent leaf.
	valueNode []byte
)

// shortNode is a leaf (Key.HasTerm()) or an extension (otherwise).
type shortNode struct {
	Key   common.Nibbles
	Val   Node
	flags nodeFlag
}

// fullNode is a 16-entry branch plus an optional value at index 16.
type fullNode struct {
	Children [17]Node
	flags    nodeFlag
}

// nodeFlag caches a node's hash and tracks whether it has been mutated
// since that hash was computed (spec.md §4.3's "lazy hashing... dirty bit").
type nodeFlag struct {
	hash  hashNode
	dirty bool
}

func (n hashNode) cache() (hashNode, bool)  { return nil, true }
func (n valueNode) cache() (hashNode, bool) { return nil, true }
func (n *shortNode) cache() (hashNode, bool) { return n.flags.hash, n.flags.dirty }
func (n *fullNode) cache() (hashNode, bool)  { return n.flags.hash, n.flags.dirty }

func (n *fullNode) copy() *fullNode {
	cp := *n
	return &cp
}

func (n *shortNode) copy() *shortNode {
	cp := *n
	return &cp
}

// soleChild counts a branch's non-nil child slots plus its value slot and
// returns the last non-nil child with its index (-1 if none). Delete uses
// a count of 1 to collapse the branch, the condition §3.4 forbids ("no
// branch node has a single non-null child and no value").
func (n *fullNode) soleChild() (idx int, child Node, count int) {
	idx = -1
	for i, c := range n.Children[:16] {
		if c != nil {
			count++
			idx, child = i, c
		}
	}
	if n.Children[16] != nil {
		count++
	}
	return idx, child, count
}
