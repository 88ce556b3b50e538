// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package trie

import "github.com/lumenchain/lumen/cryptoutil"

// hash computes (and caches) n's reference: its encoding if that encoding
// is shorter than 32 bytes, otherwise the keccak-256 of the encoding. Only
// dirty subtrees are re-hashed; clean nodes return their cached hash
// (spec.md §4.3, "hashing is lazy").
func hash(n Node) Node {
	switch n := n.(type) {
	case *shortNode:
		if !n.flags.dirty && n.flags.hash != nil {
			return n.flags.hash
		}
		collapsed := n.copy()
		if c, ok := n.Val.(*shortNode); ok {
			collapsed.Val = hash(c)
		} else if c, ok := n.Val.(*fullNode); ok {
			collapsed.Val = hash(c)
		}
		ref := nodeToReference(collapsed)
		n.flags = nodeFlag{hash: ref, dirty: false}
		return ref
	case *fullNode:
		if !n.flags.dirty && n.flags.hash != nil {
			return n.flags.hash
		}
		collapsed := n.copy()
		for i, c := range n.Children[:16] {
			switch c := c.(type) {
			case *shortNode:
				collapsed.Children[i] = hash(c)
			case *fullNode:
				collapsed.Children[i] = hash(c)
			}
		}
		ref := nodeToReference(collapsed)
		n.flags = nodeFlag{hash: ref, dirty: false}
		return ref
	default:
		return n
	}
}

// nodeToReference returns the hashNode a (fully-collapsed) node should be
// referenced by: its own encoding when under 32 bytes, else its hash.
func nodeToReference(n Node) hashNode {
	enc := encodeNode(n)
	if len(enc) < 32 {
		return hashNode(enc)
	}
	return hashNode(cryptoutil.Keccak256Bytes(enc))
}
