// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package trie

import (
	"github.com/lumenchain/lumen/cryptoutil"
	"github.com/lumenchain/lumen/rlp"
)

// encodeNode returns the RLP encoding of n's on-disk representation: a
// 2-element [compactKey, value] list for a shortNode, a 17-element list for
// a fullNode.
func encodeNode(n Node) []byte {
	switch n := n.(type) {
	case *shortNode:
		var val interface{}
		switch v := n.Val.(type) {
		case valueNode:
			val = []byte(v)
		default:
			val = childReference(v)
		}
		enc, _ := rlp.Encode([]interface{}{n.Key.ToCompact(), val})
		return enc
	case *fullNode:
		fields := make([]interface{}, 17)
		for i, c := range n.Children[:16] {
			if c == nil {
				fields[i] = []byte(nil)
			} else {
				fields[i] = childReference(c)
			}
		}
		if v, ok := n.Children[16].(valueNode); ok {
			fields[16] = []byte(v)
		} else {
			fields[16] = []byte(nil)
		}
		enc, _ := rlp.Encode(fields)
		return enc
	case hashNode:
		return n
	case valueNode:
		enc, _ := rlp.Encode([]byte(n))
		return enc
	default:
		enc, _ := rlp.Encode([]byte(nil))
		return enc
	}
}

// childReference returns the wire reference for a child node: its raw
// encoding if that encoding is shorter than 32 bytes (the "inline" case in
// spec.md §3.4), otherwise its keccak-256 hash.
func childReference(n Node) interface{} {
	if hn, ok := n.(hashNode); ok {
		if len(hn) < 32 {
			// A short reference is the child's own encoding (see hash):
			// embed it as structure, not as a byte string.
			item, _, _ := rlp.Decode(hn)
			return item
		}
		return []byte(hn)
	}
	enc := encodeNode(n)
	if len(enc) < 32 {
		// Inlined child: re-decode so the parent's encoder embeds the raw
		// node structure rather than this encoding's own length header.
		item, _, _ := rlp.Decode(enc)
		return item
	}
	return cryptoutil.Keccak256Bytes(enc)
}
