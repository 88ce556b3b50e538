// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package trie

import (
	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/cryptoutil"
)

func hashOfEncoding(enc []byte) common.Hash { return cryptoutil.Keccak256(enc) }

// Nodes walks every in-memory (resolved) node reachable from the root and
// returns its RLP encoding keyed by the hash a parent would reference it
// by, i.e. the set of pages a commit needs to hand the storage engine's
// hot tier. Root must have been called first so hashes are up to date.
// Already-resolved-but-unchanged subtrees are included too; since storage
// is content-addressed this is wasted but not incorrect work, and keeps
// the walk simple.
func (t *Trie) Nodes() map[common.Hash][]byte {
	out := make(map[common.Hash][]byte)
	collectNodes(t.root, out)
	return out
}

func collectNodes(n Node, out map[common.Hash][]byte) {
	switch n := n.(type) {
	case nil, hashNode, valueNode:
		return
	case *shortNode:
		enc := encodeNode(n)
		out[hashOfEncoding(enc)] = enc
		collectNodes(n.Val, out)
	case *fullNode:
		enc := encodeNode(n)
		out[hashOfEncoding(enc)] = enc
		for _, child := range n.Children {
			collectNodes(child, out)
		}
	}
}
