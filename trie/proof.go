// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package trie

import (
	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/cryptoutil"
)

// Prove returns the ordered list of RLP-encoded nodes visited while
// traversing to key, the witness a verifier uses to check a value (or its
// absence) against a known root without holding the whole trie.
func (t *Trie) Prove(key []byte) ([][]byte, error) {
	var proof [][]byte
	n := t.root
	nibs := common.KeybytesToNibbles(key)
	pos := 0
	for {
		switch cur := n.(type) {
		case nil:
			return proof, nil
		case hashNode:
			resolved, err := t.resolve(cur)
			if err != nil {
				return nil, err
			}
			n = resolved
			continue
		case *shortNode:
			proof = append(proof, encodeNode(cur))
			if pos+len(cur.Key) > len(nibs) || !equalNibbles(cur.Key, nibs[pos:pos+len(cur.Key)]) {
				return proof, nil
			}
			n = cur.Val
			pos += len(cur.Key)
		case *fullNode:
			proof = append(proof, encodeNode(cur))
			if pos >= len(nibs) {
				return proof, nil
			}
			n = cur.Children[nibs[pos]]
			pos++
		case valueNode:
			return proof, nil
		default:
			return proof, nil
		}
	}
}

// VerifyProof reconstructs the claimed value for key from proof and checks
// that the chain of node hashes starting from the deepest proof node
// terminates at root.
func VerifyProof(root common.Hash, key []byte, proof [][]byte) ([]byte, error) {
	nibs := common.KeybytesToNibbles(key)
	pos := 0
	wantHash := root
	for i, enc := range proof {
		got := nodeHashOf(enc)
		if i == 0 && got != wantHash {
			return nil, ErrInvalidNode
		}
		n, err := decodeNode(enc)
		if err != nil {
			return nil, err
		}
		switch n := n.(type) {
		case *shortNode:
			if pos+len(n.Key) > len(nibs) || !equalNibbles(n.Key, nibs[pos:pos+len(n.Key)]) {
				return nil, nil // proven absent
			}
			pos += len(n.Key)
			if v, ok := n.Val.(valueNode); ok {
				return []byte(v), nil
			}
			if hn, ok := n.Val.(hashNode); ok {
				wantHash = common.BytesToHash(hn)
			} else if i+1 < len(proof) {
				wantHash = nodeHashOf(proof[i+1])
			}
		case *fullNode:
			if pos >= len(nibs) {
				if v, ok := n.Children[16].(valueNode); ok {
					return []byte(v), nil
				}
				return nil, nil
			}
			child := n.Children[nibs[pos]]
			pos++
			if child == nil {
				return nil, nil // proven absent
			}
			if v, ok := child.(valueNode); ok {
				return []byte(v), nil
			}
			if hn, ok := child.(hashNode); ok {
				wantHash = common.BytesToHash(hn)
			} else if i+1 < len(proof) {
				wantHash = nodeHashOf(proof[i+1])
			}
		}
		if i+1 < len(proof) && nodeHashOf(proof[i+1]) != wantHash {
			return nil, ErrInvalidNode
		}
	}
	return nil, nil
}

// nodeHashOf is keccak-256 of a proof entry's encoding. Proof entries are
// always hashed, even when short enough that a parent would have inlined
// them, since the verifier only has the flat node list to work from.
func nodeHashOf(enc []byte) common.Hash {
	return cryptoutil.Keccak256(enc)
}
