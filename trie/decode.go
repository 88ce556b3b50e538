// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package trie

import (
	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/rlp"
)

// decodeNode parses a stored node's RLP encoding back into its expanded
// (shortNode/fullNode) form, leaving child references unresolved as
// hashNode until they are themselves needed.
func decodeNode(buf []byte) (Node, error) {
	item, _, err := rlp.Decode(buf)
	if err != nil {
		return nil, err
	}
	if item.List == nil {
		return nil, ErrInvalidNode
	}
	switch len(item.List) {
	case 2:
		key, hasTerm := common.CompactToHex(item.List[0].Bytes)
		if hasTerm {
			key = append(key, 16)
			return &shortNode{Key: key, Val: valueNode(item.List[1].Bytes)}, nil
		}
		child, err := decodeRef(item.List[1])
		if err != nil {
			return nil, err
		}
		return &shortNode{Key: key, Val: child}, nil
	case 17:
		n := &fullNode{}
		for i := 0; i < 16; i++ {
			child, err := decodeRef(item.List[i])
			if err != nil {
				return nil, err
			}
			n.Children[i] = child
		}
		if len(item.List[16].Bytes) > 0 {
			n.Children[16] = valueNode(item.List[16].Bytes)
		}
		return n, nil
	default:
		return nil, ErrInvalidNode
	}
}

// decodeRef interprets a child reference item: a 32-byte string is a hash
// reference; an empty string is no child; a string of any other length is
// invalid; a list is an inlined child node re-encoded back to bytes and
// decoded recursively (an empty list is no child).
func decodeRef(item rlp.Item) (Node, error) {
	if item.List != nil {
		if len(item.List) == 0 {
			return nil, nil
		}
		return decodeNode(rlp.EncodeItem(item))
	}
	switch len(item.Bytes) {
	case 0:
		return nil, nil
	case 32:
		return hashNode(item.Bytes), nil
	default:
		return nil, ErrInvalidNode
	}
}
