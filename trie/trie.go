// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package trie

import (
	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/cryptoutil"
)

// NodeReader resolves a hash reference to its stored RLP encoding, the
// read side of the backing key-value store (triedb's hot/cold tiers).
type NodeReader interface {
	Node(hash common.Hash) ([]byte, error)
}

// Trie is a Merkle-Patricia trie over an in-memory node tree, loading
// unresolved subtrees from a NodeReader on demand.
type Trie struct {
	root   Node
	reader NodeReader
}

// New creates a trie rooted at root. A zero root (or the canonical
// empty-trie hash) yields an empty trie.
func New(root common.Hash, reader NodeReader) *Trie {
	t := &Trie{reader: reader}
	if root != (common.Hash{}) && root != cryptoutil.EmptyRootHash {
		t.root = hashNode(root.Bytes())
	}
	return t
}

// Get returns the value stored at key, or nil if key is absent.
func (t *Trie) Get(key []byte) ([]byte, error) {
	value, newRoot, didResolve, err := t.get(t.root, common.KeybytesToNibbles(key), 0)
	if err != nil {
		return nil, err
	}
	if didResolve {
		t.root = newRoot
	}
	if value == nil {
		return nil, nil
	}
	return []byte(value.(valueNode)), nil
}

func (t *Trie) get(n Node, key common.Nibbles, pos int) (value Node, newnode Node, didResolve bool, err error) {
	switch n := n.(type) {
	case nil:
		return nil, nil, false, nil
	case valueNode:
		return n, n, false, nil
	case *shortNode:
		if len(key)-pos < len(n.Key) || !equalNibbles(n.Key, key[pos:pos+len(n.Key)]) {
			return nil, n, false, nil
		}
		value, newnode, didResolve, err = t.get(n.Val, key, pos+len(n.Key))
		if err == nil && didResolve {
			cp := n.copy()
			cp.Val = newnode
			return value, cp, true, nil
		}
		return value, n, didResolve, err
	case *fullNode:
		child := n.Children[key[pos]]
		value, newnode, didResolve, err = t.get(child, key, pos+1)
		if err == nil && didResolve {
			cp := n.copy()
			cp.Children[key[pos]] = newnode
			return value, cp, true, nil
		}
		return value, n, didResolve, err
	case hashNode:
		resolved, err := t.resolve(n)
		if err != nil {
			return nil, n, true, err
		}
		value, newnode, _, err := t.get(resolved, key, pos)
		return value, newnode, true, err
	default:
		return nil, nil, false, nil
	}
}

func (t *Trie) resolve(n hashNode) (Node, error) {
	if t.reader == nil {
		return nil, ErrMissingNode(n)
	}
	enc, err := t.reader.Node(common.BytesToHash(n))
	if err != nil {
		return nil, err
	}
	return decodeNode(enc)
}

// Insert sets key to value, creating intermediate branches/extensions as
// needed, and overwrites any existing value at key.
func (t *Trie) Insert(key, value []byte) error {
	if len(value) == 0 {
		return t.Delete(key)
	}
	root, err := t.insert(t.root, common.KeybytesToNibbles(key), valueNode(value))
	if err != nil {
		return err
	}
	t.root = root
	return nil
}

func (t *Trie) insert(n Node, key common.Nibbles, value Node) (Node, error) {
	if len(key) == 0 {
		return value, nil
	}
	switch n := n.(type) {
	case nil:
		return &shortNode{Key: key, Val: value, flags: nodeFlag{dirty: true}}, nil
	case *shortNode:
		match := n.Key.PrefixLen(key)
		if match == len(n.Key) {
			newVal, err := t.insert(n.Val, key[match:], value)
			if err != nil {
				return nil, err
			}
			return &shortNode{Key: n.Key, Val: newVal, flags: nodeFlag{dirty: true}}, nil
		}
		// Collision: split into a branch distinguishing the two paths,
		// inserting an extension for any shared prefix (spec.md §4.3).
		branch := &fullNode{flags: nodeFlag{dirty: true}}
		var err error
		if match < len(n.Key) {
			branch.Children[n.Key[match]], err = t.insert(nil, n.Key[match+1:], n.Val)
			if err != nil {
				return nil, err
			}
		}
		if match < len(key) {
			branch.Children[key[match]], err = t.insert(nil, key[match+1:], value)
			if err != nil {
				return nil, err
			}
		} else {
			branch.Children[16] = value
		}
		if match == 0 {
			return branch, nil
		}
		return &shortNode{Key: key[:match], Val: branch, flags: nodeFlag{dirty: true}}, nil
	case *fullNode:
		cp := n.copy()
		cp.flags = nodeFlag{dirty: true}
		if key[0] == 16 {
			cp.Children[16] = value
			return cp, nil
		}
		child, err := t.insert(n.Children[key[0]], key[1:], value)
		if err != nil {
			return nil, err
		}
		cp.Children[key[0]] = child
		return cp, nil
	case hashNode:
		resolved, err := t.resolve(n)
		if err != nil {
			return nil, err
		}
		return t.insert(resolved, key, value)
	default:
		return nil, ErrInvalidNode
	}
}

// Delete removes key from the trie if present, re-collapsing branches and
// extensions so the invariants in spec.md §3.4/§4.3 hold afterward.
func (t *Trie) Delete(key []byte) error {
	root, err := t.delete(t.root, common.KeybytesToNibbles(key))
	if err != nil {
		return err
	}
	t.root = root
	return nil
}

func (t *Trie) delete(n Node, key common.Nibbles) (Node, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil
	case valueNode:
		return nil, nil
	case *shortNode:
		match := n.Key.PrefixLen(key)
		if match < len(n.Key) {
			return n, nil // key not present
		}
		if match == len(key) {
			return nil, nil
		}
		child, err := t.delete(n.Val, key[match:])
		if err != nil {
			return nil, err
		}
		switch child := child.(type) {
		case nil:
			return nil, nil
		case *shortNode:
			// Merge consecutive extensions/leaves into one.
			return &shortNode{Key: append(append(common.Nibbles{}, n.Key...), child.Key...), Val: child.Val, flags: nodeFlag{dirty: true}}, nil
		default:
			return &shortNode{Key: n.Key, Val: child, flags: nodeFlag{dirty: true}}, nil
		}
	case *fullNode:
		cp := n.copy()
		cp.flags = nodeFlag{dirty: true}
		if key[0] == 16 {
			cp.Children[16] = nil
		} else {
			child, err := t.delete(n.Children[key[0]], key[1:])
			if err != nil {
				return nil, err
			}
			cp.Children[key[0]] = child
		}
		idx, child, count := cp.soleChild()
		if count == 1 {
			if idx == -1 {
				// Only the value slot remains: collapse into a leaf.
				return &shortNode{Key: common.Nibbles{16}, Val: cp.Children[16], flags: nodeFlag{dirty: true}}, nil
			}
			// Exactly one branch child remains: merge it upward as an
			// extension, concatenating consecutive extensions. A child left
			// as an unresolved hashNode must be resolved first, or a child
			// that is itself a shortNode would be missed and two extensions
			// would be chained instead of concatenated.
			resolvedChild := child
			if hn, ok := resolvedChild.(hashNode); ok {
				var err error
				resolvedChild, err = t.resolve(hn)
				if err != nil {
					return nil, err
				}
			}
			switch c := resolvedChild.(type) {
			case *shortNode:
				return &shortNode{Key: append(common.Nibbles{byte(idx)}, c.Key...), Val: c.Val, flags: nodeFlag{dirty: true}}, nil
			default:
				return &shortNode{Key: common.Nibbles{byte(idx)}, Val: resolvedChild, flags: nodeFlag{dirty: true}}, nil
			}
		}
		return cp, nil
	case hashNode:
		resolved, err := t.resolve(n)
		if err != nil {
			return nil, err
		}
		return t.delete(resolved, key)
	default:
		return nil, ErrInvalidNode
	}
}

// Root forces all dirty subtrees to be re-hashed and returns the resulting
// root hash. The empty trie returns the canonical empty-trie sentinel.
func (t *Trie) Root() common.Hash {
	if t.root == nil {
		return cryptoutil.EmptyRootHash
	}
	ref := hash(t.root)
	if hn, ok := ref.(hashNode); ok {
		if len(hn) == 32 {
			return common.BytesToHash(hn)
		}
		// Root node's own encoding was short enough to inline; the root
		// hash is still the keccak of that encoding (spec.md §3.4).
		return cryptoutil.Keccak256(hn)
	}
	return cryptoutil.EmptyRootHash
}

func equalNibbles(a, b common.Nibbles) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
