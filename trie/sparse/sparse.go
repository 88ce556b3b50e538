// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package sparse implements the two-tier trie hashing scheme used for the
// large post-execution mutation set (spec.md §4.3), grounded on
// original_source's crates/common/trie/sparse/mod.rs: an upper subtrie of
// depth < 2 nibbles and 256 lower subtries keyed by the first two nibbles,
// hashed in parallel and combined via a prefix set that limits re-hashing to
// subtries a batch actually touched.
package sparse

import (
	"golang.org/x/sync/errgroup"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/trie"
)

// PrefixSet records which two-nibble prefixes were mutated since the last
// hash, so Hasher only re-hashes the lower subtries that changed.
type PrefixSet struct {
	dirty map[byte]bool
}

// NewPrefixSet returns an empty prefix set.
func NewPrefixSet() *PrefixSet { return &PrefixSet{dirty: make(map[byte]bool)} }

// Mark records that the given key's first byte (two nibbles) was touched.
func (p *PrefixSet) Mark(keyFirstByte byte) { p.dirty[keyFirstByte] = true }

// Prefixes returns the set of touched first-bytes.
func (p *PrefixSet) Prefixes() []byte {
	out := make([]byte, 0, len(p.dirty))
	for k := range p.dirty {
		out = append(out, k)
	}
	return out
}

// Hasher owns the upper subtrie and the 256 lower subtries, hashing the
// dirty lower subtries concurrently before folding their roots into the
// upper subtrie.
type Hasher struct {
	upper  *trie.Trie
	lowers [256]*trie.Trie
	reader trie.NodeReader
}

// NewHasher creates a sparse hasher backed by reader for node resolution.
func NewHasher(reader trie.NodeReader) *Hasher {
	h := &Hasher{reader: reader}
	h.upper = trie.New(common.Hash{}, reader)
	for i := range h.lowers {
		h.lowers[i] = trie.New(common.Hash{}, reader)
	}
	return h
}

// Insert routes key/value to its lower subtrie, keyed by key's first byte.
func (h *Hasher) Insert(key, value []byte, dirty *PrefixSet) error {
	if len(key) == 0 {
		return h.upper.Insert(key, value)
	}
	dirty.Mark(key[0])
	return h.lowers[key[0]].Insert(key, value)
}

// Delete routes a deletion to key's lower subtrie.
func (h *Hasher) Delete(key []byte, dirty *PrefixSet) error {
	if len(key) == 0 {
		return h.upper.Delete(key)
	}
	dirty.Mark(key[0])
	return h.lowers[key[0]].Delete(key)
}

// Root hashes every lower subtrie named in dirty concurrently (via
// errgroup), then folds each lower root into the upper subtrie at its
// single-byte prefix and returns the upper subtrie's root.
func (h *Hasher) Root(dirty *PrefixSet) (common.Hash, error) {
	prefixes := dirty.Prefixes()
	roots := make([]common.Hash, len(prefixes))

	var g errgroup.Group
	for i, p := range prefixes {
		i, p := i, p
		g.Go(func() error {
			roots[i] = h.lowers[p].Root()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return common.Hash{}, err
	}
	for i, p := range prefixes {
		if err := h.upper.Insert([]byte{p}, roots[i].Bytes()); err != nil {
			return common.Hash{}, err
		}
	}
	return h.upper.Root(), nil
}
