// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package hotdb implements the hot tier of the state storage engine
// (spec.md §4.2): an in-memory tree of copy-on-write overlays, one per
// not-yet-finalized block, each sharing unchanged subtrees with its
// parent by reference. Overlays are immutable once built, so reads never
// take a lock.
package hotdb

import (
	"fmt"
	"sync"

	"github.com/lumenchain/lumen/common"
)

// Overlay is one block's view of the trie: the nodes it changed relative
// to its parent, plus a pointer to the parent overlay (or nil, meaning
// "fall through to the cold tier").
type Overlay struct {
	blockHash  common.Hash
	parentHash common.Hash
	parent     *Overlay
	nodes      map[common.Hash][]byte
}

// Node resolves hash within this overlay, falling through to ancestors and
// finally to cold when none of them have it. Overlays are immutable after
// construction, so this traversal needs no locking.
func (o *Overlay) Node(hash common.Hash, cold NodeReader) ([]byte, error) {
	for cur := o; cur != nil; cur = cur.parent {
		if enc, ok := cur.nodes[hash]; ok {
			return enc, nil
		}
	}
	if cold == nil {
		return nil, fmt.Errorf("hotdb: node %x not found", hash)
	}
	return cold.Node(hash)
}

// NodeReader is the subset of triedb's cold-tier interface the hot tier
// falls through to.
type NodeReader interface {
	Node(hash common.Hash) ([]byte, error)
}

// Tree owns every live (not yet finalized) overlay, keyed by block hash.
// Writes — inserting a new block's overlay — are serialized by the block
// pipeline (only one block executes against a given parent at a time), so
// the mutex here only guards the map itself, not overlay contents.
type Tree struct {
	mu       sync.RWMutex
	overlays map[common.Hash]*Overlay
}

// NewTree returns an empty hot tier.
func NewTree() *Tree {
	return &Tree{overlays: make(map[common.Hash]*Overlay)}
}

// Insert records a new block's overlay of mutated nodes over its parent.
// A block hash that already has an overlay is rejected; a parent with no
// hot overlay is taken to be the cold root and is not otherwise checked.
func (t *Tree) Insert(blockHash, parentHash common.Hash, nodes map[common.Hash][]byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.overlays[blockHash]; exists {
		return fmt.Errorf("hotdb: block %x already has an overlay", blockHash)
	}
	t.overlays[blockHash] = &Overlay{
		blockHash:  blockHash,
		parentHash: parentHash,
		parent:     t.overlays[parentHash], // nil when parent is the cold root
		nodes:      nodes,
	}
	return nil
}

// Reader returns a NodeReader view rooted at blockHash, falling through to
// cold for anything the overlay chain does not carry. Returns nil, false
// if blockHash has no hot overlay (it is either the cold root or unknown).
func (t *Tree) Reader(blockHash common.Hash, cold NodeReader) (NodeReader, bool) {
	t.mu.RLock()
	o, ok := t.overlays[blockHash]
	t.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return &overlayReader{overlay: o, cold: cold}, true
}

type overlayReader struct {
	overlay *Overlay
	cold    NodeReader
}

func (r *overlayReader) Node(hash common.Hash) ([]byte, error) {
	return r.overlay.Node(hash, r.cold)
}

// Diff collects every node in blockHash's overlay chain, i.e. the pages
// the cold tier may still need written when finalizing blockHash
// (spec.md §4.2 commit protocol, step 1). Nodes are deduplicated by hash
// since RLP encoding is content-addressed; nodes the cold tier already
// holds are skipped by colddb's Commit, not here.
func (t *Tree) Diff(blockHash common.Hash) (map[common.Hash][]byte, error) {
	t.mu.RLock()
	o, ok := t.overlays[blockHash]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("hotdb: no overlay for block %x", blockHash)
	}
	out := make(map[common.Hash][]byte)
	for cur := o; cur != nil; cur = cur.parent {
		for h, enc := range cur.nodes {
			if _, have := out[h]; !have {
				out[h] = enc
			}
		}
	}
	return out, nil
}

// Finalize removes blockHash and all its hot ancestors from the tree
// (step 4 of the §4.2 commit protocol) and invalidates every sibling
// overlay that descends from an ancestor of blockHash but not from
// blockHash itself (step 5), since those branches can never be finalized
// now that a different branch has been.
func (t *Tree) Finalize(blockHash common.Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()

	keep := make(map[common.Hash]bool)
	for h := blockHash; h != (common.Hash{}); {
		o, ok := t.overlays[h]
		if !ok {
			break
		}
		keep[h] = true
		h = o.parentHash
	}

	for h, o := range t.overlays {
		if keep[h] {
			continue
		}
		if t.descendsFromFinalizedAncestor(o, keep, blockHash) {
			delete(t.overlays, h)
		}
	}
	for h := range keep {
		delete(t.overlays, h)
	}
}

// descendsFromFinalizedAncestor reports whether o's ancestry chain passes
// through a block in keep other than head, meaning it is a sibling branch
// off the now-finalized path rather than a descendant of head or an
// unrelated, still-live fork.
func (t *Tree) descendsFromFinalizedAncestor(o *Overlay, keep map[common.Hash]bool, head common.Hash) bool {
	for cur := o; cur != nil; {
		if cur.parentHash == head {
			return false
		}
		if keep[cur.parentHash] {
			return true
		}
		next, ok := t.overlays[cur.parentHash]
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

// Len reports the number of live overlays, for tests and metrics.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.overlays)
}
