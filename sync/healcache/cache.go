// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package healcache implements the trie-healing membership cache
// (spec.md §4.5): after a range download, walking the trie reveals
// paths whose nodes are not present locally. Most of those paths
// either already exist (a retry caught up) or never will (the path is
// structurally impossible for the current state). Asking a peer for
// every such path wastes bandwidth and round trips, so the healer
// checks this cache first.
package healcache

import (
	"hash/fnv"
	"sync"

	"github.com/hashicorp/golang-lru"
	"github.com/holiman/bloomfilter/v2"
)

// Status is the outcome of checking whether a trie path is already
// known locally.
type Status int

const (
	// ConfirmedExists means the exact LRU has this path cached; no
	// backing-store lookup is needed.
	ConfirmedExists Status = iota
	// ProbablyExists means the bloom filter reports a hit that the exact
	// LRU did not confirm; the backing store must be consulted before
	// asking a peer for the node.
	ProbablyExists
	// DefinitelyMissing means the bloom filter reports a miss; a bloom
	// filter never false-negatives, so this is as authoritative as
	// ConfirmedExists and a peer request is warranted immediately.
	DefinitelyMissing
)

// bloomHashes is the number of hash functions the filter uses; 4 is
// the standard choice balancing false-positive rate against per-bit
// cost for a target load factor around 1%.
const bloomHashes = 4

// Cache is the probabilistic-plus-exact membership structure backing
// the heal step: a bloom filter for the full known-path set (bounded
// memory, tunable false-positive rate, no false negatives) and a
// bounded exact LRU of recently confirmed paths so a hot path does not
// pay a backing-store round trip on every repeated check.
type Cache struct {
	mu    sync.RWMutex
	bloom *bloomfilter.Filter
	exact *lru.Cache

	// bloomBits and size are kept so Reset can rebuild an identically
	// sized filter after a pivot change.
	bloomBits uint64
	size      int
}

// New returns a cache sized for roughly size expected paths at a
// target false-positive rate near 1%, with an exact LRU of the same
// size backing the ConfirmedExists fast path.
func New(size int) *Cache {
	c := &Cache{size: size}
	c.bloomBits = optimalBits(uint64(size))
	c.bloom = mustNewBloom(c.bloomBits)
	c.exact, _ = lru.New(size)
	return c
}

func mustNewBloom(bits uint64) *bloomfilter.Filter {
	f, err := bloomfilter.New(bits, bloomHashes)
	if err != nil {
		// bits is always derived from optimalBits, which never produces
		// a value bloomfilter.New rejects.
		panic(err)
	}
	return f
}

// optimalBits picks a bit-array size targeting a ~1% false-positive
// rate at bloomHashes hash functions for n expected elements.
func optimalBits(n uint64) uint64 {
	if n == 0 {
		n = 1
	}
	// m = -(n * ln(p)) / (ln(2)^2), p = 0.01; folded into a fixed
	// multiplier so this stays integer arithmetic.
	const bitsPerElement = 10
	return n * bitsPerElement
}

// pathHash turns a trie path into the bloom filter's uint64 hash
// input. FNV-1a is used purely as the filter's internal hash
// function, not as a content digest, so its weaker collision
// resistance relative to keccak is irrelevant here.
func pathHash(path []byte) uint64 {
	h := fnv.New64a()
	h.Write(path)
	return h.Sum64()
}

// MarkExists records that path is known to exist locally.
func (c *Cache) MarkExists(path []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bloom.AddHash(pathHash(path))
	c.exact.Add(string(path), struct{}{})
}

// MarkExistsBatch records every path in paths as known to exist.
func (c *Cache) MarkExistsBatch(paths [][]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		c.bloom.AddHash(pathHash(p))
		c.exact.Add(string(p), struct{}{})
	}
}

// CheckPath reports what the cache knows about path without touching
// the backing store.
func (c *Cache) CheckPath(path []byte) Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.exact.Contains(string(path)) {
		return ConfirmedExists
	}
	if !c.bloom.ContainsHash(pathHash(path)) {
		return DefinitelyMissing
	}
	return ProbablyExists
}

// Reset discards everything the cache knows, appropriate when a new
// pivot is chosen and the set of locally-known paths starts over.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bloom = mustNewBloom(c.bloomBits)
	c.exact.Purge()
}
