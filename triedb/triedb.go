// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package triedb composes the hot and cold tiers into the single state
// storage engine described in spec.md §4.2, and implements the five-step
// commit protocol that moves a finalized block's overlay into durable
// cold storage.
package triedb

import (
	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/triedb/colddb"
	"github.com/lumenchain/lumen/triedb/hotdb"
)

// Database is the engine a trie.Trie resolves unknown nodes through: hot
// overlays for live, unfinalized blocks, falling through to the cold,
// memory-mapped store for anything already finalized.
type Database struct {
	hot  *hotdb.Tree
	cold *colddb.Database
}

// Open opens (or creates) the cold tier at dir and returns a Database
// with an empty hot tier.
func Open(dir string, coldCacheBytes int) (*Database, error) {
	cold, err := colddb.Open(dir, coldCacheBytes)
	if err != nil {
		return nil, err
	}
	return &Database{hot: hotdb.NewTree(), cold: cold}, nil
}

// Close releases the cold tier's file mapping.
func (db *Database) Close() error { return db.cold.Close() }

// Node implements trie.NodeReader against the finalized, cold state: used
// when resolving a trie rooted at the cold tier's current root pointer.
func (db *Database) Node(hash common.Hash) ([]byte, error) {
	return db.cold.Node(hash)
}

// Reader returns a trie.NodeReader view of state as of blockHash: if
// blockHash has a live hot overlay, reads traverse it and its ancestors
// before falling through to cold; otherwise reads go straight to cold
// (blockHash is assumed to be the finalized root itself).
func (db *Database) Reader(blockHash common.Hash) NodeReader {
	if r, ok := db.hot.Reader(blockHash, db.cold); ok {
		return r
	}
	return db.cold
}

// NodeReader is the resolver interface a trie.Trie is constructed with.
type NodeReader interface {
	Node(hash common.Hash) ([]byte, error)
}

// InsertHot records a newly executed block's copy-on-write overlay: the
// nodes it added or changed relative to its parent (which may itself be a
// hot overlay or the cold root).
func (db *Database) InsertHot(blockHash, parentHash common.Hash, nodes map[common.Hash][]byte) error {
	return db.hot.Insert(blockHash, parentHash, nodes)
}

// WriteCode durably stores contract code in the cold tier, addressed by
// its keccak hash; code is never part of the trie's node graph so it
// bypasses the hot overlay entirely.
func (db *Database) WriteCode(hash common.Hash, code []byte) error {
	return db.cold.WriteCode(hash, code)
}

// ReadCode returns contract code by its keccak hash.
func (db *Database) ReadCode(hash common.Hash) ([]byte, error) {
	return db.cold.ReadCode(hash)
}

// Finalize implements the §4.2 commit protocol for the block at
// blockHash, whose trie root is newRoot:
//
//  1. Diff blockHash's hot overlay chain against the cold tier.
//  2. Write the new leaf/branch pages to cold.
//  3. Atomically swap the cold root pointer to newRoot.
//  4. Remove blockHash and its hot ancestors from the hot tier.
//  5. Invalidate sibling hot branches that can no longer be finalized.
func (db *Database) Finalize(blockHash common.Hash, newRoot common.Hash) error {
	diff, err := db.hot.Diff(blockHash)
	if err != nil {
		return err
	}
	if err := db.cold.Commit(colddb.WriteBatch{Nodes: diff, NewRoot: newRoot}); err != nil {
		return err
	}
	db.hot.Finalize(blockHash)
	return nil
}

// RootPointer returns the cold tier's current finalized root.
func (db *Database) RootPointer() common.Hash {
	return db.cold.RootPointer()
}

// HotLen reports the number of live (unfinalized) hot overlays, for tests
// and metrics.
func (db *Database) HotLen() int { return db.hot.Len() }
