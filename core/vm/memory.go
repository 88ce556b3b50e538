// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package vm

// Memory is a call frame's word-addressed linear memory, zero-extended on
// read past the high-water mark (spec.md §4.1).
type Memory struct {
	store []byte
}

func newMemory() *Memory { return &Memory{} }

// Len returns the current size in bytes.
func (m *Memory) Len() int { return len(m.store) }

// Resize grows the backing store to size bytes, zero-filling the new
// region. Callers must charge the quadratic memory-expansion gas cost
// before calling Resize.
func (m *Memory) Resize(size uint64) {
	if uint64(len(m.store)) >= size {
		return
	}
	grown := make([]byte, size)
	copy(grown, m.store)
	m.store = grown
}

// Set writes value into memory at offset, growing first if needed.
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	m.Resize(offset + size)
	copy(m.store[offset:offset+size], value)
}

// Get returns a size-byte copy of memory starting at offset, zero-padded
// past the current high-water mark.
func (m *Memory) Get(offset, size uint64) []byte {
	out := make([]byte, size)
	if offset >= uint64(len(m.store)) {
		return out
	}
	end := offset + size
	if end > uint64(len(m.store)) {
		end = uint64(len(m.store))
	}
	copy(out, m.store[offset:end])
	return out
}

// memoryWords returns the number of 32-byte words needed to cover size
// bytes, rounding up.
func memoryWords(size uint64) uint64 { return (size + 31) / 32 }

// memoryExpansionCost computes the quadratic-growth gas cost of expanding
// memory from its current size to newSize, per the Ethereum yellow
// paper's memory cost formula: 3*words + words^2/512.
func memoryExpansionCost(currentSize, newSize uint64) uint64 {
	if newSize <= currentSize {
		return 0
	}
	oldWords := memoryWords(currentSize)
	newWords := memoryWords(newSize)
	oldCost := 3*oldWords + oldWords*oldWords/512
	newCost := 3*newWords + newWords*newWords/512
	return newCost - oldCost
}
