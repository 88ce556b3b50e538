// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package statesync drives snap-sync (spec.md §4.5): bringing a fresh
// node to a recent pivot by downloading account and storage ranges
// rather than walking the trie block by block, then handing the
// remaining gaps to the healing cache.
package statesync

import (
	"sync"
	"time"

	"github.com/lumenchain/lumen/core/types"
)

// pivotMaxAge is how long a pivot remains valid: 256 blocks at the
// nominal 12-second slot time before it is considered stale and a
// fresher one must be selected.
const pivotMaxAge = 256 * 12 * time.Second

// Pivot is the header snap-sync downloads state from.
type Pivot struct {
	Header     *types.Header
	Generation uint64
	SelectedAt time.Time
}

// PivotTracker owns the current pivot and the monotonic generation
// counter every outgoing range/heal request is stamped with. Comparing
// a response's captured generation against the current one closes the
// in-flight/stale-pivot race: a response that arrives after the pivot
// has moved on is silently dropped rather than applied against state
// rooted at a pivot no longer being synced.
type PivotTracker struct {
	mu         sync.RWMutex
	current    Pivot
	generation uint64
}

// NewPivotTracker starts tracking header as generation 1 (0 means "no
// pivot selected yet" and is never a valid captured generation).
func NewPivotTracker(header *types.Header, now time.Time) *PivotTracker {
	t := &PivotTracker{generation: 1}
	t.current = Pivot{Header: header, Generation: 1, SelectedAt: now}
	return t
}

// Current returns the active pivot and the generation to stamp on any
// request issued right now.
func (t *PivotTracker) Current() Pivot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// IsStale reports whether the current pivot is older than pivotMaxAge
// as of now, measured from the pivot block's own timestamp rather than
// when this node selected it.
func (t *PivotTracker) IsStale(now time.Time) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pivotTime := time.Unix(int64(t.current.Header.Time), 0)
	return now.Sub(pivotTime) > pivotMaxAge
}

// Advance selects a new pivot and bumps the generation counter,
// invalidating every request already in flight under the old one.
func (t *PivotTracker) Advance(header *types.Header, now time.Time) Pivot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
	t.current = Pivot{Header: header, Generation: t.generation, SelectedAt: now}
	return t.current
}

// Valid reports whether generation, captured when a request was
// dispatched, still matches the tracker's current generation. A
// response carrying a stale generation must be discarded rather than
// merged into local state.
func (t *PivotTracker) Valid(generation uint64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return generation == t.current.Generation
}
