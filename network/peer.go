// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package network

import (
	"sync"
	"sync/atomic"
)

// Peer is one connected remote node: its transport, the protocols it
// has negotiated, and the request tracker correlating its in-flight
// requests with responses.
type Peer struct {
	id        string
	transport Transport
	requests  *RequestTracker

	score atomic.Int64
}

// NewPeer wraps transport as a tracked peer identified by id (its
// node ID, established during the RLPx handshake).
func NewPeer(id string, transport Transport) *Peer {
	return &Peer{id: id, transport: transport, requests: NewRequestTracker()}
}

// ID returns the peer's node identifier.
func (p *Peer) ID() string { return p.id }

// Transport returns the peer's framed duplex channel.
func (p *Peer) Transport() Transport { return p.transport }

// Requests returns the tracker correlating this peer's outgoing
// requests with their responses.
func (p *Peer) Requests() *RequestTracker { return p.requests }

// Score returns the peer's current reputation score.
func (p *Peer) Score() int64 { return p.score.Load() }

// AdjustScore adds delta to the peer's reputation score; callers
// credit good behavior (a valid, prompt response) and penalize bad
// behavior (malformed data, a timeout, a failed proof) so a table's
// eviction policy can prefer well-behaved peers.
func (p *Peer) AdjustScore(delta int64) {
	p.score.Add(delta)
}

// Table is the set of currently connected peers. Writes (additions,
// removals, scoring updates that change membership) are serialized
// under mu; reads take an immutable snapshot so iterating the table
// from a message-dispatch goroutine never blocks on, or is blocked by,
// a concurrent connect/disconnect (spec.md §5's "reads are lock-free
// over an immutable snapshot refreshed by the table owner").
type Table struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[[]*Peer]
	byID     map[string]*Peer
}

// NewTable returns an empty peer table.
func NewTable() *Table {
	t := &Table{byID: make(map[string]*Peer)}
	empty := []*Peer{}
	t.snapshot.Store(&empty)
	return t
}

// Add registers peer, replacing any prior entry under the same ID.
func (t *Table) Add(peer *Peer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byID[peer.ID()] = peer
	t.refresh()
}

// Remove drops the peer with the given ID, if present.
func (t *Table) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byID, id)
	t.refresh()
}

// refresh rebuilds the immutable snapshot from byID; callers must
// already hold mu.
func (t *Table) refresh() {
	snap := make([]*Peer, 0, len(t.byID))
	for _, p := range t.byID {
		snap = append(snap, p)
	}
	t.snapshot.Store(&snap)
}

// Snapshot returns every currently connected peer. The returned slice
// must not be mutated; it is shared with the table's internal state
// and any future snapshot until the next Add/Remove.
func (t *Table) Snapshot() []*Peer {
	return *t.snapshot.Load()
}

// Get returns the peer with the given ID, if connected.
func (t *Table) Get(id string) (*Peer, bool) {
	for _, p := range t.Snapshot() {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// Len returns the number of currently connected peers.
func (t *Table) Len() int {
	return len(t.Snapshot())
}
