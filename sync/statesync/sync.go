// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package statesync

import (
	"context"
	"time"

	log "github.com/luxfi/log"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/lumenerr"
	"github.com/lumenchain/lumen/sync/healcache"
)

// Peer is the subset of a connected snap-sync peer the scheduler needs.
// network/snap supplies the concrete implementation once the wire
// protocol is wired in; tests substitute a fake.
type Peer interface {
	ID() string
	GetAccountRange(ctx context.Context, root common.Hash, start, end common.Hash, bytesLimit int) ([]RangeEntry, [][]byte, error)
	GetStorageRange(ctx context.Context, root, account common.Hash, start, end common.Hash, bytesLimit int) ([]RangeEntry, [][]byte, error)
	GetTrieNodes(ctx context.Context, root common.Hash, paths [][]byte) ([][]byte, error)
}

// StateStore is the local durable sink range downloads and healed
// nodes are written to; triedb.Database satisfies it via InsertHot.
type StateStore interface {
	InsertHot(blockHash, parentHash common.Hash, nodes map[common.Hash][]byte) error
}

// Sync drives one snap-sync session: range downloads against the
// current pivot followed by healing of whatever the range walk left
// missing (spec.md §4.5).
type Sync struct {
	pivot     *PivotTracker
	scheduler *Scheduler
	heal      *healcache.Cache
}

// New starts a sync session pivoted at header.
func New(header *types.Header, healCacheSize int) *Sync {
	return &Sync{
		pivot:     NewPivotTracker(header, time.Now()),
		scheduler: NewScheduler(),
		heal:      healcache.New(healCacheSize),
	}
}

// MaybeAdvancePivot replaces the pivot with newHeader and resets the
// healing cache if the current pivot has gone stale (spec.md §4.5:
// in-flight requests tagged with the old generation are discarded by
// every caller checking Pivot.Generation against PivotTracker.Valid).
func (s *Sync) MaybeAdvancePivot(newHeader *types.Header, now time.Time) bool {
	if !s.pivot.IsStale(now) {
		return false
	}
	old := s.pivot.Current()
	pivot := s.pivot.Advance(newHeader, now)
	s.heal.Reset()
	log.Info("snap-sync pivot advanced", "oldNumber", old.Header.Number, "newNumber", newHeader.Number, "generation", pivot.Generation)
	return true
}

// FetchAccountRange requests the account range [start, end] from peer,
// verifies it against the pivot's state root, and returns the verified
// entries, or an error if the pivot moved on mid-flight or the proof
// failed.
func (s *Sync) FetchAccountRange(ctx context.Context, peer Peer, start, end common.Hash) ([]RangeEntry, error) {
	pivot := s.pivot.Current()
	size := s.scheduler.RequestSize(peer.ID())
	reservation := s.scheduler.Reserve(peer.ID())
	time.Sleep(reservation.Delay())

	began := time.Now()
	entries, proof, err := peer.GetAccountRange(ctx, pivot.Header.Root, start, end, size)
	if err != nil {
		s.scheduler.ReportFailure(peer.ID())
		return nil, lumenerr.PeerError(peer.ID(), "account range request failed", err)
	}
	if !s.pivot.Valid(pivot.Generation) {
		return nil, lumenerr.Timeout("pivot advanced while account range was in flight", nil)
	}

	if err := VerifyRange(pivot.Header.Root, start, end, entries, proof); err != nil {
		s.scheduler.ReportFailure(peer.ID())
		return nil, err
	}

	var total int
	for _, e := range entries {
		total += len(e.Body)
	}
	s.scheduler.ReportSuccess(peer.ID(), total, time.Since(began))
	return entries, nil
}

// FetchStorageRange is FetchAccountRange's per-account storage
// counterpart.
func (s *Sync) FetchStorageRange(ctx context.Context, peer Peer, account common.Hash, start, end common.Hash) ([]RangeEntry, error) {
	pivot := s.pivot.Current()
	size := s.scheduler.RequestSize(peer.ID())
	reservation := s.scheduler.Reserve(peer.ID())
	time.Sleep(reservation.Delay())

	began := time.Now()
	entries, proof, err := peer.GetStorageRange(ctx, pivot.Header.Root, account, start, end, size)
	if err != nil {
		s.scheduler.ReportFailure(peer.ID())
		return nil, lumenerr.PeerError(peer.ID(), "storage range request failed", err)
	}
	if !s.pivot.Valid(pivot.Generation) {
		return nil, lumenerr.Timeout("pivot advanced while storage range was in flight", nil)
	}

	if err := VerifyRange(pivot.Header.Root, start, end, entries, proof); err != nil {
		s.scheduler.ReportFailure(peer.ID())
		return nil, err
	}

	var total int
	for _, e := range entries {
		total += len(e.Body)
	}
	s.scheduler.ReportSuccess(peer.ID(), total, time.Since(began))
	return entries, nil
}

// Heal requests every path in paths that the healing cache does not
// already confirm exists, marking each returned node as known once
// fetched.
func (s *Sync) Heal(ctx context.Context, peer Peer, root common.Hash, paths [][]byte) (map[string][]byte, error) {
	var need [][]byte
	for _, p := range paths {
		if s.heal.CheckPath(p) == healcache.ConfirmedExists {
			continue
		}
		need = append(need, p)
	}
	if len(need) == 0 {
		return nil, nil
	}

	nodes, err := peer.GetTrieNodes(ctx, root, need)
	if err != nil {
		s.scheduler.ReportFailure(peer.ID())
		return nil, lumenerr.PeerError(peer.ID(), "heal request failed", err)
	}

	out := make(map[string][]byte, len(nodes))
	for i, node := range nodes {
		if i >= len(need) || node == nil {
			continue
		}
		out[string(need[i])] = node
		s.heal.MarkExists(need[i])
	}
	return out, nil
}
