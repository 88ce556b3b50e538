// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package snap

import (
	"context"
	"time"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/lumenerr"
	"github.com/lumenchain/lumen/network"
	"github.com/lumenchain/lumen/rlp"
	"github.com/lumenchain/lumen/sync/statesync"
)

const defaultRequestTimeout = 15 * time.Second

// Peer adapts a connected network.Peer to statesync.Peer, letting the
// snap-sync scheduler drive range downloads and healing over the
// snap/1 wire messages without knowing about framing or RLP.
type Peer struct {
	peer *network.Peer
}

// NewPeer adapts peer for snap/1 message exchange.
func NewPeer(peer *network.Peer) *Peer {
	return &Peer{peer: peer}
}

// ID returns the peer's node identifier.
func (p *Peer) ID() string { return p.peer.ID() }

func (p *Peer) send(code uint64, val interface{}) error {
	payload, err := rlp.Encode(val)
	if err != nil {
		return err
	}
	return p.peer.Transport().WriteFrame(network.Frame{Code: code, Payload: payload})
}

// Dispatch routes one incoming frame to whichever call is awaiting its
// echoed RequestID; anything else is left unhandled for the caller.
func (p *Peer) Dispatch(f network.Frame) (handled bool, err error) {
	switch f.Code {
	case AccountRangeMsg, StorageRangesMsg, ByteCodesMsg, TrieNodesMsg:
		id, err := firstFieldUint64(f.Payload)
		if err != nil {
			return false, lumenerr.PeerError(p.ID(), "malformed snap response", err)
		}
		return p.peer.Requests().Deliver(id, f), nil
	default:
		return false, nil
	}
}

// GetAccountRange implements statesync.Peer.
func (p *Peer) GetAccountRange(ctx context.Context, root common.Hash, start, end common.Hash, bytesLimit int) ([]statesync.RangeEntry, [][]byte, error) {
	id := p.peer.Requests().NextID()
	req := &GetAccountRangePacket{RequestID: id, Root: root, Start: start, End: end, Bytes: uint64(bytesLimit)}
	if err := p.send(GetAccountRangeMsg, req); err != nil {
		return nil, nil, err
	}
	f, err := p.peer.Requests().Await(ctx, id, defaultRequestTimeout)
	if err != nil {
		return nil, nil, err
	}
	var resp AccountRangePacket
	if err := rlp.DecodeInto(f.Payload, &resp); err != nil {
		return nil, nil, lumenerr.PeerError(p.ID(), "malformed AccountRange response", err)
	}
	entries := make([]statesync.RangeEntry, len(resp.Accounts))
	for i, a := range resp.Accounts {
		entries[i] = statesync.RangeEntry{Key: a.Key, Body: a.Body}
	}
	return entries, resp.Proof, nil
}

// GetStorageRange implements statesync.Peer.
func (p *Peer) GetStorageRange(ctx context.Context, root, account common.Hash, start, end common.Hash, bytesLimit int) ([]statesync.RangeEntry, [][]byte, error) {
	id := p.peer.Requests().NextID()
	req := &GetStorageRangesPacket{RequestID: id, Root: root, Account: account, Start: start, End: end, Bytes: uint64(bytesLimit)}
	if err := p.send(GetStorageRangesMsg, req); err != nil {
		return nil, nil, err
	}
	f, err := p.peer.Requests().Await(ctx, id, defaultRequestTimeout)
	if err != nil {
		return nil, nil, err
	}
	var resp StorageRangesPacket
	if err := rlp.DecodeInto(f.Payload, &resp); err != nil {
		return nil, nil, lumenerr.PeerError(p.ID(), "malformed StorageRanges response", err)
	}
	entries := make([]statesync.RangeEntry, len(resp.Slots))
	for i, s := range resp.Slots {
		entries[i] = statesync.RangeEntry{Key: s.Key, Body: s.Body}
	}
	return entries, resp.Proof, nil
}

// GetTrieNodes implements statesync.Peer.
func (p *Peer) GetTrieNodes(ctx context.Context, root common.Hash, paths [][]byte) ([][]byte, error) {
	id := p.peer.Requests().NextID()
	req := &GetTrieNodesPacket{RequestID: id, Root: root, Paths: paths, Bytes: MaxResponseBytes}
	if err := p.send(GetTrieNodesMsg, req); err != nil {
		return nil, err
	}
	f, err := p.peer.Requests().Await(ctx, id, defaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	var resp TrieNodesPacket
	if err := rlp.DecodeInto(f.Payload, &resp); err != nil {
		return nil, lumenerr.PeerError(p.ID(), "malformed TrieNodes response", err)
	}
	return resp.Nodes, nil
}

// firstFieldUint64 extracts a response packet's leading RequestID
// field without decoding the packet's remaining, possibly large,
// fields.
func firstFieldUint64(payload []byte) (uint64, error) {
	item, _, err := rlp.Decode(payload)
	if err != nil {
		return 0, err
	}
	if len(item.List) == 0 {
		return 0, rlp.ErrMalformed
	}
	var id uint64
	for _, b := range item.List[0].Bytes {
		id = id<<8 | uint64(b)
	}
	return id, nil
}
