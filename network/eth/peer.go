// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package eth

import (
	"context"
	"math/big"
	"time"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/lumenerr"
	"github.com/lumenchain/lumen/network"
	"github.com/lumenchain/lumen/rlp"
)

// defaultRequestTimeout bounds how long a request/response round trip
// waits before the caller gets a retryable timeout (spec.md §5:
// "every peer request carries a deadline").
const defaultRequestTimeout = 15 * time.Second

// Peer wraps a connected network.Peer with eth/68 send and
// request/response helpers. Every request message's first field is
// its RequestID, echoed unchanged in the matching response; Peer uses
// that convention to route an incoming frame to whichever call is
// awaiting it via the underlying network.RequestTracker.
type Peer struct {
	peer *network.Peer
}

// NewPeer adapts peer for eth/68 message exchange.
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

// Dispatch routes one incoming frame: request/response packets are
// delivered to whatever call in this peer is awaiting that request ID;
// anything else (gossip messages, or a response with no waiter left
// because it already timed out) is returned to the caller to handle.
func (p *Peer) Dispatch(f network.Frame) (handled bool, err error) {
	switch f.Code {
	case BlockHeadersMsg, BlockBodiesMsg, PooledTransactionsMsg, ReceiptsMsg:
		id, err := firstFieldUint64(f.Payload)
		if err != nil {
			return false, lumenerr.PeerError(p.ID(), "malformed response packet", err)
		}
		return p.peer.Requests().Deliver(id, f), nil
	default:
		return false, nil
	}
}

// SendStatus performs the eth/68 handshake's outbound half.
func (p *Peer) SendStatus(status *Status) error {
	return p.send(StatusMsg, status)
}

// SendNewBlock announces block to this peer.
func (p *Peer) SendNewBlock(block *types.Block, totalDifficulty *big.Int) error {
	return p.send(NewBlockMsg, &NewBlockPacket{Block: block, TotalDifficulty: totalDifficulty})
}

// SendTransactions propagates txs to this peer's pool.
func (p *Peer) SendTransactions(txs []*types.Transaction) error {
	return p.send(TransactionsMsg, &TransactionsPacket{Transactions: txs})
}

// SendBlockHeaders answers a GetBlockHeaders request.
func (p *Peer) SendBlockHeaders(requestID uint64, headers []*types.Header) error {
	return p.send(BlockHeadersMsg, &BlockHeadersPacket{RequestID: requestID, Headers: headers})
}

// SendBlockBodies answers a GetBlockBodies request.
func (p *Peer) SendBlockBodies(requestID uint64, bodies []BlockBody) error {
	return p.send(BlockBodiesMsg, &BlockBodiesPacket{RequestID: requestID, Bodies: bodies})
}

// SendReceipts answers a GetReceipts request.
func (p *Peer) SendReceipts(requestID uint64, receipts [][]*types.Receipt) error {
	return p.send(ReceiptsMsg, &ReceiptsPacket{RequestID: requestID, Receipts: receipts})
}

// RequestBlockHeaders asks this peer for a run of headers and blocks
// until the matching response arrives, the deadline elapses, or ctx is
// cancelled.
func (p *Peer) RequestBlockHeaders(ctx context.Context, origin HashOrNumber, amount, skip uint64, reverse bool) ([]*types.Header, error) {
	id := p.peer.Requests().NextID()
	req := &GetBlockHeadersPacket{
		RequestID: id,
		Request:   GetBlockHeadersRequest{Origin: origin, Amount: amount, Skip: skip, Reverse: reverse},
	}
	if err := p.send(GetBlockHeadersMsg, req); err != nil {
		return nil, err
	}
	f, err := p.peer.Requests().Await(ctx, id, defaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	var resp BlockHeadersPacket
	if err := rlp.DecodeInto(f.Payload, &resp); err != nil {
		return nil, lumenerr.PeerError(p.ID(), "malformed BlockHeaders response", err)
	}
	return resp.Headers, nil
}

// RequestReceipts asks this peer for the receipts of the given block
// hashes.
func (p *Peer) RequestReceipts(ctx context.Context, hashes []common.Hash) ([][]*types.Receipt, error) {
	id := p.peer.Requests().NextID()
	req := &GetReceiptsPacket{RequestID: id, Hashes: hashes}
	if err := p.send(GetReceiptsMsg, req); err != nil {
		return nil, err
	}
	f, err := p.peer.Requests().Await(ctx, id, defaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	var resp ReceiptsPacket
	if err := rlp.DecodeInto(f.Payload, &resp); err != nil {
		return nil, lumenerr.PeerError(p.ID(), "malformed Receipts response", err)
	}
	return resp.Receipts, nil
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
