// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package eth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/network"
	"github.com/lumenchain/lumen/rlp"
	"github.com/stretchr/testify/require"
)

type pipeRWC struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipeRWC) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeRWC) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p *pipeRWC) Close() error {
	p.r.Close()
	return p.w.Close()
}

func newPeerPair() (*Peer, *Peer) {
	r1, w1 := io.Pipe()
	r2, w2 := io.Pipe()
	a := network.NewPeer("a", network.NewFrameTransport(&pipeRWC{r: r1, w: w2}))
	b := network.NewPeer("b", network.NewFrameTransport(&pipeRWC{r: r2, w: w1}))
	return NewPeer(a), NewPeer(b)
}

// pump reads frames arriving on p's own transport and dispatches them
// into p's own request tracker, mimicking the per-peer read loop a
// running node keeps on a live connection. Anything not claimed by a
// pending request (a fresh incoming request, or a gossip message) is
// handed to incoming for the test to inspect.
func pump(p *Peer, incoming chan<- network.Frame) {
	for {
		f, err := p.peer.Transport().ReadFrame()
		if err != nil {
			return
		}
		handled, _ := p.Dispatch(f)
		if !handled {
			incoming <- f
		}
	}
}

func TestRequestBlockHeadersRoundTrip(t *testing.T) {
	client, server := newPeerPair()
	incoming := make(chan network.Frame, 4)
	go pump(server, incoming)
	go pump(client, incoming)

	go func() {
		f := <-incoming
		require.Equal(t, GetBlockHeadersMsg, f.Code)
		id, err := firstFieldUint64(f.Payload)
		require.NoError(t, err)
		require.NoError(t, server.SendBlockHeaders(id, []*types.Header{{Number: 7}}))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	headers, err := client.RequestBlockHeaders(ctx, HashOrNumber{Number: 1}, 1, 0, false)
	require.NoError(t, err)
	require.Len(t, headers, 1)
	require.Equal(t, uint64(7), headers[0].Number)
}

func TestRequestBlockHeadersTimesOutWithNoResponder(t *testing.T) {
	client, server := newPeerPair()
	// Drain the request client sends so the pipe write does not block;
	// server deliberately never answers it.
	go func() {
		for {
			if _, err := server.peer.Transport().ReadFrame(); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.RequestBlockHeaders(ctx, HashOrNumber{Number: 1}, 1, 0, false)
	require.Error(t, err)
}

func TestSendStatusEncodesAndDecodes(t *testing.T) {
	client, server := newPeerPair()
	done := make(chan Status, 1)
	go func() {
		f, err := server.peer.Transport().ReadFrame()
		require.NoError(t, err)
		require.Equal(t, StatusMsg, f.Code)
		var s Status
		require.NoError(t, rlp.DecodeInto(f.Payload, &s))
		done <- s
	}()

	require.NoError(t, client.SendStatus(&Status{ProtocolVersion: 68, NetworkID: 1}))
	got := <-done
	require.Equal(t, uint32(68), got.ProtocolVersion)
	require.Equal(t, uint64(1), got.NetworkID)
}
