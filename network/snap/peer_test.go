// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package snap

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/lumenchain/lumen/common"
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

func TestGetAccountRangeRoundTrip(t *testing.T) {
	client, server := newPeerPair()
	incoming := make(chan network.Frame, 4)
	go pump(server, incoming)
	go pump(client, incoming)

	go func() {
		f := <-incoming
		require.Equal(t, GetAccountRangeMsg, f.Code)
		id, err := firstFieldUint64(f.Payload)
		require.NoError(t, err)

		payload, err := rlp.Encode(&AccountRangePacket{
			RequestID: id,
			Accounts:  []AccountEntry{{Key: common.Hash{1}, Body: []byte("acct")}},
			Proof:     [][]byte{[]byte("proof")},
		})
		require.NoError(t, err)
		require.NoError(t, server.peer.Transport().WriteFrame(network.Frame{Code: AccountRangeMsg, Payload: payload}))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	entries, proof, err := client.GetAccountRange(ctx, common.Hash{9}, common.Hash{}, common.Hash{0xff}, 1024)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, []byte("acct"), entries[0].Body)
	require.Len(t, proof, 1)
}

func TestGetTrieNodesTimesOutWithNoResponder(t *testing.T) {
	client, server := newPeerPair()
	go func() {
		for {
			if _, err := server.peer.Transport().ReadFrame(); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.GetTrieNodes(ctx, common.Hash{}, [][]byte{{0x01}})
	require.Error(t, err)
}
