// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package network

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// pipeRWC adapts a pair of io.Pipe ends into the single
// io.ReadWriteCloser frameTransport expects.
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

func newPipePair() (Transport, Transport) {
	r1, w1 := io.Pipe()
	r2, w2 := io.Pipe()
	a := NewFrameTransport(&pipeRWC{r: r1, w: w2})
	b := NewFrameTransport(&pipeRWC{r: r2, w: w1})
	return a, b
}

func TestFrameTransportRoundTrip(t *testing.T) {
	a, b := newPipePair()
	defer a.Close()
	defer b.Close()

	done := make(chan Frame, 1)
	go func() {
		f, err := b.ReadFrame()
		require.NoError(t, err)
		done <- f
	}()

	require.NoError(t, a.WriteFrame(Frame{Code: 0x04, Payload: []byte("headers")}))
	got := <-done
	require.Equal(t, uint64(0x04), got.Code)
	require.Equal(t, []byte("headers"), got.Payload)
}

func TestRequestTrackerDeliversToAwaiter(t *testing.T) {
	tr := NewRequestTracker()
	id := tr.NextID()

	result := make(chan Frame, 1)
	go func() {
		f, err := tr.Await(context.Background(), id, time.Second)
		require.NoError(t, err)
		result <- f
	}()

	// Give the goroutine a moment to register before delivering.
	time.Sleep(10 * time.Millisecond)
	require.True(t, tr.Deliver(id, Frame{Code: 1, Payload: []byte("ok")}))

	got := <-result
	require.Equal(t, []byte("ok"), got.Payload)
}

func TestRequestTrackerTimesOut(t *testing.T) {
	tr := NewRequestTracker()
	id := tr.NextID()
	_, err := tr.Await(context.Background(), id, 10*time.Millisecond)
	require.Error(t, err)
}

func TestRequestTrackerDeliverUnknownIDIsNoop(t *testing.T) {
	tr := NewRequestTracker()
	require.False(t, tr.Deliver(999, Frame{}))
}
