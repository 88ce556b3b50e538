// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package network

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableAddGetRemove(t *testing.T) {
	tbl := NewTable()
	p := NewPeer("peer-1", nil)
	tbl.Add(p)

	got, ok := tbl.Get("peer-1")
	require.True(t, ok)
	require.Same(t, p, got)
	require.Equal(t, 1, tbl.Len())

	tbl.Remove("peer-1")
	_, ok = tbl.Get("peer-1")
	require.False(t, ok)
	require.Equal(t, 0, tbl.Len())
}

func TestTableSnapshotIsStable(t *testing.T) {
	tbl := NewTable()
	tbl.Add(NewPeer("a", nil))
	snap := tbl.Snapshot()
	require.Len(t, snap, 1)

	tbl.Add(NewPeer("b", nil))
	// The earlier snapshot must not observe the later addition.
	require.Len(t, snap, 1)
	require.Len(t, tbl.Snapshot(), 2)
}

func TestPeerScoreAdjust(t *testing.T) {
	p := NewPeer("peer-1", nil)
	require.Equal(t, int64(0), p.Score())
	p.AdjustScore(5)
	p.AdjustScore(-2)
	require.Equal(t, int64(3), p.Score())
}
