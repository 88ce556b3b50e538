// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package statesync

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lumenchain/lumen/core/types"
)

func header(number int64) *types.Header {
	return &types.Header{Number: big.NewInt(number)}
}

// headerAt is header with its timestamp pinned to t, for staleness
// tests that measure age off the block's own Time field.
func headerAt(number int64, t time.Time) *types.Header {
	h := header(number)
	h.Time = uint64(t.Unix())
	return h
}

func TestPivotTrackerStartsAtGenerationOne(t *testing.T) {
	now := time.Now()
	tr := NewPivotTracker(header(1), now)
	require.Equal(t, uint64(1), tr.Current().Generation)
	require.True(t, tr.Valid(1))
	require.False(t, tr.Valid(2))
}

func TestPivotTrackerIsStale(t *testing.T) {
	now := time.Now()
	tr := NewPivotTracker(headerAt(1, now.Add(-pivotMaxAge-time.Second)), now)
	require.True(t, tr.IsStale(now))
}

func TestPivotTrackerNotStaleWithinWindow(t *testing.T) {
	now := time.Now()
	tr := NewPivotTracker(headerAt(1, now.Add(-time.Minute)), now)
	require.False(t, tr.IsStale(now))
}

func TestPivotTrackerAdvanceBumpsGenerationAndInvalidatesOld(t *testing.T) {
	now := time.Now()
	tr := NewPivotTracker(header(1), now)
	oldGen := tr.Current().Generation

	tr.Advance(header(2), now)
	require.True(t, tr.Valid(oldGen+1))
	require.False(t, tr.Valid(oldGen))
}
