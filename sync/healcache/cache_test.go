// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package healcache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckPathUnknownIsMissing(t *testing.T) {
	c := New(1024)
	require.Equal(t, DefinitelyMissing, c.CheckPath([]byte{0x01, 0x02}))
}

func TestMarkExistsConfirms(t *testing.T) {
	c := New(1024)
	path := []byte{0xaa, 0xbb, 0xcc}
	c.MarkExists(path)
	require.Equal(t, ConfirmedExists, c.CheckPath(path))
}

func TestMarkExistsBatch(t *testing.T) {
	c := New(1024)
	paths := [][]byte{{0x01}, {0x02}, {0x03}}
	c.MarkExistsBatch(paths)
	for _, p := range paths {
		require.Equal(t, ConfirmedExists, c.CheckPath(p))
	}
}

func TestResetClearsKnownPaths(t *testing.T) {
	c := New(1024)
	path := []byte{0x01, 0x02, 0x03}
	c.MarkExists(path)
	require.Equal(t, ConfirmedExists, c.CheckPath(path))

	c.Reset()
	require.Equal(t, DefinitelyMissing, c.CheckPath(path))
}

// TestFalsePositiveRate is a benchmark-style check that the bloom
// filter's false-positive rate stays near the ~1% target once the
// exact LRU has evicted the marked path (forcing CheckPath through
// the bloom filter alone).
func TestFalsePositiveRate(t *testing.T) {
	const n = 2000
	c := New(n)

	marked := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		marked = append(marked, []byte(fmt.Sprintf("path-%d", i)))
	}
	c.MarkExistsBatch(marked)
	// The exact LRU is sized to n and every marked path was just
	// inserted, so push it out entirely with unrelated entries before
	// measuring the bloom filter's standalone false-positive rate.
	for i := 0; i < n; i++ {
		c.exact.Add(fmt.Sprintf("evict-%d", i), struct{}{})
	}

	var falsePositives int
	const probes = 5000
	for i := 0; i < probes; i++ {
		probe := []byte(fmt.Sprintf("absent-%d", i))
		if c.CheckPath(probe) != DefinitelyMissing {
			falsePositives++
		}
	}
	rate := float64(falsePositives) / float64(probes)
	require.Less(t, rate, 0.05, "false-positive rate should stay well under 5%% at 10 bits/element")
}
