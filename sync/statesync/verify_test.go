// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package statesync

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/trie"
)

func buildTestTrie(t *testing.T, kvs map[common.Hash][]byte) *trie.Trie {
	t.Helper()
	tr := trie.New(common.Hash{}, nil)
	for k, v := range kvs {
		require.NoError(t, tr.Insert(k[:], v))
	}
	return tr
}

func TestVerifyRangeAcceptsValidRange(t *testing.T) {
	k1 := common.HexToHash("0x01")
	k2 := common.HexToHash("0x02")
	k3 := common.HexToHash("0x03")
	kvs := map[common.Hash][]byte{k1: []byte("a"), k2: []byte("b"), k3: []byte("c")}
	tr := buildTestTrie(t, kvs)
	root := tr.Root()

	entries := []RangeEntry{{Key: k1, Body: kvs[k1]}, {Key: k2, Body: kvs[k2]}, {Key: k3, Body: kvs[k3]}}
	proof, err := tr.Prove(k1[:])
	require.NoError(t, err)
	lastProof, err := tr.Prove(k3[:])
	require.NoError(t, err)
	proof = append(proof, lastProof...)

	require.NoError(t, VerifyRange(root, k1, k3, entries, proof))
}

func TestVerifyRangeRejectsOutOfBoundsEntry(t *testing.T) {
	k1 := common.HexToHash("0x01")
	k2 := common.HexToHash("0x02")
	entries := []RangeEntry{{Key: k1, Body: []byte("a")}, {Key: k2, Body: []byte("b")}}
	err := VerifyRange(common.Hash{}, k1, k1, entries, nil)
	require.Error(t, err)
}

func TestVerifyRangeRejectsNonIncreasingEntries(t *testing.T) {
	k1 := common.HexToHash("0x01")
	k2 := common.HexToHash("0x02")
	entries := []RangeEntry{{Key: k2, Body: []byte("b")}, {Key: k1, Body: []byte("a")}}
	err := VerifyRange(common.Hash{}, k1, k2, entries, nil)
	require.Error(t, err)
}
