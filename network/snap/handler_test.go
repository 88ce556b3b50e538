// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package snap

import (
	"testing"
	"time"

	"github.com/lumenchain/lumen/common"
	"github.com/stretchr/testify/require"
)

type fakeState struct {
	accounts []AccountEntry
	codes    map[common.Hash][]byte
	nodes    map[string][]byte
}

func (f *fakeState) AccountRange(root, start, end common.Hash, maxResults int) ([]AccountEntry, [][]byte, bool, error) {
	return f.accounts, [][]byte{[]byte("proof")}, false, nil
}

func (f *fakeState) StorageRange(root, account, start, end common.Hash, maxResults int) ([]StorageEntry, [][]byte, bool, error) {
	return nil, nil, false, nil
}

func (f *fakeState) ByteCodes(hashes []common.Hash) [][]byte {
	out := make([][]byte, 0, len(hashes))
	for _, h := range hashes {
		if c, ok := f.codes[h]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeState) TrieNodes(root common.Hash, paths [][]byte) [][]byte {
	out := make([][]byte, len(paths))
	for i, p := range paths {
		out[i] = f.nodes[string(p)]
	}
	return out
}

func TestHandleGetAccountRange(t *testing.T) {
	state := &fakeState{accounts: []AccountEntry{{Key: common.Hash{1}, Body: []byte("a")}}}
	h := NewHandler(state, nil)

	resp, err := h.HandleGetAccountRange("peer", &GetAccountRangePacket{RequestID: 5, Root: common.Hash{9}})
	require.NoError(t, err)
	require.Equal(t, uint64(5), resp.RequestID)
	require.Len(t, resp.Accounts, 1)
	require.Len(t, resp.Proof, 1)
}

func TestHandleGetTrieNodesMissingIsNil(t *testing.T) {
	state := &fakeState{nodes: map[string][]byte{"a": []byte("node-a")}}
	h := NewHandler(state, nil)

	resp, err := h.HandleGetTrieNodes("peer", &GetTrieNodesPacket{RequestID: 1, Paths: [][]byte{[]byte("a"), []byte("missing")}})
	require.NoError(t, err)
	require.Equal(t, []byte("node-a"), resp.Nodes[0])
	require.Nil(t, resp.Nodes[1])
}

func TestThrottlerBlocksOverLimit(t *testing.T) {
	th := NewThrottler(2, time.Minute)
	require.True(t, th.Allow("p"))
	require.True(t, th.Allow("p"))
	require.False(t, th.Allow("p"))
}

func TestThrottlerResetsAfterWindow(t *testing.T) {
	th := NewThrottler(1, 10*time.Millisecond)
	require.True(t, th.Allow("p"))
	require.False(t, th.Allow("p"))
	time.Sleep(15 * time.Millisecond)
	require.True(t, th.Allow("p"))
}

func TestForgetClearsPeerWindow(t *testing.T) {
	th := NewThrottler(1, time.Minute)
	require.True(t, th.Allow("p"))
	require.False(t, th.Allow("p"))
	th.Forget("p")
	require.True(t, th.Allow("p"))
}
