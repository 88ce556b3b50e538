// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package statesync

import (
	"context"
	"math/big"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/stretchr/testify/require"

	"github.com/lumenchain/lumen/core/types"
)

func testHeader() *types.Header {
	return &types.Header{Number: big.NewInt(1), Time: uint64(time.Now().Unix())}
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHealFetchesOnlyUnconfirmedPaths(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := New(testHeader(), 1024)
	root := testHeader().Hash()
	paths := [][]byte{[]byte("path-a"), []byte("path-b")}

	peer := NewMockPeer(ctrl)
	peer.EXPECT().ID().Return("peer-a").AnyTimes()
	peer.EXPECT().
		GetTrieNodes(gomock.Any(), root, paths).
		Return([][]byte{[]byte("node-a"), []byte("node-b")}, nil)

	got, err := s.Heal(context.Background(), peer, root, paths)
	require.NoError(t, err)
	require.Equal(t, []byte("node-a"), got["path-a"])
	require.Equal(t, []byte("node-b"), got["path-b"])

	// Heal marks every returned path as confirmed, so a second request
	// for the same paths needs nothing from the peer.
	got, err = s.Heal(context.Background(), peer, root, paths)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestHealPropagatesPeerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := New(testHeader(), 1024)
	root := testHeader().Hash()
	paths := [][]byte{[]byte("path-a")}

	peer := NewMockPeer(ctrl)
	peer.EXPECT().ID().Return("peer-a").AnyTimes()
	peer.EXPECT().
		GetTrieNodes(gomock.Any(), root, paths).
		Return(nil, context.DeadlineExceeded)

	_, err := s.Heal(context.Background(), peer, root, paths)
	require.Error(t, err)
}
