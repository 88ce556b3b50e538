// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package node

import (
	"context"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core"
)

func testGenesis() *core.Genesis {
	return &core.Genesis{
		Alloc: core.GenesisAlloc{
			common.Address{1}: {Balance: uint256.NewInt(1_000_000_000)},
		},
		GasLimit:   8_000_000,
		Difficulty: big.NewInt(1),
		Timestamp:  1_700_000_000,
	}
}

func TestNewCommitsGenesisAndBuildsChain(t *testing.T) {
	n, err := New(Config{
		DataDir:        t.TempDir(),
		ColdCacheBytes: 1 << 20,
		Genesis:        testGenesis(),
	})
	require.NoError(t, err)
	require.NotNil(t, n.BlockChain())
	require.NotNil(t, n.TxPool())

	head := n.BlockChain().Head()
	header, ok := n.BlockChain().GetHeader(head)
	require.True(t, ok)
	require.Equal(t, uint64(0), header.Number.Uint64())
}

func TestNewRejectsMissingGenesis(t *testing.T) {
	_, err := New(Config{DataDir: t.TempDir()})
	require.Error(t, err)
}

func TestStartStopIsIdempotent(t *testing.T) {
	n, err := New(Config{
		DataDir:        t.TempDir(),
		ColdCacheBytes: 1 << 20,
		Genesis:        testGenesis(),
		HTTPAddr:       "127.0.0.1:0",
		WSAddr:         "127.0.0.1:0",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, n.Start(ctx))
	require.NoError(t, n.Start(ctx)) // second Start is a no-op
	require.NoError(t, n.Stop())
	require.NoError(t, n.Stop()) // second Stop is a no-op
}
