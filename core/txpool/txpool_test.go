// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package txpool

import (
	"math/big"
	"testing"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/types"
	"github.com/stretchr/testify/require"
)

// fakeSigner assigns senders by a fixed Nonce->Address table instead of
// recovering a real ECDSA signature, letting these tests exercise the
// pool's indexing logic independent of key generation.
type fakeSigner struct {
	senderByNonce map[uint64]common.Address
}

func (s *fakeSigner) ChainID() *big.Int { return big.NewInt(1) }
func (s *fakeSigner) Hash(tx *types.Transaction) common.Hash { return common.Hash{} }
func (s *fakeSigner) Sender(tx *types.Transaction) (common.Address, error) {
	return s.senderByNonce[tx.Nonce], nil
}

func newTestTx(nonce uint64, gasPrice int64) *types.Transaction {
	return &types.Transaction{
		Type:     types.LegacyTxType,
		Nonce:    nonce,
		GasPrice: big.NewInt(gasPrice),
		Gas:      21000,
	}
}

func TestPoolAddAndGet(t *testing.T) {
	alice := common.Address{1}
	signer := &fakeSigner{senderByNonce: map[uint64]common.Address{0: alice, 1: alice}}
	pool := New(signer)

	tx0 := newTestTx(0, 1)
	tx1 := newTestTx(1, 1)
	require.NoError(t, pool.Add(tx0))
	require.NoError(t, pool.Add(tx1))

	require.Equal(t, 2, pool.Len())
	require.True(t, pool.Has(tx0.Hash()))
	got, ok := pool.Get(tx1.Hash())
	require.True(t, ok)
	require.Equal(t, tx1, got)
}

func TestPoolReplacesSameNonce(t *testing.T) {
	alice := common.Address{1}
	signer := &fakeSigner{senderByNonce: map[uint64]common.Address{0: alice}}
	pool := New(signer)

	first := newTestTx(0, 1)
	replacement := newTestTx(0, 5)
	require.NoError(t, pool.Add(first))
	require.NoError(t, pool.Add(replacement))

	require.Equal(t, 1, pool.Len())
	require.False(t, pool.Has(first.Hash()))
	require.True(t, pool.Has(replacement.Hash()))
}

func TestPoolPendingOrdersBySenderNonce(t *testing.T) {
	alice := common.Address{1}
	signer := &fakeSigner{senderByNonce: map[uint64]common.Address{0: alice, 1: alice, 2: alice}}
	pool := New(signer)

	tx2 := newTestTx(2, 1)
	tx0 := newTestTx(0, 1)
	tx1 := newTestTx(1, 1)
	require.NoError(t, pool.Add(tx2))
	require.NoError(t, pool.Add(tx0))
	require.NoError(t, pool.Add(tx1))

	pending := pool.Pending()[alice]
	require.Len(t, pending, 3)
	require.Equal(t, uint64(0), pending[0].Nonce)
	require.Equal(t, uint64(1), pending[1].Nonce)
	require.Equal(t, uint64(2), pending[2].Nonce)
}

func TestPoolRemove(t *testing.T) {
	alice := common.Address{1}
	signer := &fakeSigner{senderByNonce: map[uint64]common.Address{0: alice}}
	pool := New(signer)

	tx := newTestTx(0, 1)
	require.NoError(t, pool.Add(tx))
	pool.Remove(tx.Hash())

	require.Equal(t, 0, pool.Len())
	require.False(t, pool.Has(tx.Hash()))
	_, ok := pool.PendingNonce(alice)
	require.False(t, ok)
}

func TestPendingNonceTracksHighestPlusOne(t *testing.T) {
	alice := common.Address{1}
	signer := &fakeSigner{senderByNonce: map[uint64]common.Address{0: alice, 1: alice}}
	pool := New(signer)

	require.NoError(t, pool.Add(newTestTx(0, 1)))
	require.NoError(t, pool.Add(newTestTx(1, 1)))

	next, ok := pool.PendingNonce(alice)
	require.True(t, ok)
	require.Equal(t, uint64(2), next)
}
