// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package rlp

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

type innerStruct struct {
	A uint64
	B []byte
}

type outerStruct struct {
	Name    string
	Amount  *big.Int
	Balance *uint256.Int
	Flag    bool
	Hash    [4]byte
	Items   []uint64
	Inner   innerStruct
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := outerStruct{
		Name:    "hello",
		Amount:  big.NewInt(123456789),
		Balance: uint256.NewInt(42),
		Flag:    true,
		Hash:    [4]byte{1, 2, 3, 4},
		Items:   []uint64{1, 2, 3},
		Inner:   innerStruct{A: 7, B: []byte("payload")},
	}

	enc, err := Encode(in)
	require.NoError(t, err)

	var out outerStruct
	require.NoError(t, DecodeInto(enc, &out))

	require.Equal(t, in.Name, out.Name)
	require.Equal(t, 0, in.Amount.Cmp(out.Amount))
	require.True(t, in.Balance.Eq(out.Balance))
	require.Equal(t, in.Flag, out.Flag)
	require.Equal(t, in.Hash, out.Hash)
	require.Equal(t, in.Items, out.Items)
	require.Equal(t, in.Inner, out.Inner)
}

func TestDecodeIntoRejectsNonPointer(t *testing.T) {
	var out outerStruct
	err := DecodeInto([]byte{0xc0}, out)
	require.Error(t, err)
}

func TestEncodeDecodeEmptyList(t *testing.T) {
	type listOnly struct {
		Values []uint64
	}
	in := listOnly{}
	enc, err := Encode(in)
	require.NoError(t, err)

	var out listOnly
	require.NoError(t, DecodeInto(enc, &out))
	require.Empty(t, out.Values)
}
