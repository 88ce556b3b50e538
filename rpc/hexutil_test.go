// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package rpc

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUint64RoundTrip(t *testing.T) {
	orig := Uint64(21000)
	data, err := json.Marshal(orig)
	require.NoError(t, err)
	require.Equal(t, `"0x5208"`, string(data))

	var got Uint64
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, orig, got)
}

func TestUint64UnmarshalZero(t *testing.T) {
	var got Uint64
	require.NoError(t, json.Unmarshal([]byte(`"0x0"`), &got))
	require.Equal(t, Uint64(0), got)
}

func TestBigIntRoundTrip(t *testing.T) {
	orig := FromBigInt(big.NewInt(255))
	data, err := json.Marshal(orig)
	require.NoError(t, err)
	require.Equal(t, `"0xff"`, string(data))

	var got BigInt
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, big.NewInt(255), got.ToInt())
}

func TestBigIntNilIsZero(t *testing.T) {
	data, err := json.Marshal(FromBigInt(nil))
	require.NoError(t, err)
	require.Equal(t, `"0x0"`, string(data))
}

func TestBytesRoundTrip(t *testing.T) {
	orig := Bytes{0xde, 0xad, 0xbe, 0xef}
	data, err := json.Marshal(orig)
	require.NoError(t, err)
	require.Equal(t, `"0xdeadbeef"`, string(data))

	var got Bytes
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, orig, got)
}

func TestBytesUnmarshalOddLength(t *testing.T) {
	var got Bytes
	require.NoError(t, json.Unmarshal([]byte(`"0xabc"`), &got))
	require.Equal(t, Bytes{0x0a, 0xbc}, got)
}
