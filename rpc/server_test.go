// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package rpc

import (
	"errors"
	"testing"

	"github.com/lumenchain/lumen/lumenerr"
	"github.com/stretchr/testify/require"
)

func TestRewriteMethod(t *testing.T) {
	cases := map[string]string{
		"eth_getBalance":         "Eth.GetBalance",
		"eth_chainId":            "Eth.ChainId",
		"eth_sendRawTransaction": "Eth.SendRawTransaction",
		"engine_newPayloadV2":    "Engine.NewPayloadV2",
	}
	for in, want := range cases {
		got, err := rewriteMethod(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestRewriteMethodRejectsUnnamespaced(t *testing.T) {
	_, err := rewriteMethod("getBalance")
	require.Error(t, err)
}

func TestClassifyError(t *testing.T) {
	require.Equal(t, lumenerr.RPCCodeInvalidParams, ClassifyError(lumenerr.InvalidTransaction("bad nonce", nil)))
	require.Equal(t, lumenerr.RPCCodeInternalError, ClassifyError(lumenerr.InconsistentStore("missing header", nil)))
	require.Equal(t, lumenerr.RPCCodeInvalidParams, ClassifyError(errors.New("plain error")))
}
