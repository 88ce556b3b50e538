// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package core

import (
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/rlp"
)

// marshalReceipt returns a receipt's canonical wire encoding: the raw
// RLP list [status, cumulativeGasUsed, bloom, logs] for a legacy
// receipt, or the EIP-2718 typed envelope for every other type,
// matching the transaction encoding it is paired with.
func marshalReceipt(r *types.Receipt) ([]byte, error) {
	logs := make([]interface{}, len(r.Logs))
	for i, log := range r.Logs {
		topics := make([]interface{}, len(log.Topics))
		for j, t := range log.Topics {
			topics[j] = t
		}
		logs[i] = []interface{}{log.Address, topics, log.Data}
	}
	fields := []interface{}{r.Status, r.CumulativeGasUsed, r.Bloom[:], logs}
	body, err := rlp.Encode(fields)
	if err != nil {
		return nil, err
	}
	if r.Type == types.LegacyTxType {
		return body, nil
	}
	return append([]byte{byte(r.Type)}, body...), nil
}
