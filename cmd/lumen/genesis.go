// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/holiman/uint256"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core"
	"github.com/lumenchain/lumen/rpc"
)

// genesisAccountJSON is one entry of a genesis file's "alloc" object;
// the wire format matches the one core/genesis.Genesis.Commit consumes
// once decoded, reusing rpc's quantity/byte-slice hex codecs rather
// than hand-rolling a second hex parser for the same job.
type genesisAccountJSON struct {
	Balance *rpc.BigInt                 `json:"balance"`
	Nonce   rpc.Uint64                  `json:"nonce"`
	Code    rpc.Bytes                   `json:"code"`
	Storage map[common.Hash]common.Hash `json:"storage"`
}

type genesisJSON struct {
	GasLimit   rpc.Uint64                            `json:"gasLimit"`
	Difficulty *rpc.BigInt                            `json:"difficulty"`
	Timestamp  rpc.Uint64                             `json:"timestamp"`
	ExtraData  rpc.Bytes                              `json:"extraData"`
	BaseFee    *rpc.BigInt                             `json:"baseFee,omitempty"`
	Alloc      map[common.Address]genesisAccountJSON `json:"alloc"`
}

// loadGenesis reads path and decodes it into a core.Genesis ready for
// Genesis.Commit. Producing this file in the first place (from a
// network's canonical allocation) is an external collaborator's
// concern; this only knows how to decode one already handed to it.
func loadGenesis(path string) (*core.Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lumen: read genesis file: %w", err)
	}
	var g genesisJSON
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("lumen: parse genesis file: %w", err)
	}

	alloc := make(core.GenesisAlloc, len(g.Alloc))
	for addr, acc := range g.Alloc {
		var balance *uint256.Int
		if acc.Balance != nil {
			var overflow bool
			balance, overflow = uint256.FromBig(acc.Balance.ToInt())
			if overflow {
				return nil, fmt.Errorf("lumen: genesis balance for %s overflows 256 bits", addr.String())
			}
		}
		alloc[addr] = core.GenesisAccount{
			Balance: balance,
			Nonce:   uint64(acc.Nonce),
			Code:    acc.Code,
			Storage: acc.Storage,
		}
	}

	diff := big.NewInt(0)
	if g.Difficulty != nil {
		diff = g.Difficulty.ToInt()
	}
	var baseFee *big.Int
	if g.BaseFee != nil {
		baseFee = g.BaseFee.ToInt()
	}

	return &core.Genesis{
		Alloc:      alloc,
		GasLimit:   uint64(g.GasLimit),
		Difficulty: diff,
		ExtraData:  g.ExtraData,
		Timestamp:  uint64(g.Timestamp),
		BaseFee:    baseFee,
	}, nil
}
