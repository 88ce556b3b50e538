// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package core

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/state"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/cryptoutil"
	"github.com/lumenchain/lumen/triedb"
)

// GenesisAccount is one pre-funded account in a genesis allocation.
// Producing the allocation itself (from a genesis JSON file or a
// network's canonical genesis) is an external collaborator's concern;
// this package only knows how to commit an already-decided allocation
// as block 0.
type GenesisAccount struct {
	Balance *uint256.Int
	Nonce   uint64
	Code    []byte
	Storage map[common.Hash]common.Hash
}

// GenesisAlloc maps addresses to their starting balances and state.
type GenesisAlloc map[common.Address]GenesisAccount

// Genesis describes the block-0 header fields a network agrees on
// out of band, plus its initial account allocation.
type Genesis struct {
	Alloc      GenesisAlloc
	GasLimit   uint64
	Difficulty *big.Int
	ExtraData  []byte
	Timestamp  uint64
	BaseFee    *big.Int // non-nil only if the network starts post-London
}

// Commit builds the genesis state trie in db and returns the genesis
// block. It is the only point at which a block is ever accepted
// without a parent to validate against.
func (g *Genesis) Commit(db *triedb.Database) (*types.Block, error) {
	statedb := state.New(common.Hash{}, emptyReader{}, emptyCodeReader{})
	for addr, acc := range g.Alloc {
		statedb.CreateAccount(addr)
		if acc.Balance != nil {
			statedb.AddBalance(addr, acc.Balance)
		}
		if acc.Nonce != 0 {
			statedb.SetNonce(addr, acc.Nonce)
		}
		if len(acc.Code) > 0 {
			statedb.SetCode(addr, acc.Code)
		}
		for k, v := range acc.Storage {
			statedb.SetState(addr, k, v)
		}
	}

	root, nodes, err := statedb.Commit(db.WriteCode)
	if err != nil {
		return nil, err
	}

	header := &types.Header{
		ParentHash: common.Hash{},
		Root:       root,
		TxHash:     cryptoutil.EmptyRootHash,
		ReceiptHash: cryptoutil.EmptyRootHash,
		Difficulty: g.Difficulty,
		Number:     big.NewInt(0),
		GasLimit:   g.GasLimit,
		GasUsed:    0,
		Time:       g.Timestamp,
		Extra:      g.ExtraData,
		BaseFee:    g.BaseFee,
	}
	block := types.NewBlock(header, nil, nil, nil)

	if err := db.InsertHot(block.Hash(), common.Hash{}, nodes); err != nil {
		return nil, err
	}
	return block, nil
}

// emptyReader backs a StateDB with no prior state, appropriate only
// for building the genesis trie from nothing.
type emptyReader struct{}

func (emptyReader) Node(hash common.Hash) ([]byte, error) { return nil, nil }

type emptyCodeReader struct{}

func (emptyCodeReader) ReadCode(hash common.Hash) ([]byte, error) { return nil, nil }
