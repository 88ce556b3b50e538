// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package state

import (
	"github.com/holiman/uint256"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/cryptoutil"
)

// stateObject is the in-memory working copy of one account: its account
// record plus any storage slots read or written so far this block, and
// the code if it has been loaded.
type stateObject struct {
	address common.Address
	data    types.Account

	code []byte // nil until first accessed

	// originStorage holds values read from the trie (or a parent
	// overlay); dirtyStorage holds values written this block that have
	// not yet been flushed into originStorage by a commit.
	originStorage map[common.Hash]common.Hash
	dirtyStorage  map[common.Hash]common.Hash

	// existedAtBatchStart supports the §4.2
	// AccountUpdate suppression rule: an account created and
	// self-destructed within the same batch must not leave a trie leaf.
	existedAtBatchStart bool

	selfDestructed bool
	created        bool // true if this object did not exist before this block
}

func newStateObject(addr common.Address, existed bool) *stateObject {
	return &stateObject{
		address:             addr,
		data:                *types.NewEmptyAccount(),
		originStorage:       make(map[common.Hash]common.Hash),
		dirtyStorage:        make(map[common.Hash]common.Hash),
		existedAtBatchStart: existed,
	}
}

func (o *stateObject) copy() *stateObject {
	cp := &stateObject{
		address:             o.address,
		data:                *o.data.Copy(),
		code:                o.code,
		originStorage:       make(map[common.Hash]common.Hash, len(o.originStorage)),
		dirtyStorage:        make(map[common.Hash]common.Hash, len(o.dirtyStorage)),
		existedAtBatchStart: o.existedAtBatchStart,
		selfDestructed:      o.selfDestructed,
		created:             o.created,
	}
	for k, v := range o.originStorage {
		cp.originStorage[k] = v
	}
	for k, v := range o.dirtyStorage {
		cp.dirtyStorage[k] = v
	}
	return cp
}

func (o *stateObject) empty() bool { return o.data.IsEmpty() }

func (o *stateObject) setBalance(amount *uint256.Int) { o.data.Balance = amount.Clone() }

func (o *stateObject) setNonce(nonce uint64) { o.data.Nonce = nonce }

func (o *stateObject) setCode(hash common.Hash, code []byte) {
	o.code = code
	o.data.CodeHash = hash
}

func (o *stateObject) setStorage(key, value common.Hash) {
	if o.dirtyStorage == nil {
		o.dirtyStorage = make(map[common.Hash]common.Hash)
	}
	o.dirtyStorage[key] = value
}

// getStorage returns a slot, preferring a dirty write this block over the
// value last read from the backing trie.
func (o *stateObject) getStorage(key common.Hash) (common.Hash, bool) {
	if v, ok := o.dirtyStorage[key]; ok {
		return v, true
	}
	if v, ok := o.originStorage[key]; ok {
		return v, true
	}
	return common.Hash{}, false
}

// codeHashOf computes the canonical code hash for code (empty code hashes
// to the well-known EmptyCodeHash constant, per spec.md §3.1).
func codeHashOf(code []byte) common.Hash {
	if len(code) == 0 {
		return cryptoutil.EmptyCodeHash
	}
	return cryptoutil.Keccak256(code)
}
