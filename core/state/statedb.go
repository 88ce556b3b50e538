// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package state implements the per-block working view of account and
// storage state used by the EVM executor (spec.md §4.1, §4.2): a journal
// of undoable mutations scoped to call frames, an access list for
// EIP-2929 cold/warm gas accounting, and the batch-commit suppression
// rule for ephemeral accounts.
package state

import (
	"github.com/holiman/uint256"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/cryptoutil"
	"github.com/lumenchain/lumen/trie"
)

// CodeReader resolves contract code by its keccak hash, the read half of
// the triedb cold-tier code store.
type CodeReader interface {
	ReadCode(hash common.Hash) ([]byte, error)
}

// StateDB is one block's (or one call frame's, via snapshots) view over
// the account trie. Account objects are loaded lazily and cached for the
// lifetime of the StateDB.
type StateDB struct {
	trie   *trie.Trie
	reader trie.NodeReader
	code   CodeReader

	objects      map[common.Address]*stateObject
	objectsDirty map[common.Address]struct{}

	// storageTries caches per-account storage tries, keyed by address,
	// lazily opened against the account's stored root.
	storageTries map[common.Address]*trie.Trie

	journal *journal
	refund  uint64

	accessList *accessList

	transientStorage map[common.Address]map[common.Hash]common.Hash

	// initialExistence records, for the suppression rule in Updates,
	// whether each touched address existed before this batch began.
	initialExistence map[common.Address]bool

	logs []*types.Log
}

// New opens a StateDB at root, resolving unknown nodes through reader and
// code through codeReader.
func New(root common.Hash, reader trie.NodeReader, codeReader CodeReader) *StateDB {
	return &StateDB{
		trie:             trie.New(root, reader),
		reader:           reader,
		code:             codeReader,
		objects:          make(map[common.Address]*stateObject),
		objectsDirty:     make(map[common.Address]struct{}),
		storageTries:     make(map[common.Address]*trie.Trie),
		journal:          newJournal(),
		accessList:       newAccessList(),
		transientStorage: make(map[common.Address]map[common.Hash]common.Hash),
		initialExistence: make(map[common.Address]bool),
	}
}

// Snapshot returns an index that RevertToSnapshot can roll the journal
// back to; used at every call-frame boundary (spec.md §4.1).
func (s *StateDB) Snapshot() int { return s.journal.snapshot() }

// RevertToSnapshot undoes every mutation recorded since snapshot.
func (s *StateDB) RevertToSnapshot(snapshot int) { s.journal.revertTo(s, snapshot) }

func (s *StateDB) getObject(addr common.Address) *stateObject {
	if obj, ok := s.objects[addr]; ok {
		return obj
	}
	enc, err := s.trie.Get(addr[:])
	if err != nil || enc == nil {
		s.noteInitialExistence(addr, false)
		return nil
	}
	acct, err := types.DecodeRLPAccount(enc)
	if err != nil {
		return nil
	}
	obj := newStateObject(addr, true)
	obj.data = *acct
	s.objects[addr] = obj
	s.noteInitialExistence(addr, true)
	return obj
}

func (s *StateDB) noteInitialExistence(addr common.Address, existed bool) {
	if _, seen := s.initialExistence[addr]; !seen {
		s.initialExistence[addr] = existed
	}
}

// getOrNewObject returns addr's object, creating an empty one (and
// journaling the creation) if it does not yet exist.
func (s *StateDB) getOrNewObject(addr common.Address) *stateObject {
	if obj := s.getObject(addr); obj != nil {
		return obj
	}
	s.journal.append(createObjectChange{address: addr})
	obj := newStateObject(addr, false)
	obj.created = true
	s.objects[addr] = obj
	s.objectsDirty[addr] = struct{}{}
	return obj
}

// Exist reports whether addr has any state (account record present).
func (s *StateDB) Exist(addr common.Address) bool { return s.getObject(addr) != nil }

// Empty reports whether addr is "empty" in the EIP-161 sense.
func (s *StateDB) Empty(addr common.Address) bool {
	obj := s.getObject(addr)
	return obj == nil || obj.empty()
}

// GetBalance returns addr's wei balance, or zero if it has none.
func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	if obj := s.getObject(addr); obj != nil {
		return obj.data.Balance.Clone()
	}
	return uint256.NewInt(0)
}

// AddBalance credits amount to addr's balance.
func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int) {
	obj := s.getOrNewObject(addr)
	s.journal.append(balanceChange{address: addr, prev: obj.data.Balance.Clone()})
	obj.setBalance(new(uint256.Int).Add(obj.data.Balance, amount))
}

// SubBalance debits amount from addr's balance. The caller is responsible
// for checking sufficiency beforehand; this never errors.
func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int) {
	obj := s.getOrNewObject(addr)
	s.journal.append(balanceChange{address: addr, prev: obj.data.Balance.Clone()})
	obj.setBalance(new(uint256.Int).Sub(obj.data.Balance, amount))
}

// GetNonce returns addr's nonce.
func (s *StateDB) GetNonce(addr common.Address) uint64 {
	if obj := s.getObject(addr); obj != nil {
		return obj.data.Nonce
	}
	return 0
}

// SetNonce sets addr's nonce.
func (s *StateDB) SetNonce(addr common.Address, nonce uint64) {
	obj := s.getOrNewObject(addr)
	s.journal.append(nonceChange{address: addr, prev: obj.data.Nonce})
	obj.setNonce(nonce)
}

// GetCodeHash returns addr's code hash, or the zero hash if the account
// does not exist.
func (s *StateDB) GetCodeHash(addr common.Address) common.Hash {
	if obj := s.getObject(addr); obj != nil {
		return obj.data.CodeHash
	}
	return common.Hash{}
}

// GetCode returns addr's contract code, loading it from the code store on
// first access.
func (s *StateDB) GetCode(addr common.Address) []byte {
	obj := s.getObject(addr)
	if obj == nil || obj.data.CodeHash == (common.Hash{}) || obj.data.CodeHash == cryptoutil.EmptyCodeHash {
		return nil
	}
	if obj.code != nil {
		return obj.code
	}
	code, err := s.code.ReadCode(obj.data.CodeHash)
	if err != nil {
		return nil
	}
	obj.code = code
	return code
}

// SetCode installs code on addr, recomputing its code hash.
func (s *StateDB) SetCode(addr common.Address, code []byte) {
	hash := codeHashOf(code)
	obj := s.getOrNewObject(addr)
	s.journal.append(codeChange{address: addr, prevCode: obj.code, prevCodeHash: obj.data.CodeHash})
	obj.setCode(hash, code)
}

func (s *StateDB) storageTrie(addr common.Address) *trie.Trie {
	if t, ok := s.storageTries[addr]; ok {
		return t
	}
	obj := s.getObject(addr)
	var root common.Hash
	if obj != nil {
		root = obj.data.Root
	}
	t := trie.New(root, s.reader)
	s.storageTries[addr] = t
	return t
}

// GetState returns the storage slot at key for addr, falling through to
// the per-account storage trie when not cached.
func (s *StateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	obj := s.getObject(addr)
	if obj == nil {
		return common.Hash{}
	}
	if v, ok := obj.getStorage(key); ok {
		return v
	}
	enc, err := s.storageTrie(addr).Get(key[:])
	if err != nil || enc == nil {
		obj.originStorage[key] = common.Hash{}
		return common.Hash{}
	}
	v := common.BytesToHash(enc)
	obj.originStorage[key] = v
	return v
}

// SetState writes value to addr's storage at key.
func (s *StateDB) SetState(addr common.Address, key, value common.Hash) {
	prev := s.GetState(addr, key)
	if prev == value {
		return
	}
	obj := s.getOrNewObject(addr)
	s.journal.append(storageChange{address: addr, key: key, prevalue: prev})
	obj.setStorage(key, value)
}

// GetTransientState returns addr's EIP-1153 transient storage at key,
// which does not persist past the transaction.
func (s *StateDB) GetTransientState(addr common.Address, key common.Hash) common.Hash {
	if m, ok := s.transientStorage[addr]; ok {
		return m[key]
	}
	return common.Hash{}
}

// SetTransientState writes addr's transient storage at key, journaling
// the previous value for frame-scoped revert.
func (s *StateDB) SetTransientState(addr common.Address, key, value common.Hash) {
	prev := s.GetTransientState(addr, key)
	if prev == value {
		return
	}
	s.journal.append(transientStorageChange{address: addr, key: key, prevalue: prev})
	s.setTransientState(addr, key, value)
}

func (s *StateDB) setTransientState(addr common.Address, key, value common.Hash) {
	m, ok := s.transientStorage[addr]
	if !ok {
		m = make(map[common.Hash]common.Hash)
		s.transientStorage[addr] = m
	}
	m[key] = value
}

// SelfDestruct marks addr for removal at the end of the transaction,
// zeroing its balance (credited to the caller by the EVM before this is
// called) and journaling the prior state for revert.
func (s *StateDB) SelfDestruct(addr common.Address) {
	obj := s.getObject(addr)
	if obj == nil {
		return
	}
	s.journal.append(suicideChange{address: addr, prev: obj.selfDestructed, prevBalance: obj.data.Balance.Clone()})
	obj.selfDestructed = true
	obj.setBalance(uint256.NewInt(0))
}

// HasSelfDestructed reports whether addr was marked for removal.
func (s *StateDB) HasSelfDestructed(addr common.Address) bool {
	obj := s.getObject(addr)
	return obj != nil && obj.selfDestructed
}

// CreateAccount ensures addr has an account object, for CREATE/CREATE2.
func (s *StateDB) CreateAccount(addr common.Address) { s.getOrNewObject(addr) }

// AddRefund increments the gas refund counter (spec.md §4.1 SSTORE
// refunds, capped by EIP-3529 at finalization time, not here).
func (s *StateDB) AddRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	s.refund += gas
}

// SubRefund decrements the gas refund counter; it is a programming error
// to subtract more than has been added, mirroring the teacher's
// stack/assertion-style panics for invariant violations.
func (s *StateDB) SubRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	if gas > s.refund {
		panic("state: refund counter below zero")
	}
	s.refund -= gas
}

// Refund returns the current gas refund counter.
func (s *StateDB) Refund() uint64 { return s.refund }

// AddLog appends a log entry emitted by the LOG opcodes, journaling it
// so a reverted call frame discards the logs it emitted.
func (s *StateDB) AddLog(log *types.Log) {
	s.journal.append(addLogChange{})
	s.logs = append(s.logs, log)
}

// Logs returns every log recorded so far.
func (s *StateDB) Logs() []*types.Log { return s.logs }
