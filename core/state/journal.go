// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package state

import (
	"github.com/holiman/uint256"

	"github.com/lumenchain/lumen/common"
)

// journalEntry is a single undoable mutation recorded against a StateDB,
// one per call frame's nested set of changes (spec.md §4.1 frame
// finalization: "on revert the journal is rolled back").
type journalEntry interface {
	revert(s *StateDB)
}

// journal is a call frame's ordered list of mutations. Reverting replays
// the list backwards; merging into the parent just appends it, since a
// parent's journal must be able to undo everything a successful child did
// if the parent itself later reverts.
type journal struct {
	entries []journalEntry
}

func newJournal() *journal { return &journal{} }

func (j *journal) append(e journalEntry) { j.entries = append(j.entries, e) }

// snapshot returns a revert index usable with revertTo.
func (j *journal) snapshot() int { return len(j.entries) }

// revertTo undoes every entry recorded since snapshot, in reverse order.
func (j *journal) revertTo(s *StateDB, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i].revert(s)
	}
	j.entries = j.entries[:snapshot]
}

// mergeInto appends all of j's entries onto parent's, promoting a
// completed child frame's journal onto its parent's (spec.md §4.1: "on
// success the frame's journal is promoted to its parent").
func (j *journal) mergeInto(parent *journal) {
	parent.entries = append(parent.entries, j.entries...)
}

type (
	createObjectChange struct {
		address common.Address
	}
	balanceChange struct {
		address common.Address
		prev    *uint256.Int
	}
	nonceChange struct {
		address common.Address
		prev    uint64
	}
	codeChange struct {
		address        common.Address
		prevCode       []byte
		prevCodeHash   common.Hash
	}
	storageChange struct {
		address  common.Address
		key      common.Hash
		prevalue common.Hash
	}
	refundChange struct {
		prev uint64
	}
	suicideChange struct {
		address     common.Address
		prev        bool // whether account had already self-destructed
		prevBalance *uint256.Int
	}
	touchChange struct {
		address common.Address
	}
	accessListAddAccountChange struct {
		address common.Address
	}
	accessListAddSlotChange struct {
		address common.Address
		slot    common.Hash
	}
	transientStorageChange struct {
		address  common.Address
		key      common.Hash
		prevalue common.Hash
	}
	addLogChange struct{}
)

func (ch createObjectChange) revert(s *StateDB) {
	delete(s.objects, ch.address)
	delete(s.objectsDirty, ch.address)
}

func (ch balanceChange) revert(s *StateDB) {
	s.getOrNewObject(ch.address).setBalance(ch.prev)
}

func (ch nonceChange) revert(s *StateDB) {
	s.getOrNewObject(ch.address).setNonce(ch.prev)
}

func (ch codeChange) revert(s *StateDB) {
	obj := s.getOrNewObject(ch.address)
	obj.code = ch.prevCode
	obj.data.CodeHash = ch.prevCodeHash
}

func (ch storageChange) revert(s *StateDB) {
	s.getOrNewObject(ch.address).setStorage(ch.key, ch.prevalue)
}

func (ch refundChange) revert(s *StateDB) { s.refund = ch.prev }

func (ch suicideChange) revert(s *StateDB) {
	obj := s.getOrNewObject(ch.address)
	obj.selfDestructed = ch.prev
	obj.setBalance(ch.prevBalance)
}

func (ch touchChange) revert(s *StateDB) {}

func (ch accessListAddAccountChange) revert(s *StateDB) {
	s.accessList.removeAddress(ch.address)
}

func (ch accessListAddSlotChange) revert(s *StateDB) {
	s.accessList.removeSlot(ch.address, ch.slot)
}

func (ch transientStorageChange) revert(s *StateDB) {
	s.setTransientState(ch.address, ch.key, ch.prevalue)
}

// addLogChange undoes one AddLog call; reverting a call frame must
// discard the logs it emitted along with its state mutations.
func (ch addLogChange) revert(s *StateDB) {
	s.logs = s.logs[:len(s.logs)-1]
}
