// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package state

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/lumenchain/lumen/common"
)

// slotKey identifies one storage slot within the access list: an address
// paired with the slot's key, since golang-set needs a comparable element
// type and Go maps can't key on (Address, Hash) tuples without a named
// struct.
type slotKey struct {
	address common.Address
	slot    common.Hash
}

// accessList tracks which addresses and storage slots have been touched
// during the current transaction, for EIP-2929/2930 cold/warm gas
// accounting: the first touch of an address or slot pays the cold cost
// and promotes the entry to warm.
type accessList struct {
	addresses mapset.Set[common.Address]
	slots     mapset.Set[slotKey]
}

func newAccessList() *accessList {
	return &accessList{
		addresses: mapset.NewThreadUnsafeSet[common.Address](),
		slots:     mapset.NewThreadUnsafeSet[slotKey](),
	}
}

// containsAddress reports whether addr is already warm.
func (al *accessList) containsAddress(addr common.Address) bool {
	return al.addresses.Contains(addr)
}

// containsSlot reports whether addr's slot is already warm. An account
// cannot have a warm slot without also being a warm address (SLOAD/SSTORE
// always warm the address alongside the slot), but callers may still ask
// about a slot on a cold address, which is simply false.
func (al *accessList) containsSlot(addr common.Address, slot common.Hash) bool {
	return al.slots.Contains(slotKey{addr, slot})
}

func (al *accessList) addAddress(addr common.Address) (added bool) {
	if al.addresses.Contains(addr) {
		return false
	}
	al.addresses.Add(addr)
	return true
}

func (al *accessList) addSlot(addr common.Address, slot common.Hash) (addrAdded, slotAdded bool) {
	addrAdded = al.addAddress(addr)
	key := slotKey{addr, slot}
	if al.slots.Contains(key) {
		return addrAdded, false
	}
	al.slots.Add(key)
	return addrAdded, true
}

func (al *accessList) removeAddress(addr common.Address) { al.addresses.Remove(addr) }

func (al *accessList) removeSlot(addr common.Address, slot common.Hash) {
	al.slots.Remove(slotKey{addr, slot})
}

// AddressInAccessList reports whether addr is warm.
func (s *StateDB) AddressInAccessList(addr common.Address) bool {
	return s.accessList.containsAddress(addr)
}

// SlotInAccessList reports whether addr and slot are both warm.
func (s *StateDB) SlotInAccessList(addr common.Address, slot common.Hash) (addressWarm, slotWarm bool) {
	return s.accessList.containsAddress(addr), s.accessList.containsSlot(addr, slot)
}

// SlotAlreadyWarm reports whether addr's slot has already been touched
// this transaction (SLOAD/SSTORE's cold/warm gas branch).
func (s *StateDB) SlotAlreadyWarm(addr common.Address, slot common.Hash) bool {
	return s.accessList.containsSlot(addr, slot)
}

// AddressAlreadyWarm reports whether addr has already been touched this
// transaction (CALL/BALANCE/EXTCODE*/SELFDESTRUCT's cold/warm branch).
func (s *StateDB) AddressAlreadyWarm(addr common.Address) bool {
	return s.accessList.containsAddress(addr)
}

// AddAddressToAccessList warms addr, journaling the change if this is
// its first touch this transaction.
func (s *StateDB) AddAddressToAccessList(addr common.Address) {
	if s.accessList.addAddress(addr) {
		s.journal.append(accessListAddAccountChange{address: addr})
	}
}

// AddSlotToAccessList warms addr's slot (and addr itself, if not already
// warm).
func (s *StateDB) AddSlotToAccessList(addr common.Address, slot common.Hash) {
	addrAdded, slotAdded := s.accessList.addSlot(addr, slot)
	if addrAdded {
		s.journal.append(accessListAddAccountChange{address: addr})
	}
	if slotAdded {
		s.journal.append(accessListAddSlotChange{address: addr, slot: slot})
	}
}

// PrepareAccessList pre-warms the transaction sender, destination (if
// any), precompiles, and the EIP-2930 access list, per Berlin's
// transaction-start warming rules.
func (s *StateDB) PrepareAccessList(sender common.Address, dst *common.Address, precompiles []common.Address, list []AccessTupleLike) {
	s.accessList.addAddress(sender)
	if dst != nil {
		s.accessList.addAddress(*dst)
	}
	for _, p := range precompiles {
		s.accessList.addAddress(p)
	}
	for _, tuple := range list {
		s.accessList.addAddress(tuple.Addr())
		for _, key := range tuple.Keys() {
			s.accessList.addSlot(tuple.Addr(), key)
		}
	}
}

// AccessTupleLike is the minimal view of an EIP-2930 access tuple that
// PrepareAccessList needs, satisfied by core/types.AccessTuple without
// this package importing core/types' wider Transaction machinery.
type AccessTupleLike interface {
	Addr() common.Address
	Keys() []common.Hash
}
