// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package state

import (
	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/types"
)

// AccountUpdate is the batch-commit record spec.md §4.2 defines:
// { address, removed, info, added_storage, removed_storage }. The engine
// suppresses emitting one for an account that did not exist at the start
// of the batch, is empty at the end, and was only touched transiently.
type AccountUpdate struct {
	Address       common.Address
	Removed       bool
	Info          *types.Account // nil when Removed
	AddedStorage  map[common.Hash]common.Hash
	RemovedStorage []common.Hash
}

// Updates computes the set of AccountUpdate records for every address
// touched since the StateDB was opened, applying the §4.2 suppression
// rule: an address that did not exist at batch start, is empty now, and
// whose only storage activity was removal (i.e. it never durably added a
// slot) is dropped entirely rather than emitted as a removal.
func (s *StateDB) Updates() []AccountUpdate {
	var out []AccountUpdate
	for addr, obj := range s.objects {
		existedAtStart := s.initialExistence[addr]

		if obj.selfDestructed || obj.empty() {
			removedStorage := removedKeys(obj)
			if !existedAtStart && len(obj.dirtyStorage) == len(removedStorage) {
				// Created and emptied within the same batch with no
				// surviving storage: leaves no trace, per §4.2.
				continue
			}
			out = append(out, AccountUpdate{
				Address:        addr,
				Removed:        true,
				RemovedStorage: removedStorage,
			})
			continue
		}

		added := make(map[common.Hash]common.Hash)
		var removed []common.Hash
		for k, v := range obj.dirtyStorage {
			if v == (common.Hash{}) {
				removed = append(removed, k)
			} else {
				added[k] = v
			}
		}
		out = append(out, AccountUpdate{
			Address:        addr,
			Info:           obj.data.Copy(),
			AddedStorage:   added,
			RemovedStorage: removed,
		})
	}
	return out
}

func removedKeys(obj *stateObject) []common.Hash {
	var out []common.Hash
	for k, v := range obj.dirtyStorage {
		if v == (common.Hash{}) {
			out = append(out, k)
		}
	}
	return out
}
