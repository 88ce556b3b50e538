// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package state

import (
	"github.com/lumenchain/lumen/common"
)

// Commit applies every AccountUpdate to the account trie and each
// touched account's storage trie, writes contract code that changed, and
// returns the new state root along with every node the hot tier needs to
// durably record for this block (trie nodes only; code is written
// directly to the cold tier's code store since it is content-addressed
// and never part of the node graph).
func (s *StateDB) Commit(writeCode func(hash common.Hash, code []byte) error) (common.Hash, map[common.Hash][]byte, error) {
	nodes := make(map[common.Hash][]byte)

	for _, upd := range s.Updates() {
		if upd.Removed {
			if err := s.trie.Delete(upd.Address[:]); err != nil {
				return common.Hash{}, nil, err
			}
			delete(s.storageTries, upd.Address)
			continue
		}

		obj := s.objects[upd.Address]
		if obj.code != nil && obj.data.CodeHash != (common.Hash{}) {
			if err := writeCode(obj.data.CodeHash, obj.code); err != nil {
				return common.Hash{}, nil, err
			}
		}

		st := s.storageTrie(upd.Address)
		for k, v := range upd.AddedStorage {
			if err := st.Insert(k[:], v.Bytes()); err != nil {
				return common.Hash{}, nil, err
			}
		}
		for _, k := range upd.RemovedStorage {
			if err := st.Delete(k[:]); err != nil {
				return common.Hash{}, nil, err
			}
		}
		obj.data.Root = st.Root()
		for h, enc := range st.Nodes() {
			nodes[h] = enc
		}

		enc, err := obj.data.EncodeRLP()
		if err != nil {
			return common.Hash{}, nil, err
		}
		if err := s.trie.Insert(upd.Address[:], enc); err != nil {
			return common.Hash{}, nil, err
		}
	}

	root := s.trie.Root()
	for h, enc := range s.trie.Nodes() {
		nodes[h] = enc
	}
	return root, nodes, nil
}
