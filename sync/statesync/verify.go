// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package statesync

import (
	"bytes"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/lumenerr"
	"github.com/lumenchain/lumen/trie"
)

// RangeEntry is one (key, encoded value) pair in an account or storage
// range response, ordered by key. The account trie and every storage
// trie in this tree key their leaves directly by address or slot
// rather than by a secure (keccak-hashed) key, so a range's keys are
// exactly the addresses or storage slots it covers.
type RangeEntry struct {
	Key  common.Hash
	Body []byte
}

// VerifyRange checks one account- or storage-range response against
// root: every entry must fall within [start, end] and the sequence
// must be strictly increasing, and the first and last entries (or, for
// an empty range, start itself) must be provable against root from
// proof. This is the boundary check spec.md §4.5 describes: the proof
// establishes the range's edges are genuine, the ordering and bounds
// checks establish nothing in between was omitted or reordered.
func VerifyRange(root common.Hash, start, end common.Hash, entries []RangeEntry, proof [][]byte) error {
	for i, e := range entries {
		if bytes.Compare(e.Key[:], start[:]) < 0 || bytes.Compare(e.Key[:], end[:]) > 0 {
			return lumenerr.PeerError("", "range entry outside requested bounds", nil)
		}
		if i > 0 && bytes.Compare(e.Key[:], entries[i-1].Key[:]) <= 0 {
			return lumenerr.PeerError("", "range entries not strictly increasing", nil)
		}
	}

	if len(entries) == 0 {
		if _, err := trie.VerifyProof(root, start[:], proof); err != nil {
			return lumenerr.PeerError("", "empty range boundary proof invalid", err)
		}
		return nil
	}

	first, last := entries[0], entries[len(entries)-1]
	if err := verifyBoundary(root, first, proof); err != nil {
		return err
	}
	if first.Key != last.Key {
		if err := verifyBoundary(root, last, proof); err != nil {
			return err
		}
	}
	return nil
}

func verifyBoundary(root common.Hash, e RangeEntry, proof [][]byte) error {
	got, err := trie.VerifyProof(root, e.Key[:], proof)
	if err != nil {
		return lumenerr.PeerError("", "range boundary proof invalid", err)
	}
	if got != nil && !bytes.Equal(got, e.Body) {
		return lumenerr.PeerError("", "range boundary value mismatch", nil)
	}
	return nil
}
