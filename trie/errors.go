// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package trie

import (
	"errors"
	"fmt"
)

// ErrInvalidNode is returned when a node in the backing store decodes into
// a shape the trie does not recognize.
var ErrInvalidNode = errors.New("trie: invalid node encoding")

// MissingNodeError reports that a hash reference could not be resolved in
// the backing store; the block-processing pipeline treats this as the
// InconsistentStore error kind from spec.md §7 and halts the affected chain.
type MissingNodeError struct {
	NodeHash []byte
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("trie: missing node %x", e.NodeHash)
}

// ErrMissingNode constructs a MissingNodeError for hash.
func ErrMissingNode(hash []byte) error {
	return &MissingNodeError{NodeHash: hash}
}
