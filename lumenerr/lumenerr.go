// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package lumenerr defines the typed error kinds used across the core
// (spec.md §7): consensus rejections, store inconsistency, peer
// misbehavior, timeouts, and storage I/O failures, each carrying enough
// context for its boundary layer (RPC, P2P, CLI) to react appropriately
// without leaking internal detail to remote parties.
package lumenerr

import "fmt"

// Kind classifies an error for the purposes of deciding whether it is
// fatal to a block, fatal to the node, or retryable.
type Kind int

const (
	KindInvalidBlock Kind = iota
	KindInvalidTransaction
	KindInvalidHeader
	KindInconsistentStore
	KindPeerError
	KindTimeout
	KindStorageIO
	KindStorageCorruption
)

func (k Kind) String() string {
	switch k {
	case KindInvalidBlock:
		return "invalid_block"
	case KindInvalidTransaction:
		return "invalid_transaction"
	case KindInvalidHeader:
		return "invalid_header"
	case KindInconsistentStore:
		return "inconsistent_store"
	case KindPeerError:
		return "peer_error"
	case KindTimeout:
		return "timeout"
	case KindStorageIO:
		return "storage_io"
	case KindStorageCorruption:
		return "storage_corruption"
	default:
		return "unknown"
	}
}

// Error is the typed error value returned by fallible core operations.
// Boundary layers switch on Kind to decide: skip-and-continue
// (InvalidBlock/Transaction/Header), halt the chain (InconsistentStore,
// StorageCorruption), retry with backoff (Timeout, StorageIO), or score
// down and retry against another peer (PeerError).
type Error struct {
	Kind   Kind
	Reason string
	PeerID string // set only for KindPeerError
	cause  error
}

func (e *Error) Error() string {
	if e.PeerID != "" {
		return fmt.Sprintf("%s: %s (peer %s)", e.Kind, e.Reason, e.PeerID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.cause }

// Fatal reports whether an error of this kind halts the affected chain
// rather than being skippable or retryable.
func (e *Error) Fatal() bool {
	return e.Kind == KindInconsistentStore || e.Kind == KindStorageCorruption
}

// Retryable reports whether the operation that produced this error
// should be retried, possibly against a different peer.
func (e *Error) Retryable() bool {
	return e.Kind == KindPeerError || e.Kind == KindTimeout || e.Kind == KindStorageIO
}

func newErr(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, cause: cause}
}

func InvalidBlock(reason string, cause error) *Error       { return newErr(KindInvalidBlock, reason, cause) }
func InvalidTransaction(reason string, cause error) *Error { return newErr(KindInvalidTransaction, reason, cause) }
func InvalidHeader(reason string, cause error) *Error      { return newErr(KindInvalidHeader, reason, cause) }
func InconsistentStore(reason string, cause error) *Error  { return newErr(KindInconsistentStore, reason, cause) }
func Timeout(reason string, cause error) *Error            { return newErr(KindTimeout, reason, cause) }
func StorageIO(reason string, cause error) *Error           { return newErr(KindStorageIO, reason, cause) }
func StorageCorruption(reason string, cause error) *Error   { return newErr(KindStorageCorruption, reason, cause) }

// PeerError reports a remote peer's protocol misbehavior, for the score-
// down-and-retry handling described in spec.md §7.
func PeerError(peerID, reason string, cause error) *Error {
	e := newErr(KindPeerError, reason, cause)
	e.PeerID = peerID
	return e
}

// JSON-RPC error codes surfaced at the RPC boundary (spec.md §7).
const (
	RPCCodeInvalidRequest = -32600
	RPCCodeInvalidParams  = -32602
	RPCCodeInternalError  = -32603
)

// CLI exit codes (spec.md §7).
const (
	ExitClean           = 0
	ExitConfigError     = 1
	ExitUnrecoverable   = 2
)
