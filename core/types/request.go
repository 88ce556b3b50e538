// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package types

// RequestType tags the Prague+ consensus-layer-bound request union
// (spec.md §3.5, §4.4).
type RequestType byte

const (
	DepositRequestType RequestType = iota
	WithdrawalRequestType
	ConsolidationRequestType
)

// Request is one typed entry of a block's requests list; Data carries the
// type-specific ABI-packed payload produced by the corresponding system
// contract call during requests extraction.
type Request struct {
	Type RequestType
	Data []byte
}

// Requests is a block's full requests list, in type order (deposits before
// withdrawals before consolidations), whose EIP-7685 sha256 commitment
// (core.DeriveRequestsHash) is stored in the header as RequestsHash.
type Requests []*Request
