// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package rpc

import (
	"errors"

	"github.com/lumenchain/lumen/lumenerr"
)

// ClassifyError maps a core error into the JSON-RPC error code
// (spec.md §7) its HTTP status and log line should reflect. Errors
// that are not a *lumenerr.Error (malformed request decoding, mostly)
// are treated as invalid params; the codec's own default error
// handling covers anything this function doesn't see.
func ClassifyError(err error) int {
	var e *lumenerr.Error
	if !errors.As(err, &e) {
		return lumenerr.RPCCodeInvalidParams
	}
	switch e.Kind {
	case lumenerr.KindInvalidTransaction, lumenerr.KindInvalidHeader, lumenerr.KindInvalidBlock:
		return lumenerr.RPCCodeInvalidParams
	case lumenerr.KindInconsistentStore, lumenerr.KindStorageCorruption, lumenerr.KindStorageIO:
		return lumenerr.RPCCodeInternalError
	default:
		return lumenerr.RPCCodeInvalidRequest
	}
}
