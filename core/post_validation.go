// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package core

import (
	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/core/vm"
	"github.com/lumenchain/lumen/lumenerr"
)

// ValidatePostState recomputes every root a block commits to and
// compares it against the values the header claims, implementing
// spec.md §4.4's post-execution validation: state root, transactions
// root, receipts root, logs bloom, and (Prague+) the requests hash.
// BlockAccessListHash (Amsterdam+, REDESIGN FLAG) is intentionally not
// checked: no component in this tree yet produces a block access list.
func ValidatePostState(block *types.Block, receipts []*types.Receipt, stateRoot common.Hash, fork vm.Fork) error {
	header := block.Header()

	if header.Root != stateRoot {
		return lumenerr.InvalidBlock("state root mismatch", nil)
	}

	txRoot, err := DeriveTransactionsRoot(block.Transactions())
	if err != nil {
		return lumenerr.InvalidBlock("failed deriving transactions root", err)
	}
	if header.TxHash != txRoot {
		return lumenerr.InvalidBlock("transactions root mismatch", nil)
	}

	receiptsRoot, err := DeriveReceiptsRoot(receipts)
	if err != nil {
		return lumenerr.InvalidBlock("failed deriving receipts root", err)
	}
	if header.ReceiptHash != receiptsRoot {
		return lumenerr.InvalidBlock("receipts root mismatch", nil)
	}

	var bloom types.Bloom
	for _, r := range receipts {
		bloom.OrBloom(r.Bloom)
	}
	if header.Bloom != bloom {
		return lumenerr.InvalidBlock("logs bloom mismatch", nil)
	}

	if fork >= vm.Shanghai {
		withdrawalsRoot, err := DeriveWithdrawalsRoot(block.Withdrawals())
		if err != nil {
			return lumenerr.InvalidBlock("failed deriving withdrawals root", err)
		}
		if header.WithdrawalsHash == nil || *header.WithdrawalsHash != withdrawalsRoot {
			return lumenerr.InvalidBlock("withdrawals root mismatch", nil)
		}
	}

	if fork >= vm.Prague {
		requestsHash := DeriveRequestsHash(block.Requests())
		if header.RequestsHash == nil || *header.RequestsHash != requestsHash {
			return lumenerr.InvalidBlock("requests hash mismatch", nil)
		}
	}

	return nil
}
