// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package types

import "github.com/lumenchain/lumen/common"

// Withdrawal is a validator withdrawal credited to an execution-layer
// account after all transactions in a Shanghai+ block have executed
// (spec.md §4.1's process_withdrawals).
type Withdrawal struct {
	Index          uint64
	ValidatorIndex uint64
	Address        common.Address
	AmountGwei     uint64
}

// Withdrawals is a list of withdrawals; its RLP root is committed in the
// header as WithdrawalsHash.
type Withdrawals []*Withdrawal
