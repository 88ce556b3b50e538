// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package core drives a block through validation, execution, and commit
// (spec.md §4.4): the pre-execution header checks, the per-transaction
// execution driver, post-execution root/bloom verification, fork-choice
// reorg handling, and the pending-block pool for out-of-order arrivals.
package core

import (
	"math/big"

	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/core/vm"
	"github.com/lumenchain/lumen/lumenerr"
)

// gasLimitBoundDivisor sets the 1/1024 gas-limit adjustment band
// enforced between consecutive headers.
const gasLimitBoundDivisor = 1024

// ValidateHeader checks header against its parent per spec.md §4.4's
// pre-execution validation: parent linkage, monotonic timestamp, gas
// limit elasticity, the base-fee formula (London+), and the
// fork-conditional field presence rules.
func ValidateHeader(header, parent *types.Header, fork vm.Fork) error {
	if header.ParentHash != parent.Hash() {
		return lumenerr.InvalidHeader("parent hash mismatch", nil)
	}
	if header.Number == nil || parent.Number == nil || header.Number.Cmp(new(big.Int).Add(parent.Number, big.NewInt(1))) != 0 {
		return lumenerr.InvalidHeader("number is not parent+1", nil)
	}
	if header.Time <= parent.Time {
		return lumenerr.InvalidHeader("timestamp not strictly increasing", nil)
	}
	if err := validateGasLimit(header, parent); err != nil {
		return err
	}
	if fork >= vm.London {
		if header.BaseFee == nil {
			return lumenerr.InvalidHeader("missing base fee post-London", nil)
		}
		want := nextBaseFee(parent, fork)
		if header.BaseFee.Cmp(want) != 0 {
			return lumenerr.InvalidHeader("base fee does not match formula", nil)
		}
	}
	if fork >= vm.Shanghai && header.WithdrawalsHash == nil {
		return lumenerr.InvalidHeader("missing withdrawals hash post-Shanghai", nil)
	}
	if fork >= vm.Cancun {
		if header.ParentBeaconBlockRoot == nil {
			return lumenerr.InvalidHeader("missing parent beacon block root post-Cancun", nil)
		}
		if header.BlobGasUsed == nil || header.ExcessBlobGas == nil {
			return lumenerr.InvalidHeader("missing blob gas accounting post-Cancun", nil)
		}
	}
	if fork >= vm.Prague && header.RequestsHash == nil {
		return lumenerr.InvalidHeader("missing requests hash post-Prague", nil)
	}
	return nil
}

// validateGasLimit enforces the gas-limit elasticity band: the gas limit
// must move by strictly less than parent.GasLimit/1024 per block.
func validateGasLimit(header, parent *types.Header) error {
	diff := int64(header.GasLimit) - int64(parent.GasLimit)
	if diff < 0 {
		diff = -diff
	}
	limit := parent.GasLimit / gasLimitBoundDivisor
	if uint64(diff) >= limit {
		return lumenerr.InvalidHeader("gas limit outside elasticity band", nil)
	}
	if header.GasLimit < 5000 {
		return lumenerr.InvalidHeader("gas limit below minimum", nil)
	}
	return nil
}

// nextBaseFee computes the EIP-1559 base fee for a block following
// parent, given parent's gas usage relative to its target (half its gas
// limit).
func nextBaseFee(parent *types.Header, fork vm.Fork) *big.Int {
	if fork < vm.London || parent.BaseFee == nil {
		return big.NewInt(0)
	}
	parentGasTarget := parent.GasLimit / 2
	if parent.GasUsed == parentGasTarget {
		return new(big.Int).Set(parent.BaseFee)
	}

	const baseFeeMaxChangeDenominator = 8
	if parent.GasUsed > parentGasTarget {
		gasUsedDelta := parent.GasUsed - parentGasTarget
		x := new(big.Int).Mul(parent.BaseFee, big.NewInt(int64(gasUsedDelta)))
		y := x.Div(x, big.NewInt(int64(parentGasTarget)))
		baseFeeDelta := y.Div(y, big.NewInt(baseFeeMaxChangeDenominator))
		if baseFeeDelta.Sign() == 0 {
			baseFeeDelta = big.NewInt(1)
		}
		return new(big.Int).Add(parent.BaseFee, baseFeeDelta)
	}
	gasUsedDelta := parentGasTarget - parent.GasUsed
	x := new(big.Int).Mul(parent.BaseFee, big.NewInt(int64(gasUsedDelta)))
	y := x.Div(x, big.NewInt(int64(parentGasTarget)))
	baseFeeDelta := y.Div(y, big.NewInt(baseFeeMaxChangeDenominator))
	next := new(big.Int).Sub(parent.BaseFee, baseFeeDelta)
	if next.Sign() < 0 {
		return big.NewInt(0)
	}
	return next
}
