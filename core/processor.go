// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package core

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/state"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/core/vm"
	"github.com/lumenchain/lumen/cryptoutil"
	"github.com/lumenchain/lumen/lumenerr"
)

// The flat per-transaction and per-access-list-entry intrinsic gas
// costs; kept here rather than in vm.GasSchedule since intrinsic gas is
// a pre-execution transaction-validity concern, not an opcode cost.
const (
	txGas                   = 21000
	txGasContractCreation   = 53000
	accessListAddressGas    = 2400
	accessListStorageKeyGas = 1900
)

// IntrinsicGas computes the gas a transaction must pay before a single
// opcode executes: the flat per-transaction cost, the calldata cost
// (EIP-2028 non-zero-byte discount), the EIP-2930 access-list cost, and
// (Shanghai+) the EIP-3860 initcode word cost.
func IntrinsicGas(tx *types.Transaction, fork vm.Fork, schedule vm.GasSchedule) (uint64, error) {
	var gas uint64
	if tx.IsCreate() {
		gas = txGasContractCreation
	} else {
		gas = txGas
	}

	if len(tx.Data) > 0 {
		var zeros, nonZeros uint64
		for _, b := range tx.Data {
			if b == 0 {
				zeros++
			} else {
				nonZeros++
			}
		}
		gas += zeros * 4
		gas += nonZeros * 16
	}

	for _, tuple := range tx.AccessList {
		gas += accessListAddressGas
		gas += uint64(len(tuple.StorageKeys)) * accessListStorageKeyGas
	}

	if tx.IsCreate() && fork >= vm.Shanghai {
		if schedule.MaxInitcodeSize != 0 && uint64(len(tx.Data)) > schedule.MaxInitcodeSize {
			return 0, lumenerr.InvalidTransaction("initcode exceeds max size", nil)
		}
		words := (uint64(len(tx.Data)) + 31) / 32
		gas += words * 2
	}
	return gas, nil
}

// ExecutionResult is the outcome of running one transaction.
type ExecutionResult struct {
	Receipt *types.Receipt
	GasUsed uint64
}

// ApplyTransaction runs tx against statedb under evm's block/fork
// context, producing its receipt and mutating statedb in place. It
// implements the execution driver's per-transaction step (spec.md
// §4.4): intrinsic gas check, balance/nonce checks, the call or create
// dispatch, refund settlement, and receipt construction.
func ApplyTransaction(evm *vm.EVM, statedb *state.StateDB, tx *types.Transaction, signer types.Signer, cumulativeGasUsed uint64, txIndex int) (*ExecutionResult, error) {
	sender, err := tx.Sender(signer)
	if err != nil {
		return nil, lumenerr.InvalidTransaction("cannot recover sender", err)
	}

	intrinsic, err := IntrinsicGas(tx, evm.Fork, evm.Gas)
	if err != nil {
		return nil, err
	}
	if tx.Gas < intrinsic {
		return nil, lumenerr.InvalidTransaction("gas limit below intrinsic gas", nil)
	}
	if statedb.GetNonce(sender) != tx.Nonce {
		return nil, lumenerr.InvalidTransaction("nonce mismatch", nil)
	}

	gasPrice := effectiveGasPrice(tx, evm.Block.BaseFee)
	upfrontCost := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(tx.Gas))
	upfrontCost.Add(upfrontCost, tx.Value.ToBig())
	upfrontU256, overflow := uint256.FromBig(upfrontCost)
	if overflow {
		return nil, lumenerr.InvalidTransaction("upfront cost overflows uint256", nil)
	}
	if statedb.GetBalance(sender).Lt(upfrontU256) {
		return nil, lumenerr.InvalidTransaction("insufficient balance for gas*price+value", nil)
	}

	price256, _ := uint256.FromBig(gasPrice)
	statedb.SubBalance(sender, new(uint256.Int).Mul(price256, uint256.NewInt(tx.Gas)))
	statedb.SetNonce(sender, tx.Nonce+1)

	evm.TxCtx = vm.TxContext{Origin: sender, GasPrice: gasPrice}
	prepareAccessList(evm, tx, sender)

	gasRemaining := tx.Gas - intrinsic
	var (
		vmErr   error
		gasLeft uint64
	)
	// Any failure below the top call frame is already unwound by evm.call/
	// evm.create against their own internal snapshot; a failed or reverted
	// transaction still consumes its gas and increments the sender's
	// nonce, so nothing further is reverted here.
	logsBefore := len(statedb.Logs())
	if tx.IsCreate() {
		_, _, gasLeft, vmErr = evm.Create(sender, tx.Data, gasRemaining, tx.Value)
	} else {
		_, gasLeft, vmErr = evm.Call(sender, *tx.To, tx.Data, gasRemaining, tx.Value)
	}

	gasUsed := tx.Gas - gasLeft
	refund := statedb.Refund()
	maxRefund := gasUsed / evm.Gas.MaxRefundQuotient
	if refund > maxRefund {
		refund = maxRefund
	}
	gasUsed -= refund
	gasLeft = tx.Gas - gasUsed

	statedb.AddBalance(sender, new(uint256.Int).Mul(price256, uint256.NewInt(gasLeft)))
	statedb.AddBalance(evm.Block.Coinbase, new(uint256.Int).Mul(minerTip(tx, evm.Block.BaseFee), uint256.NewInt(gasUsed)))

	receipt := &types.Receipt{
		Type:              tx.Type,
		TxHash:            tx.Hash(),
		GasUsed:           gasUsed,
		CumulativeGasUsed: cumulativeGasUsed + gasUsed,
		TransactionIndex:  uint(txIndex),
	}
	if vmErr == nil {
		receipt.Status = types.ReceiptStatusSuccessful
	} else {
		receipt.Status = types.ReceiptStatusFailed
	}
	if tx.IsCreate() && vmErr == nil {
		receipt.ContractAddress = cryptoutil.CreateAddress(sender, tx.Nonce)
	}
	receipt.Logs = statedb.Logs()[logsBefore:]
	for _, log := range receipt.Logs {
		log.TxHash = receipt.TxHash
		log.TxIndex = uint(txIndex)
	}
	receipt.Bloom = types.CreateBloom(receipt.Logs)

	return &ExecutionResult{Receipt: receipt, GasUsed: gasUsed}, nil
}

// effectiveGasPrice returns the per-gas price the sender actually pays:
// the legacy flat price pre-London, or base fee plus the capped tip for
// EIP-1559 transactions.
func effectiveGasPrice(tx *types.Transaction, baseFee *big.Int) *big.Int {
	if baseFee == nil {
		return new(big.Int).Set(tx.GasPrice)
	}
	tip := tx.EffectiveGasTipCap(baseFee)
	return new(big.Int).Add(baseFee, tip)
}

// minerTip returns the priority fee portion of the gas price, the part
// the coinbase actually earns under EIP-1559 (the base fee is burned).
func minerTip(tx *types.Transaction, baseFee *big.Int) *uint256.Int {
	if baseFee == nil {
		v, _ := uint256.FromBig(tx.GasPrice)
		return v
	}
	tip := tx.EffectiveGasTipCap(baseFee)
	v, _ := uint256.FromBig(tip)
	return v
}

// prepareAccessList warms the sender, the destination (or nil for
// contract creation), precompiles, and the transaction's declared
// EIP-2930 access list before execution begins.
func prepareAccessList(evm *vm.EVM, tx *types.Transaction, sender common.Address) {
	var dst *common.Address
	if !tx.IsCreate() {
		dst = tx.To
	}
	tuples := make([]state.AccessTupleLike, len(tx.AccessList))
	for i, t := range tx.AccessList {
		tuples[i] = t
	}
	evm.StateDB.PrepareAccessList(sender, dst, nil, tuples)
}
