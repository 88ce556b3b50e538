// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package vm implements the EVM executor (spec.md §4.1): a call-frame
// state machine over a fork-parameterized opcode dispatch table, with
// gas accounting (including the 63/64 sub-call forwarding rule and
// Berlin's cold/warm access-list surcharges) delegated to GasSchedule and
// state mutation delegated to core/state.StateDB.
package vm

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/state"
	"github.com/lumenchain/lumen/cryptoutil"
)

// BlockContext carries the block-level values opcodes like NUMBER,
// TIMESTAMP, and COINBASE read; it is constant for every transaction in a
// block.
type BlockContext struct {
	Coinbase    common.Address
	GasLimit    uint64
	BlockNumber uint64
	Time        uint64
	Difficulty  *big.Int // pre-Merge
	Random      common.Hash // post-Merge PREVRANDAO
	BaseFee     *big.Int    // nil pre-London

	// GetHash resolves a recent block's hash for the BLOCKHASH opcode,
	// which can only see the 256 most recent ancestors.
	GetHash func(blockNumber uint64) common.Hash
}

// TxContext carries the per-transaction values ORIGIN and GASPRICE read.
type TxContext struct {
	Origin   common.Address
	GasPrice *big.Int
}

// EVM is the executor for one transaction (or one top-level call within a
// system invocation), dispatching nested calls through the frame state
// machine.
type EVM struct {
	StateDB *state.StateDB
	Block   BlockContext
	TxCtx   TxContext
	ChainID *big.Int
	Fork    Fork
	Gas     GasSchedule

	depth int

	// precompiles maps an address to its native implementation; absent
	// from the representative opcode subset's concern but wired here so
	// CALL-family dispatch has a single lookup point once precompiles
	// are registered.
	precompiles map[common.Address]PrecompiledContract
}

// PrecompiledContract is a native contract invoked by address instead of
// interpreted bytecode.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

// NewEVM constructs an executor for a block/transaction context.
func NewEVM(statedb *state.StateDB, block BlockContext, txCtx TxContext, chainID *big.Int, fork Fork) *EVM {
	return &EVM{
		StateDB:     statedb,
		Block:       block,
		TxCtx:       txCtx,
		ChainID:     chainID,
		Fork:        fork,
		Gas:         scheduleForFork(fork),
		precompiles: make(map[common.Address]PrecompiledContract),
	}
}

// SetPrecompile registers a native contract at addr.
func (evm *EVM) SetPrecompile(addr common.Address, c PrecompiledContract) {
	evm.precompiles[addr] = c
}

// Call executes the code at `to` as a message call from `caller`,
// forwarding gas and moving value, returning the call's output and
// remaining gas.
func (evm *EVM) Call(caller common.Address, to common.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	return evm.call(caller, to, input, gas, value, false, false)
}

// StaticCall executes `to` without permitting any state mutation.
func (evm *EVM) StaticCall(caller common.Address, to common.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	return evm.call(caller, to, input, gas, uint256.NewInt(0), true, false)
}

// DelegateCall executes `to`'s code in the caller's own storage context
// (the code address and the storage/value address differ).
func (evm *EVM) DelegateCall(caller common.Address, codeAddr common.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	return evm.call(caller, codeAddr, input, gas, nil, false, true)
}

func (evm *EVM) call(caller, to common.Address, input []byte, gas uint64, value *uint256.Int, static, delegate bool) ([]byte, uint64, error) {
	if evm.depth > maxCallDepth {
		return nil, gas, ErrDepth
	}
	if value != nil && !value.IsZero() {
		if evm.StateDB.GetBalance(caller).Lt(value) {
			return nil, gas, ErrInsufficientBalance
		}
	}
	if pc, ok := evm.precompiles[to]; ok {
		return evm.runPrecompile(pc, input, gas)
	}

	snapshot := evm.StateDB.Snapshot()
	if value != nil && !value.IsZero() {
		evm.StateDB.SubBalance(caller, value)
		evm.StateDB.AddBalance(to, value)
	}

	code := evm.StateDB.GetCode(to)
	contractAddr, callerForFrame, frameValue := to, caller, value
	if delegate {
		// Code executes with `to`'s bytecode but caller's own address,
		// caller, and value context (EIP-7 DELEGATECALL semantics).
		contractAddr = caller
	}

	evm.depth++
	frame := newFrame(contractAddr, callerForFrame, frameValue, input, code, gas, static, evm.depth)
	interp := &Interpreter{evm: evm}
	ret, err := interp.run(frame)
	evm.depth--

	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err == ErrExecutionReverted {
			return ret, frame.gas, err
		}
		return nil, frame.gas, err
	}
	return ret, frame.gas, nil
}

func (evm *EVM) runPrecompile(pc PrecompiledContract, input []byte, gas uint64) ([]byte, uint64, error) {
	cost := pc.RequiredGas(input)
	if gas < cost {
		return nil, 0, ErrOutOfGas
	}
	out, err := pc.Run(input)
	return out, gas - cost, err
}

// Create deploys new contract code returned by running initcode as a
// creation frame, deriving the new address via CREATE's nonce-based
// formula.
func (evm *EVM) Create(caller common.Address, initcode []byte, gas uint64, value *uint256.Int) (common.Address, []byte, uint64, error) {
	nonce := evm.StateDB.GetNonce(caller)
	addr := cryptoutil.CreateAddress(caller, nonce)
	return evm.create(caller, addr, initcode, gas, value)
}

// Create2 deploys new contract code at the deterministic EIP-1014
// address derived from caller, salt, and the initcode hash.
func (evm *EVM) Create2(caller common.Address, initcode []byte, gas uint64, value *uint256.Int, salt [32]byte) (common.Address, []byte, uint64, error) {
	codeHash := cryptoutil.Keccak256(initcode)
	addr := cryptoutil.CreateAddress2(caller, salt, codeHash)
	return evm.create(caller, addr, initcode, gas, value)
}

func (evm *EVM) create(caller, addr common.Address, initcode []byte, gas uint64, value *uint256.Int) (common.Address, []byte, uint64, error) {
	if evm.Gas.MaxInitcodeSize != 0 && uint64(len(initcode)) > evm.Gas.MaxInitcodeSize {
		return common.Address{}, nil, gas, ErrMaxInitcodeSizeExceeded
	}
	if evm.depth > maxCallDepth {
		return common.Address{}, nil, gas, ErrDepth
	}
	if !value.IsZero() && evm.StateDB.GetBalance(caller).Lt(value) {
		return common.Address{}, nil, gas, ErrInsufficientBalance
	}
	if evm.StateDB.GetNonce(addr) != 0 || len(evm.StateDB.GetCode(addr)) != 0 {
		return common.Address{}, nil, gas, ErrContractCreationCollision
	}

	snapshot := evm.StateDB.Snapshot()
	evm.StateDB.CreateAccount(addr)
	evm.StateDB.SetNonce(addr, 1)
	evm.StateDB.SubBalance(caller, value)
	evm.StateDB.AddBalance(addr, value)

	evm.depth++
	frame := newFrame(addr, caller, value, nil, initcode, gas, false, evm.depth)
	interp := &Interpreter{evm: evm}
	ret, err := interp.run(frame)
	evm.depth--

	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		return common.Address{}, ret, frame.gas, err
	}

	createCost := uint64(len(ret)) * evm.Gas.CreateDataByte
	if evm.Gas.MaxCodeSize != 0 && uint64(len(ret)) > evm.Gas.MaxCodeSize {
		evm.StateDB.RevertToSnapshot(snapshot)
		return common.Address{}, nil, frame.gas, ErrMaxInitcodeSizeExceeded
	}
	if frame.gas < createCost {
		evm.StateDB.RevertToSnapshot(snapshot)
		return common.Address{}, nil, 0, ErrOutOfGas
	}
	frame.gas -= createCost
	evm.StateDB.SetCode(addr, ret)
	return addr, ret, frame.gas, nil
}
