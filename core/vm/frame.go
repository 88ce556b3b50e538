// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package vm

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/lumenchain/lumen/common"
)

// FrameState is the call frame state machine from spec.md §4.1: Ready ->
// Executing -> (SubCall -> Executing)* -> one of {Returned, Reverted,
// Halted}.
type FrameState int

const (
	FrameReady FrameState = iota
	FrameExecuting
	FrameSubCall
	FrameReturned
	FrameReverted
	FrameHalted
)

var (
	// ErrOutOfGas is an exceptional halt: the frame's gas is fully
	// consumed and its journal rolled back.
	ErrOutOfGas = errors.New("vm: out of gas")
	// ErrStackUnderflow/ErrStackOverflow are exceptional halts from
	// violating the 1024-word stack bound.
	ErrStackUnderflow = errors.New("vm: stack underflow")
	ErrStackOverflow  = errors.New("vm: stack overflow")
	// ErrInvalidOpcode is an exceptional halt on an undefined opcode.
	ErrInvalidOpcode = errors.New("vm: invalid opcode")
	// ErrInvalidJump is an exceptional halt on a JUMP/JUMPI to a
	// non-JUMPDEST destination.
	ErrInvalidJump = errors.New("vm: invalid jump destination")
	// ErrWriteProtection is an exceptional halt from a state-mutating
	// opcode inside a STATICCALL.
	ErrWriteProtection = errors.New("vm: write protection")
	// ErrDepth is an exceptional halt from exceeding the 1024 call-depth
	// limit.
	ErrDepth = errors.New("vm: max call depth exceeded")
	// ErrInsufficientBalance signals a CALL/CREATE that would move more
	// value than the caller holds.
	ErrInsufficientBalance = errors.New("vm: insufficient balance")
	// ErrExecutionReverted is the REVERT opcode's outcome, distinct from
	// an exceptional halt: gas beyond what was consumed is still
	// refunded and the journal only rolls back, not the whole call.
	ErrExecutionReverted = errors.New("vm: execution reverted")
	// ErrContractCreationCollision signals a CREATE/CREATE2 landing on
	// an address that already has code or a nonzero nonce.
	ErrContractCreationCollision = errors.New("vm: contract creation collision")
	// ErrMaxInitcodeSizeExceeded is an exceptional halt on CREATE/CREATE2
	// when the initcode exceeds the EIP-3860 limit, and is also returned
	// when the deployed code exceeds MaxCodeSize (EIP-170).
	ErrMaxInitcodeSizeExceeded = errors.New("vm: max initcode size exceeded")
)

// maxCallDepth is the limit on nested call frames (spec.md §4.1).
const maxCallDepth = 1024

// Frame is one call's execution context: its own stack, memory, program
// counter, gas budget, return buffer, and set of touched storage slots
// (tracked by state.StateDB's access list, not duplicated here).
type Frame struct {
	state FrameState

	contract common.Address
	caller   common.Address
	value    *uint256.Int
	input    []byte
	code     []byte

	stack  *Stack
	memory *Memory
	pc     uint64
	gas    uint64

	returnData []byte
	ret        []byte // RETURN/REVERT output, the frame's final result
	static     bool    // true inside a STATICCALL subtree
	depth      int

	err error
}

func newFrame(contract, caller common.Address, value *uint256.Int, input, code []byte, gas uint64, static bool, depth int) *Frame {
	return &Frame{
		state:    FrameReady,
		contract: contract,
		caller:   caller,
		value:    value,
		input:    input,
		code:     code,
		stack:    newStack(),
		memory:   newMemory(),
		gas:      gas,
		static:   static,
		depth:    depth,
	}
}

// useGas deducts cost from the frame's remaining gas, returning
// ErrOutOfGas (and leaving the frame halted) if insufficient.
func (f *Frame) useGas(cost uint64) error {
	if f.gas < cost {
		f.gas = 0
		f.state = FrameHalted
		f.err = ErrOutOfGas
		return ErrOutOfGas
	}
	f.gas -= cost
	return nil
}

// childGas computes the gas forwarded to a sub-call: all of it if
// requested is less than what remains, otherwise capped at
// floor(63/64 * remaining) from Tangerine Whistle onward (spec.md §4.1).
func childGas(remaining, requested uint64) uint64 {
	capped := remaining - remaining/64
	if requested < capped {
		return requested
	}
	return capped
}
