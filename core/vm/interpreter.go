// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package vm

import (
	"errors"

	"github.com/lumenchain/lumen/common"
)

// errStop is an internal sentinel used by STOP/RETURN/SELFDESTRUCT to
// unwind the dispatch loop without being treated as an exceptional halt;
// Interpreter.run translates it back into nil before returning.
var errStop = errors.New("vm: stop")

// Interpreter drives one call frame's fetch-decode-execute loop against
// the fork-parameterized dispatch table.
type Interpreter struct {
	evm *EVM

	jumped    bool // set by JUMP/JUMPI to suppress the implicit pc++
	pushWidth int  // set by PUSHn so run() advances pc past the immediate
}

// run executes frame.code from pc 0 until it returns, reverts, or halts,
// implementing the fetch/charge/validate/execute/advance loop from
// spec.md §4.1.
func (interp *Interpreter) run(f *Frame) ([]byte, error) {
	f.state = FrameExecuting
	for {
		if f.pc >= uint64(len(f.code)) {
			f.state = FrameReturned
			return nil, nil
		}
		op := opCode(f.code[f.pc])
		fn := dispatchTable[op]
		if fn == nil {
			f.state = FrameHalted
			f.gas = 0
			return nil, ErrInvalidOpcode
		}

		interp.jumped = false
		interp.pushWidth = 0

		if err := interp.chargeStatic(f, op); err != nil {
			return nil, err
		}

		err := fn(interp, f)
		if err != nil {
			if err == errStop {
				switch f.state {
				case FrameReturned:
					return f.ret, nil
				case FrameReverted:
					return f.ret, ErrExecutionReverted
				default:
					return nil, nil
				}
			}
			f.state = FrameHalted
			f.gas = 0
			return nil, err
		}
		if f.stack.len() > stackLimit {
			f.state = FrameHalted
			f.gas = 0
			return nil, ErrStackOverflow
		}

		switch {
		case interp.jumped:
			// pc already repositioned by doJump.
		case interp.pushWidth > 0:
			f.pc += uint64(1 + interp.pushWidth)
		default:
			f.pc++
		}
	}
}

// chargeStatic charges each opcode's fixed base gas cost; opcodes with
// additional dynamic costs (memory expansion, cold access, SSTORE,
// LOG data, EXP) charge the remainder themselves before completing.
func (interp *Interpreter) chargeStatic(f *Frame, op opCode) error {
	return f.useGas(baseGasCost(op))
}

// baseGasCost returns an opcode's fixed cost before any dynamic
// surcharge, following the yellow paper's tier system (a representative
// approximation covering the opcode subset this interpreter implements).
func baseGasCost(op opCode) uint64 {
	switch op {
	case opStop, opReturn, opRevert, opInvalid, opSelfdestruct:
		return 0
	case opAdd, opSub, opLt, opGt, opEq, opIsZero, opAnd, opOr, opXor, opNot, opPop, opPC, opMSize, opGas, opJumpDest:
		return 3
	case opMul, opDiv, opMod:
		return 5
	case opAddress, opCaller, opCallValue, opCallDataSize, opCodeSize, opGasPrice, opCoinbase, opTimestamp,
		opNumber, opGasLimit, opChainID, opSelfBalance, opBaseFee, opReturnDataSize:
		return 2
	case opMLoad, opMStore, opMStore8, opCallDataLoad, opJump:
		return 3
	case opJumpI:
		return 10
	case opSha3:
		return 0 // charged dynamically in opSha3Fn
	case opBalance, opExtCodeSize:
		return 0 // charged dynamically via chargeAccountAccess
	case opBlockHash:
		return 20
	case opCallDataCopy, opReturnDataCopy:
		return 3 // plus per-word copy and memory expansion in their exec functions
	case opSLoad, opSStore:
		return 0 // charged dynamically per EIP-2929
	case opExp:
		return 10 // plus per-byte surcharge in opExpFn
	case opCreate, opCreate2, opCall, opDelegateCall, opStaticCall:
		return 0 // charged dynamically (child gas + access surcharge)
	default:
		switch {
		case op >= opPush1 && op <= opPush32:
			return 3
		case op >= opDup1 && op <= opDup16:
			return 3
		case op >= opSwap1 && op <= opSwap16:
			return 3
		case op >= opLog0 && op <= opLog4:
			return 0 // charged dynamically in makeLog
		}
		return 0
	}
}

// chargeAccountAccess charges the EIP-2929 cold/warm surcharge for
// touching addr (BALANCE, EXTCODE*, the CALL family, SELFDESTRUCT), and
// promotes addr to warm for the rest of the transaction.
func (interp *Interpreter) chargeAccountAccess(f *Frame, addr common.Address) error {
	if interp.evm.Gas.ColdAccountAccess == 0 {
		return nil // pre-Berlin: no cold/warm distinction
	}
	if interp.evm.StateDB.AddressAlreadyWarm(addr) {
		return f.useGas(interp.evm.Gas.WarmStorageRead)
	}
	interp.evm.StateDB.AddAddressToAccessList(addr)
	return f.useGas(interp.evm.Gas.ColdAccountAccess)
}
