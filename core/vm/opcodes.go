// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package vm

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/cryptoutil"
)

type opCode byte

// A representative, not exhaustive, opcode subset: enough of each
// category (arithmetic, comparison, bitwise, environment, block,
// storage, control flow, memory, stack, logging, and the CALL/CREATE
// family) to exercise every path through the frame state machine and gas
// schedule described in spec.md §4.1.
const (
	opStop opCode = 0x00
	opAdd  opCode = 0x01
	opMul  opCode = 0x02
	opSub  opCode = 0x03
	opDiv  opCode = 0x04
	opMod  opCode = 0x06
	opExp  opCode = 0x0a

	opLt     opCode = 0x10
	opGt     opCode = 0x11
	opEq     opCode = 0x14
	opIsZero opCode = 0x15
	opAnd    opCode = 0x16
	opOr     opCode = 0x17
	opXor    opCode = 0x18
	opNot    opCode = 0x19

	opSha3 opCode = 0x20

	opAddress        opCode = 0x30
	opBalance        opCode = 0x31
	opCaller         opCode = 0x33
	opCallValue      opCode = 0x34
	opCallDataLoad   opCode = 0x35
	opCallDataSize   opCode = 0x36
	opCallDataCopy   opCode = 0x37
	opCodeSize       opCode = 0x38
	opGasPrice       opCode = 0x3a
	opExtCodeSize    opCode = 0x3b
	opReturnDataSize opCode = 0x3d
	opReturnDataCopy opCode = 0x3e

	opBlockHash opCode = 0x40
	opCoinbase  opCode = 0x41
	opTimestamp opCode = 0x42
	opNumber    opCode = 0x43
	opGasLimit  opCode = 0x45
	opChainID   opCode = 0x46
	opSelfBalance opCode = 0x47
	opBaseFee   opCode = 0x48

	opPop      opCode = 0x50
	opMLoad    opCode = 0x51
	opMStore   opCode = 0x52
	opMStore8  opCode = 0x53
	opSLoad    opCode = 0x54
	opSStore   opCode = 0x55
	opJump     opCode = 0x56
	opJumpI    opCode = 0x57
	opPC       opCode = 0x58
	opMSize    opCode = 0x59
	opGas      opCode = 0x5a
	opJumpDest opCode = 0x5b

	opPush1  opCode = 0x60
	opPush32 opCode = 0x7f
	opDup1   opCode = 0x80
	opDup16  opCode = 0x8f
	opSwap1  opCode = 0x90
	opSwap16 opCode = 0x9f

	opLog0 opCode = 0xa0
	opLog4 opCode = 0xa4

	opCreate       opCode = 0xf0
	opCall         opCode = 0xf1
	opReturn       opCode = 0xf3
	opDelegateCall opCode = 0xf4
	opCreate2      opCode = 0xf5
	opStaticCall   opCode = 0xfa
	opRevert       opCode = 0xfd
	opInvalid      opCode = 0xfe
	opSelfdestruct opCode = 0xff
)

type execFunc func(interp *Interpreter, f *Frame) error

var dispatchTable [256]execFunc

func init() {
	dispatchTable[opStop] = opStopFn
	dispatchTable[opAdd] = arith(func(a, b *uint256.Int) uint256.Int { return *new(uint256.Int).Add(a, b) })
	dispatchTable[opMul] = arith(func(a, b *uint256.Int) uint256.Int { return *new(uint256.Int).Mul(a, b) })
	dispatchTable[opSub] = arith(func(a, b *uint256.Int) uint256.Int { return *new(uint256.Int).Sub(a, b) })
	dispatchTable[opDiv] = arith(func(a, b *uint256.Int) uint256.Int {
		if b.IsZero() {
			return *new(uint256.Int)
		}
		return *new(uint256.Int).Div(a, b)
	})
	dispatchTable[opMod] = arith(func(a, b *uint256.Int) uint256.Int {
		if b.IsZero() {
			return *new(uint256.Int)
		}
		return *new(uint256.Int).Mod(a, b)
	})
	dispatchTable[opExp] = opExpFn

	dispatchTable[opLt] = arith(func(a, b *uint256.Int) uint256.Int {
		if a.Lt(b) {
			return *uint256.NewInt(1)
		}
		return *new(uint256.Int)
	})
	dispatchTable[opGt] = arith(func(a, b *uint256.Int) uint256.Int {
		if a.Gt(b) {
			return *uint256.NewInt(1)
		}
		return *new(uint256.Int)
	})
	dispatchTable[opEq] = arith(func(a, b *uint256.Int) uint256.Int {
		if a.Eq(b) {
			return *uint256.NewInt(1)
		}
		return *new(uint256.Int)
	})
	dispatchTable[opIsZero] = unary(func(a *uint256.Int) uint256.Int {
		if a.IsZero() {
			return *uint256.NewInt(1)
		}
		return *new(uint256.Int)
	})
	dispatchTable[opAnd] = arith(func(a, b *uint256.Int) uint256.Int { return *new(uint256.Int).And(a, b) })
	dispatchTable[opOr] = arith(func(a, b *uint256.Int) uint256.Int { return *new(uint256.Int).Or(a, b) })
	dispatchTable[opXor] = arith(func(a, b *uint256.Int) uint256.Int { return *new(uint256.Int).Xor(a, b) })
	dispatchTable[opNot] = unary(func(a *uint256.Int) uint256.Int { return *new(uint256.Int).Not(a) })

	dispatchTable[opSha3] = opSha3Fn

	dispatchTable[opAddress] = opAddressFn
	dispatchTable[opBalance] = opBalanceFn
	dispatchTable[opCaller] = opCallerFn
	dispatchTable[opCallValue] = opCallValueFn
	dispatchTable[opCallDataLoad] = opCallDataLoadFn
	dispatchTable[opCallDataSize] = opCallDataSizeFn
	dispatchTable[opCallDataCopy] = opCallDataCopyFn
	dispatchTable[opCodeSize] = opCodeSizeFn
	dispatchTable[opGasPrice] = opGasPriceFn
	dispatchTable[opExtCodeSize] = opExtCodeSizeFn
	dispatchTable[opReturnDataSize] = opReturnDataSizeFn
	dispatchTable[opReturnDataCopy] = opReturnDataCopyFn

	dispatchTable[opBlockHash] = opBlockHashFn
	dispatchTable[opCoinbase] = opCoinbaseFn
	dispatchTable[opTimestamp] = opTimestampFn
	dispatchTable[opNumber] = opNumberFn
	dispatchTable[opGasLimit] = opGasLimitFn
	dispatchTable[opChainID] = opChainIDFn
	dispatchTable[opSelfBalance] = opSelfBalanceFn
	dispatchTable[opBaseFee] = opBaseFeeFn

	dispatchTable[opPop] = opPopFn
	dispatchTable[opMLoad] = opMLoadFn
	dispatchTable[opMStore] = opMStoreFn
	dispatchTable[opMStore8] = opMStore8Fn
	dispatchTable[opSLoad] = opSLoadFn
	dispatchTable[opSStore] = opSStoreFn
	dispatchTable[opJump] = opJumpFn
	dispatchTable[opJumpI] = opJumpIFn
	dispatchTable[opPC] = opPCFn
	dispatchTable[opMSize] = opMSizeFn
	dispatchTable[opGas] = opGasFn
	dispatchTable[opJumpDest] = opNoopFn

	for i := 0; i < 32; i++ {
		n := i + 1
		dispatchTable[int(opPush1)+i] = makePush(n)
	}
	for i := 0; i < 16; i++ {
		n := i + 1
		dispatchTable[int(opDup1)+i] = makeDup(n)
		dispatchTable[int(opSwap1)+i] = makeSwap(n)
	}
	for i := 0; i < 5; i++ {
		n := i
		dispatchTable[int(opLog0)+i] = makeLog(n)
	}

	dispatchTable[opCreate] = opCreateFn
	dispatchTable[opCall] = opCallFn
	dispatchTable[opReturn] = opReturnFn
	dispatchTable[opDelegateCall] = opDelegateCallFn
	dispatchTable[opCreate2] = opCreate2Fn
	dispatchTable[opStaticCall] = opStaticCallFn
	dispatchTable[opRevert] = opRevertFn
	dispatchTable[opInvalid] = opInvalidFn
	dispatchTable[opSelfdestruct] = opSelfdestructFn
}

func arith(fn func(a, b *uint256.Int) uint256.Int) execFunc {
	return func(interp *Interpreter, f *Frame) error {
		if f.stack.len() < 2 {
			return ErrStackUnderflow
		}
		b := f.stack.pop()
		a := f.stack.pop()
		res := fn(&a, &b)
		f.stack.push(&res)
		return nil
	}
}

func unary(fn func(a *uint256.Int) uint256.Int) execFunc {
	return func(interp *Interpreter, f *Frame) error {
		if f.stack.len() < 1 {
			return ErrStackUnderflow
		}
		a := f.stack.pop()
		res := fn(&a)
		f.stack.push(&res)
		return nil
	}
}

func opStopFn(interp *Interpreter, f *Frame) error {
	f.state = FrameReturned
	return errStop
}

func opNoopFn(interp *Interpreter, f *Frame) error { return nil }

func opExpFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 2 {
		return ErrStackUnderflow
	}
	exp := f.stack.pop()
	base := f.stack.pop()
	byteLen := (exp.BitLen() + 7) / 8
	if err := f.useGas(uint64(byteLen) * interp.evm.Gas.ExpByte); err != nil {
		return err
	}
	res := new(uint256.Int).Exp(&base, &exp)
	f.stack.push(res)
	return nil
}

func opSha3Fn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 2 {
		return ErrStackUnderflow
	}
	offset := f.stack.pop()
	size := f.stack.pop()
	if err := chargeMemory(f, offset.Uint64(), size.Uint64()); err != nil {
		return err
	}
	words := memoryWords(size.Uint64())
	if err := f.useGas(30 + 6*words); err != nil {
		return err
	}
	data := f.memory.Get(offset.Uint64(), size.Uint64())
	h := cryptoutil.Keccak256(data)
	res := new(uint256.Int).SetBytes(h[:])
	f.stack.push(res)
	return nil
}

func chargeMemory(f *Frame, offset, size uint64) error {
	if size == 0 {
		return nil
	}
	newSize := offset + size
	cost := memoryExpansionCost(uint64(f.memory.Len()), newSize)
	if err := f.useGas(cost); err != nil {
		return err
	}
	f.memory.Resize(newSize)
	return nil
}

func opAddressFn(interp *Interpreter, f *Frame) error {
	v := new(uint256.Int).SetBytes(f.contract[:])
	f.stack.push(v)
	return nil
}

func opBalanceFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 1 {
		return ErrStackUnderflow
	}
	a := f.stack.pop()
	addr := common.BytesToAddress(a.Bytes())
	if err := interp.chargeAccountAccess(f, addr); err != nil {
		return err
	}
	bal := interp.evm.StateDB.GetBalance(addr)
	f.stack.push(bal)
	return nil
}

func opCallerFn(interp *Interpreter, f *Frame) error {
	v := new(uint256.Int).SetBytes(f.caller[:])
	f.stack.push(v)
	return nil
}

func opCallValueFn(interp *Interpreter, f *Frame) error {
	if f.value == nil {
		f.stack.push(new(uint256.Int))
		return nil
	}
	f.stack.push(f.value)
	return nil
}

func opCallDataLoadFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 1 {
		return ErrStackUnderflow
	}
	off := f.stack.pop()
	offset := off.Uint64()
	buf := make([]byte, 32)
	if offset < uint64(len(f.input)) {
		copy(buf, f.input[offset:])
	}
	v := new(uint256.Int).SetBytes(buf)
	f.stack.push(v)
	return nil
}

func opCallDataSizeFn(interp *Interpreter, f *Frame) error {
	f.stack.push(uint256.NewInt(uint64(len(f.input))))
	return nil
}

func opCallDataCopyFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 3 {
		return ErrStackUnderflow
	}
	destOffset := f.stack.pop()
	offset := f.stack.pop()
	size := f.stack.pop()
	if err := chargeMemory(f, destOffset.Uint64(), size.Uint64()); err != nil {
		return err
	}
	words := memoryWords(size.Uint64())
	if err := f.useGas(3 * words); err != nil {
		return err
	}
	data := getSlice(f.input, offset.Uint64(), size.Uint64())
	f.memory.Set(destOffset.Uint64(), size.Uint64(), data)
	return nil
}

func getSlice(src []byte, offset, size uint64) []byte {
	out := make([]byte, size)
	if offset >= uint64(len(src)) {
		return out
	}
	end := offset + size
	if end > uint64(len(src)) {
		end = uint64(len(src))
	}
	copy(out, src[offset:end])
	return out
}

func opCodeSizeFn(interp *Interpreter, f *Frame) error {
	f.stack.push(uint256.NewInt(uint64(len(f.code))))
	return nil
}

func opGasPriceFn(interp *Interpreter, f *Frame) error {
	v := new(uint256.Int)
	if interp.evm.TxCtx.GasPrice != nil {
		v.SetFromBig(interp.evm.TxCtx.GasPrice)
	}
	f.stack.push(v)
	return nil
}

func opExtCodeSizeFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 1 {
		return ErrStackUnderflow
	}
	a := f.stack.pop()
	addr := common.BytesToAddress(a.Bytes())
	if err := interp.chargeAccountAccess(f, addr); err != nil {
		return err
	}
	code := interp.evm.StateDB.GetCode(addr)
	f.stack.push(uint256.NewInt(uint64(len(code))))
	return nil
}

func opReturnDataSizeFn(interp *Interpreter, f *Frame) error {
	f.stack.push(uint256.NewInt(uint64(len(f.returnData))))
	return nil
}

func opReturnDataCopyFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 3 {
		return ErrStackUnderflow
	}
	destOffset := f.stack.pop()
	offset := f.stack.pop()
	size := f.stack.pop()
	if err := chargeMemory(f, destOffset.Uint64(), size.Uint64()); err != nil {
		return err
	}
	words := memoryWords(size.Uint64())
	if err := f.useGas(3 * words); err != nil {
		return err
	}
	data := getSlice(f.returnData, offset.Uint64(), size.Uint64())
	f.memory.Set(destOffset.Uint64(), size.Uint64(), data)
	return nil
}

func opBlockHashFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 1 {
		return ErrStackUnderflow
	}
	n := f.stack.pop()
	if interp.evm.Block.GetHash == nil {
		f.stack.push(new(uint256.Int))
		return nil
	}
	h := interp.evm.Block.GetHash(n.Uint64())
	f.stack.push(new(uint256.Int).SetBytes(h[:]))
	return nil
}

func opCoinbaseFn(interp *Interpreter, f *Frame) error {
	f.stack.push(new(uint256.Int).SetBytes(interp.evm.Block.Coinbase[:]))
	return nil
}

func opTimestampFn(interp *Interpreter, f *Frame) error {
	f.stack.push(uint256.NewInt(interp.evm.Block.Time))
	return nil
}

func opNumberFn(interp *Interpreter, f *Frame) error {
	f.stack.push(uint256.NewInt(interp.evm.Block.BlockNumber))
	return nil
}

func opGasLimitFn(interp *Interpreter, f *Frame) error {
	f.stack.push(uint256.NewInt(interp.evm.Block.GasLimit))
	return nil
}

func opChainIDFn(interp *Interpreter, f *Frame) error {
	v := new(uint256.Int)
	if interp.evm.ChainID != nil {
		v.SetFromBig(interp.evm.ChainID)
	}
	f.stack.push(v)
	return nil
}

func opSelfBalanceFn(interp *Interpreter, f *Frame) error {
	f.stack.push(interp.evm.StateDB.GetBalance(f.contract))
	return nil
}

func opBaseFeeFn(interp *Interpreter, f *Frame) error {
	v := new(uint256.Int)
	if interp.evm.Block.BaseFee != nil {
		v.SetFromBig(interp.evm.Block.BaseFee)
	}
	f.stack.push(v)
	return nil
}

func opPopFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 1 {
		return ErrStackUnderflow
	}
	f.stack.pop()
	return nil
}

func opMLoadFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 1 {
		return ErrStackUnderflow
	}
	off := f.stack.pop()
	if err := chargeMemory(f, off.Uint64(), 32); err != nil {
		return err
	}
	v := new(uint256.Int).SetBytes(f.memory.Get(off.Uint64(), 32))
	f.stack.push(v)
	return nil
}

func opMStoreFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 2 {
		return ErrStackUnderflow
	}
	off := f.stack.pop()
	val := f.stack.pop()
	if err := chargeMemory(f, off.Uint64(), 32); err != nil {
		return err
	}
	f.memory.Set(off.Uint64(), 32, val.Bytes32()[:])
	return nil
}

func opMStore8Fn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 2 {
		return ErrStackUnderflow
	}
	off := f.stack.pop()
	val := f.stack.pop()
	if err := chargeMemory(f, off.Uint64(), 1); err != nil {
		return err
	}
	f.memory.Set(off.Uint64(), 1, []byte{byte(val.Uint64())})
	return nil
}

func opSLoadFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 1 {
		return ErrStackUnderflow
	}
	k := f.stack.pop()
	key := common.Hash(k.Bytes32())
	warm := interp.evm.StateDB.SlotAlreadyWarm(f.contract, key)
	cost := interp.evm.Gas.WarmStorageRead
	if !warm {
		cost = interp.evm.Gas.ColdSload
		interp.evm.StateDB.AddSlotToAccessList(f.contract, key)
	}
	if cost == 0 {
		cost = interp.evm.Gas.Sload
	}
	if err := f.useGas(cost); err != nil {
		return err
	}
	v := interp.evm.StateDB.GetState(f.contract, key)
	f.stack.push(new(uint256.Int).SetBytes(v[:]))
	return nil
}

func opSStoreFn(interp *Interpreter, f *Frame) error {
	if f.static {
		return ErrWriteProtection
	}
	if f.stack.len() < 2 {
		return ErrStackUnderflow
	}
	k := f.stack.pop()
	v := f.stack.pop()
	key := common.Hash(k.Bytes32())
	value := common.Hash(v.Bytes32())

	warm := interp.evm.StateDB.SlotAlreadyWarm(f.contract, key)
	if !warm {
		interp.evm.StateDB.AddSlotToAccessList(f.contract, key)
		if err := f.useGas(interp.evm.Gas.ColdSload); err != nil {
			return err
		}
	}
	current := interp.evm.StateDB.GetState(f.contract, key)
	var cost uint64
	switch {
	case current == value:
		cost = interp.evm.Gas.WarmStorageRead
	case current == (common.Hash{}):
		cost = interp.evm.Gas.SstoreSet
	default:
		cost = interp.evm.Gas.SstoreReset
	}
	if err := f.useGas(cost); err != nil {
		return err
	}
	interp.evm.StateDB.SetState(f.contract, key, value)
	return nil
}

func opJumpFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 1 {
		return ErrStackUnderflow
	}
	dest := f.stack.pop()
	return doJump(interp, f, dest.Uint64())
}

func opJumpIFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 2 {
		return ErrStackUnderflow
	}
	dest := f.stack.pop()
	cond := f.stack.pop()
	if cond.IsZero() {
		return nil
	}
	return doJump(interp, f, dest.Uint64())
}

func doJump(interp *Interpreter, f *Frame, dest uint64) error {
	if dest >= uint64(len(f.code)) || opCode(f.code[dest]) != opJumpDest {
		return ErrInvalidJump
	}
	f.pc = dest
	interp.jumped = true
	return nil
}

func opPCFn(interp *Interpreter, f *Frame) error {
	f.stack.push(uint256.NewInt(f.pc))
	return nil
}

func opMSizeFn(interp *Interpreter, f *Frame) error {
	f.stack.push(uint256.NewInt(uint64(f.memory.Len())))
	return nil
}

func opGasFn(interp *Interpreter, f *Frame) error {
	f.stack.push(uint256.NewInt(f.gas))
	return nil
}

func makePush(n int) execFunc {
	return func(interp *Interpreter, f *Frame) error {
		start := f.pc + 1
		buf := make([]byte, n)
		if start < uint64(len(f.code)) {
			avail := uint64(len(f.code)) - start
			if avail > uint64(n) {
				avail = uint64(n)
			}
			copy(buf[uint64(n)-avail:], f.code[start:start+avail])
		}
		v := new(uint256.Int).SetBytes(buf)
		f.stack.push(v)
		interp.pushWidth = n
		return nil
	}
}

func makeDup(n int) execFunc {
	return func(interp *Interpreter, f *Frame) error {
		if f.stack.len() < n {
			return ErrStackUnderflow
		}
		if f.stack.len() >= stackLimit {
			return ErrStackOverflow
		}
		f.stack.dup(n)
		return nil
	}
}

func makeSwap(n int) execFunc {
	return func(interp *Interpreter, f *Frame) error {
		if f.stack.len() < n+1 {
			return ErrStackUnderflow
		}
		f.stack.swap(n)
		return nil
	}
}

func makeLog(n int) execFunc {
	return func(interp *Interpreter, f *Frame) error {
		if f.static {
			return ErrWriteProtection
		}
		if f.stack.len() < 2+n {
			return ErrStackUnderflow
		}
		offset := f.stack.pop()
		size := f.stack.pop()
		topics := make([]common.Hash, n)
		for i := 0; i < n; i++ {
			t := f.stack.pop()
			topics[i] = common.Hash(t.Bytes32())
		}
		if err := chargeMemory(f, offset.Uint64(), size.Uint64()); err != nil {
			return err
		}
		cost := 375 + uint64(n)*375 + size.Uint64()*8 // LOG base + per-topic + per-data-byte
		if err := f.useGas(cost); err != nil {
			return err
		}
		data := f.memory.Get(offset.Uint64(), size.Uint64())
		interp.evm.StateDB.AddLog(&types.Log{
			Address: f.contract,
			Topics:  topics,
			Data:    data,
		})
		return nil
	}
}

func opReturnFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 2 {
		return ErrStackUnderflow
	}
	offset := f.stack.pop()
	size := f.stack.pop()
	if err := chargeMemory(f, offset.Uint64(), size.Uint64()); err != nil {
		return err
	}
	f.ret = f.memory.Get(offset.Uint64(), size.Uint64())
	f.state = FrameReturned
	return errStop
}

func opRevertFn(interp *Interpreter, f *Frame) error {
	if f.stack.len() < 2 {
		return ErrStackUnderflow
	}
	offset := f.stack.pop()
	size := f.stack.pop()
	if err := chargeMemory(f, offset.Uint64(), size.Uint64()); err != nil {
		return err
	}
	f.ret = f.memory.Get(offset.Uint64(), size.Uint64())
	f.state = FrameReverted
	return ErrExecutionReverted
}

func opInvalidFn(interp *Interpreter, f *Frame) error {
	f.state = FrameHalted
	return ErrInvalidOpcode
}

func opSelfdestructFn(interp *Interpreter, f *Frame) error {
	if f.static {
		return ErrWriteProtection
	}
	if f.stack.len() < 1 {
		return ErrStackUnderflow
	}
	a := f.stack.pop()
	beneficiary := common.BytesToAddress(a.Bytes())
	if err := interp.chargeAccountAccess(f, beneficiary); err != nil {
		return err
	}
	if err := f.useGas(interp.evm.Gas.Selfdestruct); err != nil {
		return err
	}
	balance := interp.evm.StateDB.GetBalance(f.contract)
	interp.evm.StateDB.AddBalance(beneficiary, balance)
	interp.evm.StateDB.SelfDestruct(f.contract)
	f.state = FrameReturned
	return errStop
}

func opCreateFn(interp *Interpreter, f *Frame) error {
	return doCreate(interp, f, false)
}

func opCreate2Fn(interp *Interpreter, f *Frame) error {
	return doCreate(interp, f, true)
}

func doCreate(interp *Interpreter, f *Frame, isCreate2 bool) error {
	if f.static {
		return ErrWriteProtection
	}
	need := 3
	if isCreate2 {
		need = 4
	}
	if f.stack.len() < need {
		return ErrStackUnderflow
	}
	value := f.stack.pop()
	offset := f.stack.pop()
	size := f.stack.pop()
	var salt uint256.Int
	if isCreate2 {
		salt = f.stack.pop()
	}
	if err := chargeMemory(f, offset.Uint64(), size.Uint64()); err != nil {
		return err
	}
	initcode := f.memory.Get(offset.Uint64(), size.Uint64())

	childGasAmt := childGas(f.gas, f.gas)
	if err := f.useGas(childGasAmt); err != nil {
		return err
	}

	var (
		addr       common.Address
		ret        []byte
		remaining  uint64
		createErr  error
	)
	if isCreate2 {
		addr, ret, remaining, createErr = interp.evm.Create2(f.contract, initcode, childGasAmt, &value, salt.Bytes32())
	} else {
		addr, ret, remaining, createErr = interp.evm.Create(f.contract, initcode, childGasAmt, &value)
	}
	f.gas += remaining
	f.returnData = ret

	if createErr != nil {
		f.stack.push(new(uint256.Int))
		return nil
	}
	f.stack.push(new(uint256.Int).SetBytes(addr[:]))
	return nil
}

func opCallFn(interp *Interpreter, f *Frame) error {
	return doCall(interp, f, callKindCall)
}

func opDelegateCallFn(interp *Interpreter, f *Frame) error {
	return doCall(interp, f, callKindDelegate)
}

func opStaticCallFn(interp *Interpreter, f *Frame) error {
	return doCall(interp, f, callKindStatic)
}

type callKind int

const (
	callKindCall callKind = iota
	callKindDelegate
	callKindStatic
)

func doCall(interp *Interpreter, f *Frame, kind callKind) error {
	argCount := 7
	if kind != callKindCall {
		argCount = 6
	}
	if f.stack.len() < argCount {
		return ErrStackUnderflow
	}
	gasArg := f.stack.pop()
	a := f.stack.pop()
	addr := common.BytesToAddress(a.Bytes())

	var value uint256.Int
	if kind == callKindCall {
		value = f.stack.pop()
	}
	if kind == callKindCall && f.static && !value.IsZero() {
		return ErrWriteProtection
	}
	inOffset := f.stack.pop()
	inSize := f.stack.pop()
	outOffset := f.stack.pop()
	outSize := f.stack.pop()

	if err := chargeMemory(f, inOffset.Uint64(), inSize.Uint64()); err != nil {
		return err
	}
	if err := chargeMemory(f, outOffset.Uint64(), outSize.Uint64()); err != nil {
		return err
	}
	if err := interp.chargeAccountAccess(f, addr); err != nil {
		return err
	}

	input := f.memory.Get(inOffset.Uint64(), inSize.Uint64())
	childGasAmt := childGas(f.gas, gasArg.Uint64())
	if err := f.useGas(childGasAmt); err != nil {
		return err
	}

	var (
		ret       []byte
		remaining uint64
		callErr   error
	)
	switch kind {
	case callKindCall:
		ret, remaining, callErr = interp.evm.Call(f.contract, addr, input, childGasAmt, &value)
	case callKindDelegate:
		ret, remaining, callErr = interp.evm.DelegateCall(f.contract, addr, input, childGasAmt)
	case callKindStatic:
		ret, remaining, callErr = interp.evm.StaticCall(f.contract, addr, input, childGasAmt)
	}
	f.gas += remaining
	f.returnData = ret
	if outSize.Uint64() > 0 {
		n := uint64(len(ret))
		if n > outSize.Uint64() {
			n = outSize.Uint64()
		}
		f.memory.Set(outOffset.Uint64(), n, ret[:n])
	}

	if callErr != nil && callErr != ErrExecutionReverted {
		f.stack.push(new(uint256.Int))
		return nil
	}
	if callErr == ErrExecutionReverted {
		f.stack.push(new(uint256.Int))
		return nil
	}
	f.stack.push(uint256.NewInt(1))
	return nil
}
