// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package vm

// Fork enumerates the fork boundaries that change gas pricing or
// behavior within the interpreter. The block pipeline resolves a
// transaction's applicable Fork from chain config and block number/time
// before constructing an EVM.
type Fork int

const (
	Frontier Fork = iota
	Byzantium
	Constantinople
	Istanbul
	Berlin
	London
	Shanghai
	Cancun
	Prague
)

// GasSchedule holds the per-fork gas costs the interpreter consults.
// Later forks only override the fields that actually changed. A zero in a
// fork-gated field (ColdAccountAccess, MaxInitcodeSize) marks that fork's
// rule as not yet active, and the interpreter reads it that way.
type GasSchedule struct {
	Sload        uint64 // cold SLOAD pre-Berlin; post-Berlin charged via ColdSload/WarmStorageRead
	SstoreSet    uint64
	SstoreReset  uint64
	SstoreClear  uint64 // refund amount
	SstoreNetted bool   // Istanbul+ net-metered SSTORE gas accounting

	ColdSload          uint64 // Berlin+
	ColdAccountAccess  uint64 // Berlin+
	WarmStorageRead    uint64 // Berlin+

	Balance       uint64
	ExtcodeSize   uint64
	ExtcodeCopy   uint64
	ExtcodeHash   uint64
	Call          uint64
	CallValue     uint64 // surcharge for a nonzero-value CALL
	CallNewAccount uint64
	Selfdestruct  uint64
	SelfdestructRefund uint64 // removed by EIP-3529 (London+, set to 0)

	ExpByte uint64

	TxDataZero    uint64
	TxDataNonZero uint64

	CreateDataByte uint64 // per-byte code-deposit charge on the deployed runtime code
	MaxCodeSize    uint64
	MaxInitcodeSize uint64 // EIP-3860, Shanghai+

	MaxRefundQuotient uint64 // EIP-3529: refund capped to gasUsed/quotient
}

// scheduleForFork returns the fully populated gas schedule for fork.
func scheduleForFork(fork Fork) GasSchedule {
	s := GasSchedule{
		Sload:             800,
		SstoreSet:         20000,
		SstoreReset:       5000,
		SstoreClear:       15000,
		Balance:           700,
		ExtcodeSize:       700,
		ExtcodeCopy:       700,
		ExtcodeHash:       700,
		Call:              700,
		CallValue:         9000,
		CallNewAccount:    25000,
		Selfdestruct:      5000,
		SelfdestructRefund: 24000,
		ExpByte:           50,
		TxDataZero:        4,
		TxDataNonZero:     16,
		CreateDataByte:    200,
		MaxCodeSize:       24576,
		MaxRefundQuotient: 2,
	}
	if fork >= Istanbul {
		s.SstoreNetted = true
		s.Sload = 800
	}
	if fork >= Berlin {
		s.ColdSload = 2100
		s.ColdAccountAccess = 2600
		s.WarmStorageRead = 100
		s.Balance = 0 // fully replaced by cold/warm accounting
		s.ExtcodeSize = 0
		s.ExtcodeCopy = 0
		s.ExtcodeHash = 0
		s.Call = 0
	}
	if fork >= London {
		s.SelfdestructRefund = 0 // EIP-3529
		s.MaxRefundQuotient = 5  // EIP-3529 tightens the cap further
	}
	if fork >= Shanghai {
		s.MaxInitcodeSize = 2 * s.MaxCodeSize // EIP-3860: 49152
	}
	return s
}
