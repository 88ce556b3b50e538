// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package core

import (
	"github.com/holiman/uint256"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/core/vm"
)

// systemAddress is the sender EIP-7002/7251 system calls execute as;
// it holds no balance and its calls never charge gas to a real account.
var systemAddress = common.HexToAddress("0xfffffffffffffffffffffffffffffffffffffffe")

// Canonical Prague predeploy addresses (EIP-6110, EIP-7002, EIP-7251).
var (
	depositContractAddress             = common.HexToAddress("0x00000000219ab540356cbb839cbe05303d7705fa")
	withdrawalRequestContractAddress   = common.HexToAddress("0x00000961ef480eb55e80d19ad83579a64c007002")
	consolidationRequestContractAddress = common.HexToAddress("0x0000bbddc7ce488642fb579f8b00f3a590007251")
)

// systemCallGas is the gas budget EIP-7002/7251 allot each requests
// system call.
const systemCallGas = 30_000_000

// ExtractRequests runs the Prague+ requests-extraction step (spec.md
// §3.5, §4.4): deposit requests are read back out of the deposit
// contract's logs already produced by ordinary transaction execution,
// while withdrawal and consolidation requests come from a dedicated
// system call to their respective predeploys after every transaction
// in the block has executed.
func ExtractRequests(evm *vm.EVM, receipts []*types.Receipt) (types.Requests, error) {
	var requests types.Requests

	// Every log the deposit contract itself emitted is a deposit event;
	// the contract has exactly one event signature, so the address alone
	// identifies it without needing the event's topic0 hash.
	for _, r := range receipts {
		for _, log := range r.Logs {
			if log.Address == depositContractAddress {
				requests = append(requests, &types.Request{Type: types.DepositRequestType, Data: log.Data})
			}
		}
	}

	if data, err := runSystemCall(evm, withdrawalRequestContractAddress); err != nil {
		return nil, err
	} else if len(data) > 0 {
		for _, rec := range splitRecords(data, 76) {
			requests = append(requests, &types.Request{Type: types.WithdrawalRequestType, Data: rec})
		}
	}

	if data, err := runSystemCall(evm, consolidationRequestContractAddress); err != nil {
		return nil, err
	} else if len(data) > 0 {
		for _, rec := range splitRecords(data, 116) {
			requests = append(requests, &types.Request{Type: types.ConsolidationRequestType, Data: rec})
		}
	}

	return requests, nil
}

// runSystemCall invokes addr with empty calldata as the system address,
// returning its output; a reverted or erroring system call yields no
// requests of that type rather than failing the block.
func runSystemCall(evm *vm.EVM, addr common.Address) ([]byte, error) {
	if !evm.StateDB.Exist(addr) {
		return nil, nil
	}
	out, _, err := evm.Call(systemAddress, addr, nil, systemCallGas, uint256.NewInt(0))
	if err != nil {
		return nil, nil
	}
	return out, nil
}

// splitRecords chops a system call's flat output into fixed-size
// records, discarding a short trailing remainder.
func splitRecords(data []byte, size int) [][]byte {
	var out [][]byte
	for len(data) >= size {
		out = append(out, data[:size])
		data = data[size:]
	}
	return out
}
