// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package node

import "github.com/lumenchain/lumen/core/vm"

// ForkBlock pins a fork's activation point to either a block number or a
// block timestamp, matching the two activation styles real networks use
// (pre-Merge forks by number, post-Merge forks by time).
type ForkBlock struct {
	Fork   vm.Fork
	Number uint64
	Time   uint64
	ByTime bool
}

// StaticForkSchedule resolves vm.Fork from a fixed, network-wide
// activation table (core/blockchain.go's ForkSchedule interface). Entries
// must be supplied in activation order; ForkAt returns the last entry
// whose activation point has been reached.
type StaticForkSchedule struct {
	forks []ForkBlock
}

// NewStaticForkSchedule builds a schedule from forks, which callers
// supply already sorted by activation order (earliest fork first).
func NewStaticForkSchedule(forks []ForkBlock) *StaticForkSchedule {
	return &StaticForkSchedule{forks: forks}
}

// ForkAt returns the latest fork activated by number or time.
func (s *StaticForkSchedule) ForkAt(number uint64, time uint64) vm.Fork {
	active := vm.Frontier
	for _, f := range s.forks {
		reached := f.ByTime && time >= f.Time || !f.ByTime && number >= f.Number
		if !reached {
			break
		}
		active = f.Fork
	}
	return active
}

// MainnetLikeForkSchedule returns the fork table a fresh network
// activates every fork from genesis under, the default for devnets and
// the genesis fixtures cmd/lumen ships. Real deployments override this
// with activation points read from their own chain config.
func MainnetLikeForkSchedule() *StaticForkSchedule {
	return NewStaticForkSchedule([]ForkBlock{
		{Fork: vm.Frontier},
		{Fork: vm.Byzantium},
		{Fork: vm.Constantinople},
		{Fork: vm.Istanbul},
		{Fork: vm.Berlin},
		{Fork: vm.London},
		{Fork: vm.Shanghai, ByTime: true},
		{Fork: vm.Cancun, ByTime: true},
		{Fork: vm.Prague, ByTime: true},
	})
}
