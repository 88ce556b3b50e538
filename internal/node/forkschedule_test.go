// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package node

import (
	"testing"

	"github.com/lumenchain/lumen/core/vm"
	"github.com/stretchr/testify/require"
)

func TestStaticForkScheduleByNumber(t *testing.T) {
	s := NewStaticForkSchedule([]ForkBlock{
		{Fork: vm.Frontier},
		{Fork: vm.Berlin, Number: 100},
		{Fork: vm.London, Number: 200},
	})

	require.Equal(t, vm.Frontier, s.ForkAt(0, 0))
	require.Equal(t, vm.Frontier, s.ForkAt(99, 0))
	require.Equal(t, vm.Berlin, s.ForkAt(100, 0))
	require.Equal(t, vm.Berlin, s.ForkAt(150, 0))
	require.Equal(t, vm.London, s.ForkAt(200, 0))
	require.Equal(t, vm.London, s.ForkAt(1_000_000, 0))
}

func TestStaticForkScheduleByTime(t *testing.T) {
	s := NewStaticForkSchedule([]ForkBlock{
		{Fork: vm.London, Number: 100},
		{Fork: vm.Shanghai, Time: 1_700_000_000, ByTime: true},
	})

	require.Equal(t, vm.London, s.ForkAt(500, 1_600_000_000))
	require.Equal(t, vm.Shanghai, s.ForkAt(500, 1_700_000_001))
}

func TestMainnetLikeForkScheduleActivatesEverythingFromGenesis(t *testing.T) {
	s := MainnetLikeForkSchedule()
	require.Equal(t, vm.Prague, s.ForkAt(0, 0))
}
