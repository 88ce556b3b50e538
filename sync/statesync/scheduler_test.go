// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package statesync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerStartsAtInitialSize(t *testing.T) {
	s := NewScheduler()
	require.Equal(t, initialRequestSize, s.RequestSize("peer-a"))
}

func TestSchedulerGrowsForFastPeer(t *testing.T) {
	s := NewScheduler()
	before := s.RequestSize("peer-a")
	// 1 MB in 1 second is well above the 500 kB/s threshold.
	s.ReportSuccess("peer-a", 1024*1024, time.Second)
	require.Greater(t, s.RequestSize("peer-a"), before)
}

func TestSchedulerShrinksForSlowPeer(t *testing.T) {
	s := NewScheduler()
	before := s.RequestSize("peer-a")
	// 10 kB in 1 second is far below the 500 kB/s threshold.
	s.ReportSuccess("peer-a", 10*1024, time.Second)
	require.Less(t, s.RequestSize("peer-a"), before)
}

func TestSchedulerShrinksOnFailure(t *testing.T) {
	s := NewScheduler()
	before := s.RequestSize("peer-a")
	s.ReportFailure("peer-a")
	require.Less(t, s.RequestSize("peer-a"), before)
}

func TestSchedulerNeverExceedsBounds(t *testing.T) {
	s := NewScheduler()
	for i := 0; i < 100; i++ {
		s.ReportSuccess("peer-a", 4*1024*1024, time.Second)
	}
	require.LessOrEqual(t, s.RequestSize("peer-a"), maxRequestSize)

	for i := 0; i < 100; i++ {
		s.ReportFailure("peer-a")
	}
	require.GreaterOrEqual(t, s.RequestSize("peer-a"), minRequestSize)
}

func TestSchedulerPeersAreIndependent(t *testing.T) {
	s := NewScheduler()
	s.ReportSuccess("fast", 2*1024*1024, time.Second)
	s.ReportFailure("slow")
	require.Greater(t, s.RequestSize("fast"), s.RequestSize("slow"))
}
