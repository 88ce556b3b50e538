// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package statesync

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	minRequestSize     = 128 * 1024
	maxRequestSize     = 2 * 1024 * 1024
	initialRequestSize = 512 * 1024

	throughputThreshold = 500 * 1024 // bytes/sec; above this a peer earns a larger request
	windowSamples       = 10

	shrinkFactor = 0.5 // multiplicative backoff on a failed or timed-out request
	growFactor   = 1.25
)

// peerWindow tracks one peer's recent throughput (bytes-per-second
// samples, most recent last) and the request size the scheduler is
// currently handing it.
type peerWindow struct {
	samples     []float64
	requestSize int
	limiter     *rate.Limiter
}

// Scheduler sizes outgoing range requests per peer, growing requests
// towards the 2 MB ceiling for peers proven fast and shrinking them
// towards the 128 kB floor for peers that are slow, fail, or time out
// (spec.md §4.5). Each peer additionally gets a token-bucket limiter
// of 4 requests per second with a burst of 4, the same fixed rate for
// every peer regardless of its measured throughput.
type Scheduler struct {
	mu    sync.Mutex
	peers map[string]*peerWindow
}

// NewScheduler returns an empty scheduler; peers are registered
// lazily on their first reported sample.
func NewScheduler() *Scheduler {
	return &Scheduler{peers: make(map[string]*peerWindow)}
}

func (s *Scheduler) window(peerID string) *peerWindow {
	w, ok := s.peers[peerID]
	if !ok {
		w = &peerWindow{
			requestSize: initialRequestSize,
			limiter:     rate.NewLimiter(rate.Limit(4), 4),
		}
		s.peers[peerID] = w
	}
	return w
}

// RequestSize returns the number of bytes to ask peerID for in its
// next range request.
func (s *Scheduler) RequestSize(peerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window(peerID).requestSize
}

// Reserve takes a token from peerID's bucket and returns the reservation
// without blocking; the caller waits out its Delay before issuing the
// request, or calls its Cancel if it chooses not to proceed.
func (s *Scheduler) Reserve(peerID string) *rate.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window(peerID).limiter.Reserve()
}

// ReportSuccess records that peerID answered a request of n bytes in
// elapsed time, updating its throughput window and adjusting its next
// request size towards the 2 MB ceiling or 128 kB floor depending on
// whether it cleared the 500 kB/s threshold.
func (s *Scheduler) ReportSuccess(peerID string, n int, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.window(peerID)

	throughput := float64(n) / elapsed.Seconds()
	w.samples = append(w.samples, throughput)
	if len(w.samples) > windowSamples {
		w.samples = w.samples[len(w.samples)-windowSamples:]
	}

	if average(w.samples) >= throughputThreshold {
		w.requestSize = clampRequestSize(int(float64(w.requestSize) * growFactor))
	} else {
		w.requestSize = clampRequestSize(int(float64(w.requestSize) / growFactor))
	}
}

// ReportFailure shrinks peerID's request size multiplicatively after a
// failed or timed-out request, without touching its throughput samples
// (a failure carries no valid byte/time measurement).
func (s *Scheduler) ReportFailure(peerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.window(peerID)
	w.requestSize = clampRequestSize(int(float64(w.requestSize) * shrinkFactor))
}

func clampRequestSize(n int) int {
	if n < minRequestSize {
		return minRequestSize
	}
	if n > maxRequestSize {
		return maxRequestSize
	}
	return n
}

func average(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v
	}
	return sum / float64(len(samples))
}
