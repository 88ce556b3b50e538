// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package metrics exposes the node's Prometheus metrics: gas used per
// block, trie node cache hit rate, per-peer throughput, and the
// snap-sync healing cache's observed false-positive rate.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the node reports. Each field is
// exported so call sites in core/, trie/, and sync/ can record
// directly against it without this package knowing their internals.
type Metrics struct {
	registry *prometheus.Registry

	GasUsed          prometheus.Counter
	BlocksProcessed  prometheus.Counter
	BlockExecSeconds prometheus.Histogram

	TrieCacheHits   prometheus.Counter
	TrieCacheMisses prometheus.Counter

	PeerBytesReceived *prometheus.CounterVec
	PeerRequestErrors *prometheus.CounterVec

	HealCacheChecks        prometheus.Counter
	HealCacheFalsePositive prometheus.Counter
}

// New registers and returns a fresh metric set on its own registry, so
// multiple Metrics instances (e.g. one per test) never collide on a
// shared default registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		GasUsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lumen", Subsystem: "core", Name: "gas_used_total",
			Help: "Cumulative gas used across every processed block.",
		}),
		BlocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lumen", Subsystem: "core", Name: "blocks_processed_total",
			Help: "Number of blocks accepted by the chain.",
		}),
		BlockExecSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lumen", Subsystem: "core", Name: "block_exec_seconds",
			Help: "Wall-clock time spent executing one block's transactions.",
			Buckets: prometheus.DefBuckets,
		}),
		TrieCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lumen", Subsystem: "trie", Name: "cache_hits_total",
			Help: "Trie node lookups served from the decoded-node cache.",
		}),
		TrieCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lumen", Subsystem: "trie", Name: "cache_misses_total",
			Help: "Trie node lookups that fell through to the backing store.",
		}),
		PeerBytesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumen", Subsystem: "network", Name: "peer_bytes_received_total",
			Help: "Bytes received per peer, for the snap-sync adaptive request-size governor.",
		}, []string{"peer"}),
		PeerRequestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumen", Subsystem: "network", Name: "peer_request_errors_total",
			Help: "Failed or timed-out requests per peer.",
		}, []string{"peer"}),
		HealCacheChecks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lumen", Subsystem: "sync", Name: "heal_cache_checks_total",
			Help: "Total CheckPath calls against the healing cache.",
		}),
		HealCacheFalsePositive: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lumen", Subsystem: "sync", Name: "heal_cache_false_positives_total",
			Help: "ProbablyExists results that a backing-store lookup then found missing.",
		}),
	}
	reg.MustRegister(
		m.GasUsed, m.BlocksProcessed, m.BlockExecSeconds,
		m.TrieCacheHits, m.TrieCacheMisses,
		m.PeerBytesReceived, m.PeerRequestErrors,
		m.HealCacheChecks, m.HealCacheFalsePositive,
	)
	return m
}

// Registry returns the underlying Prometheus registry, for tests that
// want to assert on collected samples directly.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns the HTTP handler an RPC server mounts at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
