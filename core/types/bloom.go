// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package types

import (
	"encoding/hex"

	"github.com/lumenchain/lumen/cryptoutil"
)

// Bloom is a 2048-bit logs bloom filter (spec.md §3.5).
type Bloom [256]byte

func (b *Bloom) add(data []byte) {
	h := cryptoutil.Keccak256(data)
	for i := 0; i < 3; i++ {
		bit := (uint(h[i*2])<<8 | uint(h[i*2+1])) & 2047
		b[256-1-bit/8] |= 1 << (bit % 8)
	}
}

// Test reports whether data is (probably) present in the filter.
func (b Bloom) Test(data []byte) bool {
	var probe Bloom
	probe.add(data)
	for i := range probe {
		if b[i]&probe[i] != probe[i] {
			return false
		}
	}
	return true
}

func (b Bloom) String() string { return "0x" + hex.EncodeToString(b[:]) }

// BytesToBloom left-pads b with zeros if shorter than 256 bytes and
// truncates from the left if longer.
func BytesToBloom(b []byte) (bloom Bloom) {
	if len(b) > len(bloom) {
		b = b[len(b)-len(bloom):]
	}
	copy(bloom[len(bloom)-len(b):], b)
	return bloom
}

// CreateBloom derives the logs bloom for a receipt's log set.
func CreateBloom(logs []*Log) Bloom {
	var bloom Bloom
	for _, log := range logs {
		bloom.add(log.Address.Bytes())
		for _, topic := range log.Topics {
			bloom.add(topic.Bytes())
		}
	}
	return bloom
}

// OrBloom merges b2 into b, used to fold per-transaction blooms into the
// block-level aggregate during the execution driver (spec.md §4.4).
func (b *Bloom) OrBloom(b2 Bloom) {
	for i := range b {
		b[i] |= b2[i]
	}
}
