// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package rpc

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// Uint64 is a uint64 quantity encoded as a 0x-prefixed hex string on the
// JSON-RPC wire, matching eth_* method conventions (spec.md §6).
type Uint64 uint64

func (q Uint64) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", fmt.Sprintf("0x%x", uint64(q)))), nil
}

func (q *Uint64) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	v, err := parseHexUint64(s)
	if err != nil {
		return err
	}
	*q = Uint64(v)
	return nil
}

// BigInt is a *big.Int quantity encoded as a 0x-prefixed hex string.
type BigInt big.Int

func (q *BigInt) MarshalJSON() ([]byte, error) {
	if q == nil {
		return []byte(`"0x0"`), nil
	}
	return []byte(fmt.Sprintf("%q", "0x"+(*big.Int)(q).Text(16))), nil
}

func (q *BigInt) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		s = "0"
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return fmt.Errorf("rpc: invalid hex quantity %q", s)
	}
	*q = BigInt(*v)
	return nil
}

func (q *BigInt) ToInt() *big.Int { return (*big.Int)(q) }

// FromBigInt wraps x for JSON encoding, tolerating a nil x as zero.
func FromBigInt(x *big.Int) *BigInt {
	if x == nil {
		return (*BigInt)(new(big.Int))
	}
	return (*BigInt)(x)
}

// FromUint256 wraps x for JSON encoding, tolerating a nil x as zero.
func FromUint256(x *uint256.Int) *BigInt {
	if x == nil {
		return (*BigInt)(new(big.Int))
	}
	return (*BigInt)(x.ToBig())
}

// Bytes is a byte slice encoded as a 0x-prefixed hex string.
type Bytes []byte

func (b Bytes) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", "0x"+hex.EncodeToString(b))), nil
}

func (b *Bytes) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("rpc: invalid hex data: %w", err)
	}
	*b = decoded
	return nil
}

func unquote(data []byte) (string, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", fmt.Errorf("rpc: hex value must be a JSON string, got %q", data)
	}
	return string(data[1 : len(data)-1]), nil
}

func parseHexUint64(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, nil
	}
	var v uint64
	for _, c := range s {
		n, ok := hexDigit(byte(c))
		if !ok {
			return 0, fmt.Errorf("rpc: invalid hex digit %q", c)
		}
		v = v<<4 | uint64(n)
	}
	return v, nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
