// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package common holds the primitive types shared across every layer of the
// execution client: fixed-size addresses and hashes, and the helpers used to
// move between their hex and byte-slice representations.
package common

import (
	"encoding/hex"
	"fmt"
)

const (
	// AddressLength is the expected length of an account address.
	AddressLength = 20
	// HashLength is the expected length of a keccak-256 digest.
	HashLength = 32
)

// Address is a 20-byte account identifier.
type Address [AddressLength]byte

// BytesToAddress left-pads b with zeros if it is shorter than AddressLength
// and truncates it from the left if it is longer.
func BytesToAddress(b []byte) (a Address) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// HexToAddress converts a hex string (with or without 0x prefix) to an Address.
func HexToAddress(s string) Address {
	return BytesToAddress(FromHex(s))
}

func (a Address) Bytes() []byte  { return a[:] }
func (a Address) IsZero() bool   { return a == Address{} }
func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }
func (a Address) Hex() string    { return a.String() }

// MarshalJSON renders the address as a quoted hex string, the wire
// format the JSON-RPC boundary expects.
func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", a.String())), nil
}

// MarshalText and UnmarshalText let Address serve as a JSON object key
// (encoding/json marshals map keys via TextMarshaler, not MarshalJSON),
// the form a genesis allocation file's "alloc" object uses.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(text []byte) error {
	*a = HexToAddress(string(text))
	return nil
}

// UnmarshalJSON accepts a quoted hex string in either case.
func (a *Address) UnmarshalJSON(data []byte) error {
	s, err := unquoteHex(data)
	if err != nil {
		return err
	}
	*a = HexToAddress(s)
	return nil
}

func (a Address) Cmp(b Address) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Hash is a 32-byte cryptographic digest.
type Hash [HashLength]byte

// BytesToHash left-pads b with zeros if it is shorter than HashLength and
// truncates it from the left if it is longer.
func BytesToHash(b []byte) (h Hash) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// HexToHash converts a hex string (with or without 0x prefix) to a Hash.
func HexToHash(s string) Hash {
	return BytesToHash(FromHex(s))
}

func (h Hash) Bytes() []byte  { return h[:] }
func (h Hash) IsZero() bool   { return h == Hash{} }
func (h Hash) String() string { return "0x" + hex.EncodeToString(h[:]) }
func (h Hash) Hex() string    { return h.String() }

// MarshalJSON renders the hash as a quoted hex string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", h.String())), nil
}

// UnmarshalJSON accepts a quoted hex string in either case.
func (h *Hash) UnmarshalJSON(data []byte) error {
	s, err := unquoteHex(data)
	if err != nil {
		return err
	}
	*h = HexToHash(s)
	return nil
}

func unquoteHex(data []byte) (string, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", fmt.Errorf("common: hex value must be a JSON string, got %q", data)
	}
	return string(data[1 : len(data)-1]), nil
}

// Cmp orders two hashes lexicographically; used to check that snap-sync
// range responses are strictly increasing.
func (h Hash) Cmp(o Hash) int {
	for i := range h {
		if h[i] != o[i] {
			if h[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// FromHex decodes a hex string, tolerating an optional "0x"/"0X" prefix and
// an odd number of digits (by left-padding a zero nibble).
func FromHex(s string) []byte {
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
