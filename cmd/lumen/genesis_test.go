// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumenchain/lumen/common"
)

func TestLoadGenesisDecodesAlloc(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.json")
	body := `{
		"gasLimit": "0x7A1200",
		"difficulty": "0x1",
		"timestamp": "0x5f5e100",
		"alloc": {
			"0x0000000000000000000000000000000000000001": {
				"balance": "0xde0b6b3a7640000"
			}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	g, err := loadGenesis(path)
	require.NoError(t, err)
	require.Equal(t, uint64(0x7A1200), g.GasLimit)
	require.Equal(t, uint64(0x5f5e100), g.Timestamp)

	addr := common.HexToAddress("0x0000000000000000000000000000000000000001")
	acc, ok := g.Alloc[addr]
	require.True(t, ok)
	require.Equal(t, "1000000000000000000", acc.Balance.String())
}

func TestLoadGenesisMissingFile(t *testing.T) {
	_, err := loadGenesis(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
