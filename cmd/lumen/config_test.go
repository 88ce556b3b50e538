// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// runWithFlags drives loadConfig through a real *cli.Context the way
// app.Run would build one, rather than constructing cli.Context by
// hand.
func runWithFlags(t *testing.T, args []string) *config {
	t.Helper()
	var got *config
	app := &cli.App{
		Flags: cliFlags,
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			got = cfg
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"lumen"}, args...)))
	require.NotNil(t, got)
	return got
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := runWithFlags(t, nil)
	require.Equal(t, "./lumen-data", cfg.DataDir)
	require.Equal(t, "127.0.0.1:8545", cfg.HTTPAddr)
	require.Equal(t, 2*time.Minute, cfg.PivotMaxAge)
	require.Equal(t, 1<<20, cfg.HealCacheSize)
}

func TestLoadConfigFlagOverridesDefault(t *testing.T) {
	cfg := runWithFlags(t, []string{"--datadir=/tmp/custom", "--heal-cache-size=512", "--http-addr="})
	require.Equal(t, "/tmp/custom", cfg.DataDir)
	require.Equal(t, 512, cfg.HealCacheSize)
	require.Equal(t, "", cfg.HTTPAddr)
}
