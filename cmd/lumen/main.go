// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// lumen is the execution client's entrypoint: it resolves configuration,
// builds a node.Node around the block pipeline, trie storage, mempool,
// and JSON-RPC/engine-API transports (spec.md §1, §6), and runs it until
// asked to stop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/lumenchain/lumen/internal/node"
	"github.com/lumenchain/lumen/lumenerr"
)

const clientIdentifier = "lumen"

var app = &cli.App{
	Name:    clientIdentifier,
	Usage:   "Lumen execution client: EVM, state trie, and snap-sync core",
	Version: "0.1.0",
	Flags:   cliFlags,
}

func init() {
	app.Action = runNode
	app.Before = func(c *cli.Context) error {
		setupRootLogger(c.String("log-level"))
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	var e *lumenerr.Error
	if asLumenErr(err, &e) && e.Fatal() {
		return lumenerr.ExitUnrecoverable
	}
	return lumenerr.ExitConfigError
}

func asLumenErr(err error, target **lumenerr.Error) bool {
	for err != nil {
		if le, ok := err.(*lumenerr.Error); ok {
			*target = le
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func runNode(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("lumen: load config: %w", err)
	}

	genesis, err := loadGenesis(cfg.GenesisFile)
	if err != nil {
		return err
	}

	n, err := node.New(node.Config{
		DataDir:        cfg.DataDir,
		ColdCacheBytes: cfg.ColdCacheBytes,
		HTTPAddr:       cfg.HTTPAddr,
		WSAddr:         cfg.WSAddr,
		MetricsAddr:    cfg.MetricsAddr,
		HealCacheSize:  cfg.HealCacheSize,
		PivotMaxAge:    cfg.PivotMaxAge,
		Genesis:        genesis,
		AccessLog:      newAccessLogWriter(cfg.LogFile),
	})
	if err != nil {
		return fmt.Errorf("lumen: build node: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := n.Start(ctx); err != nil {
		return fmt.Errorf("lumen: start node: %w", err)
	}
	<-ctx.Done()
	return n.Stop()
}
