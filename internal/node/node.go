// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package node is the composition root: it wires the block pipeline,
// state storage, mempool, snap-sync scheduler, and RPC transports
// (spec.md §6) into one running process, the way the teacher's
// network.Network ties p2p.Network, a sender, and a codec together
// behind one constructor and one Shutdown.
package node

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	log "github.com/luxfi/log"

	"github.com/lumenchain/lumen/core"
	"github.com/lumenchain/lumen/core/txpool"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/lumenerr"
	"github.com/lumenchain/lumen/metrics"
	"github.com/lumenchain/lumen/rpc"
	"github.com/lumenchain/lumen/rpc/engineapi"
	"github.com/lumenchain/lumen/sync/statesync"
	"github.com/lumenchain/lumen/triedb"
)

// Config collects the knobs cmd/lumen's flag/file/env layering
// resolves before a Node is built (spec.md §10: datadir, pivot
// retention window, healing-cache size).
type Config struct {
	DataDir        string
	ColdCacheBytes int
	HTTPAddr       string
	WSAddr         string
	MetricsAddr    string
	HealCacheSize  int
	PivotMaxAge    time.Duration
	Forks          core.ForkSchedule
	Genesis        *core.Genesis

	// AccessLog, if set, receives one line per RPC request served over
	// HTTP or WebSocket. nil disables access logging entirely.
	AccessLog io.Writer
}

// Node owns every long-lived component a running lumen process needs:
// the trie database, the block pipeline, the mempool, the snap-sync
// session, and the three HTTP-facing servers (JSON-RPC, WebSocket,
// metrics).
type Node struct {
	cfg Config

	db    *triedb.Database
	chain *core.BlockChain
	pool  *txpool.Pool
	met   *metrics.Metrics
	sync  *statesync.Sync

	rpcServer *rpc.Server
	wsHandler *rpc.WSHandler
	engine    *engineapi.API

	httpSrv    *http.Server
	wsSrv      *http.Server
	metricsSrv *http.Server

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

// New opens the trie database under cfg.DataDir, commits the genesis
// block if the database is empty, and wires every component that
// depends on chain state. It does not start listening; call Start for
// that.
func New(cfg Config) (*Node, error) {
	db, err := triedb.Open(cfg.DataDir, cfg.ColdCacheBytes)
	if err != nil {
		return nil, lumenerr.StorageIO("open trie database", err)
	}

	if cfg.Genesis == nil {
		return nil, fmt.Errorf("node: genesis is required")
	}
	genesisBlock, err := cfg.Genesis.Commit(db)
	if err != nil {
		return nil, lumenerr.StorageIO("commit genesis block", err)
	}

	forks := cfg.Forks
	if forks == nil {
		forks = MainnetLikeForkSchedule()
	}
	chainConfig := core.ChainConfig{ChainID: genesisChainID, Forks: forks}
	chain := core.NewBlockChain(db, chainConfig, genesisBlock)

	signer := types.MakeSigner(genesisChainID)
	pool := txpool.New(signer)
	met := metrics.New()

	pivotHeader := genesisBlock.Header()
	healSize := cfg.HealCacheSize
	if healSize <= 0 {
		healSize = defaultHealCacheSize
	}
	sess := statesync.New(pivotHeader, healSize)

	eth := rpc.NewEthAPI(chain, pool, signer)
	engine := engineapi.New(chain)
	rpcServer, err := rpc.NewServer(eth, engine, met.Handler())
	if err != nil {
		return nil, fmt.Errorf("node: build rpc server: %w", err)
	}
	wsHandler := rpc.NewWSHandler(rpcServer)

	n := &Node{
		cfg:       cfg,
		db:        db,
		chain:     chain,
		pool:      pool,
		met:       met,
		sync:      sess,
		rpcServer: rpcServer,
		wsHandler: wsHandler,
		engine:    engine,
		stop:      make(chan struct{}),
	}
	return n, nil
}

// genesisChainID is the chain ID devnets built by cmd/lumen sign
// transactions against; a production deployment supplies its own via
// Config and a real genesis file, not modeled here (spec.md §1 treats
// genesis-file generation as an external collaborator).
var genesisChainID = big.NewInt(1337)

// BlockChain returns the node's block pipeline, for callers (tests,
// cmd/lumen's health checks) that need direct access beyond the RPC
// surface.
func (n *Node) BlockChain() *core.BlockChain { return n.chain }

// TxPool returns the node's mempool.
func (n *Node) TxPool() *txpool.Pool { return n.pool }

// Metrics returns the node's Prometheus registry wrapper.
func (n *Node) Metrics() *metrics.Metrics { return n.met }

// Start begins serving JSON-RPC over HTTP and WebSocket and, if
// cfg.MetricsAddr is set, a separate metrics endpoint. It also starts
// the background pivot-advance loop that keeps the snap-sync session
// anchored to a recent header (spec.md §4.5).
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	if n.running {
		n.mu.Unlock()
		return nil
	}
	n.running = true
	n.mu.Unlock()

	if n.cfg.HTTPAddr != "" {
		handler := newAccessLogHandler(n.rpcServer, n.cfg.AccessLog)
		n.httpSrv = &http.Server{Addr: n.cfg.HTTPAddr, Handler: handler}
		go n.serve(n.httpSrv, "json-rpc http")
	}
	if n.cfg.WSAddr != "" {
		handler := newAccessLogHandler(n.wsHandler, n.cfg.AccessLog)
		n.wsSrv = &http.Server{Addr: n.cfg.WSAddr, Handler: handler}
		go n.serve(n.wsSrv, "json-rpc websocket")
	}
	if n.cfg.MetricsAddr != "" {
		n.metricsSrv = &http.Server{Addr: n.cfg.MetricsAddr, Handler: n.met.Handler()}
		go n.serve(n.metricsSrv, "metrics")
	}

	maxAge := n.cfg.PivotMaxAge
	if maxAge <= 0 {
		maxAge = defaultPivotMaxAge
	}
	go n.pivotLoop(ctx, maxAge)

	log.Info("node started", "httpAddr", n.cfg.HTTPAddr, "wsAddr", n.cfg.WSAddr, "metricsAddr", n.cfg.MetricsAddr)
	return nil
}

func (n *Node) serve(srv *http.Server, name string) {
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server stopped", "server", name, "err", err)
	}
}

// pivotLoop periodically checks whether the chain head has moved far
// enough past the sync session's current pivot to warrant advancing
// it, discarding in-flight range/healing requests tagged with the
// stale generation (spec.md §4.5).
func (n *Node) pivotLoop(ctx context.Context, maxAge time.Duration) {
	ticker := time.NewTicker(maxAge / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.stop:
			return
		case now := <-ticker.C:
			head := n.chain.Head()
			header, ok := n.chain.GetHeader(head)
			if !ok {
				continue
			}
			if n.sync.MaybeAdvancePivot(header, now) {
				log.Debug("pivot advanced", "head", head)
			}
		}
	}
}

// Stop shuts down every listener and the background pivot loop,
// waiting up to 5 seconds for in-flight requests to drain.
func (n *Node) Stop() error {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return nil
	}
	n.running = false
	n.mu.Unlock()

	close(n.stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var firstErr error
	for _, srv := range []*http.Server{n.httpSrv, n.wsSrv, n.metricsSrv} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("node: shutdown %s: %w", srv.Addr, err)
		}
	}
	if err := n.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("node: close trie database: %w", err)
	}
	log.Info("node stopped")
	return firstErr
}

const (
	defaultHealCacheSize = 1 << 20
	defaultPivotMaxAge   = 2 * time.Minute
)
