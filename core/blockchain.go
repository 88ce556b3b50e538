// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package core

import (
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	log "github.com/luxfi/log"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/state"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/core/vm"
	"github.com/lumenchain/lumen/lumenerr"
	"github.com/lumenchain/lumen/triedb"
)

// AddBlockOutcome is the result of offering a block to the chain.
type AddBlockOutcome int

const (
	Accepted AddBlockOutcome = iota
	Rejected
	Pending
)

// ForkSchedule resolves the active vm.Fork for a header, generalizing
// the per-network fork-block/fork-time table a real deployment would
// load from chain config.
type ForkSchedule interface {
	ForkAt(number uint64, time uint64) vm.Fork
}

// ChainConfig is the minimal set of knobs the block pipeline needs
// beyond fork activation: the chain ID used for transaction signature
// validation and the fork schedule itself.
type ChainConfig struct {
	ChainID *big.Int
	Forks   ForkSchedule
}

// BlockChain owns canonical-chain bookkeeping: the header/body store
// (addressed by the triedb hot/cold tiers for state, and by the maps
// below for headers and the number->hash index), fork-choice pointers,
// and the pending-block pool for out-of-order arrivals (spec.md §4.4).
type BlockChain struct {
	mu sync.RWMutex

	db     *triedb.Database
	config ChainConfig

	headers  map[common.Hash]*types.Header
	bodies   map[common.Hash]*types.Block
	receipts map[common.Hash][]*types.Receipt
	canonical map[uint64]common.Hash // number -> canonical hash

	head      common.Hash
	safe      common.Hash
	finalized common.Hash

	pending map[common.Hash][]*types.Block // parent hash -> waiting children
}

// NewBlockChain opens a chain view over db, seeded with an already
// committed genesis block.
func NewBlockChain(db *triedb.Database, config ChainConfig, genesis *types.Block) *BlockChain {
	bc := &BlockChain{
		db:        db,
		config:    config,
		headers:   make(map[common.Hash]*types.Header),
		bodies:    make(map[common.Hash]*types.Block),
		receipts:  make(map[common.Hash][]*types.Receipt),
		canonical: make(map[uint64]common.Hash),
		pending:   make(map[common.Hash][]*types.Block),
	}
	gh := genesis.Hash()
	bc.headers[gh] = genesis.Header()
	bc.bodies[gh] = genesis
	bc.canonical[0] = gh
	bc.head, bc.safe, bc.finalized = gh, gh, gh
	return bc
}

// AddBlock drives block through validation, execution, and commit
// (spec.md §4.4), returning Accepted, Rejected, or Pending(no parent).
func (bc *BlockChain) AddBlock(block *types.Block) (AddBlockOutcome, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.addBlockLocked(block)
}

func (bc *BlockChain) addBlockLocked(block *types.Block) (AddBlockOutcome, error) {
	parent, ok := bc.headers[block.ParentHash()]
	if !ok {
		bc.pending[block.ParentHash()] = append(bc.pending[block.ParentHash()], block)
		return Pending, nil
	}

	fork := bc.config.Forks.ForkAt(block.Number(), block.Time())
	if err := ValidateHeader(block.Header(), parent, fork); err != nil {
		log.Debug("rejected block with invalid header", "hash", block.Hash(), "number", block.Number(), "err", err)
		return Rejected, err
	}

	receipts, stateRoot, err := bc.execute(block, parent, fork)
	if err != nil {
		log.Error("block execution failed", "hash", block.Hash(), "number", block.Number(), "err", err)
		return Rejected, err
	}
	if err := ValidatePostState(block, receipts, stateRoot, fork); err != nil {
		log.Error("post-state validation failed", "hash", block.Hash(), "number", block.Number(), "err", err)
		return Rejected, err
	}

	hash := block.Hash()
	bc.headers[hash] = block.Header()
	bc.bodies[hash] = block
	bc.receipts[hash] = receipts
	log.Debug("accepted block", "hash", hash, "number", block.Number(), "txs", len(block.Transactions()))

	if err := bc.drainPending(hash); err != nil {
		return Rejected, err
	}
	return Accepted, nil
}

// drainPending processes, in arrival order, every block that was
// waiting on parentHash, recursing through their own descendants.
func (bc *BlockChain) drainPending(parentHash common.Hash) error {
	waiting := bc.pending[parentHash]
	delete(bc.pending, parentHash)
	for _, child := range waiting {
		if _, err := bc.addBlockLocked(child); err != nil {
			return err
		}
	}
	return nil
}

// execute runs every transaction in block against the state rooted at
// parent, then processes withdrawals and (Prague+) requests extraction.
func (bc *BlockChain) execute(block *types.Block, parent *types.Header, fork vm.Fork) ([]*types.Receipt, common.Hash, error) {
	reader := bc.db.Reader(parent.Hash())
	statedb := state.New(parent.Root, reader, bc.db)

	header := block.Header()
	blockCtx := vm.BlockContext{
		Coinbase:    header.Coinbase,
		GasLimit:    header.GasLimit,
		BlockNumber: header.NumberU64(),
		Time:        header.Time,
		Difficulty:  header.Difficulty,
		BaseFee:     header.BaseFee,
		GetHash:     bc.ancestorHashFunc(header),
	}
	if header.MixDigest != (common.Hash{}) {
		blockCtx.Random = header.MixDigest
	}

	evm := vm.NewEVM(statedb, blockCtx, vm.TxContext{}, bc.config.ChainID, fork)
	signer := types.MakeSigner(bc.config.ChainID)

	receipts := make([]*types.Receipt, 0, len(block.Transactions()))
	var cumulativeGas uint64
	for i, tx := range block.Transactions() {
		result, err := ApplyTransaction(evm, statedb, tx, signer, cumulativeGas, i)
		if err != nil {
			return nil, common.Hash{}, err
		}
		result.Receipt.BlockHash = block.Hash()
		result.Receipt.BlockNumber = header.Number
		for _, log := range result.Receipt.Logs {
			log.BlockHash = block.Hash()
			log.BlockNumber = header.NumberU64()
		}
		cumulativeGas = result.Receipt.CumulativeGasUsed
		receipts = append(receipts, result.Receipt)
	}

	processWithdrawals(statedb, block.Withdrawals())

	if fork >= vm.Prague {
		if _, err := ExtractRequests(evm, receipts); err != nil {
			return nil, common.Hash{}, err
		}
	}

	root, nodes, err := statedb.Commit(bc.db.WriteCode)
	if err != nil {
		return nil, common.Hash{}, lumenerr.StorageIO("failed committing block state", err)
	}
	if err := bc.db.InsertHot(block.Hash(), parent.Hash(), nodes); err != nil {
		return nil, common.Hash{}, lumenerr.StorageIO("failed inserting hot nodes", err)
	}
	return receipts, root, nil
}

// processWithdrawals credits each Shanghai+ withdrawal's amount (given
// in gwei) directly to its target account; withdrawals bypass the EVM
// entirely; there is no sender, no gas, and no possibility of failure.
func processWithdrawals(statedb *state.StateDB, withdrawals types.Withdrawals) {
	for _, w := range withdrawals {
		amount := new(uint256.Int).Mul(uint256.NewInt(w.AmountGwei), uint256.NewInt(1_000_000_000))
		statedb.AddBalance(w.Address, amount)
	}
}

// ancestorHashFunc returns a BLOCKHASH resolver bound to header's
// ancestry, walking back through the header map up to 256 blocks.
func (bc *BlockChain) ancestorHashFunc(header *types.Header) func(uint64) common.Hash {
	return func(number uint64) common.Hash {
		if number >= header.NumberU64() {
			return common.Hash{}
		}
		if header.NumberU64()-number > 256 {
			return common.Hash{}
		}
		cur := header
		for cur.NumberU64() > number {
			next, ok := bc.headers[cur.ParentHash]
			if !ok {
				return common.Hash{}
			}
			cur = next
		}
		return cur.Hash()
	}
}

// ForkChoiceUpdate atomically advances the head/safe/finalized pointers
// (spec.md §4.4). If head is a descendant of the current canonical
// head the update is a fast-forward; otherwise the chain reorgs,
// walking both branches back to their common ancestor and rewriting
// the number->hash index. Finalizing triggers a hot-tier flush for
// every block up to and including finalized.
func (bc *BlockChain) ForkChoiceUpdate(head, safe, finalized common.Hash) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if _, ok := bc.headers[head]; !ok {
		return lumenerr.InvalidBlock("fork choice head unknown", nil)
	}

	if bc.isDescendant(head, bc.head) {
		bc.extendCanonical(bc.head, head)
	} else {
		if err := bc.reorg(head); err != nil {
			return err
		}
	}

	bc.head, bc.safe, bc.finalized = head, safe, finalized

	if finalizedHeader, ok := bc.headers[finalized]; ok {
		if err := bc.db.Finalize(finalized, finalizedHeader.Root); err != nil {
			return lumenerr.StorageIO("failed finalizing hot tier", err)
		}
	}
	return nil
}

// isDescendant reports whether candidate is ancestor or a descendant of
// ancestor by walking candidate's ancestry back to ancestor's number.
func (bc *BlockChain) isDescendant(candidate, ancestor common.Hash) bool {
	if candidate == ancestor {
		return true
	}
	ancestorHeader, ok := bc.headers[ancestor]
	if !ok {
		return false
	}
	cur, ok := bc.headers[candidate]
	if !ok {
		return false
	}
	for cur.NumberU64() > ancestorHeader.NumberU64() {
		next, ok := bc.headers[cur.ParentHash]
		if !ok {
			return false
		}
		cur = next
		if cur.Hash() == ancestor {
			return true
		}
	}
	return false
}

// extendCanonical marks every block strictly between oldHead and
// newHead (inclusive of newHead) canonical in the number->hash index.
func (bc *BlockChain) extendCanonical(oldHead, newHead common.Hash) {
	cur, ok := bc.headers[newHead]
	if !ok {
		return
	}
	for cur.Hash() != oldHead {
		bc.canonical[cur.NumberU64()] = cur.Hash()
		parent, ok := bc.headers[cur.ParentHash]
		if !ok {
			break
		}
		cur = parent
	}
}

// reorg walks back from both the current head and newHead to their
// common ancestor, then rewrites the number->hash index so the new
// branch is canonical from the fork point forward.
func (bc *BlockChain) reorg(newHead common.Hash) error {
	oldCur, ok := bc.headers[bc.head]
	if !ok {
		return lumenerr.InconsistentStore("current head missing from header store", nil)
	}
	newCur, ok := bc.headers[newHead]
	if !ok {
		return lumenerr.InvalidBlock("reorg target unknown", nil)
	}

	newChain := []common.Hash{newHead}
	for oldCur.NumberU64() > newCur.NumberU64() {
		parent, ok := bc.headers[oldCur.ParentHash]
		if !ok {
			return lumenerr.InconsistentStore("old branch ancestry broken", nil)
		}
		oldCur = parent
	}
	for newCur.NumberU64() > oldCur.NumberU64() {
		parent, ok := bc.headers[newCur.ParentHash]
		if !ok {
			return lumenerr.InconsistentStore("new branch ancestry broken", nil)
		}
		newCur = parent
		newChain = append(newChain, newCur.Hash())
	}
	for oldCur.Hash() != newCur.Hash() {
		oldParent, ok := bc.headers[oldCur.ParentHash]
		if !ok {
			return lumenerr.InconsistentStore("branches never converge", nil)
		}
		newParent, ok := bc.headers[newCur.ParentHash]
		if !ok {
			return lumenerr.InconsistentStore("branches never converge", nil)
		}
		oldCur, newCur = oldParent, newParent
		newChain = append(newChain, newCur.Hash())
	}

	// newChain was built head-to-ancestor; reverse it so the index is
	// rewritten from the common ancestor forward.
	for i, j := 0, len(newChain)-1; i < j; i, j = i+1, j-1 {
		newChain[i], newChain[j] = newChain[j], newChain[i]
	}
	for _, hash := range newChain {
		h := bc.headers[hash]
		bc.canonical[h.NumberU64()] = hash
	}
	return nil
}

// GetHeader returns the header for hash, if known.
func (bc *BlockChain) GetHeader(hash common.Hash) (*types.Header, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	h, ok := bc.headers[hash]
	return h, ok
}

// CanonicalHash returns the canonical block hash at number, if any.
func (bc *BlockChain) CanonicalHash(number uint64) (common.Hash, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	h, ok := bc.canonical[number]
	return h, ok
}

// Head returns the current fork-choice head hash.
func (bc *BlockChain) Head() common.Hash {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.head
}

// GetBlock returns the full block for hash, if known.
func (bc *BlockChain) GetBlock(hash common.Hash) (*types.Block, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	b, ok := bc.bodies[hash]
	return b, ok
}

// GetReceipts returns the receipts produced by the block at hash, if
// known.
func (bc *BlockChain) GetReceipts(hash common.Hash) ([]*types.Receipt, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	r, ok := bc.receipts[hash]
	return r, ok
}

// Database returns the triedb instance backing account and storage
// state, for callers (the RPC layer) that need to open a StateDB at an
// arbitrary historical root.
func (bc *BlockChain) Database() *triedb.Database { return bc.db }

// Config returns the chain configuration, exposing the chain ID used
// to validate incoming transaction signatures at the RPC boundary.
func (bc *BlockChain) Config() ChainConfig { return bc.config }
