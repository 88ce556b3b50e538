// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package txpool implements the pending-transaction mempool (spec.md
// §5): a set of pending transactions indexed by sender and by hash,
// serialized by a fine-grained lock, with readers taking a snapshot
// rather than holding the lock across iteration.
package txpool

import (
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/lumenerr"
)

type senderTxs struct {
	byNonce map[uint64]*types.Transaction
	nonces  mapset.Set[uint64] // pending nonces for this sender, per spec.md §5
}

// Pool is the pending-transaction mempool.
type Pool struct {
	mu      sync.RWMutex
	byHash  map[common.Hash]*types.Transaction
	senders map[common.Address]*senderTxs
	signer  types.Signer
}

// New returns an empty pool validating signatures against signer.
func New(signer types.Signer) *Pool {
	return &Pool{
		byHash:  make(map[common.Hash]*types.Transaction),
		senders: make(map[common.Address]*senderTxs),
		signer:  signer,
	}
}

// Add inserts tx, replacing any existing transaction from the same
// sender at the same nonce (a same-nonce resubmission, e.g. a fee
// bump, is accepted unconditionally here; a full implementation would
// additionally require a higher fee before allowing the replacement).
func (p *Pool) Add(tx *types.Transaction) error {
	sender, err := tx.Sender(p.signer)
	if err != nil {
		return lumenerr.InvalidTransaction("cannot recover sender", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	st, ok := p.senders[sender]
	if !ok {
		st = &senderTxs{byNonce: make(map[uint64]*types.Transaction), nonces: mapset.NewThreadUnsafeSet[uint64]()}
		p.senders[sender] = st
	}
	if old, ok := st.byNonce[tx.Nonce]; ok {
		delete(p.byHash, old.Hash())
	}
	st.byNonce[tx.Nonce] = tx
	st.nonces.Add(tx.Nonce)
	p.byHash[tx.Hash()] = tx
	return nil
}

// Has reports whether hash is a known pending transaction.
func (p *Pool) Has(hash common.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.byHash[hash]
	return ok
}

// Get returns the pending transaction with the given hash, if any.
func (p *Pool) Get(hash common.Hash) (*types.Transaction, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tx, ok := p.byHash[hash]
	return tx, ok
}

// Remove drops hash from the pool, e.g. once it has been mined.
func (p *Pool) Remove(hash common.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tx, ok := p.byHash[hash]
	if !ok {
		return
	}
	delete(p.byHash, hash)
	sender, err := tx.Sender(p.signer)
	if err != nil {
		return
	}
	if st, ok := p.senders[sender]; ok {
		delete(st.byNonce, tx.Nonce)
		st.nonces.Remove(tx.Nonce)
		if len(st.byNonce) == 0 {
			delete(p.senders, sender)
		}
	}
}

// Pending returns a snapshot of every pending transaction, grouped by
// sender with each sender's transactions ordered by nonce; callers
// iterate the snapshot without holding the pool's lock.
func (p *Pool) Pending() map[common.Address][]*types.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[common.Address][]*types.Transaction, len(p.senders))
	for sender, st := range p.senders {
		nonces := st.nonces.ToSlice()
		sort.Slice(nonces, func(i, j int) bool { return nonces[i] < nonces[j] })
		txs := make([]*types.Transaction, len(nonces))
		for i, n := range nonces {
			txs[i] = st.byNonce[n]
		}
		out[sender] = txs
	}
	return out
}

// Len returns the total number of pending transactions across every
// sender.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byHash)
}

// PendingNonce returns the sender's next expected nonce given its
// pending transactions, or ok=false if the sender has none pending.
func (p *Pool) PendingNonce(sender common.Address) (nonce uint64, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	st, exists := p.senders[sender]
	if !exists || st.nonces.Cardinality() == 0 {
		return 0, false
	}
	max := uint64(0)
	for n := range st.nonces.Iter() {
		if n > max {
			max = n
		}
	}
	return max + 1, true
}
