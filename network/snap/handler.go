// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package snap

import (
	"sync"
	"time"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/lumenerr"
)

// StateProvider supplies the range and node data a Handler answers
// requests from. A running node wires this against its own trie and
// trie-database layers; Handler itself only enforces the wire
// protocol's size and rate limits, not range iteration.
type StateProvider interface {
	AccountRange(root, start, end common.Hash, maxResults int) (entries []AccountEntry, proof [][]byte, more bool, err error)
	StorageRange(root, account, start, end common.Hash, maxResults int) (entries []StorageEntry, proof [][]byte, more bool, err error)
	ByteCodes(hashes []common.Hash) [][]byte
	TrieNodes(root common.Hash, paths [][]byte) [][]byte
}

// throttleWindow counts one peer's requests within the current window.
type throttleWindow struct {
	count       int
	windowStart time.Time
}

// Throttler caps how many snap requests a single peer may issue per
// window, independent of the per-peer byte-size adaptation the
// requesting side applies to itself (spec.md §4.5's adaptive sizing
// governs a well-behaved peer's own request rate; a responder still
// needs its own floor against a misbehaving one).
type Throttler struct {
	mu          sync.Mutex
	windows     map[string]*throttleWindow
	maxRequests int
	window      time.Duration
}

// NewThrottler returns a Throttler allowing maxRequests per window per
// peer.
func NewThrottler(maxRequests int, window time.Duration) *Throttler {
	return &Throttler{windows: make(map[string]*throttleWindow), maxRequests: maxRequests, window: window}
}

// Allow reports whether peerID may issue another request right now.
func (t *Throttler) Allow(peerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	w, ok := t.windows[peerID]
	if !ok {
		t.windows[peerID] = &throttleWindow{count: 1, windowStart: now}
		return true
	}
	if now.Sub(w.windowStart) >= t.window {
		w.count = 1
		w.windowStart = now
		return true
	}
	w.count++
	return w.count <= t.maxRequests
}

// Forget drops tracking state for a disconnected peer.
func (t *Throttler) Forget(peerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.windows, peerID)
}

// responseSizer enforces MaxResponseBytes while a handler accumulates
// entries into a response.
type responseSizer struct {
	current, max int
}

func newResponseSizer(max int) *responseSizer { return &responseSizer{max: max} }

func (s *responseSizer) add(n int) bool {
	if s.current+n > s.max {
		return false
	}
	s.current += n
	return true
}

// Handler answers snap/1 requests against a StateProvider, applying
// the protocol's response-size and per-peer rate ceilings.
type Handler struct {
	state     StateProvider
	throttler *Throttler
}

// NewHandler returns a Handler serving state from provider, throttled
// per peer by throttler (nil disables throttling).
func NewHandler(state StateProvider, throttler *Throttler) *Handler {
	return &Handler{state: state, throttler: throttler}
}

func (h *Handler) allow(peerID string) error {
	if h.throttler != nil && !h.throttler.Allow(peerID) {
		return lumenerr.PeerError(peerID, "snap request throttled", nil)
	}
	return nil
}

// HandleGetAccountRange answers a GetAccountRangePacket.
func (h *Handler) HandleGetAccountRange(peerID string, req *GetAccountRangePacket) (*AccountRangePacket, error) {
	if err := h.allow(peerID); err != nil {
		return nil, err
	}
	max := MaxAccountRangeResponse
	entries, proof, _, err := h.state.AccountRange(req.Root, req.Start, req.End, max)
	if err != nil {
		return nil, err
	}
	limit := MaxResponseBytes
	if req.Bytes > 0 && req.Bytes < uint64(limit) {
		limit = int(req.Bytes)
	}
	sizer := newResponseSizer(limit)
	out := make([]AccountEntry, 0, len(entries))
	for _, e := range entries {
		if !sizer.add(len(e.Body)) {
			break
		}
		out = append(out, e)
	}
	return &AccountRangePacket{RequestID: req.RequestID, Accounts: out, Proof: proof}, nil
}

// HandleGetStorageRanges answers a GetStorageRangesPacket.
func (h *Handler) HandleGetStorageRanges(peerID string, req *GetStorageRangesPacket) (*StorageRangesPacket, error) {
	if err := h.allow(peerID); err != nil {
		return nil, err
	}
	entries, proof, _, err := h.state.StorageRange(req.Root, req.Account, req.Start, req.End, MaxStorageRangeResponse)
	if err != nil {
		return nil, err
	}
	sizer := newResponseSizer(MaxResponseBytes)
	out := make([]StorageEntry, 0, len(entries))
	for _, e := range entries {
		if !sizer.add(len(e.Body)) {
			break
		}
		out = append(out, e)
	}
	return &StorageRangesPacket{RequestID: req.RequestID, Slots: out, Proof: proof}, nil
}

// HandleGetByteCodes answers a GetByteCodesPacket.
func (h *Handler) HandleGetByteCodes(peerID string, req *GetByteCodesPacket) (*ByteCodesPacket, error) {
	if err := h.allow(peerID); err != nil {
		return nil, err
	}
	hashes := req.Hashes
	if len(hashes) > MaxByteCodesResponse {
		hashes = hashes[:MaxByteCodesResponse]
	}
	sizer := newResponseSizer(MaxResponseBytes)
	codes := h.state.ByteCodes(hashes)
	out := make([][]byte, 0, len(codes))
	for _, c := range codes {
		if !sizer.add(len(c)) {
			break
		}
		out = append(out, c)
	}
	return &ByteCodesPacket{RequestID: req.RequestID, Codes: out}, nil
}

// HandleGetTrieNodes answers a GetTrieNodesPacket.
func (h *Handler) HandleGetTrieNodes(peerID string, req *GetTrieNodesPacket) (*TrieNodesPacket, error) {
	if err := h.allow(peerID); err != nil {
		return nil, err
	}
	paths := req.Paths
	if len(paths) > MaxTrieNodesResponse {
		paths = paths[:MaxTrieNodesResponse]
	}
	sizer := newResponseSizer(MaxResponseBytes)
	nodes := h.state.TrieNodes(req.Root, paths)
	out := make([][]byte, len(paths))
	for i, n := range nodes {
		if i >= len(out) {
			break
		}
		if !sizer.add(len(n)) {
			break
		}
		out[i] = n
	}
	return &TrieNodesPacket{RequestID: req.RequestID, Nodes: out}, nil
}
