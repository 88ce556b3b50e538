// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package rpc

import (
	"bytes"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/luxfi/log"
)

// WebSocket connection limits: maximum message size, keepalive and write
// deadlines, and a per-connection request rate (spec.md §7's
// peer-misbehavior handling, applied here to RPC clients rather than P2P
// peers).
const (
	wsMaxMessageSize = 1 << 20
	wsPingInterval   = 30 * time.Second
	wsPongTimeout    = 60 * time.Second
	wsWriteTimeout   = 10 * time.Second
	wsRateLimit      = 100
	wsRateWindow     = time.Second
)

// rateBucket is a per-connection token bucket limiting request rate.
type rateBucket struct {
	mu       sync.Mutex
	tokens   int
	max      int
	lastFill time.Time
	window   time.Duration
}

func newRateBucket(max int, window time.Duration) *rateBucket {
	return &rateBucket{tokens: max, max: max, lastFill: time.Now(), window: window}
}

func (rb *rateBucket) Allow() bool {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	now := time.Now()
	if now.Sub(rb.lastFill) >= rb.window {
		rb.tokens = rb.max
		rb.lastFill = now
	}
	if rb.tokens <= 0 {
		return false
	}
	rb.tokens--
	return true
}

// WSHandler upgrades incoming connections and dispatches each inbound
// JSON-RPC text message through the same method-rewrite path the plain
// HTTP transport uses, so eth_* calls work identically over either
// transport.
type WSHandler struct {
	upgrader websocket.Upgrader
	inner    *Server
	nextID   atomic.Uint64
}

// NewWSHandler wraps inner, an already-constructed JSON-RPC server, for
// WebSocket delivery.
func NewWSHandler(inner *Server) *WSHandler {
	return &WSHandler{
		upgrader: websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
		inner:    inner,
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("websocket upgrade failed", "err", err)
		return
	}
	id := h.nextID.Add(1)
	go h.serve(id, conn)
}

func (h *WSHandler) serve(id uint64, conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessageSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})
	if err := conn.SetReadDeadline(time.Now().Add(wsPongTimeout)); err != nil {
		return
	}

	limiter := newRateBucket(wsRateLimit, wsRateWindow)
	stop := make(chan struct{})
	defer close(stop)
	go h.ping(conn, stop)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Debug("websocket connection closed", "conn", id, "err", err)
			return
		}
		if !limiter.Allow() {
			h.writeError(conn, "rate limit exceeded")
			continue
		}
		reply := h.dispatch(data)
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			return
		}
	}
}

func (h *WSHandler) ping(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch feeds a single JSON-RPC message through the same envelope
// rewrite and gorilla/rpc server the HTTP transport uses, via an
// in-memory httptest-style request/response pair.
func (h *WSHandler) dispatch(data []byte) []byte {
	rec := &bufferResponseWriter{header: make(http.Header)}
	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	if err != nil {
		return []byte(`{"error":"rpc: malformed request"}`)
	}
	req.Header.Set("Content-Type", "application/json")
	rewriteMethodOrServeError(rec, req, h.inner.inner)
	return rec.body.Bytes()
}

func (h *WSHandler) writeError(conn *websocket.Conn, msg string) {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+msg+`"}`))
}

// bufferResponseWriter adapts gorilla/rpc's http.ResponseWriter-shaped
// dispatch path to an in-memory buffer, so a WebSocket message can be
// routed through the exact same handler the HTTP transport uses.
type bufferResponseWriter struct {
	header     http.Header
	body       bytes.Buffer
	statusCode int
}

func (w *bufferResponseWriter) Header() http.Header { return w.header }
func (w *bufferResponseWriter) Write(p []byte) (int, error) { return w.body.Write(p) }
func (w *bufferResponseWriter) WriteHeader(code int)        { w.statusCode = code }
