// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package node

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// accessLogHandler wraps an RPC transport handler with a one-line-per-
// request log, written to whatever sink cmd/lumen configured (a
// terminal, a color-aware terminal, or a rotated log file). Kept
// separate from github.com/luxfi/log's structured logging, which has
// no confirmed handler-injection entry point in this tree's pinned
// version: access logging is plain text by design, not a second
// structured logger.
type accessLogHandler struct {
	next http.Handler
	out  io.Writer
}

func newAccessLogHandler(next http.Handler, out io.Writer) http.Handler {
	if out == nil {
		return next
	}
	return &accessLogHandler{next: next, out: out}
}

func (h *accessLogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.next.ServeHTTP(rec, r)
	fmt.Fprintf(h.out, "%s %s %s %d %s\n", start.Format(time.RFC3339), r.Method, r.URL.Path, rec.status, time.Since(start))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
