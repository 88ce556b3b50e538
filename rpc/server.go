// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package rpc

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"unicode"

	"github.com/gorilla/rpc"
	gjson "github.com/gorilla/rpc/json"
	log "github.com/luxfi/log"
)

// Server is the HTTP JSON-RPC transport (spec.md §6's "external
// collaborator" RPC surface). It wraps a gorilla/rpc server, which
// natively dispatches "Service.Method"-shaped requests, behind a
// rewriting handler that accepts the wire format Ethereum clients
// actually send ("eth_getBalance").
type Server struct {
	inner *rpc.Server
	mux   *http.ServeMux
}

// NewServer registers eth on the "Eth" service name and engine (if
// non-nil) on "Engine", and mounts metricsHandler (if non-nil) at
// /metrics.
func NewServer(eth *EthAPI, engine interface{}, metricsHandler http.Handler) (*Server, error) {
	inner := rpc.NewServer()
	inner.RegisterCodec(gjson.NewCodec(), "application/json")
	if err := inner.RegisterService(eth, "Eth"); err != nil {
		return nil, err
	}
	if engine != nil {
		if err := inner.RegisterService(engine, "Engine"); err != nil {
			return nil, err
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rewriteMethodOrServeError(w, r, inner)
	}))
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}
	return &Server{inner: inner, mux: mux}, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// envelope is the subset of a JSON-RPC request this server needs to
// read in order to rewrite its method name; every other field is
// forwarded to gorilla/rpc untouched via rawMethod replacement below.
type envelope struct {
	Method string `json:"method"`
}

// rewriteMethodOrServeError rewrites an incoming "eth_getBalance"-style
// method name to the "Eth.GetBalance" dot-convention gorilla/rpc's
// registry expects, then forwards the (body-replaced) request.
func rewriteMethodOrServeError(w http.ResponseWriter, r *http.Request, inner *rpc.Server) {
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		http.Error(w, "rpc: cannot read request body", http.StatusBadRequest)
		return
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		http.Error(w, "rpc: malformed JSON-RPC request", http.StatusBadRequest)
		return
	}
	rewritten, err := rewriteMethod(env.Method)
	if err != nil {
		log.Debug("rejecting rpc request with unrecognized method", "method", env.Method, "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body = bytes.Replace(body, []byte(`"method":"`+env.Method+`"`), []byte(`"method":"`+rewritten+`"`), 1)
	body = bytes.Replace(body, []byte(`"method": "`+env.Method+`"`), []byte(`"method": "`+rewritten+`"`), 1)

	r.Body = io.NopCloser(bytes.NewReader(body))
	r.ContentLength = int64(len(body))
	inner.ServeHTTP(w, r)
}

// rewriteMethod converts "namespace_methodName" into the
// "Namespace.MethodName" shape a gorilla/rpc RegisterService(receiver,
// "Namespace") call dispatches on.
func rewriteMethod(method string) (string, error) {
	ns, name, ok := strings.Cut(method, "_")
	if !ok || ns == "" || name == "" {
		return "", &methodError{method}
	}
	return capitalize(ns) + "." + capitalize(name), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

type methodError struct{ method string }

func (e *methodError) Error() string { return "rpc: unrecognized method " + e.method }
