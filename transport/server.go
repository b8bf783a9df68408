/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package transport implements the HTTP surface an editor integration
// talks to (spec.md §6, "Out of scope" for the engine itself but named
// here as the host side the spec leaves undefined): one JSON endpoint
// forwarding a fragment to the Evaluator, plus a WebSocket channel so
// the editor can be notified when a namespace's bindings change out
// from under it (e.g. a recursively-evaluated import was re-run).
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/segmentio/ksuid"

	"jsrepl.dev/engine/eval"
	"jsrepl.dev/engine/internal/logging"
)

// requestSchema bounds an /evaluate body to the shape Evaluate
// actually accepts, rejecting malformed requests before they reach
// the engine, the way the teacher's validate package schema-checks a
// manifest before trusting it.
const requestSchemaJSON = `{
	"type": "object",
	"required": ["code", "modulePath"],
	"properties": {
		"code": {"type": "string"},
		"modulePath": {"type": "string", "minLength": 1},
		"evalImports": {"type": "boolean"},
		"debug": {"type": "boolean"}
	}
}`

var requestSchema = compileRequestSchema()

func compileRequestSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("evaluate-request.json", bytes.NewReader([]byte(requestSchemaJSON))); err != nil {
		panic(fmt.Sprintf("transport: invalid request schema: %v", err))
	}
	schema, err := compiler.Compile("evaluate-request.json")
	if err != nil {
		panic(fmt.Sprintf("transport: compiling request schema: %v", err))
	}
	return schema
}

// EvaluateRequest mirrors spec.md §6's request shape exactly.
type EvaluateRequest struct {
	Code       string `json:"code"`
	ModulePath string `json:"modulePath"`
	EvalImports bool   `json:"evalImports,omitempty"`
	Debug       bool   `json:"debug,omitempty"`
}

// EvaluateResponse mirrors spec.md §6's response shape. Result is
// whatever the engine returned, passed to the JSON encoder as is; a
// value it cannot serialize (a function, say) makes the encoding fail,
// which is logged. Error is set instead of Result when Evaluate
// returned a fatal (propagating) error.
type EvaluateResponse struct {
	Result interface{} `json:"result,omitempty"`
	Stdout string      `json:"stdout"`
	Stderr string      `json:"stderr"`
	Error  string       `json:"error,omitempty"`
}

// Config configures one Server.
type Config struct {
	Port int
}

// Server is the engine's process-wide HTTP+WebSocket front door. The
// Namespace Store (via Evaluator) is the sole mutable state shared
// across requests, so every /evaluate call is serialized by evalMu —
// spec.md §5's "concurrent evaluate invocations must be serialized by
// the host".
type Server struct {
	port     int
	evalr    *eval.Evaluator
	server   *http.Server
	listener net.Listener
	wsHub    *hub

	mu      sync.RWMutex
	running bool
	evalMu  sync.Mutex
}

// NewServer returns a Server that evaluates requests against evalr.
func NewServer(config Config, evalr *eval.Evaluator) *Server {
	s := &Server{
		port:  config.Port,
		evalr: evalr,
		wsHub: newHub(),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/evaluate", s.handleEvaluate)
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.server = &http.Server{Handler: mux}
	return s
}

// Port returns the server's bound port.
func (s *Server) Port() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.port
}

// Start binds the listener and begins serving in a background
// goroutine, matching the teacher's "bind first, then go Serve" order
// so port-binding failures surface synchronously to the caller.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("server already running")
	}
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to bind port %d: %w", s.port, err)
	}
	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.GetLogger().Error("server error: %v", err)
		}
	}()

	s.running = true
	logging.GetLogger().Info("evaluation server started on port %d", s.port)
	return nil
}

// Close gracefully shuts the server down, closing any open WebSocket
// connections first.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.wsHub.closeAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.running = false
	logging.GetLogger().Info("evaluation server stopped")
	return err
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	requestID := ksuid.New().String()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "reading request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := requestSchema.Validate(raw); err != nil {
		logging.GetLogger().Debug("[%s] request failed schema validation: %v", requestID, err)
		http.Error(w, "request does not match schema: "+err.Error(), http.StatusBadRequest)
		return
	}

	var req EvaluateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	logging.GetLogger().Debug("[%s] evaluating %s", requestID, req.ModulePath)
	s.evalMu.Lock()
	res, err := s.evalr.Evaluate(req.ModulePath, req.Code, req.EvalImports, req.Debug)
	s.evalMu.Unlock()

	resp := EvaluateResponse{Stdout: res.Stdout, Stderr: res.Stderr}
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Result = res.Value
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.GetLogger().Error("failed to encode evaluate response: %v", err)
	}

	s.wsHub.broadcastEvaluated(req.ModulePath)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     isLocalOrigin,
}

// isLocalOrigin rejects cross-origin WebSocket upgrades from anything
// but the request's own host or a loopback address, so a page open in
// another tab cannot quietly attach to this process's evaluation
// channel and watch a developer's REPL output.
func isLocalOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := originURL.Hostname()
	requestHost := r.Host
	if i := strings.IndexByte(requestHost, ':'); i != -1 {
		requestHost = requestHost[:i]
	}
	return host == requestHost || host == "localhost" || host == "127.0.0.1" || host == "::1"
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.GetLogger().Error("websocket upgrade failed: %v", err)
		return
	}
	s.wsHub.add(conn)
}
