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

// Package lsp exposes the evaluation engine as an LSP custom command
// (SPEC_FULL.md §11): a user selects an expression inside a source
// file in their editor and requests evaluation (spec.md §1) via
// workspace/executeCommand, command name "jsrepl.evaluate", the same
// protocol.Handler + glsp/server.Server wiring the teacher's lsp/
// package uses, reduced to the single command this engine needs
// instead of the teacher's full completion/hover/codeAction surface.
package lsp

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"jsrepl.dev/engine/eval"
	"jsrepl.dev/engine/internal/logging"
)

// EvaluateCommand is the workspace/executeCommand name an editor
// extension invokes to drive the engine.
const EvaluateCommand = "jsrepl.evaluate"

// EvaluateArgs is the single JSON argument workspace/executeCommand
// passes for EvaluateCommand, mirroring transport.EvaluateRequest so
// every host binding (HTTP, MCP, LSP) agrees on one request shape.
type EvaluateArgs struct {
	Code        string `json:"code"`
	ModulePath  string `json:"modulePath"`
	EvalImports bool   `json:"evalImports,omitempty"`
	Debug       bool   `json:"debug,omitempty"`
}

// Server is the engine's LSP front door.
type Server struct {
	evalr  *eval.Evaluator
	server *glspserver.Server
}

// NewServer returns a Server exposing evalr over EvaluateCommand.
func NewServer(evalr *eval.Evaluator) *Server {
	// pterm writes to stdout by default; stdio LSP transport needs
	// stdout reserved for protocol frames, exactly as the teacher's
	// lsp.NewServer redirects pterm before wiring the handler.
	pterm.SetDefaultOutput(os.Stderr)
	logging.SetMode(logging.ModeLSP)

	s := &Server{evalr: evalr}
	handler := protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		WorkspaceExecuteCommand: s.executeCommand,
	}
	s.server = glspserver.NewServer(&handler, "jsrepl-lsp", false)
	return s
}

// Run starts the LSP server over stdio, blocking until the client
// disconnects or sends shutdown/exit.
func (s *Server) Run() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := protocol.ServerCapabilities{
		ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
			Commands: []string{EvaluateCommand},
		},
	}
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name: "jsrepl-lsp",
		},
	}, nil
}

func (s *Server) initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	logging.Info("jsrepl LSP server initialized, evaluate via workspace/executeCommand %q", EvaluateCommand)
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	logging.Info("jsrepl LSP server shutting down")
	return nil
}

func (s *Server) executeCommand(context *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	if params.Command != EvaluateCommand {
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
	if len(params.Arguments) == 0 {
		return nil, fmt.Errorf("%s requires one argument", EvaluateCommand)
	}

	raw, err := json.Marshal(params.Arguments[0])
	if err != nil {
		return nil, fmt.Errorf("marshaling command argument: %w", err)
	}
	var args EvaluateArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("unmarshaling command argument: %w", err)
	}
	if args.ModulePath == "" {
		return nil, fmt.Errorf("modulePath is required")
	}

	res, err := s.evalr.Evaluate(args.ModulePath, args.Code, args.EvalImports, args.Debug)
	if err != nil {
		return nil, fmt.Errorf("evaluating %s: %w", args.ModulePath, err)
	}
	return map[string]any{
		"result": res.Value,
		"stdout": res.Stdout,
		"stderr": res.Stderr,
	}, nil
}
