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

// Package mcp exposes the evaluation engine as a Model Context
// Protocol server: a single tool, evaluate_js, lets an agentic coding
// assistant drive the same engine an editor user would (SPEC_FULL.md
// §11), following the teacher's mcp/server.go registration pattern of
// building an *mcp.Server and registering tools against it before
// running a stdio transport.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"jsrepl.dev/engine/eval"
	"jsrepl.dev/engine/internal/logging"
	"jsrepl.dev/engine/mcp/tools"
)

// Server wraps one mcp.Server wired to a single Evaluator.
type Server struct {
	evalr  *eval.Evaluator
	server *mcpsdk.Server
}

// NewServer returns a Server exposing evalr's evaluate_js tool.
func NewServer(evalr *eval.Evaluator) *Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "jsrepl",
		Version: "0.1.0",
	}, nil)

	s := &Server{evalr: evalr, server: server}
	tools.Register(server, evalr)
	return s
}

// Run starts the MCP server over stdio, blocking until ctx is
// cancelled or the transport closes.
func (s *Server) Run(ctx context.Context) error {
	logging.GetLogger().Info("starting MCP server over stdio")
	if err := s.server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
