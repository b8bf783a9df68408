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

// Package tools registers the MCP tools the engine exposes. Grounded
// in the teacher's mcp/tools/suggest_attributes.go: a raw
// mcp.ToolHandler that hand-decodes req.Params.Arguments, paired with
// an *jsonschema.Schema built once (via google/jsonschema-go, the
// schema type github.com/modelcontextprotocol/go-sdk/mcp requires —
// a different consumer than the santhosh-tekuri schema transport uses
// to validate inbound HTTP requests, not the same concern twice).
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	jsonschema "github.com/google/jsonschema-go/jsonschema"

	"jsrepl.dev/engine/eval"
)

// EvaluateArgs is the evaluate_js tool's input shape, mirroring
// transport.EvaluateRequest so an agent and an editor drive the same
// Evaluator the same way.
type EvaluateArgs struct {
	Code        string `json:"code"`
	ModulePath  string `json:"modulePath"`
	EvalImports bool   `json:"evalImports,omitempty"`
	Debug       bool   `json:"debug,omitempty"`
}

var evaluateSchema = mustBuildSchema(map[string]any{
	"type":     "object",
	"required": []string{"code", "modulePath"},
	"properties": map[string]any{
		"code":        map[string]any{"type": "string", "description": "the source fragment to evaluate"},
		"modulePath":  map[string]any{"type": "string", "description": "the namespace the fragment belongs to, e.g. a file path"},
		"evalImports": map[string]any{"type": "boolean", "description": "recursively evaluate imported modules not yet evaluated"},
		"debug":       map[string]any{"type": "boolean", "description": "surface caught runtime errors and binding diffs"},
	},
})

func mustBuildSchema(doc map[string]any) *jsonschema.Schema {
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("mcp/tools: marshaling schema literal: %v", err))
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		panic(fmt.Sprintf("mcp/tools: unmarshaling schema: %v", err))
	}
	return &schema
}

// Register adds evaluate_js to server, backed by evalr.
func Register(server *mcp.Server, evalr *eval.Evaluator) {
	server.AddTool(&mcp.Tool{
		Name:        "evaluate_js",
		Description: "Evaluate a JavaScript/TypeScript source fragment against a persistent namespace and return its result, stdout, and stderr.",
		InputSchema: evaluateSchema,
	}, makeEvaluateHandler(evalr))
}

func makeEvaluateHandler(evalr *eval.Evaluator) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args EvaluateArgs
		if req.Params.Arguments != nil {
			raw, err := json.Marshal(req.Params.Arguments)
			if err != nil {
				return nil, fmt.Errorf("marshaling tool arguments: %w", err)
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("unmarshaling tool arguments: %w", err)
			}
		}
		if args.ModulePath == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "modulePath is required"}},
				IsError: true,
			}, nil
		}

		res, err := evalr.Evaluate(args.ModulePath, args.Code, args.EvalImports, args.Debug)
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "evaluation failed: " + err.Error()}},
				IsError: true,
			}, nil
		}

		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: renderResult(args.ModulePath, res)}}}, nil
	}
}

// renderResult builds the tool's human-readable summary as Markdown
// text (the MCP client renders it, so unlike the teacher's
// browser-facing demo chrome this never needs a server-side
// Markdown->HTML pass).
func renderResult(modulePath string, res eval.Result) string {
	var md strings.Builder
	fmt.Fprintf(&md, "## evaluated `%s`\n\n", modulePath)
	fmt.Fprintf(&md, "**result:** `%v`\n\n", res.Value)
	if res.Stdout != "" {
		fmt.Fprintf(&md, "**stdout:**\n```\n%s\n```\n\n", res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprintf(&md, "**stderr:**\n```\n%s\n```\n\n", res.Stderr)
	}
	return md.String()
}
