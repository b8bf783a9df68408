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
package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	enginemcp "jsrepl.dev/engine/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the engine over the Model Context Protocol",
	Long: `mcp runs the engine as an MCP server over stdio, exposing a single
evaluate_js tool so an agentic coding assistant can drive the same
namespace-scoped evaluator an editor user would (SPEC_FULL.md §11).`,
	Run: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) {
	evalr := newEvaluator()
	server := enginemcp.NewServer(evalr)
	if err := server.Run(context.Background()); err != nil {
		pterm.Fatal.Printf("mcp server exited: %v", err)
	}
}
