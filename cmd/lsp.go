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
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	enginelsp "jsrepl.dev/engine/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the engine as a Language Server over stdio",
	Long: `lsp runs the engine as an LSP server, exposing evaluation through
workspace/executeCommand with command name "jsrepl.evaluate" — the
natural transport for "select an expression in your editor, evaluate
it" bound to a real editor (spec.md §1).`,
	Run: runLSP,
}

func init() {
	rootCmd.AddCommand(lspCmd)
}

func runLSP(cmd *cobra.Command, args []string) {
	evalr := newEvaluator()
	server := enginelsp.NewServer(evalr)
	if err := server.Run(); err != nil {
		pterm.Fatal.Printf("lsp server exited: %v", err)
	}
}
