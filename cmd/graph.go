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
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"jsrepl.dev/engine/graph"
	"jsrepl.dev/engine/internal/platform"
)

var graphCmd = &cobra.Command{
	Use:   "graph <root>",
	Short: "List the imports and exports of every module under root, without evaluating any of them",
	Long: `graph answers "what can I import from here" before you write the
import: it runs the read-only static scanner (SPEC_FULL.md §12.4) over
every file under root matching --pattern, honoring .gitignore, and
prints each module's declared imports and exports. It never touches
the Namespace Store.`,
	Args: cobra.ExactArgs(1),
	Run:  runGraph,
}

func init() {
	graphCmd.Flags().String("pattern", "**/*.{js,jsx,ts,tsx}", "doublestar glob of files to scan")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) {
	root := args[0]
	pattern, _ := cmd.Flags().GetString("pattern")

	fs := platform.NewOSFileSystem()
	scanner := graph.New(fs)
	infos, err := scanner.ScanWorkspace(fs, root, pattern)
	if err != nil {
		pterm.Fatal.Printf("scanning %s: %v", root, err)
	}

	for _, info := range infos {
		fmt.Printf("%s\n", info.Path)
		for _, imp := range info.Imports {
			fmt.Printf("  import %v from %q\n", imp.Names, imp.Specifier)
		}
		for _, exp := range info.Exports {
			fmt.Printf("  export %s\n", exp)
		}
	}
	if len(infos) == 0 {
		fmt.Fprintf(os.Stderr, "no modules matched %q under %s\n", pattern, root)
	}
}
