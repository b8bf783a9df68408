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
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var evalCmd = &cobra.Command{
	Use:   "eval <modulePath>",
	Short: "Evaluate one source fragment against a namespace and print its result",
	Long: `eval reads a single fragment of JavaScript or TypeScript — from -c,
or from stdin if -c is omitted — and evaluates it against the
namespace named by modulePath, printing the resulting value, stdout,
and stderr the way an editor's "eval region" command would.`,
	Args: cobra.ExactArgs(1),
	Run:  runEval,
}

func init() {
	evalCmd.Flags().StringP("code", "c", "", "the source fragment to evaluate (default: read stdin)")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) {
	modulePath := args[0]
	code, _ := cmd.Flags().GetString("code")
	if code == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			pterm.Fatal.Printf("reading stdin: %v", err)
		}
		code = string(data)
	}

	evalr := newEvaluator()
	res, err := evalr.Evaluate(modulePath, code, viper.GetBool("evalImports"), viper.GetBool("debug"))
	if err != nil {
		pterm.Error.Printf("evaluation of %s failed: %v\n", modulePath, err)
		os.Exit(1)
	}

	if res.Stdout != "" {
		fmt.Print(res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprint(os.Stderr, res.Stderr)
	}
	pterm.Success.Printf("%s => %v\n", modulePath, res.Value)
}
