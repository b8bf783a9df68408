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
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jsrepl.dev/engine/eval"
	"jsrepl.dev/engine/internal/platform"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jsrepl",
	Short: "An interactive evaluator for JavaScript/TypeScript source fragments",
	Long: `jsrepl evaluates JavaScript and TypeScript source fragments one at a
time against a persistent, per-file namespace, the way a Lisp REPL
evaluates one top-level form at a time. Bind it to an editor's "eval
region" command, drive it from an agent over MCP, or run it as a
standalone HTTP+WebSocket server.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to
// happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newEvaluator builds the shared Evaluator every subcommand drives,
// rooted at the resolved project directory.
func newEvaluator() *eval.Evaluator {
	fs := platform.NewOSFileSystem()
	evalr := eval.New(fs)
	if depth := viper.GetInt("maxImportDepth"); depth > 0 {
		evalr.MaxImportDepth = depth
	}
	evalr.AllowComplexDefaultExport = viper.GetBool("liftDefaultExportRestriction")
	return evalr
}

func resolveProjectDir(configPath, projectDirFlag string) (string, bool) {
	if projectDirFlag != "" {
		abs, err := expandPath(projectDirFlag)
		if err != nil {
			pterm.Fatal.Printf("Invalid --project-dir: %v", err)
		}
		return abs, true
	}
	configAbs, err := filepath.Abs(configPath)
	if err != nil {
		pterm.Fatal.Printf("Invalid --config: %v", err)
	}
	configDir := filepath.Dir(configAbs)
	base := filepath.Base(configDir)
	if base == ".config" || base == "config" {
		return filepath.Dir(configDir), true
	}
	// fallback: use current working directory
	cwd, err := os.Getwd()
	if err != nil {
		pterm.Fatal.Printf("Unable to get current working directory: %v", err)
	}
	if !strings.HasPrefix(configAbs, cwd) {
		pterm.Warning.Printf("Warning: --config is outside of current dir, guessing project root as %s\n", cwd)
	}
	return cwd, false
}

// expandPath expands ~, handles relative and absolute paths
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			path = home
		} else if strings.HasPrefix(path, "~/") {
			path = filepath.Join(home, path[2:])
		}
	}
	return filepath.Abs(path)
}

func initConfig() {
	var err error
	cfgFile := viper.GetString("configFile")
	projectDir, shouldChange := resolveProjectDir(cfgFile, viper.GetString("projectDir"))
	viper.Set("projectDir", projectDir)
	viper.AddConfigPath(filepath.Join(projectDir, ".config"))
	// Fall back to the XDG user config dir (~/.config/jsrepl on most
	// systems) when the project carries no .config/jsrepl.yaml of its
	// own, the same cross-platform discovery convention the teacher
	// pulls xdg in for.
	viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "jsrepl"))
	viper.SetConfigType("yaml")
	viper.SetConfigName("jsrepl")
	if shouldChange {
		if err := os.Chdir(projectDir); err != nil {
			cobra.CheckErr(errors.Join(err, errors.New("failed to change into project directory")))
		}
	}
	if viper.GetBool("verbose") {
		pterm.EnableDebugMessages()
	}
	pterm.Debug.Println("Using project directory: ", projectDir)
	if cfgFile != "" {
		cfgFile, err = expandPath(cfgFile)
		cobra.CheckErr(err)
		viper.SetConfigFile(cfgFile)
	}
	if err := viper.ReadInConfig(); err == nil {
		cfgFile = viper.ConfigFileUsed()
		pterm.Debug.Println("Using config file: ", cfgFile)
	}
	viper.Set("configFile", cfgFile)

	viper.AutomaticEnv()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().String("config", "", "config file (default is $CWD/.config/jsrepl.yaml)")
	rootCmd.PersistentFlags().String("project-dir", "", "Path to project directory (default: parent directory of .config/jsrepl.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging output")
	rootCmd.PersistentFlags().Bool("debug", false, "surface caught runtime errors and namespace binding diffs")
	rootCmd.PersistentFlags().Bool("eval-imports", false, "recursively evaluate imported modules not yet evaluated")
	rootCmd.PersistentFlags().Int("max-import-depth", 0, "bound recursive import evaluation (0 uses the engine default)")
	rootCmd.PersistentFlags().Bool("lift-default-export-restriction", false, "allow `export default <expr>` for any expression, not just declarations")
	viper.BindPFlag("configFile", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("projectDir", rootCmd.PersistentFlags().Lookup("project-dir"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("evalImports", rootCmd.PersistentFlags().Lookup("eval-imports"))
	viper.BindPFlag("maxImportDepth", rootCmd.PersistentFlags().Lookup("max-import-depth"))
	viper.BindPFlag("liftDefaultExportRestriction", rootCmd.PersistentFlags().Lookup("lift-default-export-restriction"))
}
