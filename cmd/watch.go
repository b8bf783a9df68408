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
	"os/signal"
	"syscall"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"jsrepl.dev/engine/eval"
	"jsrepl.dev/engine/internal/logging"
	"jsrepl.dev/engine/internal/platform"
)

var watchCmd = &cobra.Command{
	Use:   "watch <modulePath>",
	Short: "Re-evaluate a fragment whenever its file changes on disk",
	Long: `watch re-runs the last-evaluated fragment from modulePath against its
namespace whenever the file changes on disk (SPEC_FULL.md §12.5),
combined with an interactive keyboard mode: press 'r' to force a
re-evaluation, 'd' to toggle debug mode, or 'q'/Ctrl+C to quit.`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	modulePath := args[0]
	evalr := newEvaluator()

	state := &watchState{evalr: evalr, fs: evalr.FS, modulePath: modulePath}

	watcher, err := platform.NewFSNotifyFileWatcher()
	if err != nil {
		pterm.Fatal.Printf("starting file watcher: %v", err)
	}
	defer watcher.Close()

	if err := watcher.Add(modulePath); err != nil {
		pterm.Fatal.Printf("watching %s: %v", modulePath, err)
	}

	state.reevaluate()

	quitChan := make(chan struct{})
	go handleWatchKeyboard(state, quitChan)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case event := <-watcher.Events():
			if event.Op&(platform.Write|platform.Create) != 0 {
				pterm.Info.Printf("%s changed, re-evaluating\n", event.Name)
				state.reevaluate()
			}
		case werr := <-watcher.Errors():
			logging.GetLogger().Error("watch error: %v", werr)
		case <-quitChan:
			return
		case <-sigChan:
			return
		}
	}
}

// watchState carries the one namespace watch re-drives on every
// change, plus the debug toggle the interactive keyboard mode flips.
type watchState struct {
	evalr      *eval.Evaluator
	fs         platform.FileSystem
	modulePath string
	debug      bool
}

func (w *watchState) reevaluate() {
	code, err := w.fs.ReadFile(w.modulePath)
	if err != nil {
		pterm.Error.Printf("reading %s: %v\n", w.modulePath, err)
		return
	}
	res, err := w.evalr.Evaluate(w.modulePath, string(code), true, w.debug)
	if err != nil {
		pterm.Error.Printf("evaluation of %s failed: %v\n", w.modulePath, err)
		return
	}
	if res.Stdout != "" {
		fmt.Print(res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprint(os.Stderr, res.Stderr)
	}
	pterm.Success.Printf("%s => %v\n", w.modulePath, res.Value)
}

// handleWatchKeyboard adapts the teacher's handleKeyboardInput
// dispatch (cmd/serve.go) to this engine's three watch commands.
func handleWatchKeyboard(state *watchState, quitChan chan struct{}) {
	err := keyboard.Listen(func(key keys.Key) (stop bool, err error) {
		if key.Code == keys.CtrlC {
			close(quitChan)
			return true, nil
		}
		if key.Code != keys.RuneKey || len(key.Runes) == 0 {
			return false, nil
		}
		switch key.Runes[0] {
		case 'q', 'Q':
			pterm.Info.Println("quitting...")
			close(quitChan)
			return true, nil
		case 'r', 'R':
			pterm.Info.Println("re-evaluating...")
			state.reevaluate()
		case 'd', 'D':
			state.debug = !state.debug
			logging.GetLogger().SetDebugEnabled(state.debug)
			pterm.Info.Printf("debug mode: %v\n", state.debug)
		}
		return false, nil
	})
	if err != nil {
		logging.GetLogger().Error("keyboard listener exited: %v", err)
	}
}
