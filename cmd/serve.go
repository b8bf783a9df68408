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
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"jsrepl.dev/engine/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine as an HTTP+WebSocket server for editor integrations",
	Long: `serve binds an /evaluate HTTP endpoint and a /ws WebSocket channel
(spec.md §6's host-facing surface) so an editor extension can drive the
engine over the network instead of embedding it in-process.`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 7717, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	port, _ := cmd.Flags().GetInt("port")

	evalr := newEvaluator()
	server := transport.NewServer(transport.Config{Port: port}, evalr)
	if err := server.Start(); err != nil {
		pterm.Fatal.Printf("failed to start server: %v", err)
	}

	pterm.Success.Printf("jsrepl server listening on http://localhost:%d (evaluate: POST /evaluate, subscribe: GET /ws)\n", server.Port())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	pterm.Info.Println("shutting down server...")
	if err := server.Close(); err != nil {
		pterm.Error.Printf("error during shutdown: %v\n", err)
	}
}
