package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stock-advisor/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

Endpoints:
  POST /chat         answer a question
  POST /chat/stream  answer a question as a server-sent event stream
  GET  /stocks       list available stocks
  GET  /health       component status`,
		Example: `  advisor serve
  advisor serve --addr :9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Orchestrator == nil {
				output.Error("Price store unavailable. Run 'advisor data import' first.")
				return fmt.Errorf("orchestrator not configured")
			}

			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			srv := server.New(app.Orchestrator, app.Store, app.Retriever, app.LLM.Name(), app.Logger)
			output.Info("Listening on %s", addr)
			return srv.Run(addr)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from config)")

	return cmd
}
