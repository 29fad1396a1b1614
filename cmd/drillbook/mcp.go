// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server over the restore service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/drillbook/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for assistant integration.

The server communicates via stdin/stdout. Logs go to stderr.

CONFIGURATION:

  {
    "mcpServers": {
      "drillbook": {
        "command": "drillbook",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  probe_cloud_data   Check whether the cloud holds data for a user
  restore_player     Restore a user's player graph into local storage
  restore_status     Progress and last error of the latest restore
  reconcile_player   Merge cloud progress into the local player
  get_player         Get a local player with goals, sessions and plans
  recommend_drills   Suggest drills from recent training history

AVAILABLE RESOURCES:

  drillbook://players   Local players with counters and graph sizes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		r, err := openRepo()
		if err != nil {
			return err
		}
		server, err := mcp.NewServer(svc, r)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
