// ABOUTME: MCP server setup for the drillbook restore engine.
// ABOUTME: Wraps the MCP server with the restore service and local graph store.
package mcp

import (
	"context"
	"errors"

	"github.com/harperreed/drillbook/internal/restore"
	"github.com/harperreed/drillbook/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server wraps the MCP server with restore and storage access.
type Server struct {
	mcpServer *mcp.Server
	svc       *restore.Service
	repo      storage.Repository
}

// NewServer creates a new MCP server over svc and repo.
func NewServer(svc *restore.Service, repo storage.Repository) (*Server, error) {
	if svc == nil || repo == nil {
		return nil, errors.New("mcp server needs a restore service and a repository")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "drillbook",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		svc:       svc,
		repo:      repo,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
