// ABOUTME: MCP resource implementations for local player data.
// ABOUTME: Provides drillbook://players with per-player row counts.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const playersURI = "drillbook://players"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         playersURI,
		Name:        "Local Players",
		Description: "Every locally stored player with counters and graph sizes",
		MIMEType:    "application/json",
	}, s.handlePlayersResource)
}

type playerEntry struct {
	ID            string     `json:"id"`
	AuthID        string     `json:"auth_id"`
	Name          string     `json:"name"`
	Level         int        `json:"level"`
	TotalXP       int        `json:"total_xp"`
	Coins         int        `json:"coins"`
	CurrentStreak int        `json:"current_streak"`
	LastCloudSync *time.Time `json:"last_cloud_sync,omitempty"`
	Sessions      int        `json:"sessions"`
	Plans         int        `json:"plans"`
	Rows          int        `json:"rows"`
}

// Resource handlers

func (s *Server) handlePlayersResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	players, err := s.repo.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	entries := make([]playerEntry, 0, len(players))
	for _, p := range players {
		counts, err := s.repo.CountGraph(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count player %s: %w", p.ID, err)
		}
		entries = append(entries, playerEntry{
			ID:            p.ID.String(),
			AuthID:        p.AuthID,
			Name:          p.Name,
			Level:         p.CurrentLevel,
			TotalXP:       p.TotalXP,
			Coins:         p.Coins,
			CurrentStreak: p.CurrentStreak,
			LastCloudSync: p.LastCloudSync,
			Sessions:      counts.Sessions,
			Plans:         counts.Plans,
			Rows:          counts.Total(),
		})
	}

	result := map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"players":      entries,
		"count":        len(entries),
		"restore":      s.svc.State(),
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      playersURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
