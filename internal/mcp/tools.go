// ABOUTME: MCP tool implementations for cloud restore and reconcile.
// ABOUTME: Restore and reconcile tools plus local player lookup and drill suggestions.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/drillbook/internal/models"
	"github.com/harperreed/drillbook/internal/recommend"
	"github.com/harperreed/drillbook/internal/restore"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "probe_cloud_data",
		Description: "Check whether the cloud holds training data for a user",
	}, s.handleProbeCloudData)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "restore_player",
		Description: "Restore a user's full player graph from the cloud into local storage",
	}, s.handleRestorePlayer)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "restore_status",
		Description: "Report progress and the last error of the current or latest restore",
	}, s.handleRestoreStatus)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "reconcile_player",
		Description: "Merge cloud XP, coins, streaks, achievements and owned items into the local player",
	}, s.handleReconcilePlayer)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_player",
		Description: "Get a local player with goals, sessions and plans",
	}, s.handleGetPlayer)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "recommend_drills",
		Description: "Suggest drills from a local player's library based on their recent sessions",
	}, s.handleRecommendDrills)
}

// Tool input/output types

type userInput struct {
	UserID string `json:"user_id" jsonschema:"Cloud user id (the auth subject that owns the data)"`
}

type probeOutput struct {
	UserID  string `json:"user_id"`
	HasData bool   `json:"has_data"`
	Message string `json:"message"`
}

type restoreOutput struct {
	PlayerID   string `json:"player_id"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	TotalXP    int    `json:"total_xp"`
	Sessions   int    `json:"sessions"`
	Plans      int    `json:"plans"`
	OwnedItems int    `json:"owned_items"`
	Message    string `json:"message"`
}

type statusInput struct{}

type reconcileOutput struct {
	PlayerID   string   `json:"player_id"`
	Changes    []string `json:"changes"`
	ItemsAdded int      `json:"items_added"`
	TotalXP    int      `json:"total_xp"`
	Level      int      `json:"level"`
	Coins      int      `json:"coins"`
	Streak     int      `json:"streak"`
	Message    string   `json:"message"`
}

type getPlayerInput struct {
	ID string `json:"id" jsonschema:"Player ID or prefix"`
}

type recommendInput struct {
	ID    string `json:"id,omitempty" jsonschema:"Player ID or prefix; optional when only one player exists"`
	Limit int    `json:"limit,omitempty" jsonschema:"Number of drills to suggest (default 3)"`
	Days  int    `json:"days,omitempty" jsonschema:"Days of history to read (default 30)"`
}

type recommendOutput struct {
	PlayerID        string                     `json:"player_id"`
	Summary         *recommend.Summary         `json:"summary"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Message         string                     `json:"message"`
}

// Tool handlers

func (s *Server) handleProbeCloudData(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, probeOutput, error) {
	if input.UserID == "" {
		return nil, probeOutput{}, fmt.Errorf("user_id is required")
	}

	found := s.svc.ProbeCloudData(ctx, input.UserID)
	msg := fmt.Sprintf("No cloud data for %s.", input.UserID)
	if found {
		msg = fmt.Sprintf("Cloud data found for %s.", input.UserID)
	}
	return nil, probeOutput{UserID: input.UserID, HasData: found, Message: msg}, nil
}

func (s *Server) handleRestorePlayer(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, restoreOutput, error) {
	if input.UserID == "" {
		return nil, restoreOutput{}, fmt.Errorf("user_id is required")
	}

	p, err := s.svc.Restore(ctx, input.UserID)
	if err != nil {
		return nil, restoreOutput{}, fmt.Errorf("restore %s: %w", input.UserID, err)
	}

	return nil, restoreOutput{
		PlayerID:   p.ID.String(),
		Name:       p.Name,
		Level:      p.CurrentLevel,
		TotalXP:    p.TotalXP,
		Sessions:   len(p.Sessions),
		Plans:      len(p.Plans),
		OwnedItems: len(p.OwnedItems),
		Message: fmt.Sprintf("Restored %s (ID: %s): %d sessions, %d plans",
			p.Name, p.ID.String()[:8], len(p.Sessions), len(p.Plans)),
	}, nil
}

func (s *Server) handleRestoreStatus(ctx context.Context, req *mcp.CallToolRequest, input statusInput) (*mcp.CallToolResult, restore.State, error) {
	return nil, s.svc.State(), nil
}

func (s *Server) handleReconcilePlayer(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, reconcileOutput, error) {
	if input.UserID == "" {
		return nil, reconcileOutput{}, fmt.Errorf("user_id is required")
	}

	report, err := s.svc.Reconcile(ctx, input.UserID)
	if err != nil {
		return nil, reconcileOutput{}, fmt.Errorf("reconcile %s: %w", input.UserID, err)
	}

	out := reconcileOutput{
		PlayerID:   report.PlayerID.String(),
		Changes:    make([]string, 0, len(report.Changes)),
		ItemsAdded: report.ItemsAdded,
		TotalXP:    report.After.TotalXP,
		Level:      report.After.CurrentLevel,
		Coins:      report.After.Coins,
		Streak:     report.After.CurrentStreak,
		Message:    "Already up to date.",
	}
	for _, c := range report.Changes {
		out.Changes = append(out.Changes, c.String())
	}
	if report.Changed() {
		out.Message = fmt.Sprintf("Updated %d fields, added %d items.", len(report.Changes), report.ItemsAdded)
	}
	return nil, out, nil
}

func (s *Server) handleGetPlayer(ctx context.Context, req *mcp.CallToolRequest, input getPlayerInput) (*mcp.CallToolResult, any, error) {
	p, err := s.loadPlayer(ctx, input.ID)
	if err != nil {
		return nil, nil, err
	}
	return nil, p, nil
}

func (s *Server) handleRecommendDrills(ctx context.Context, req *mcp.CallToolRequest, input recommendInput) (*mcp.CallToolResult, recommendOutput, error) {
	if input.Limit < 0 || input.Days < 0 {
		return nil, recommendOutput{}, fmt.Errorf("limit and days must not be negative")
	}
	p, err := s.loadPlayer(ctx, input.ID)
	if err != nil {
		return nil, recommendOutput{}, err
	}

	opts := recommend.Options{
		Window: time.Duration(input.Days) * 24 * time.Hour,
		Limit:  input.Limit,
	}
	now := time.Now()
	out := recommendOutput{
		PlayerID:        p.ID.String(),
		Summary:         recommend.Summarize(p, now, opts),
		Recommendations: recommend.Recommend(p, now, opts),
	}
	out.Message = fmt.Sprintf("%s has no drills in the library yet.", p.Name)
	if len(out.Recommendations) > 0 {
		top := out.Recommendations[0]
		out.Message = fmt.Sprintf("Top pick for %s: %s (%d%% match). %s.",
			p.Name, top.Name, top.MatchPercentage, top.Reason)
	}
	return nil, out, nil
}

// loadPlayer resolves an id or prefix. An empty id picks the only stored player.
func (s *Server) loadPlayer(ctx context.Context, id string) (*models.Player, error) {
	if id == "" {
		players, err := s.repo.ListPlayers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list players: %w", err)
		}
		if len(players) != 1 {
			return nil, fmt.Errorf("id is required when %d players exist", len(players))
		}
		id = players[0].ID.String()
	}
	p, err := s.repo.LoadPlayer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("player not found: %w", err)
	}
	return p, nil
}
