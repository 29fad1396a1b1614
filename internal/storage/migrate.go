// ABOUTME: Data migration between drillbook databases.
// ABOUTME: Copies whole player graphs from source to destination.

package storage

import (
	"context"
	"fmt"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Players int
	Rows    int
}

// MigrateData copies every player graph from src to dst. Each player is saved
// in its own transaction; a player already present in dst stops the copy.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	players, err := src.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source players: %w", err)
	}

	for _, p := range players {
		full, err := src.LoadPlayer(ctx, p.ID.String())
		if err != nil {
			return nil, fmt.Errorf("load player %s: %w", p.ID, err)
		}
		if err := dst.SaveGraph(ctx, full); err != nil {
			return nil, fmt.Errorf("save player %s: %w", p.ID, err)
		}
		counts, err := dst.CountGraph(ctx, full.ID)
		if err != nil {
			return nil, fmt.Errorf("count player %s: %w", p.ID, err)
		}
		summary.Players++
		summary.Rows += counts.Total()
	}

	return summary, nil
}
