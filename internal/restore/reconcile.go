// ABOUTME: Reconcile merges cloud gamification into an existing local player.
// ABOUTME: Counters never decrease and only unseen owned items are added.
package restore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/drillbook/internal/graph"
	"github.com/harperreed/drillbook/internal/merge"
	"github.com/harperreed/drillbook/internal/models"
)

// MergeReport describes what a reconcile changed.
type MergeReport struct {
	PlayerID   uuid.UUID           `json:"player_id"`
	Before     models.Gamification `json:"before"`
	After      models.Gamification `json:"after"`
	Changes    []merge.FieldChange `json:"changes"`
	ItemsAdded int                 `json:"items_added"`
}

// Changed reports whether anything was written.
func (r *MergeReport) Changed() bool {
	return len(r.Changes) > 0 || r.ItemsAdded > 0
}

// Reconcile merges userID's cloud counters into the local player linked to the
// same auth id. It leaves the restore State untouched. Running it twice in a
// row changes nothing the second time.
func (s *Service) Reconcile(ctx context.Context, userID string) (*MergeReport, error) {
	report, err := s.reconcile(ctx, userID)
	if err != nil {
		recordReconcile(ctx, outcome(err))
		s.logger.Error("reconcile failed", "user_id", userID, "error", err)
		return nil, err
	}
	recordReconcile(ctx, "success")
	s.logger.Info("reconciled player",
		"user_id", userID,
		"player_id", report.PlayerID,
		"changes", len(report.Changes),
		"items_added", report.ItemsAdded)
	return report, nil
}

func (s *Service) reconcile(ctx context.Context, userID string) (*MergeReport, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return nil, err
	}

	local, err := s.store.FindPlayerByAuthID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find local player: %w", err)
	}

	snap, err := s.reader.FetchAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	if snap.Empty() {
		return nil, ErrNoDataFound
	}

	now := s.now()
	cloudG := graph.ParseGamification(snap.Profile)
	merged := merge.Gamification(local.Gamification, cloudG, now)

	report := &MergeReport{
		PlayerID: local.ID,
		Before:   local.Gamification,
		After:    merged,
		Changes:  merge.Diff(local.Gamification, merged),
	}

	if err := s.store.UpdateGamification(ctx, local.ID, merged, now); err != nil {
		return nil, fmt.Errorf("update gamification: %w", err)
	}

	var fresh []*models.OwnedAvatarItem
	for _, it := range graph.ParseOwnedItems(snap, now) {
		if !local.OwnsItem(it.ItemID) {
			fresh = append(fresh, it)
		}
	}
	if len(fresh) > 0 {
		added, err := s.store.AddOwnedItems(ctx, local.ID, fresh)
		if err != nil {
			return nil, fmt.Errorf("add owned items: %w", err)
		}
		report.ItemsAdded = added
	}

	return report, nil
}
