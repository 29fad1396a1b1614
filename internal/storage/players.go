// ABOUTME: Player-level queries: lookup, listing, deletion, and counter updates.
// ABOUTME: Ids may be given in full or as a unique prefix.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/drillbook/internal/models"
)

const playerColumns = `id, auth_id, name, age, position, experience_level, dominant_foot,
	height_cm, weight_kg, total_xp, current_level, current_streak, longest_streak, coins,
	total_coins_earned, streak_freezes, last_training_date, unlocked_achievements,
	last_cloud_sync, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPlayer scans a single players row without children.
func (d *DB) scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	var id, createdAt string
	var lastTraining, achievements, lastSync sql.NullString

	err := row.Scan(&id, &p.AuthID, &p.Name, &p.Age, &p.Position, &p.ExperienceLevel,
		&p.DominantFoot, &p.HeightCm, &p.WeightKg, &p.TotalXP, &p.CurrentLevel, &p.CurrentStreak,
		&p.LongestStreak, &p.Coins, &p.TotalCoinsEarned, &p.StreakFreezes, &lastTraining,
		&achievements, &lastSync, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan player: %w", err)
	}

	p.ID, _ = uuid.Parse(id)
	p.LastTrainingDate = parseNullTime(lastTraining)
	p.UnlockedAchievements = decodeList(achievements)
	p.LastCloudSync = parseNullTime(lastSync)
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

// resolvePlayerID finds the full ID from a prefix.
func (d *DB) resolvePlayerID(ctx context.Context, idOrPrefix string) (string, error) {
	if len(idOrPrefix) == 36 && strings.Count(idOrPrefix, "-") == 4 {
		return idOrPrefix, nil
	}
	if idOrPrefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}

	rows, err := d.db.QueryContext(ctx, `SELECT id FROM players WHERE id LIKE ? || '%'`, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve player ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan player ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve player ID: %w", err)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous prefix %s: matches multiple players", idOrPrefix)
	}

	return matches[0], nil
}

// FindPlayerByAuthID returns the full graph of the oldest player linked to authID.
func (d *DB) FindPlayerByAuthID(ctx context.Context, authID string) (*models.Player, error) {
	var id string
	err := d.db.QueryRowContext(ctx,
		`SELECT id FROM players WHERE auth_id = ? ORDER BY created_at LIMIT 1`, authID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: auth id %s", ErrNotFound, authID)
	}
	if err != nil {
		return nil, fmt.Errorf("find player by auth id: %w", err)
	}
	return d.loadGraph(ctx, id)
}

// ListPlayers returns every player row, oldest first, without children.
func (d *DB) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM players ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p, err := d.scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// DeletePlayer removes a player and, by cascade, its whole graph.
func (d *DB) DeletePlayer(ctx context.Context, idOrPrefix string) error {
	id, err := d.resolvePlayerID(ctx, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM players WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete player: %w: %s", ErrNotFound, idOrPrefix)
	}

	return nil
}

// UpdateGamification overwrites a player's counters and stamps the sync time.
func (d *DB) UpdateGamification(ctx context.Context, playerID uuid.UUID, g models.Gamification, syncedAt time.Time) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE players SET total_xp = ?, current_level = ?, current_streak = ?, longest_streak = ?,
			coins = ?, total_coins_earned = ?, streak_freezes = ?, last_training_date = ?,
			unlocked_achievements = ?, last_cloud_sync = ?
		WHERE id = ?
	`,
		g.TotalXP, g.CurrentLevel, g.CurrentStreak, g.LongestStreak, g.Coins, g.TotalCoinsEarned,
		g.StreakFreezes, nullTime(g.LastTrainingDate), encodeList(g.UnlockedAchievements),
		formatTime(syncedAt), playerID.String(),
	)
	if err != nil {
		return fmt.Errorf("update gamification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update gamification: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update gamification: %w: %s", ErrNotFound, playerID)
	}
	return nil
}

// AddOwnedItems appends items the player does not already own, matched by
// item id, and returns how many were added.
func (d *DB) AddOwnedItems(ctx context.Context, playerID uuid.UUID, items []*models.OwnedAvatarItem) (int, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("add owned items: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM owned_items WHERE player_id = ?`,
		playerID.String()).Scan(&next); err != nil {
		return 0, fmt.Errorf("add owned items: %w", err)
	}

	added := 0
	for _, it := range items {
		it.PlayerID = playerID
		taken, err := idTaken(ctx, tx, "owned_items", it.ID)
		if err != nil {
			return 0, fmt.Errorf("add owned item %s: %w", it.ItemID, err)
		}
		if taken {
			it.ID = uuid.New()
		}
		result, err := tx.ExecContext(ctx, `
			INSERT INTO owned_items (id, player_id, item_id, slot, purchased_at, position)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (player_id, item_id) DO NOTHING
		`, it.ID.String(), playerID.String(), it.ItemID, it.Slot, formatTime(it.PurchasedAt), next)
		if err != nil {
			return 0, fmt.Errorf("add owned item %s: %w", it.ItemID, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			added++
			next++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("add owned items: commit: %w", err)
	}
	return added, nil
}

// GraphCounts is the number of rows of each entity kind.
type GraphCounts struct {
	Players          int `json:"players"`
	Profiles         int `json:"profiles"`
	Avatars          int `json:"avatars"`
	OwnedItems       int `json:"owned_items"`
	Goals            int `json:"goals"`
	Exercises        int `json:"exercises"`
	Sessions         int `json:"sessions"`
	SessionExercises int `json:"session_exercises"`
	Plans            int `json:"plans"`
	PlanWeeks        int `json:"plan_weeks"`
	PlanDays         int `json:"plan_days"`
	PlanSessions     int `json:"plan_sessions"`
}

// Total sums every count.
func (c GraphCounts) Total() int {
	return c.Players + c.Profiles + c.Avatars + c.OwnedItems + c.Goals + c.Exercises +
		c.Sessions + c.SessionExercises + c.Plans + c.PlanWeeks + c.PlanDays + c.PlanSessions
}

// CountGraph counts the rows belonging to one player.
func (d *DB) CountGraph(ctx context.Context, playerID uuid.UUID) (GraphCounts, error) {
	var c GraphCounts
	queries := []struct {
		dst   *int
		query string
	}{
		{&c.Players, `SELECT COUNT(*) FROM players WHERE id = ?`},
		{&c.Profiles, `SELECT COUNT(*) FROM profiles WHERE player_id = ?`},
		{&c.Avatars, `SELECT COUNT(*) FROM avatars WHERE player_id = ?`},
		{&c.OwnedItems, `SELECT COUNT(*) FROM owned_items WHERE player_id = ?`},
		{&c.Goals, `SELECT COUNT(*) FROM goals WHERE player_id = ?`},
		{&c.Exercises, `SELECT COUNT(*) FROM exercises WHERE player_id = ?`},
		{&c.Sessions, `SELECT COUNT(*) FROM sessions WHERE player_id = ?`},
		{&c.SessionExercises, `SELECT COUNT(*) FROM session_exercises se
			JOIN sessions s ON se.session_id = s.id WHERE s.player_id = ?`},
		{&c.Plans, `SELECT COUNT(*) FROM plans WHERE player_id = ?`},
		{&c.PlanWeeks, `SELECT COUNT(*) FROM plan_weeks w
			JOIN plans p ON w.plan_id = p.id WHERE p.player_id = ?`},
		{&c.PlanDays, `SELECT COUNT(*) FROM plan_days d
			JOIN plan_weeks w ON d.week_id = w.id
			JOIN plans p ON w.plan_id = p.id WHERE p.player_id = ?`},
		{&c.PlanSessions, `SELECT COUNT(*) FROM plan_sessions s
			JOIN plan_days d ON s.day_id = d.id
			JOIN plan_weeks w ON d.week_id = w.id
			JOIN plans p ON w.plan_id = p.id WHERE p.player_id = ?`},
	}
	for _, q := range queries {
		if err := d.db.QueryRowContext(ctx, q.query, playerID.String()).Scan(q.dst); err != nil {
			return GraphCounts{}, fmt.Errorf("count graph: %w", err)
		}
	}
	return c, nil
}

// CountAll counts every row in the database.
func (d *DB) CountAll(ctx context.Context) (GraphCounts, error) {
	var c GraphCounts
	tables := []struct {
		dst   *int
		table string
	}{
		{&c.Players, "players"},
		{&c.Profiles, "profiles"},
		{&c.Avatars, "avatars"},
		{&c.OwnedItems, "owned_items"},
		{&c.Goals, "goals"},
		{&c.Exercises, "exercises"},
		{&c.Sessions, "sessions"},
		{&c.SessionExercises, "session_exercises"},
		{&c.Plans, "plans"},
		{&c.PlanWeeks, "plan_weeks"},
		{&c.PlanDays, "plan_days"},
		{&c.PlanSessions, "plan_sessions"},
	}
	for _, t := range tables {
		if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return GraphCounts{}, fmt.Errorf("count %s: %w", t.table, err)
		}
	}
	return c, nil
}
