// ABOUTME: Field-by-field reconciliation of local and cloud gamification counters.
// ABOUTME: Pure functions; the merged result never lowers a counter.
package merge

import (
	"fmt"
	"slices"
	"time"

	"github.com/harperreed/drillbook/internal/models"
)

// StreakFreshness is how recent the cloud's last training must be for its streak to count.
const StreakFreshness = 24 * time.Hour

// Gamification combines local and cloud counters.
//
// Totals take the larger value and level is recomputed from the merged XP.
// The cloud streak replaces the local one only when the cloud trained within
// StreakFreshness of now and its streak is longer. Achievements are unioned.
func Gamification(local, cloud models.Gamification, now time.Time) models.Gamification {
	merged := models.Gamification{
		TotalXP:          max(local.TotalXP, cloud.TotalXP),
		Coins:            max(local.Coins, cloud.Coins),
		TotalCoinsEarned: max(local.TotalCoinsEarned, cloud.TotalCoinsEarned),
		StreakFreezes:    max(local.StreakFreezes, cloud.StreakFreezes),
		CurrentStreak:    local.CurrentStreak,
		LastTrainingDate: later(local.LastTrainingDate, cloud.LastTrainingDate),
	}
	merged.CurrentLevel = models.LevelForXP(merged.TotalXP)

	if StreakIsFresh(cloud.LastTrainingDate, now) && cloud.CurrentStreak > local.CurrentStreak {
		merged.CurrentStreak = cloud.CurrentStreak
	}
	merged.LongestStreak = max(local.LongestStreak, cloud.LongestStreak, merged.CurrentStreak)

	union := make([]string, 0, len(local.UnlockedAchievements)+len(cloud.UnlockedAchievements))
	union = append(union, local.UnlockedAchievements...)
	union = append(union, cloud.UnlockedAchievements...)
	merged.UnlockedAchievements = models.NormalizeAchievements(union)

	return merged
}

// StreakIsFresh reports whether last is set and no more than StreakFreshness
// before now. Dates in the future count as fresh.
func StreakIsFresh(last *time.Time, now time.Time) bool {
	if last == nil {
		return false
	}
	return now.Sub(*last) <= StreakFreshness
}

func later(a, b *time.Time) *time.Time {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		t := *b
		return &t
	case b == nil || !b.After(*a):
		t := *a
		return &t
	default:
		t := *b
		return &t
	}
}

// FieldChange records one counter that a merge changed.
type FieldChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

func (c FieldChange) String() string {
	return fmt.Sprintf("%s: %s -> %s", c.Field, c.Before, c.After)
}

// Diff lists the fields that differ between before and after, in a fixed order.
func Diff(before, after models.Gamification) []FieldChange {
	var changes []FieldChange
	ints := []struct {
		name string
		b, a int
	}{
		{"total_xp", before.TotalXP, after.TotalXP},
		{"current_level", before.CurrentLevel, after.CurrentLevel},
		{"current_streak", before.CurrentStreak, after.CurrentStreak},
		{"longest_streak", before.LongestStreak, after.LongestStreak},
		{"coins", before.Coins, after.Coins},
		{"total_coins_earned", before.TotalCoinsEarned, after.TotalCoinsEarned},
		{"streak_freezes", before.StreakFreezes, after.StreakFreezes},
	}
	for _, f := range ints {
		if f.b != f.a {
			changes = append(changes, FieldChange{f.name, fmt.Sprint(f.b), fmt.Sprint(f.a)})
		}
	}
	if b, a := formatDate(before.LastTrainingDate), formatDate(after.LastTrainingDate); b != a {
		changes = append(changes, FieldChange{"last_training_date", b, a})
	}
	if !slices.Equal(before.UnlockedAchievements, after.UnlockedAchievements) {
		changes = append(changes, FieldChange{
			"unlocked_achievements",
			fmt.Sprint(len(before.UnlockedAchievements)),
			fmt.Sprint(len(after.UnlockedAchievements)),
		})
	}
	return changes
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.UTC().Format(time.RFC3339)
}
