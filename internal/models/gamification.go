// ABOUTME: Gamification counters carried by a Player.
// ABOUTME: Level is always derived from XP via LevelForXP.
package models

import (
	"math"
	"sort"
	"time"
)

// Gamification holds the progress counters that must never regress.
type Gamification struct {
	TotalXP              int
	CurrentLevel         int
	CurrentStreak        int
	LongestStreak        int
	Coins                int
	TotalCoinsEarned     int
	StreakFreezes        int
	LastTrainingDate     *time.Time
	UnlockedAchievements []string
}

// LevelForXP returns floor(sqrt(xp/100)) + 1. Negative XP counts as zero.
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
}

// NormalizeAchievements returns the ids sorted with duplicates and blanks removed.
func NormalizeAchievements(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// HasAchievement reports whether an achievement id is unlocked.
func (g Gamification) HasAchievement(id string) bool {
	for _, a := range g.UnlockedAchievements {
		if a == id {
			return true
		}
	}
	return false
}
