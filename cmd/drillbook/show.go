// ABOUTME: CLI commands for viewing and deleting local players.
// ABOUTME: Player ids may be given in full or as a unique prefix.
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/drillbook/internal/models"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show [player-id]",
	Aliases: []string{"ls", "list"},
	Short:   "Show local players",
	Long: `Show locally stored players.

Without an id, lists every player one per line. With an id or prefix,
prints the player's counters, goals, recent sessions and plans.

EXAMPLES:

  drillbook show              # All players
  drillbook show 7c9e6679     # One player by prefix`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			players, err := r.ListPlayers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list players: %w", err)
			}
			if len(players) == 0 {
				fmt.Fprintln(out, "No players found.")
				return nil
			}
			faint := color.New(color.Faint)
			for _, p := range players {
				fmt.Fprintf(out, "%s %s level %d, %d XP, %d coins %s\n",
					faint.Sprint(p.ID.String()[:8]),
					padRight(p.Name, 16),
					p.CurrentLevel, p.TotalXP, p.Coins,
					faint.Sprint(p.AuthID))
			}
			return nil
		}

		p, err := r.LoadPlayer(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("player not found: %w", err)
		}
		printPlayer(out, p)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <player-id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a local player",
	Long: `Delete a local player and its whole graph by id or id prefix.

CAUTION:

  This permanently deletes local data. Cloud data is untouched, so the
  player can be restored again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}

		p, err := r.LoadPlayer(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("player not found: %s", args[0])
		}
		if err := r.DeletePlayer(cmd.Context(), p.ID.String()); err != nil {
			return fmt.Errorf("failed to delete player: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("✗ Deleted %s", p.Name))
		return nil
	},
}

func printPlayer(out io.Writer, p *models.Player) {
	faint := color.New(color.Faint)
	bold := color.New(color.Bold)

	fmt.Fprintf(out, "%s %s\n", bold.Sprint(p.Name), faint.Sprint(p.ID.String()))
	if p.Position != "" {
		fmt.Fprintf(out, "  %s, %s, %s foot\n", p.Position, p.ExperienceLevel, p.DominantFoot)
	}
	fmt.Fprintf(out, "  Level %d  XP %d  Coins %d (earned %d)  Streak %d (best %d)  Freezes %d\n",
		p.CurrentLevel, p.TotalXP, p.Coins, p.TotalCoinsEarned,
		p.CurrentStreak, p.LongestStreak, p.StreakFreezes)
	if len(p.UnlockedAchievements) > 0 {
		fmt.Fprintf(out, "  Achievements: %s\n", strings.Join(p.UnlockedAchievements, ", "))
	}
	if p.LastCloudSync != nil {
		fmt.Fprintf(out, "  Last cloud sync: %s\n", p.LastCloudSync.Local().Format("2006-01-02 15:04"))
	}

	if len(p.Goals) > 0 {
		fmt.Fprintln(out, bold.Sprint("\nGoals"))
		for _, g := range p.Goals {
			fmt.Fprintf(out, "  %s %.1f → %.1f %s\n",
				padRight(g.SkillName, 16), g.CurrentLevel, g.TargetLevel, faint.Sprint(g.Status))
		}
	}

	if len(p.Sessions) > 0 {
		fmt.Fprintln(out, bold.Sprint("\nSessions"))
		for _, s := range p.Sessions {
			notes := ""
			if s.Notes != "" {
				notes = faint.Sprintf(" (%s)", truncate(s.Notes, 30))
			}
			fmt.Fprintf(out, "  %s %s %3d min  %d exercises%s\n",
				faint.Sprint(s.Date.Format("2006-01-02")),
				padRight(s.SessionType, 12),
				s.DurationMinutes, len(s.Exercises), notes)
		}
	}

	if len(p.Plans) > 0 {
		fmt.Fprintln(out, bold.Sprint("\nPlans"))
		for _, tp := range p.Plans {
			active := ""
			if tp.IsActive {
				active = color.GreenString(" active")
			}
			fmt.Fprintf(out, "  %s %d weeks, %d sessions, %.0f%%%s\n",
				padRight(tp.Name, 20), len(tp.Weeks), tp.SessionCount(), tp.ProgressPercentage, active)
		}
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
}
