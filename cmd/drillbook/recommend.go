// ABOUTME: CLI command that suggests drills from a player's own training history.
// ABOUTME: Prints the frequency summary of recent sessions and the ranked drills.
package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/drillbook/internal/recommend"
	"github.com/spf13/cobra"
)

var (
	recommendLimit int
	recommendDays  int
)

var recommendCmd = &cobra.Command{
	Use:     "recommend <player-id>",
	Aliases: []string{"rec"},
	Short:   "Suggest drills from recent training",
	Long: `Suggest drills from a local player's library.

Recent sessions are counted per drill, skill and category. Drills that
train often-practised or low-rated skills, match the profile's skill
goals, or sit one step above the usual difficulty rank higher.

EXAMPLES:

  drillbook recommend 7c9e6679              # Top 3 from the last 30 days
  drillbook recommend 7c9e6679 --limit 5    # More suggestions
  drillbook recommend 7c9e6679 --days 90    # Look further back`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if recommendLimit < 1 || recommendDays < 1 {
			return fmt.Errorf("--limit and --days must be positive")
		}
		r, err := openRepo()
		if err != nil {
			return err
		}

		p, err := r.LoadPlayer(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("player not found: %w", err)
		}

		opts := recommend.Options{
			Window: time.Duration(recommendDays) * 24 * time.Hour,
			Limit:  recommendLimit,
		}
		now := time.Now()
		out := cmd.OutOrStdout()
		printSummary(out, p.Name, recommendDays, recommend.Summarize(p, now, opts))
		printRecommendations(out, recommend.Recommend(p, now, opts))
		return nil
	},
}

func printSummary(out io.Writer, name string, days int, sum *recommend.Summary) {
	faint := color.New(color.Faint)
	bold := color.New(color.Bold)

	fmt.Fprintf(out, "%s %s\n", bold.Sprintf("Recent training for %s", name),
		faint.Sprintf("(last %d days, %d sessions)", days, sum.Sessions))
	if sum.Sessions == 0 {
		fmt.Fprintln(out, "  No sessions in this window.")
		return
	}
	fmt.Fprintf(out, "  Drills:     %s\n", signals(sum.Drills, 3))
	if len(sum.Skills) > 0 {
		fmt.Fprintf(out, "  Skills:     %s\n", signals(sum.Skills, 3))
	}
	fmt.Fprintf(out, "  Category:   %s\n", sum.TopCategory())
}

func signals(list []recommend.Signal, n int) string {
	parts := make([]string, 0, n)
	for i, s := range list {
		if i == n {
			break
		}
		part := fmt.Sprintf("%s x%d (avg %.1f)", s.Name, s.Count, s.AvgRating)
		if s.Weak() {
			part += color.YellowString(" needs work")
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

func printRecommendations(out io.Writer, recs []recommend.Recommendation) {
	faint := color.New(color.Faint)

	fmt.Fprintln(out, color.New(color.Bold).Sprint("\nRecommended drills"))
	if len(recs) == 0 {
		fmt.Fprintln(out, "  No drills in the library yet.")
		return
	}
	for i, rec := range recs {
		fmt.Fprintf(out, "  %d. %s %s %s\n", i+1,
			padRight(rec.Name, 20),
			color.GreenString("%3d%%", rec.MatchPercentage),
			faint.Sprint(truncate(rec.Reason, 50)))
	}
}

func init() {
	recommendCmd.Flags().IntVar(&recommendLimit, "limit", recommend.DefaultLimit, "number of drills to suggest")
	recommendCmd.Flags().IntVar(&recommendDays, "days", 30, "days of history to read")
	rootCmd.AddCommand(recommendCmd)
}
