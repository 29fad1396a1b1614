// ABOUTME: CLI commands for probing, restoring, and reconciling cloud data.
// ABOUTME: Restore renders live progress from the service's state changes.
package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harperreed/drillbook/internal/restore"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <user-id>",
	Short: "Check whether the cloud holds data for a user",
	Long: `Check whether the cloud store holds a profile for a user.

Probing never fails: transport or decoding problems are reported as
"no data" and logged at warn level.

EXAMPLES:

  drillbook probe 3f9a...            # Charm account id
  drillbook --cloud badger probe u1  # Local Badger mirror`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if svc.ProbeCloudData(cmd.Context(), args[0]) {
			fmt.Fprintln(out, color.GreenString("✓ Cloud data found for %s", args[0]))
		} else {
			fmt.Fprintln(out, color.YellowString("No cloud data for %s", args[0]))
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <user-id>",
	Short: "Restore a player from the cloud",
	Long: `Restore a user's whole training journal from the cloud into local storage.

The restore runs in stages (player, profile, gamification, avatar, owned
items, goals, exercises, sessions, plans) and commits everything in one
transaction. If any stage fails nothing is written.

The signed-in subject must match <user-id>. With the charm backend this is
your Charm account id; otherwise pass --token or set auth_subject.

EXAMPLES:

  drillbook restore u1
  drillbook restore u1 --token eyJhbGciOi...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		errOut := cmd.ErrOrStderr()
		cancel := svc.OnChange(func(st restore.State) {
			renderProgress(errOut, st)
		})
		p, err := svc.Restore(cmd.Context(), args[0])
		cancel()
		fmt.Fprintln(errOut)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)
		fmt.Fprintln(out, color.GreenString("✓ Restored %s", p.Name))
		fmt.Fprintf(out, "  %s level %d, %d XP, %d coins\n",
			faint.Sprint(p.ID.String()[:8]), p.CurrentLevel, p.TotalXP, p.Coins)
		fmt.Fprintf(out, "  %d goals, %d exercises, %d sessions, %d plans, %d items\n",
			len(p.Goals), len(p.Exercises), len(p.Sessions), len(p.Plans), len(p.OwnedItems))
		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <user-id>",
	Short: "Merge cloud progress into the local player",
	Long: `Merge XP, coins, streaks, achievements and owned avatar items from the
cloud into the local player linked to <user-id>.

Counters only ever go up. The cloud streak is taken only when the cloud's
last training date is within a day and its streak is longer. Running it
again right away changes nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		report, err := svc.Reconcile(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("reconcile failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if !report.Changed() {
			fmt.Fprintln(out, "Already up to date.")
			return nil
		}
		fmt.Fprintln(out, color.GreenString("✓ Reconciled %s", report.PlayerID.String()[:8]))
		for _, c := range report.Changes {
			fmt.Fprintf(out, "  %s\n", c)
		}
		if report.ItemsAdded > 0 {
			fmt.Fprintf(out, "  +%d owned items\n", report.ItemsAdded)
		}
		return nil
	},
}

// renderProgress redraws a one-line progress bar.
func renderProgress(w io.Writer, st restore.State) {
	const width = 20
	filled := int(st.Progress * width)
	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	fmt.Fprintf(w, "\r%s %3.0f%% %-12s", string(bar), st.Progress*100, st.Phase)
}

func init() {
	restoreCmd.Flags().StringVar(&tokenFlag, "token", "", "signed session token (overrides config)")
	reconcileCmd.Flags().StringVar(&tokenFlag, "token", "", "signed session token (overrides config)")

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(reconcileCmd)
}
