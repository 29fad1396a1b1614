// ABOUTME: CLI commands that write to the cloud store.
// ABOUTME: backup uploads a local player; cloud import loads a snapshot file.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/drillbook/internal/cloud"
	"github.com/harperreed/drillbook/internal/graph"
	"github.com/spf13/cobra"
)

var (
	backupUser    string
	backupReplace bool
	importReplace bool
)

var backupCmd = &cobra.Command{
	Use:   "backup <player-id>",
	Short: "Upload a local player to the cloud",
	Long: `Upload a local player graph as cloud documents so another device can
restore it.

Documents are written under the player's auth id unless --user is given.
With --replace, the user's existing cloud documents are removed first.

EXAMPLES:

  drillbook backup 7c9e6679
  drillbook backup 7c9e6679 --user u1 --replace`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		store, err := openCloud()
		if err != nil {
			return err
		}

		p, err := r.LoadPlayer(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("player not found: %w", err)
		}
		userID := backupUser
		if userID == "" {
			userID = p.AuthID
		}
		if userID == "" {
			return fmt.Errorf("player %s has no auth id; pass --user", p.ID.String()[:8])
		}

		w := cloud.NewKVWriter(store)
		if backupReplace {
			n, err := w.DeleteUser(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("failed to clear cloud data: %w", err)
			}
			logger.Info("cleared cloud documents", "user_id", userID, "count", n)
		}
		written, err := w.PutSnapshot(cmd.Context(), userID, graph.Flatten(p))
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Backed up %s to %s (%d documents)", p.Name, userID, written))
		return nil
	},
}

var cloudCmd = &cobra.Command{
	Use:   "cloud",
	Short: "Manage cloud documents directly",
	Long: `Low-level access to the cloud document store.

COMMANDS:

  import    Write a snapshot JSON file under a user id`,
}

var cloudImportCmd = &cobra.Command{
	Use:   "import <user-id> <file.json>",
	Short: "Write a snapshot file into the cloud store",
	Long: `Write a snapshot file into the cloud store under a user id.

The file is a JSON object keyed by collection:

  {
    "profile":    {"name": "Sam", "totalXP": 900, ...},
    "avatar":     {"skinTone": "medium", ...},
    "ownedItems": [{"itemId": "shirt_red", "slot": "shirt"}],
    "goals":      [...],
    "exercises":  [...],
    "sessions":   [{"date": "2025-03-10", "exercises": [...]}],
    "plans":      [{"name": "Preseason", "weeks": [{"days": [...]}]}]
  }

EXAMPLES:

  drillbook --cloud badger cloud import u1 snapshot.json
  drillbook cloud import u1 snapshot.json --replace`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, path := args[0], args[1]

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		snap, err := cloud.DecodeSnapshotJSON(data)
		if err != nil {
			return err
		}

		store, err := openCloud()
		if err != nil {
			return err
		}
		w := cloud.NewKVWriter(store)
		if importReplace {
			if _, err := w.DeleteUser(cmd.Context(), userID); err != nil {
				return fmt.Errorf("failed to clear cloud data: %w", err)
			}
		}
		written, err := w.PutSnapshot(cmd.Context(), userID, snap)
		if err != nil {
			return fmt.Errorf("cloud import failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Wrote %d documents for %s", written, userID))
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVar(&backupUser, "user", "", "cloud user id (default: the player's auth id)")
	backupCmd.Flags().BoolVar(&backupReplace, "replace", false, "remove the user's existing cloud documents first")
	cloudImportCmd.Flags().BoolVar(&importReplace, "replace", false, "remove the user's existing cloud documents first")

	cloudCmd.AddCommand(cloudImportCmd)
	rootCmd.AddCommand(cloudCmd)
	rootCmd.AddCommand(backupCmd)
}
