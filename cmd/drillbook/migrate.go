// ABOUTME: CLI command for copying every player between SQLite databases.
// ABOUTME: Used to move a journal to a new data directory or machine.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/drillbook/internal/config"
	"github.com/harperreed/drillbook/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateFrom   string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate --from <db>",
	Short: "Copy players from another drillbook database",
	Long: `Copy every player graph from another drillbook database into the
current one (--db or the configured data directory).

IMPORTANT:

  - Players whose id already exists in the target cause an error
  - Each player is copied in its own transaction
  - Run with --dry-run first to see what would be copied

USAGE:

  drillbook migrate --from ~/old/drillbook.db --dry-run
  drillbook migrate --from ~/old/drillbook.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == "" {
			return fmt.Errorf("--from is required")
		}

		src, err := storage.Open(config.ExpandPath(migrateFrom))
		if err != nil {
			return fmt.Errorf("failed to open source database: %w", err)
		}
		defer src.Close()

		out := cmd.OutOrStdout()
		if migrateDryRun {
			counts, err := src.CountAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, color.YellowString("Dry run mode - no changes will be made"))
			fmt.Fprintf(out, "Would copy %d players (%d rows)\n", counts.Players, counts.Total())
			return nil
		}

		dst, err := openRepo()
		if err != nil {
			return err
		}
		summary, err := storage.MigrateData(cmd.Context(), src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		fmt.Fprintln(out, color.GreenString("✓ Migrated %d players (%d rows)", summary.Players, summary.Rows))
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "source database path")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
