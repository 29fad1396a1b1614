// ABOUTME: CLI commands for exporting and importing local player data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export [player-id]",
	Short: "Export local player data",
	Long: `Export one player, or every player when no id is given.

FORMATS:

  json       Full JSON export (suitable for backup/import)
  yaml       YAML summary (human-readable)
  markdown   Training journal (for sharing)

EXAMPLES:

  drillbook export                          # All players as JSON
  drillbook export 7c9e6679 -f yaml         # One player as YAML
  drillbook export -f markdown -o log.md    # Save the journal to a file`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}

		id := ""
		if len(args) == 1 {
			id = args[0]
		}

		var data []byte
		switch exportFormat {
		case "json":
			data, err = r.ExportJSON(cmd.Context(), id)
		case "yaml":
			data, err = r.ExportYAML(cmd.Context(), id)
		case "markdown", "md":
			var md string
			md, err = r.ExportMarkdown(cmd.Context(), id)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", exportFormat)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Exported to %s", exportOutput))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import player data from JSON",
	Long: `Import players from a JSON file written by 'drillbook export'.

Each player is saved in its own transaction. A player whose id already
exists locally fails the import at that player.

EXAMPLES:

  drillbook import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if err := r.ImportJSON(cmd.Context(), data); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Imported from %s", args[0]))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json, yaml, or markdown")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
