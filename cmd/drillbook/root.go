// ABOUTME: Root Cobra command for drillbook CLI.
// ABOUTME: Loads config, installs the logger, and owns store lifecycles.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/drillbook/internal/cloud"
	"github.com/harperreed/drillbook/internal/config"
	"github.com/harperreed/drillbook/internal/restore"
	"github.com/harperreed/drillbook/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg        *config.Config
	logger     *slog.Logger
	repo       storage.Repository
	cloudStore config.CloudStore

	dbPath    string
	cloudFlag string
	cloudDir  string
	logLevel  string
	tokenFlag string
)

var rootCmd = &cobra.Command{
	Use:   "drillbook",
	Short: "Soccer training journal with cloud restore",
	Long: `Drillbook keeps a soccer training journal: player profile, avatar,
goals, drills, sessions and multi-week plans. It restores that journal from
the cloud onto a fresh device and merges progress earned elsewhere.

QUICK START:

  $ drillbook probe <user-id>        # Is there cloud data for this account?
  $ drillbook restore <user-id>      # Pull the whole journal into local storage
  $ drillbook reconcile <user-id>    # Merge XP, coins and streaks from the cloud
  $ drillbook show                   # Summarize local players
  $ drillbook recommend <player-id>  # Suggest drills from recent sessions

CLOUD BACKENDS:

  charm    Charm Cloud KV (default). Your Charm account id is the user id.
  badger   A local Badger directory, for offline mirrors and testing.

  $ drillbook --cloud badger --cloud-dir ./mirror cloud import u1 snap.json
  $ drillbook --cloud badger --cloud-dir ./mirror restore u1

CONFIGURATION:

  ~/.config/drillbook/config.json, overridden by DRILLBOOK_* environment
  variables (DRILLBOOK_DATA_DIR, DRILLBOOK_CLOUD_BACKEND, DRILLBOOK_AUTH_TOKEN,
  DRILLBOOK_AUTH_SUBJECT, ...), overridden by flags.

DATA STORAGE:

  Players are stored in SQLite at ~/.local/share/drillbook/drillbook.db.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cloudFlag != "" {
			loaded.CloudBackend = cloudFlag
		}
		if cloudDir != "" {
			loaded.CloudDir = cloudDir
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		cfg = loaded

		logger, err = newLogger(cfg.GetLogLevel())
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStores()
	},
}

// newLogger builds a slog logger backed by charmbracelet/log on stderr.
func newLogger(level string) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "drillbook",
	})
	return slog.New(handler), nil
}

// openRepo opens the local graph store once per command.
func openRepo() (storage.Repository, error) {
	if repo != nil {
		return repo, nil
	}
	var err error
	if dbPath != "" {
		repo, err = storage.Open(config.ExpandPath(dbPath))
	} else {
		repo, err = cfg.OpenStorage()
	}
	if err != nil {
		repo = nil
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return repo, nil
}

// openCloud opens the configured cloud store once per command.
func openCloud() (config.CloudStore, error) {
	if cloudStore != nil {
		return cloudStore, nil
	}
	store, err := cfg.OpenCloud()
	if err != nil {
		return nil, fmt.Errorf("failed to open cloud store: %w", err)
	}
	cloudStore = store
	return cloudStore, nil
}

// newService wires the restore service over both stores.
func newService() (*restore.Service, error) {
	r, err := openRepo()
	if err != nil {
		return nil, err
	}
	store, err := openCloud()
	if err != nil {
		return nil, err
	}

	c := *cfg
	if tokenFlag != "" {
		c.AuthToken = tokenFlag
	}
	reader := cloud.NewKVReader(store, logger)
	return restore.NewService(reader, r, c.Authenticator(store), restore.WithLogger(logger)), nil
}

func closeStores() error {
	var firstErr error
	if repo != nil {
		if err := repo.Close(); err != nil {
			firstErr = err
		}
		repo = nil
	}
	if cloudStore != nil {
		if err := cloudStore.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		cloudStore = nil
	}
	return firstErr
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: <data_dir>/drillbook.db)")
	rootCmd.PersistentFlags().StringVar(&cloudFlag, "cloud", "", "cloud backend: charm or badger")
	rootCmd.PersistentFlags().StringVar(&cloudDir, "cloud-dir", "", "Badger directory for --cloud badger")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}
