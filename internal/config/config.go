// ABOUTME: Drillbook configuration with file, environment, and backend factories.
// ABOUTME: Opens the local graph store, the cloud document store, and the auth source.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/harperreed/drillbook/internal/auth"
	"github.com/harperreed/drillbook/internal/charm"
	"github.com/harperreed/drillbook/internal/cloud"
	"github.com/harperreed/drillbook/internal/storage"
)

// Cloud backends.
const (
	CloudCharm  = "charm"
	CloudBadger = "badger"
)

// Config stores drillbook configuration. Environment variables override the
// file; CLI flags override both.
type Config struct {
	// DataDir is the root directory for local data. drillbook.db lives here.
	// Supports ~ expansion. Defaults to ~/.local/share/drillbook.
	DataDir string `json:"data_dir,omitempty" env:"DRILLBOOK_DATA_DIR"`

	// CloudBackend selects the cloud document store: "charm" (default) or "badger".
	CloudBackend string `json:"cloud_backend,omitempty" env:"DRILLBOOK_CLOUD_BACKEND"`

	// CloudDir is the Badger directory when CloudBackend is "badger".
	// Defaults to <DataDir>/cloud.
	CloudDir string `json:"cloud_dir,omitempty" env:"DRILLBOOK_CLOUD_DIR"`

	// CharmHost is the Charm server. Defaults to charm.DefaultHost.
	CharmHost string `json:"charm_host,omitempty" env:"DRILLBOOK_CHARM_HOST"`

	// AuthToken is a signed session token whose sub claim is the user id.
	AuthToken string `json:"auth_token,omitempty" env:"DRILLBOOK_AUTH_TOKEN"`

	// AuthSecret verifies AuthToken.
	AuthSecret string `json:"auth_secret,omitempty" env:"DRILLBOOK_AUTH_SECRET"`

	// AuthSubject is a fixed signed-in user id, used when no token is set and
	// the cloud backend has no identity of its own.
	AuthSubject string `json:"auth_subject,omitempty" env:"DRILLBOOK_AUTH_SUBJECT"`

	// LogLevel is debug, info, warn, or error. Defaults to info.
	LogLevel string `json:"log_level,omitempty" env:"DRILLBOOK_LOG_LEVEL"`
}

// CloudStore is a cloud document store that must be closed after use.
type CloudStore interface {
	cloud.MutableStore
	Close() error
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDBPath returns the SQLite database path inside the data directory.
func (c *Config) GetDBPath() string {
	return filepath.Join(c.GetDataDir(), "drillbook.db")
}

// GetCloudBackend returns the configured cloud backend, defaulting to charm.
func (c *Config) GetCloudBackend() string {
	if c.CloudBackend == "" {
		return CloudCharm
	}
	return c.CloudBackend
}

// GetCloudDir returns the Badger directory with ~ expanded.
func (c *Config) GetCloudDir() string {
	if c.CloudDir == "" {
		return filepath.Join(c.GetDataDir(), "cloud")
	}
	return ExpandPath(c.CloudDir)
}

// GetLogLevel returns the configured log level, defaulting to info.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return strings.ToLower(c.LogLevel)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage opens the local SQLite graph store.
func (c *Config) OpenStorage() (storage.Repository, error) {
	return storage.Open(c.GetDBPath())
}

// OpenCloud opens the configured cloud document store.
func (c *Config) OpenCloud() (CloudStore, error) {
	switch backend := c.GetCloudBackend(); backend {
	case CloudCharm:
		cc, err := charm.Open(c.CharmHost, charm.DefaultDBName)
		if err != nil {
			return nil, err
		}
		return cc, nil
	case CloudBadger:
		bs, err := cloud.NewBadgerStore(cloud.DefaultBadgerConfig(c.GetCloudDir()))
		if err != nil {
			return nil, err
		}
		return bs, nil
	default:
		return nil, fmt.Errorf("unknown cloud backend: %q", backend)
	}
}

// Authenticator picks the auth source: a configured token first, then the
// cloud store's own identity, then the fixed subject.
func (c *Config) Authenticator(store CloudStore) auth.Authenticator {
	if c.AuthToken != "" {
		return auth.NewTokenAuthenticator(c.AuthToken, c.AuthSecret)
	}
	if a, ok := store.(auth.Authenticator); ok {
		return a
	}
	return auth.Static(c.AuthSubject)
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "drillbook", "config.json")
}

// Load reads config from disk and applies DRILLBOOK_* environment overrides.
func Load() (*Config, error) {
	cfg, err := loadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
