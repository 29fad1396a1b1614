// ABOUTME: Charm KV client exposing the cloud document store contract.
// ABOUTME: The signed-in Charm account id doubles as the restore auth subject.
package charm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/drillbook/internal/auth"
	"github.com/harperreed/drillbook/internal/cloud"
)

const (
	// DefaultDBName is the Charm KV database holding cloud documents.
	DefaultDBName = "drillbook"
	// DefaultHost is the Charm server used when none is configured.
	DefaultHost = "charm.2389.dev"
)

// ErrReadOnly means another process holds the local KV lock.
var ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")

// Client wraps a Charm KV database.
type Client struct {
	kv *kv.KV
	mu sync.RWMutex
}

var (
	_ cloud.MutableStore = (*Client)(nil)
	_ cloud.Syncer       = (*Client)(nil)
	_ auth.Authenticator = (*Client)(nil)
)

// Open connects to Charm Cloud and opens dbName, falling back to read-only
// when the local copy is locked. Empty arguments use the defaults.
func Open(host, dbName string) (*Client, error) {
	if host == "" {
		host = DefaultHost
	}
	if dbName == "" {
		dbName = DefaultDBName
	}
	// Set server before opening KV
	if err := os.Setenv("CHARM_HOST", host); err != nil {
		return nil, fmt.Errorf("set charm host: %w", err)
	}

	db, err := kv.OpenWithDefaultsFallback(dbName)
	if err != nil {
		return nil, fmt.Errorf("open charm kv %s: %w", dbName, err)
	}
	return &Client{kv: db}, nil
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync pulls remote state from Charm Cloud. Read-only copies skip it.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

// Subject returns the Charm account id of the linked identity.
func (c *Client) Subject(context.Context) (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("%w: create charm client: %v", auth.ErrNoSession, err)
	}
	id, err := cc.ID()
	if err != nil {
		return "", fmt.Errorf("%w: %v", auth.ErrNoSession, err)
	}
	return id, nil
}

// Keys lists every key in the database.
func (c *Client) Keys() ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kv.Keys()
}

// Get returns the value for key, or cloud.ErrNotFound.
func (c *Client) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, err := c.kv.Get(key)
	return val, translate(key, err)
}

// Set stores a value and pushes it to Charm Cloud.
func (c *Client) Set(key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}
	if err := c.kv.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return c.kv.Sync()
}

// Delete removes a key and pushes the removal to Charm Cloud.
func (c *Client) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}
	if err := c.kv.Delete(key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return c.kv.Sync()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

// translate maps Badger's missing-key error onto cloud.ErrNotFound.
func translate(key []byte, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return fmt.Errorf("%w: %s", cloud.ErrNotFound, key)
	default:
		return fmt.Errorf("get %s: %w", key, err)
	}
}
