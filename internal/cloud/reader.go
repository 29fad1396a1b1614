// ABOUTME: Snapshot reader over a key/value document store.
// ABOUTME: HasData degrades to false on any error; FetchAll runs once with no retry.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
)

// Reader fetches a user's records from the remote store.
type Reader interface {
	// HasData reports whether the user has a root profile record. Never errors.
	HasData(ctx context.Context, userID string) bool
	// FetchAll returns every record for the user grouped by collection.
	FetchAll(ctx context.Context, userID string) (*Snapshot, error)
}

// KVReader implements Reader over a Store.
type KVReader struct {
	store  Store
	logger *slog.Logger
}

// Compile-time check that KVReader implements Reader.
var _ Reader = (*KVReader)(nil)

// NewKVReader creates a reader. A nil logger uses slog.Default().
func NewKVReader(store Store, logger *slog.Logger) *KVReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &KVReader{store: store, logger: logger}
}

// pull syncs remote state when the store mirrors a remote.
func (r *KVReader) pull() error {
	if s, ok := r.store.(Syncer); ok {
		if err := s.Sync(); err != nil {
			return fmt.Errorf("sync remote: %w", err)
		}
	}
	return nil
}

// HasData reports whether a profile document exists for the user, under any
// doc id, as FetchAll would find it.
func (r *KVReader) HasData(ctx context.Context, userID string) bool {
	if err := validateUserID(userID); err != nil {
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	if err := r.pull(); err != nil {
		r.logger.Warn("cloud probe failed", "user", userID, "error", err)
		return false
	}
	keys, err := r.store.Keys()
	if err != nil {
		r.logger.Warn("cloud probe failed", "user", userID, "error", err)
		return false
	}
	prefix := []byte(UserPrefix(userID) + CollectionProfile + "/")
	for _, key := range keys {
		if !bytes.HasPrefix(key, prefix) || len(key) == len(prefix) {
			continue
		}
		data, err := r.store.Get(key)
		if err != nil || len(data) == 0 {
			continue
		}
		var rec Record
		if json.Unmarshal(data, &rec) == nil && rec != nil {
			return true
		}
	}
	return false
}

// FetchAll reads all documents under the user's prefix in key order.
func (r *KVReader) FetchAll(ctx context.Context, userID string) (*Snapshot, error) {
	if err := validateUserID(userID); err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.pull(); err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	keys, err := r.store.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	prefix := UserPrefix(userID)
	prefixBytes := []byte(prefix)
	var matched []string
	for _, key := range keys {
		if bytes.HasPrefix(key, prefixBytes) {
			matched = append(matched, string(key))
		}
	}
	sort.Strings(matched)

	snap := &Snapshot{}
	for _, key := range matched {
		collection, docID, ok := splitDocKey(key, prefix)
		if !ok {
			continue
		}
		data, err := r.store.Get([]byte(key))
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", key, err)
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		if rec == nil {
			rec = Record{}
		}
		if _, present := rec[DocIDField]; !present {
			rec[DocIDField] = docID
		}
		snap.add(collection, rec)
	}

	r.logger.Debug("fetched cloud snapshot", "user", userID, "records", snap.RecordCount())
	return snap, nil
}
