// ABOUTME: Writes cloud documents back to a mutable store.
// ABOUTME: Used for snapshot import, local-to-cloud backup, and test seeding.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// KVWriter stores records as JSON documents.
type KVWriter struct {
	store MutableStore
}

// NewKVWriter creates a writer.
func NewKVWriter(store MutableStore) *KVWriter {
	return &KVWriter{store: store}
}

// PutRecord writes one document.
func (w *KVWriter) PutRecord(ctx context.Context, userID, collection, docID string, rec Record) error {
	if err := validateUserID(userID); err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	clean := make(Record, len(rec))
	for k, v := range rec {
		if k != DocIDField {
			clean[k] = v
		}
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, docID, err)
	}
	if err := w.store.Set([]byte(DocKey(userID, collection, docID)), data); err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, docID, err)
	}
	return nil
}

// PutSnapshot writes every record of a snapshot. List documents are keyed by their
// id field, falling back to a zero-padded position so key order matches list order.
func (w *KVWriter) PutSnapshot(ctx context.Context, userID string, snap *Snapshot) (int, error) {
	written := 0
	if snap.Profile != nil {
		if err := w.PutRecord(ctx, userID, CollectionProfile, ProfileDocID, snap.Profile); err != nil {
			return written, err
		}
		written++
	}
	if snap.Avatar != nil {
		if err := w.PutRecord(ctx, userID, CollectionAvatar, AvatarDocID, snap.Avatar); err != nil {
			return written, err
		}
		written++
	}

	lists := []struct {
		collection string
		records    []Record
	}{
		{CollectionOwnedItems, snap.OwnedItems},
		{CollectionGoals, snap.Goals},
		{CollectionExercises, snap.Exercises},
		{CollectionSessions, snap.Sessions},
		{CollectionPlans, snap.Plans},
	}
	for _, l := range lists {
		for i, rec := range l.records {
			docID := fmt.Sprintf("%04d-%s", i, rec.String("", "id", DocIDField))
			if err := w.PutRecord(ctx, userID, l.collection, docID, rec); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

// DeleteUser removes every document under the user's prefix.
func (w *KVWriter) DeleteUser(ctx context.Context, userID string) (int, error) {
	if err := validateUserID(userID); err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	keys, err := w.store.Keys()
	if err != nil {
		return 0, fmt.Errorf("list keys: %w", err)
	}
	prefix := []byte(UserPrefix(userID))
	deleted := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if !bytes.HasPrefix(key, prefix) {
			continue
		}
		if err := w.store.Delete(key); err != nil {
			return deleted, fmt.Errorf("delete %s: %w", key, err)
		}
		deleted++
	}
	return deleted, nil
}
