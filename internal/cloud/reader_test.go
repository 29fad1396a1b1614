// ABOUTME: Tests for KVReader, KVWriter, and BadgerStore.
// ABOUTME: Uses an in-memory Badger store and a failing fake for transport errors.
package cloud

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStore(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// failingStore simulates a remote that cannot be reached.
type failingStore struct {
	*BadgerStore
}

func (f failingStore) Sync() error {
	return errors.New("connection refused")
}

func TestBadgerStoreGetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get([]byte("nope"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchAllGroupsByCollection(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	w := NewKVWriter(store)

	require.NoError(t, w.PutRecord(ctx, "u1", CollectionProfile, ProfileDocID, Record{"name": "Sam"}))
	require.NoError(t, w.PutRecord(ctx, "u1", CollectionGoals, "b", Record{"skillName": "shooting"}))
	require.NoError(t, w.PutRecord(ctx, "u1", CollectionGoals, "a", Record{"skillName": "passing"}))
	require.NoError(t, w.PutRecord(ctx, "u1", "leaderboard", "x", Record{"rank": 1}))
	require.NoError(t, w.PutRecord(ctx, "u2", CollectionGoals, "c", Record{"skillName": "other user"}))

	snap, err := NewKVReader(store, nil).FetchAll(ctx, "u1")
	require.NoError(t, err)

	require.NotNil(t, snap.Profile)
	assert.Equal(t, "Sam", snap.Profile.String("", "name"))
	assert.Nil(t, snap.Avatar)
	require.Len(t, snap.Goals, 2)
	assert.Equal(t, "passing", snap.Goals[0].String("", "skillName"), "key order")
	assert.Equal(t, "a", snap.Goals[0].String("", DocIDField))
	assert.Equal(t, 3, snap.RecordCount())
}

func TestFetchAllRejectsMalformedDocument(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Set([]byte(DocKey("u1", CollectionGoals, "g1")), []byte("{not json")))

	_, err := NewKVReader(store, nil).FetchAll(context.Background(), "u1")
	assert.ErrorContains(t, err, "decode users/u1/goals/g1")
}

func TestHasData(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	reader := NewKVReader(store, nil)

	assert.False(t, reader.HasData(ctx, "u1"))
	assert.False(t, reader.HasData(ctx, ""))
	assert.False(t, reader.HasData(ctx, "a/b"))

	require.NoError(t, NewKVWriter(store).PutRecord(ctx, "u1", CollectionGoals, "g1", Record{}))
	assert.False(t, reader.HasData(ctx, "u1"), "goals without a profile are not restorable")

	require.NoError(t, NewKVWriter(store).PutRecord(ctx, "u1", CollectionProfile, ProfileDocID, Record{"name": "Sam"}))
	assert.True(t, reader.HasData(ctx, "u1"))
}

func TestHasDataProfileUnderOtherDocID(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	reader := NewKVReader(store, nil)

	require.NoError(t, NewKVWriter(store).PutRecord(ctx, "u1", CollectionProfile, "legacy", Record{"name": "Sam"}))
	assert.True(t, reader.HasData(ctx, "u1"))

	snap, err := reader.FetchAll(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, snap.Empty(), "probe and fetch agree")

	assert.False(t, reader.HasData(ctx, "u10"), "another user's probe stays false")
}

func TestTransportFailure(t *testing.T) {
	ctx := context.Background()
	store := failingStore{setupTestStore(t)}
	require.NoError(t, NewKVWriter(store).PutRecord(ctx, "u1", CollectionProfile, ProfileDocID, Record{}))

	reader := NewKVReader(store, nil)
	assert.False(t, reader.HasData(ctx, "u1"))

	_, err := reader.FetchAll(ctx, "u1")
	assert.ErrorContains(t, err, "connection refused")
}

func TestPutSnapshotAndDeleteUser(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	w := NewKVWriter(store)

	snap := &Snapshot{
		Profile:   Record{"name": "Sam"},
		Avatar:    Record{"skinTone": "medium"},
		Exercises: []Record{{"id": "e2", "name": "Juggling"}, {"id": "e1", "name": "Sprints"}},
	}
	n, err := w.PutSnapshot(ctx, "u1", snap)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	got, err := NewKVReader(store, nil).FetchAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Exercises, 2)
	assert.Equal(t, "Juggling", got.Exercises[0].String("", "name"), "list order preserved")

	deleted, err := w.DeleteUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, deleted)
	assert.False(t, NewKVReader(store, nil).HasData(ctx, "u1"))
}

func TestDecodeSnapshotJSON(t *testing.T) {
	snap, err := DecodeSnapshotJSON([]byte(`{
		"profile": {"name": "Sam", "totalXP": 250},
		"owned_items": [{"itemId": "boots"}],
		"plans": [{"name": "Block", "weeks": []}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, 250, snap.Profile.Int(0, "totalXP"))
	assert.Len(t, snap.OwnedItems, 1)
	assert.Len(t, snap.Plans, 1)
	assert.Nil(t, snap.Avatar)

	_, err = DecodeSnapshotJSON([]byte(`{"goals": "nope"}`))
	assert.Error(t, err)

	_, err = DecodeSnapshotJSON([]byte(`{"profile": []}`))
	assert.Error(t, err)
}
