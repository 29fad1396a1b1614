// ABOUTME: Snapshot groups one user's cloud records by collection.
// ABOUTME: Also decodes snapshot files used by `drillbook cloud import`.
package cloud

import (
	"encoding/json"
	"fmt"
)

// Collection names under users/<id>/.
const (
	CollectionProfile    = "profile"
	CollectionAvatar     = "avatar"
	CollectionOwnedItems = "ownedItems"
	CollectionGoals      = "goals"
	CollectionExercises  = "exercises"
	CollectionSessions   = "sessions"
	CollectionPlans      = "plans"

	ProfileDocID = "main"
	AvatarDocID  = "current"
)

// Snapshot is every record fetched for one user in a single pass.
type Snapshot struct {
	Profile    Record
	Avatar     Record
	OwnedItems []Record
	Goals      []Record
	Exercises  []Record
	Sessions   []Record
	Plans      []Record
}

// Empty reports whether the snapshot has no root profile record.
func (s *Snapshot) Empty() bool {
	return s == nil || s.Profile == nil
}

// RecordCount returns the number of top-level records.
func (s *Snapshot) RecordCount() int {
	if s == nil {
		return 0
	}
	n := len(s.OwnedItems) + len(s.Goals) + len(s.Exercises) + len(s.Sessions) + len(s.Plans)
	if s.Profile != nil {
		n++
	}
	if s.Avatar != nil {
		n++
	}
	return n
}

// add places a record into the slot for its collection. Unknown collections are ignored.
func (s *Snapshot) add(collection string, r Record) {
	switch collection {
	case CollectionProfile:
		s.Profile = r
	case CollectionAvatar:
		s.Avatar = r
	case CollectionOwnedItems:
		s.OwnedItems = append(s.OwnedItems, r)
	case CollectionGoals:
		s.Goals = append(s.Goals, r)
	case CollectionExercises:
		s.Exercises = append(s.Exercises, r)
	case CollectionSessions:
		s.Sessions = append(s.Sessions, r)
	case CollectionPlans:
		s.Plans = append(s.Plans, r)
	}
}

// DecodeSnapshotJSON parses a snapshot document of the form
// {"profile":{...},"avatar":{...},"ownedItems":[...],"goals":[...],...}.
func DecodeSnapshotJSON(data []byte) (*Snapshot, error) {
	var root Record
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := &Snapshot{}
	if v, ok := root.lookup("profile", "profileRecord"); ok {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("decode snapshot: profile: expected object, got %T", v)
		}
		snap.Profile = Record(m)
	}
	if v, ok := root.lookup("avatar", "avatarRecord"); ok {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("decode snapshot: avatar: expected object, got %T", v)
		}
		snap.Avatar = Record(m)
	}

	lists := []struct {
		dst  *[]Record
		keys []string
	}{
		{&snap.OwnedItems, []string{"ownedItems", "owned_items"}},
		{&snap.Goals, []string{"goals"}},
		{&snap.Exercises, []string{"exercises"}},
		{&snap.Sessions, []string{"sessions"}},
		{&snap.Plans, []string{"plans"}},
	}
	for _, l := range lists {
		recs, err := root.Records(l.keys...)
		if err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		*l.dst = recs
	}

	return snap, nil
}
