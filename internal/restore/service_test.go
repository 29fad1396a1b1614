// ABOUTME: Tests for restore and reconcile against real SQLite and in-memory Badger.
// ABOUTME: Covers progress reporting, the error taxonomy, and all-or-nothing commits.
package restore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/drillbook/internal/auth"
	"github.com/harperreed/drillbook/internal/cloud"
	"github.com/harperreed/drillbook/internal/models"
	"github.com/harperreed/drillbook/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser   = "user-1"
	playerUUID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func cloudSnapshot() *cloud.Snapshot {
	return &cloud.Snapshot{
		Profile: cloud.Record{
			"id":                   playerUUID,
			"firebaseUID":          testUser,
			"name":                 "Sam",
			"totalXP":              float64(900),
			"currentStreak":        float64(3),
			"longestStreak":        float64(7),
			"coins":                float64(40),
			"totalCoinsEarned":     float64(120),
			"unlockedAchievements": []any{"first_session"},
			"lastTrainingDate":     "2025-03-14T06:00:00Z",
		},
		Avatar: cloud.Record{"skinTone": "dark"},
		OwnedItems: []cloud.Record{
			{"itemId": "shirt_red", "slot": "shirt"},
		},
		Goals: []cloud.Record{
			{"skillName": "shooting", "targetLevel": float64(8)},
		},
		Exercises: []cloud.Record{
			{"name": "Cone Weave"},
		},
		Sessions: []cloud.Record{
			{
				"date":      "2025-03-10T17:00:00Z",
				"duration":  float64(60),
				"exercises": []any{map[string]any{"exerciseName": "Cone Weave", "sets": float64(3)}},
			},
		},
		Plans: []cloud.Record{
			{
				"name": "Preseason",
				"weeks": []any{
					map[string]any{"days": []any{
						map[string]any{"dayOfWeek": "Monday", "sessions": []any{
							map[string]any{"sessionType": "Technical"},
						}},
					}},
				},
			},
		},
	}
}

type fixture struct {
	db     *storage.DB
	cloud  *cloud.BadgerStore
	writer *cloud.KVWriter
	reader *cloud.KVReader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	bs, err := cloud.NewBadgerStore(cloud.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })

	return &fixture{
		db:     db,
		cloud:  bs,
		writer: cloud.NewKVWriter(bs),
		reader: cloud.NewKVReader(bs, nil),
	}
}

func (f *fixture) seed(t *testing.T, snap *cloud.Snapshot) {
	t.Helper()
	_, err := f.writer.PutSnapshot(context.Background(), testUser, snap)
	require.NoError(t, err)
}

func (f *fixture) service(opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewService(f.reader, f.db, auth.Static(testUser), opts...)
}

func (f *fixture) rowCount(t *testing.T) int {
	t.Helper()
	c, err := f.db.CountAll(context.Background())
	require.NoError(t, err)
	return c.Total()
}

// cancellingReader cancels the run's context once the snapshot is fetched.
type cancellingReader struct {
	cloud.Reader
	cancel context.CancelFunc
}

func (r *cancellingReader) FetchAll(ctx context.Context, userID string) (*cloud.Snapshot, error) {
	snap, err := r.Reader.FetchAll(ctx, userID)
	r.cancel()
	return snap, err
}

type brokenReader struct{ cloud.Reader }

func (brokenReader) FetchAll(context.Context, string) (*cloud.Snapshot, error) {
	return nil, errors.New("connection reset")
}

type failingStore struct{ *storage.DB }

func (failingStore) SaveGraph(context.Context, *models.Player) error {
	return errors.New("disk full")
}

func TestProbeCloudData(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	assert.False(t, svc.ProbeCloudData(context.Background(), testUser))
	f.seed(t, cloudSnapshot())
	assert.True(t, svc.ProbeCloudData(context.Background(), testUser))
	assert.False(t, svc.ProbeCloudData(context.Background(), "someone-else"))
	assert.False(t, svc.ProbeCloudData(context.Background(), ""))
}

func TestRestoreCommitsGraph(t *testing.T) {
	f := newFixture(t)
	f.seed(t, cloudSnapshot())
	svc := f.service()

	var progress []float64
	var phases []string
	cancel := svc.OnChange(func(st State) {
		progress = append(progress, st.Progress)
		phases = append(phases, st.Phase)
	})
	defer cancel()

	p, err := svc.Restore(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, uuid.MustParse(playerUUID), p.ID)
	assert.Equal(t, []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.55, 0.6, 0.7, 0.8, 0.9, 1.0}, progress)
	assert.Equal(t, PhaseFetch, phases[0])
	assert.Equal(t, PhaseDone, phases[len(phases)-1])

	st := svc.State()
	assert.False(t, st.Restoring)
	assert.Equal(t, 1.0, st.Progress)
	assert.Empty(t, st.LastError)
	assert.NotEmpty(t, st.RunID)

	loaded, err := f.db.FindPlayerByAuthID(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, p.ID, loaded.ID)
	assert.Equal(t, 900, loaded.TotalXP)
	assert.Equal(t, 4, loaded.CurrentLevel)
	require.NotNil(t, loaded.LastCloudSync)
	assert.True(t, testNow.Equal(*loaded.LastCloudSync))
	require.Len(t, loaded.Sessions, 1)
	require.Len(t, loaded.Sessions[0].Exercises, 1)
	require.Len(t, loaded.Plans, 1)
	assert.Equal(t, 1, loaded.Plans[0].SessionCount())
	require.Len(t, loaded.OwnedItems, 1)

	counts, err := f.db.CountGraph(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.PlanSessions)
	assert.Equal(t, 1, counts.SessionExercises)
}

func TestRestoreNotAuthenticated(t *testing.T) {
	f := newFixture(t)
	f.seed(t, cloudSnapshot())

	tests := []struct {
		name  string
		authn auth.Authenticator
	}{
		{"signed out", auth.Static("")},
		{"other subject", auth.Static("user-2")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(f.reader, f.db, tt.authn)
			var sawRestoring bool
			defer svc.OnChange(func(st State) { sawRestoring = sawRestoring || st.Restoring })()

			_, err := svc.Restore(context.Background(), testUser)
			require.ErrorIs(t, err, ErrNotAuthenticated)
			assert.False(t, sawRestoring)
			assert.False(t, svc.State().Restoring)
			assert.NotEmpty(t, svc.State().LastError)
			assert.Zero(t, f.rowCount(t))
		})
	}
}

func TestRestoreNoDataFound(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	_, err := svc.Restore(context.Background(), testUser)
	require.ErrorIs(t, err, ErrNoDataFound)
	assert.False(t, errors.Is(err, ErrRestorationFailed))

	st := svc.State()
	assert.False(t, st.Restoring)
	assert.Equal(t, PhaseFailed, st.Phase)
	assert.Equal(t, ErrNoDataFound.Error(), st.LastError)
}

func TestRestoreFetchFailure(t *testing.T) {
	f := newFixture(t)
	svc := NewService(brokenReader{f.reader}, f.db, auth.Static(testUser))

	_, err := svc.Restore(context.Background(), testUser)
	require.ErrorIs(t, err, ErrRestorationFailed)

	var rf *RestorationFailedError
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "fetch snapshot", rf.Detail)
	assert.Contains(t, svc.State().LastError, "connection reset")
}

func TestRestoreBuildFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	snap := cloudSnapshot()
	snap.Plans[0]["weeks"] = "not a list"
	f.seed(t, snap)
	svc := f.service()

	_, err := svc.Restore(context.Background(), testUser)
	require.ErrorIs(t, err, ErrRestorationFailed)
	assert.Contains(t, err.Error(), "build plans")
	assert.Zero(t, f.rowCount(t))

	st := svc.State()
	assert.False(t, st.Restoring)
	assert.Equal(t, 0.8, st.Progress, "progress stops at the last completed step")
}

func TestRestoreCommitFailure(t *testing.T) {
	f := newFixture(t)
	f.seed(t, cloudSnapshot())
	svc := NewService(f.reader, failingStore{f.db}, auth.Static(testUser))

	_, err := svc.Restore(context.Background(), testUser)
	require.ErrorIs(t, err, ErrRestorationFailed)
	assert.Contains(t, err.Error(), "disk full")
	assert.Less(t, svc.State().Progress, 1.0)
	assert.Zero(t, f.rowCount(t))
}

func TestRestoreCancelled(t *testing.T) {
	f := newFixture(t)
	f.seed(t, cloudSnapshot())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := NewService(&cancellingReader{Reader: f.reader, cancel: cancel}, f.db, auth.Static(testUser))

	_, err := svc.Restore(ctx, testUser)
	require.ErrorIs(t, err, ErrRestorationFailed)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.rowCount(t))
}

func TestRestoreTwiceKeepsFirstGraph(t *testing.T) {
	f := newFixture(t)
	f.seed(t, cloudSnapshot())
	svc := f.service()

	_, err := svc.Restore(context.Background(), testUser)
	require.NoError(t, err)
	before := f.rowCount(t)

	_, err = svc.Restore(context.Background(), testUser)
	require.ErrorIs(t, err, ErrRestorationFailed)
	require.ErrorIs(t, err, storage.ErrPlayerExists)
	assert.Equal(t, before, f.rowCount(t))

	players, err := f.db.ListPlayers(context.Background())
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

// clearGeneratedIDs zeroes the ids a build invents for records that carry
// none, and the sync stamp, leaving only values read from the snapshot.
func clearGeneratedIDs(p *models.Player) {
	p.LastCloudSync = nil
	if p.Profile != nil {
		p.Profile.ID = uuid.Nil
	}
	if p.Avatar != nil {
		p.Avatar.ID = uuid.Nil
	}
	for _, it := range p.OwnedItems {
		it.ID = uuid.Nil
	}
	for _, g := range p.Goals {
		g.ID = uuid.Nil
	}
	for _, e := range p.Exercises {
		e.ID = uuid.Nil
	}
	for _, s := range p.Sessions {
		s.ID = uuid.Nil
		for _, se := range s.Exercises {
			se.ID, se.SessionID = uuid.Nil, uuid.Nil
		}
	}
	for _, plan := range p.Plans {
		plan.ID = uuid.Nil
		for _, w := range plan.Weeks {
			w.ID, w.PlanID = uuid.Nil, uuid.Nil
			for _, d := range w.Days {
				d.ID, d.WeekID = uuid.Nil, uuid.Nil
				for _, ps := range d.Sessions {
					ps.ID, ps.DayID = uuid.Nil, uuid.Nil
				}
			}
		}
	}
}

func TestRestoreIdempotentRebuild(t *testing.T) {
	var graphs []*models.Player
	for i, clock := range []time.Time{testNow, testNow.Add(time.Hour)} {
		f := newFixture(t)
		f.seed(t, cloudSnapshot())
		now := clock
		svc := NewService(f.reader, f.db, auth.Static(testUser), WithClock(func() time.Time { return now }))

		_, err := svc.Restore(context.Background(), testUser)
		require.NoError(t, err, "run %d", i)

		loaded, err := f.db.FindPlayerByAuthID(context.Background(), testUser)
		require.NoError(t, err)
		require.NotNil(t, loaded.LastCloudSync)
		assert.True(t, now.Equal(*loaded.LastCloudSync))
		graphs = append(graphs, loaded)
	}

	// Records without a cloud createdAt are stamped with the run's clock too.
	graphs[1].Goals[0].CreatedAt = graphs[0].Goals[0].CreatedAt
	graphs[1].Exercises[0].CreatedAt = graphs[0].Exercises[0].CreatedAt
	graphs[1].Plans[0].CreatedAt = graphs[0].Plans[0].CreatedAt
	graphs[1].Profile.CreatedAt = graphs[0].Profile.CreatedAt
	graphs[1].CreatedAt = graphs[0].CreatedAt
	graphs[1].Avatar.LastModified = graphs[0].Avatar.LastModified
	graphs[1].OwnedItems[0].PurchasedAt = graphs[0].OwnedItems[0].PurchasedAt

	for _, g := range graphs {
		clearGeneratedIDs(g)
	}
	assert.Equal(t, graphs[0], graphs[1])
}

func TestRestoreEndToEndScenario(t *testing.T) {
	f := newFixture(t)
	f.seed(t, &cloud.Snapshot{
		Profile:   cloud.Record{"name": "Alex", "totalXP": float64(250)},
		Exercises: []cloud.Record{{"name": "Juggling"}},
		Sessions: []cloud.Record{{
			"date": "2025-03-12",
			"exercises": []any{
				map[string]any{"exerciseName": "Juggling", "performanceRating": float64(4)},
				map[string]any{"exerciseName": "Wall Pass", "performanceRating": float64(2)},
			},
		}},
		Plans: []cloud.Record{{
			"name": "Starter",
			"weeks": []any{map[string]any{"days": []any{
				map[string]any{"dayOfWeek": "Sunday", "isRestDay": true},
				map[string]any{"dayOfWeek": "Monday", "sessions": []any{
					map[string]any{"sessionType": "Technical"},
				}},
			}}},
		}},
	})

	_, err := f.service().Restore(context.Background(), testUser)
	require.NoError(t, err)

	p, err := f.db.FindPlayerByAuthID(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 250, p.TotalXP)
	assert.Equal(t, models.LevelForXP(250), p.CurrentLevel)
	require.Len(t, p.Exercises, 1)
	require.Len(t, p.Sessions, 1)
	require.Len(t, p.Sessions[0].Exercises, 2)
	assert.Equal(t, "Wall Pass", p.Sessions[0].Exercises[1].ExerciseName)

	require.Len(t, p.Plans, 1)
	require.Len(t, p.Plans[0].Weeks, 1)
	days := p.Plans[0].Weeks[0].Days
	require.Len(t, days, 2)
	assert.True(t, days[0].IsRestDay)
	assert.Empty(t, days[0].Sessions)
	assert.False(t, days[1].IsRestDay)
	assert.Len(t, days[1].Sessions, 1)
}

func TestRestoreAllOrNothingWithValidGoals(t *testing.T) {
	f := newFixture(t)
	f.seed(t, &cloud.Snapshot{
		Profile: cloud.Record{"name": "Sam", "totalXP": float64(100)},
		Goals: []cloud.Record{
			{"skillName": "passing", "targetLevel": float64(7)},
			{"skillName": "shooting", "targetLevel": float64(8)},
		},
		Plans: []cloud.Record{{
			"name":  "Broken",
			"weeks": []any{map[string]any{"days": "not a list"}},
		}},
	})

	_, err := f.service().Restore(context.Background(), testUser)
	require.ErrorIs(t, err, ErrRestorationFailed)

	_, err = f.db.FindPlayerByAuthID(context.Background(), testUser)
	require.ErrorIs(t, err, storage.ErrNotFound)
	counts, err := f.db.CountAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts.Players)
	assert.Zero(t, counts.Profiles)
	assert.Zero(t, counts.Goals)
}

func TestRestoreMinimalProfileLinksUser(t *testing.T) {
	f := newFixture(t)
	f.seed(t, &cloud.Snapshot{Profile: cloud.Record{"name": "Min", "totalXP": float64(100)}})
	svc := f.service()

	p, err := svc.Restore(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, testUser, p.AuthID)
	assert.Empty(t, p.Goals)
	assert.Empty(t, p.Sessions)
	assert.Empty(t, p.Plans)

	report, err := svc.Reconcile(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, p.ID, report.PlayerID)
	assert.False(t, report.Changed())
}

func TestRestoreIgnoresProfileUIDOfAnotherUser(t *testing.T) {
	f := newFixture(t)
	snap := cloudSnapshot()
	snap.Profile["firebaseUID"] = "someone-else"
	f.seed(t, snap)

	p, err := f.service().Restore(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, testUser, p.AuthID)

	_, err = f.db.FindPlayerByAuthID(context.Background(), "someone-else")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRestoreRepeatedRecordIDs(t *testing.T) {
	f := newFixture(t)
	shared := "11111111-1111-4111-8111-111111111111"
	snap := cloudSnapshot()
	snap.Goals = []cloud.Record{
		{"id": shared, "skillName": "passing"},
		{"id": shared, "skillName": "shooting"},
	}
	f.seed(t, snap)

	p, err := f.service().Restore(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, p.Goals, 2)
	assert.Equal(t, shared, p.Goals[0].ID.String())
	assert.NotEqual(t, p.Goals[0].ID, p.Goals[1].ID)

	counts, err := f.db.CountGraph(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Goals)
}

func TestRestoreUsersIndependent(t *testing.T) {
	f := newFixture(t)
	f.seed(t, cloudSnapshot())
	_, err := f.writer.PutSnapshot(context.Background(), "user-2", cloudSnapshot())
	require.NoError(t, err)

	first, err := f.service().Restore(context.Background(), testUser)
	require.NoError(t, err)

	other := NewService(f.reader, f.db, auth.Static("user-2"), WithClock(func() time.Time { return testNow }))
	second, err := other.Restore(context.Background(), "user-2")
	require.NoError(t, err, "same record ids under another account")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "user-2", second.AuthID)

	players, err := f.db.ListPlayers(context.Background())
	require.NoError(t, err)
	assert.Len(t, players, 2)
}

func TestReconcileKeepsLevelDerivedOnRestore(t *testing.T) {
	f := newFixture(t)
	snap := cloudSnapshot()
	snap.Profile["totalXP"] = float64(0)
	snap.Profile["currentLevel"] = float64(5)
	f.seed(t, snap)
	svc := f.service()

	p, err := svc.Restore(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CurrentLevel)

	report, err := svc.Reconcile(context.Background(), testUser)
	require.NoError(t, err)
	for _, c := range report.Changes {
		assert.NotEqual(t, "current_level", c.Field, "reconcile must not move the level")
	}
	assert.Equal(t, 1, report.After.CurrentLevel)
}

func TestRestoreFallbackPlayerID(t *testing.T) {
	f := newFixture(t)
	snap := cloudSnapshot()
	delete(snap.Profile, "id")
	f.seed(t, snap)

	want := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	svc := f.service(WithIDGenerator(func() uuid.UUID { return want }))

	p, err := svc.Restore(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, want, p.ID)
}

func TestOnChangeCancel(t *testing.T) {
	f := newFixture(t)
	f.seed(t, cloudSnapshot())
	svc := f.service()

	calls := 0
	cancel := svc.OnChange(func(State) { calls++ })
	cancel()

	_, err := svc.Restore(context.Background(), testUser)
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestReconcileNeverLowersCounters(t *testing.T) {
	f := newFixture(t)
	f.seed(t, cloudSnapshot())
	svc := f.service()

	_, err := svc.Restore(context.Background(), testUser)
	require.NoError(t, err)
	stateAfterRestore := svc.State()

	// Another device earned coins and an item but reports less XP.
	snap := cloudSnapshot()
	snap.Profile["totalXP"] = float64(500)
	snap.Profile["coins"] = float64(80)
	snap.Profile["totalCoinsEarned"] = float64(160)
	snap.Profile["unlockedAchievements"] = []any{"streak_3"}
	snap.OwnedItems = append(snap.OwnedItems, cloud.Record{"itemId": "boots_gold", "slot": "shoes"})
	_, err = f.writer.DeleteUser(context.Background(), testUser)
	require.NoError(t, err)
	f.seed(t, snap)

	report, err := svc.Reconcile(context.Background(), testUser)
	require.NoError(t, err)
	assert.True(t, report.Changed())
	assert.Equal(t, 1, report.ItemsAdded)
	assert.Equal(t, 900, report.After.TotalXP)
	assert.Equal(t, 80, report.After.Coins)
	assert.Equal(t, []string{"first_session", "streak_3"}, report.After.UnlockedAchievements)

	var fields []string
	for _, c := range report.Changes {
		fields = append(fields, c.Field)
	}
	assert.NotContains(t, fields, "total_xp")
	assert.Contains(t, fields, "coins")

	loaded, err := f.db.FindPlayerByAuthID(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 900, loaded.TotalXP)
	assert.Equal(t, 80, loaded.Coins)
	assert.Equal(t, 160, loaded.TotalCoinsEarned)
	require.Len(t, loaded.OwnedItems, 2)
	assert.Equal(t, "boots_gold", loaded.OwnedItems[1].ItemID)

	again, err := svc.Reconcile(context.Background(), testUser)
	require.NoError(t, err)
	assert.False(t, again.Changed())

	assert.Equal(t, stateAfterRestore, svc.State(), "reconcile leaves restore state alone")
}

func TestReconcileErrors(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	_, err := svc.Reconcile(context.Background(), testUser)
	require.ErrorIs(t, err, storage.ErrNotFound)

	signedOut := NewService(f.reader, f.db, auth.Static(""))
	_, err = signedOut.Reconcile(context.Background(), testUser)
	require.ErrorIs(t, err, ErrNotAuthenticated)

	f.seed(t, cloudSnapshot())
	_, err = svc.Restore(context.Background(), testUser)
	require.NoError(t, err)
	_, err = f.writer.DeleteUser(context.Background(), testUser)
	require.NoError(t, err)

	_, err = svc.Reconcile(context.Background(), testUser)
	require.ErrorIs(t, err, ErrNoDataFound)
}
