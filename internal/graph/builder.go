// ABOUTME: Staged construction of a player graph from a cloud snapshot.
// ABOUTME: Steps run parent-before-child and refuse to run out of order.
package graph

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/drillbook/internal/cloud"
	"github.com/harperreed/drillbook/internal/models"
)

var (
	// ErrNoProfile means the snapshot has no root profile record.
	ErrNoProfile = errors.New("snapshot has no profile record")
	// ErrOutOfOrder means a step ran before the step it depends on.
	ErrOutOfOrder = errors.New("graph step out of order")
)

// Step is one named stage of a build.
type Step struct {
	Name string
	Run  func() error
}

// Step names, in execution order.
const (
	StepPlayer       = "player"
	StepProfile      = "profile"
	StepGamification = "gamification"
	StepAvatar       = "avatar"
	StepOwnedItems   = "owned_items"
	StepGoals        = "goals"
	StepExercises    = "exercises"
	StepSessions     = "sessions"
	StepPlans        = "plans"
)

var stepOrder = []string{
	StepPlayer, StepProfile, StepGamification, StepAvatar, StepOwnedItems,
	StepGoals, StepExercises, StepSessions, StepPlans,
}

// Builder stages an in-memory player graph. It is not safe for concurrent use.
type Builder struct {
	snap        *cloud.Snapshot
	newPlayerID uuid.UUID
	now         time.Time
	authID      string

	player  *models.Player
	used    map[uuid.UUID]struct{}
	done    int
	skipped int
}

// NewBuilder prepares a build of snap. newPlayerID is used when the profile
// record carries no usable id. now stamps LastCloudSync and fills missing dates.
func NewBuilder(snap *cloud.Snapshot, newPlayerID uuid.UUID, now time.Time) *Builder {
	return &Builder{snap: snap, newPlayerID: newPlayerID, now: now, used: make(map[uuid.UUID]struct{})}
}

// ForUser binds the player to the account the snapshot was fetched for. The
// profile's own uid is used only when no account is bound.
func (b *Builder) ForUser(authID string) *Builder {
	b.authID = authID
	return b
}

// Build runs every step in order and returns the finished graph.
func Build(snap *cloud.Snapshot, newPlayerID uuid.UUID, now time.Time) (*models.Player, error) {
	b := NewBuilder(snap, newPlayerID, now)
	for _, step := range b.Steps() {
		if err := step.Run(); err != nil {
			return nil, fmt.Errorf("build %s: %w", step.Name, err)
		}
	}
	return b.Player(), nil
}

// Steps returns the build stages in the order they must run.
func (b *Builder) Steps() []Step {
	return []Step{
		{StepPlayer, b.BuildPlayer},
		{StepProfile, b.BuildProfile},
		{StepGamification, b.ApplyGamification},
		{StepAvatar, b.BuildAvatar},
		{StepOwnedItems, b.BuildOwnedItems},
		{StepGoals, b.BuildGoals},
		{StepExercises, b.BuildExercises},
		{StepSessions, b.BuildSessions},
		{StepPlans, b.BuildPlans},
	}
}

// Player returns the graph built so far, or nil before BuildPlayer.
func (b *Builder) Player() *models.Player {
	return b.player
}

// Skipped returns how many records were dropped as duplicates or unusable.
func (b *Builder) Skipped() int {
	return b.skipped
}

// enter checks that name is the next step to run.
func (b *Builder) enter(name string) error {
	if b.done >= len(stepOrder) || stepOrder[b.done] != name {
		return fmt.Errorf("%w: %s", ErrOutOfOrder, name)
	}
	return nil
}

func (b *Builder) finish() error {
	b.done++
	return nil
}

// claim returns id, or a fresh id when an earlier record of this build already
// took it. Record ids become primary keys, so a repeat must not reach the store.
func (b *Builder) claim(id uuid.UUID) uuid.UUID {
	if _, dup := b.used[id]; dup {
		id = uuid.New()
	}
	b.used[id] = struct{}{}
	return id
}

// BuildPlayer creates the root player from the profile record.
func (b *Builder) BuildPlayer() error {
	if err := b.enter(StepPlayer); err != nil {
		return err
	}
	if b.snap.Empty() {
		return ErrNoProfile
	}
	f := parsePlayer(b.snap.Profile, b.now)
	id := b.newPlayerID
	if f.HasID {
		id = f.ID
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	authID := b.authID
	if authID == "" {
		authID = f.AuthID
	}
	synced := b.now
	b.player = &models.Player{
		ID:              b.claim(id),
		AuthID:          authID,
		Name:            f.Name,
		Age:             f.Age,
		Position:        f.Position,
		ExperienceLevel: f.ExperienceLevel,
		DominantFoot:    f.DominantFoot,
		HeightCm:        f.HeightCm,
		WeightKg:        f.WeightKg,
		Gamification:    models.Gamification{CurrentLevel: 1},
		LastCloudSync:   &synced,
		CreatedAt:       f.CreatedAt,
	}
	return b.finish()
}

// BuildProfile attaches the training preferences from the profile record.
func (b *Builder) BuildProfile() error {
	if err := b.enter(StepProfile); err != nil {
		return err
	}
	pr := parseProfile(b.snap.Profile, b.now)
	pr.ID = b.claim(pr.ID)
	b.player.AttachProfile(pr)
	return b.finish()
}

// ApplyGamification copies the counters from the profile record onto the player.
func (b *Builder) ApplyGamification() error {
	if err := b.enter(StepGamification); err != nil {
		return err
	}
	b.player.Gamification = ParseGamification(b.snap.Profile)
	return b.finish()
}

// BuildAvatar attaches the avatar configuration if the snapshot has one.
func (b *Builder) BuildAvatar() error {
	if err := b.enter(StepAvatar); err != nil {
		return err
	}
	if b.snap.Avatar != nil {
		a := parseAvatar(b.snap.Avatar, b.now)
		a.ID = b.claim(a.ID)
		b.player.AttachAvatar(a)
	}
	return b.finish()
}

// BuildOwnedItems adds one owned item per distinct item id.
func (b *Builder) BuildOwnedItems() error {
	if err := b.enter(StepOwnedItems); err != nil {
		return err
	}
	for _, it := range ParseOwnedItems(b.snap, b.now) {
		it.ID = b.claim(it.ID)
		b.player.AddOwnedItem(it)
	}
	b.skipped += len(b.snap.OwnedItems) - len(b.player.OwnedItems)
	return b.finish()
}

// ParseOwnedItems converts the snapshot's owned-item records, dropping records
// without an item id and repeats of an item id already seen (first wins).
func ParseOwnedItems(snap *cloud.Snapshot, now time.Time) []*models.OwnedAvatarItem {
	if snap == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(snap.OwnedItems))
	var items []*models.OwnedAvatarItem
	for _, r := range snap.OwnedItems {
		it := parseOwnedItem(r, now)
		if it.ItemID == "" {
			continue
		}
		if _, dup := seen[it.ItemID]; dup {
			continue
		}
		seen[it.ItemID] = struct{}{}
		items = append(items, it)
	}
	return items
}

// BuildGoals adds every goal record.
func (b *Builder) BuildGoals() error {
	if err := b.enter(StepGoals); err != nil {
		return err
	}
	for _, r := range b.snap.Goals {
		g := parseGoal(r, b.now)
		g.ID = b.claim(g.ID)
		b.player.AddGoal(g)
	}
	return b.finish()
}

// BuildExercises adds every exercise record.
func (b *Builder) BuildExercises() error {
	if err := b.enter(StepExercises); err != nil {
		return err
	}
	for _, r := range b.snap.Exercises {
		e := parseExercise(r, b.now)
		e.ID = b.claim(e.ID)
		b.player.AddExercise(e)
	}
	return b.finish()
}

// BuildSessions adds every session with its ordered exercise performances.
func (b *Builder) BuildSessions() error {
	if err := b.enter(StepSessions); err != nil {
		return err
	}
	for i, r := range b.snap.Sessions {
		s, children, err := parseSession(r, b.now)
		if err != nil {
			return recordError("session", i, err)
		}
		s.ID = b.claim(s.ID)
		b.player.AddSession(s)
		for _, c := range children {
			se := parseSessionExercise(c)
			se.ID = b.claim(se.ID)
			s.AddExercise(se)
		}
	}
	return b.finish()
}

// BuildPlans adds every plan, descending weeks, days and sessions in order.
func (b *Builder) BuildPlans() error {
	if err := b.enter(StepPlans); err != nil {
		return err
	}
	for i, r := range b.snap.Plans {
		if err := b.buildPlan(r); err != nil {
			return recordError("plan", i, err)
		}
	}
	return b.finish()
}

func (b *Builder) buildPlan(r cloud.Record) error {
	plan, weeks, err := parsePlan(r, b.now)
	if err != nil {
		return err
	}
	plan.ID = b.claim(plan.ID)
	b.player.AddPlan(plan)
	for wi, wr := range weeks {
		week, days, err := parseWeek(wr, wi)
		if err != nil {
			return recordError("week", wi, err)
		}
		week.ID = b.claim(week.ID)
		plan.AddWeek(week)
		for di, dr := range days {
			day, sessions, err := parseDay(dr, di)
			if err != nil {
				return fmt.Errorf("week %d: %w", wi, recordError("day", di, err))
			}
			day.ID = b.claim(day.ID)
			week.AddDay(day)
			for _, sr := range sessions {
				ps := parsePlanSession(sr)
				ps.ID = b.claim(ps.ID)
				day.AddSession(ps)
			}
		}
	}
	return nil
}
