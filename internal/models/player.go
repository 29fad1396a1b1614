// ABOUTME: Player root entity and its 1:1 extensions (Profile, AvatarConfig).
// ABOUTME: A Player owns every other entity in the training graph.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is the root of a training graph.
type Player struct {
	ID              uuid.UUID
	AuthID          string // external-auth subject id
	Name            string
	Age             int
	Position        string
	ExperienceLevel string
	DominantFoot    string
	HeightCm        float64
	WeightKg        float64
	Gamification
	LastCloudSync *time.Time
	CreatedAt     time.Time

	Profile    *Profile
	Avatar     *AvatarConfig
	OwnedItems []*OwnedAvatarItem
	Goals      []*PlayerGoal
	Exercises  []*Exercise
	Sessions   []*TrainingSession
	Plans      []*TrainingPlan
}

// NewPlayer creates a Player with level 1 and no children.
func NewPlayer(id uuid.UUID, authID, name string) *Player {
	return &Player{
		ID:           id,
		AuthID:       authID,
		Name:         name,
		Gamification: Gamification{CurrentLevel: 1},
		CreatedAt:    time.Now(),
	}
}

// AttachProfile sets the player's profile and its owning reference.
func (p *Player) AttachProfile(pr *Profile) {
	pr.PlayerID = p.ID
	p.Profile = pr
}

// AttachAvatar sets the player's avatar configuration and its owning reference.
func (p *Player) AttachAvatar(a *AvatarConfig) {
	a.PlayerID = p.ID
	p.Avatar = a
}

// AddOwnedItem appends an owned avatar item.
func (p *Player) AddOwnedItem(it *OwnedAvatarItem) {
	it.PlayerID = p.ID
	p.OwnedItems = append(p.OwnedItems, it)
}

// OwnsItem reports whether an item id is already owned.
func (p *Player) OwnsItem(itemID string) bool {
	for _, it := range p.OwnedItems {
		if it.ItemID == itemID {
			return true
		}
	}
	return false
}

// AddGoal appends a goal.
func (p *Player) AddGoal(g *PlayerGoal) {
	g.PlayerID = p.ID
	p.Goals = append(p.Goals, g)
}

// AddExercise appends an exercise definition.
func (p *Player) AddExercise(e *Exercise) {
	e.PlayerID = p.ID
	p.Exercises = append(p.Exercises, e)
}

// AddSession appends a training session.
func (p *Player) AddSession(s *TrainingSession) {
	s.PlayerID = p.ID
	p.Sessions = append(p.Sessions, s)
}

// AddPlan appends a training plan.
func (p *Player) AddPlan(tp *TrainingPlan) {
	tp.PlayerID = p.ID
	p.Plans = append(p.Plans, tp)
}

// Profile holds free-form goals and training preferences.
type Profile struct {
	ID                      uuid.UUID
	PlayerID                uuid.UUID
	SkillGoals              []string
	PhysicalGoals           []string
	PreferredIntensity      int
	PreferredSessionMinutes int
	TrainingBackground      string
	CreatedAt               time.Time
}

// NewProfile creates a Profile with default preferences.
func NewProfile() *Profile {
	return &Profile{
		ID:                      uuid.New(),
		PreferredIntensity:      5,
		PreferredSessionMinutes: 30,
		CreatedAt:               time.Now(),
	}
}

// AvatarConfig is the player's cosmetic selection.
type AvatarConfig struct {
	ID           uuid.UUID
	PlayerID     uuid.UUID
	SkinTone     string
	HairStyle    string
	HairColor    string
	FaceStyle    string
	ShirtID      string
	ShortsID     string
	SocksID      string
	ShoesID      string
	AccessoryIDs []string
	LastModified time.Time
}

// OwnedAvatarItem records an unlocked cosmetic item.
type OwnedAvatarItem struct {
	ID          uuid.UUID
	PlayerID    uuid.UUID
	ItemID      string
	Slot        string
	PurchasedAt time.Time
}

// NewOwnedAvatarItem creates an unlock record purchased now.
func NewOwnedAvatarItem(itemID, slot string) *OwnedAvatarItem {
	return &OwnedAvatarItem{
		ID:          uuid.New(),
		ItemID:      itemID,
		Slot:        slot,
		PurchasedAt: time.Now(),
	}
}

// PlayerGoal is a tracked skill target.
type PlayerGoal struct {
	ID           uuid.UUID
	PlayerID     uuid.UUID
	SkillName    string
	CurrentLevel float64
	TargetLevel  float64
	Priority     int
	Status       string
	TargetDate   *time.Time
	Notes        string
	CreatedAt    time.Time
}

// Goal statuses.
const (
	GoalActive    = "active"
	GoalCompleted = "completed"
	GoalPaused    = "paused"
)

// NewPlayerGoal creates an active goal with medium priority.
func NewPlayerGoal(skill string, current, target float64) *PlayerGoal {
	return &PlayerGoal{
		ID:           uuid.New(),
		SkillName:    skill,
		CurrentLevel: current,
		TargetLevel:  target,
		Priority:     3,
		Status:       GoalActive,
		CreatedAt:    time.Now(),
	}
}

// WithTargetDate sets a deadline on the goal.
func (g *PlayerGoal) WithTargetDate(t time.Time) *PlayerGoal {
	g.TargetDate = &t
	return g
}
