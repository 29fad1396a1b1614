// ABOUTME: Multi-week TrainingPlan hierarchy: plan → weeks → days → sessions.
// ABOUTME: PlanSession is the leaf unit a player checks off.
package models

import (
	"time"

	"github.com/google/uuid"
)

// TrainingPlan is a multi-week program.
type TrainingPlan struct {
	ID                 uuid.UUID
	PlayerID           uuid.UUID
	Name               string
	Description        string
	Difficulty         string
	Category           string
	TargetRole         string
	DurationWeeks      int
	IsActive           bool
	ProgressPercentage float64
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CreatedAt          time.Time
	Weeks              []*PlanWeek
}

// NewTrainingPlan creates an empty plan.
func NewTrainingPlan(name string) *TrainingPlan {
	return &TrainingPlan{
		ID:            uuid.New(),
		Name:          name,
		Difficulty:    "Intermediate",
		Category:      "Technical",
		DurationWeeks: 1,
		CreatedAt:     time.Now(),
	}
}

// AddWeek appends a week.
func (p *TrainingPlan) AddWeek(w *PlanWeek) {
	w.PlanID = p.ID
	p.Weeks = append(p.Weeks, w)
}

// PlanWeek is one week of a plan.
type PlanWeek struct {
	ID          uuid.UUID
	PlanID      uuid.UUID
	WeekNumber  int
	FocusArea   string
	Notes       string
	IsCompleted bool
	Days        []*PlanDay
}

// NewPlanWeek creates a week with the given number.
func NewPlanWeek(number int) *PlanWeek {
	return &PlanWeek{ID: uuid.New(), WeekNumber: number}
}

// AddDay appends a day.
func (w *PlanWeek) AddDay(d *PlanDay) {
	d.WeekID = w.ID
	w.Days = append(w.Days, d)
}

// PlanDay is one day of a plan week; rest days carry no sessions.
type PlanDay struct {
	ID          uuid.UUID
	WeekID      uuid.UUID
	DayNumber   int
	DayOfWeek   string
	Date        *time.Time
	IsRestDay   bool
	IsCompleted bool
	IsSkipped   bool
	Notes       string
	Sessions    []*PlanSession
}

// NewPlanDay creates a training day.
func NewPlanDay(number int, dayOfWeek string) *PlanDay {
	return &PlanDay{ID: uuid.New(), DayNumber: number, DayOfWeek: dayOfWeek}
}

// AddSession appends a planned session.
func (d *PlanDay) AddSession(s *PlanSession) {
	s.DayID = d.ID
	d.Sessions = append(d.Sessions, s)
}

// PlanSession is a planned workout within a day.
type PlanSession struct {
	ID                     uuid.UUID
	DayID                  uuid.UUID
	SessionType            string
	DurationMinutes        int
	Intensity              int
	Notes                  string
	IsCompleted            bool
	IsSkipped              bool
	ActualDurationMinutes  *int
	ActualIntensity        *int
	CompletedAt            *time.Time
	ExerciseIDs            []uuid.UUID
	SuggestedExerciseNames []string
}

// NewPlanSession creates a 45 minute session of medium intensity.
func NewPlanSession(sessionType string) *PlanSession {
	return &PlanSession{
		ID:              uuid.New(),
		SessionType:     sessionType,
		DurationMinutes: 45,
		Intensity:       3,
	}
}

// SessionCount returns the number of planned sessions across all weeks.
func (p *TrainingPlan) SessionCount() int {
	n := 0
	for _, w := range p.Weeks {
		for _, d := range w.Days {
			n += len(d.Sessions)
		}
	}
	return n
}
