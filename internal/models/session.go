// ABOUTME: Exercise definitions and logged TrainingSessions.
// ABOUTME: Sessions own an ordered list of SessionExercise performance records.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Exercise is a drill definition, either user-authored or YouTube-backed.
type Exercise struct {
	ID                   uuid.UUID
	PlayerID             uuid.UUID
	Name                 string
	Description          string
	Category             string
	Difficulty           int
	TargetSkills         []string
	Instructions         string
	YouTubeVideoID       string
	IsYouTubeContent     bool
	VideoTitle           string
	ChannelName          string
	VideoDurationSeconds int
	ThumbnailURL         string
	CommunityDrillID     *string // set when copied from a shared drill
	CreatedAt            time.Time
}

// NewExercise creates a General exercise of medium difficulty.
func NewExercise(name string) *Exercise {
	return &Exercise{
		ID:         uuid.New(),
		Name:       name,
		Category:   "General",
		Difficulty: 3,
		CreatedAt:  time.Now(),
	}
}

// WithYouTube marks the exercise as backed by a YouTube video.
func (e *Exercise) WithYouTube(videoID, title string) *Exercise {
	e.YouTubeVideoID = videoID
	e.VideoTitle = title
	e.IsYouTubeContent = true
	return e
}

// TrainingSession is a logged workout occurrence.
type TrainingSession struct {
	ID              uuid.UUID
	PlayerID        uuid.UUID
	Date            time.Time
	DurationMinutes int
	SessionType     string
	Intensity       int
	OverallRating   int
	Notes           string
	Exercises       []*SessionExercise
}

// NewTrainingSession creates a session dated now with default intensity and rating.
func NewTrainingSession(sessionType string) *TrainingSession {
	return &TrainingSession{
		ID:            uuid.New(),
		Date:          time.Now(),
		SessionType:   sessionType,
		Intensity:     5,
		OverallRating: 3,
	}
}

// WithDuration sets the duration in minutes.
func (s *TrainingSession) WithDuration(minutes int) *TrainingSession {
	s.DurationMinutes = minutes
	return s
}

// AddExercise appends a performance record, assigning its position.
func (s *TrainingSession) AddExercise(se *SessionExercise) {
	se.SessionID = s.ID
	se.Position = len(s.Exercises)
	s.Exercises = append(s.Exercises, se)
}

// SessionExercise is what was actually performed for one exercise in a session.
type SessionExercise struct {
	ID                uuid.UUID
	SessionID         uuid.UUID
	ExerciseID        *uuid.UUID
	ExerciseName      string
	Position          int
	Sets              int
	Reps              int
	DurationMinutes   int
	PerformanceRating int
	Notes             string
}

// NewSessionExercise creates a performance record with a neutral rating.
func NewSessionExercise(name string) *SessionExercise {
	return &SessionExercise{
		ID:                uuid.New(),
		ExerciseName:      name,
		PerformanceRating: 3,
	}
}

// ForExercise links the record to an Exercise definition.
func (se *SessionExercise) ForExercise(e *Exercise) *SessionExercise {
	id := e.ID
	se.ExerciseID = &id
	se.ExerciseName = e.Name
	return se
}
