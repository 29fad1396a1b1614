// ABOUTME: Drill recommendations ranked from a player's own training history.
// ABOUTME: Counts recent session signals per skill and category, then scores the drill library.
package recommend

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/drillbook/internal/models"
)

// Defaults for Options left at zero.
const (
	DefaultWindow      = 30 * 24 * time.Hour
	DefaultMaxSessions = 50
	DefaultLimit       = 3
)

// A skill needs work when its average rating is below this over at least
// weakMinSamples performances.
const (
	weakRating     = 3.5
	weakMinSamples = 2
)

// Match percentages are kept inside this band.
const (
	minMatch = 30
	maxMatch = 95
)

// Options bound the history that is read and the number of results.
type Options struct {
	Window      time.Duration
	MaxSessions int
	Limit       int
}

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.MaxSessions <= 0 {
		o.MaxSessions = DefaultMaxSessions
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// Signal is how often something was trained and how well.
type Signal struct {
	Name      string  `json:"name"`
	Count     int     `json:"count"`
	AvgRating float64 `json:"avg_rating"`
}

// Weak reports whether the signal has enough low ratings to need work.
func (s Signal) Weak() bool {
	return s.Count >= weakMinSamples && s.AvgRating < weakRating
}

// Summary is the frequency-ranked view of recent training.
type Summary struct {
	Sessions      int      `json:"sessions"`
	Performances  int      `json:"performances"`
	Drills        []Signal `json:"drills"`
	Skills        []Signal `json:"skills"`
	Categories    []Signal `json:"categories"`
	AvgDifficulty float64  `json:"avg_difficulty"`
}

// TopCategory returns the most trained category, or "".
func (s *Summary) TopCategory() string {
	if len(s.Categories) == 0 {
		return ""
	}
	return s.Categories[0].Name
}

func (s *Summary) skill(name string) (Signal, bool) {
	for _, sig := range s.Skills {
		if strings.EqualFold(sig.Name, name) {
			return sig, true
		}
	}
	return Signal{}, false
}

// Recommendation is one ranked drill from the player's library.
type Recommendation struct {
	ExerciseID      uuid.UUID `json:"exercise_id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	MatchPercentage int       `json:"match_percentage"`
	Score           float64   `json:"score"`
	TimesTrained    int       `json:"times_trained"`
	Reason          string    `json:"reason"`
}

// tally accumulates ratings for one key, remembering the first spelling seen.
type tally struct {
	name  string
	count int
	sum   int
}

type counter struct {
	byKey map[string]*tally
}

func newCounter() *counter {
	return &counter{byKey: make(map[string]*tally)}
}

func (c *counter) add(name string, rating int) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return
	}
	t, ok := c.byKey[key]
	if !ok {
		t = &tally{name: strings.TrimSpace(name)}
		c.byKey[key] = t
	}
	t.count++
	t.sum += rating
}

// ranked orders signals by count, then lower average rating, then name.
func (c *counter) ranked() []Signal {
	out := make([]Signal, 0, len(c.byKey))
	for _, t := range c.byKey {
		out = append(out, Signal{Name: t.name, Count: t.count, AvgRating: float64(t.sum) / float64(t.count)})
	}
	slices.SortFunc(out, func(a, b Signal) int {
		switch {
		case a.Count != b.Count:
			return b.Count - a.Count
		case a.AvgRating != b.AvgRating:
			if a.AvgRating < b.AvgRating {
				return -1
			}
			return 1
		default:
			return strings.Compare(a.Name, b.Name)
		}
	})
	return out
}

// library indexes a player's exercises by id and lowercased name.
type library struct {
	byID   map[uuid.UUID]*models.Exercise
	byName map[string]*models.Exercise
}

func newLibrary(p *models.Player) library {
	lib := library{
		byID:   make(map[uuid.UUID]*models.Exercise, len(p.Exercises)),
		byName: make(map[string]*models.Exercise, len(p.Exercises)),
	}
	for _, e := range p.Exercises {
		lib.byID[e.ID] = e
		key := strings.ToLower(strings.TrimSpace(e.Name))
		if _, taken := lib.byName[key]; !taken {
			lib.byName[key] = e
		}
	}
	return lib
}

func (l library) lookup(se *models.SessionExercise) *models.Exercise {
	if se.ExerciseID != nil {
		if e, ok := l.byID[*se.ExerciseID]; ok {
			return e
		}
	}
	return l.byName[strings.ToLower(strings.TrimSpace(se.ExerciseName))]
}

func drillName(se *models.SessionExercise, e *models.Exercise) string {
	if e != nil {
		return e.Name
	}
	return se.ExerciseName
}

// recentSessions returns up to limit sessions dated within window of now, newest first.
func recentSessions(p *models.Player, now time.Time, window time.Duration, limit int) []*models.TrainingSession {
	from := now.Add(-window)
	var recent []*models.TrainingSession
	for _, s := range p.Sessions {
		if s.Date.Before(from) || s.Date.After(now) {
			continue
		}
		recent = append(recent, s)
	}
	slices.SortStableFunc(recent, func(a, b *models.TrainingSession) int {
		return b.Date.Compare(a.Date)
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// Summarize aggregates the player's recent session performances.
func Summarize(p *models.Player, now time.Time, opts Options) *Summary {
	opts = opts.withDefaults()
	lib := newLibrary(p)
	drills, skills, categories := newCounter(), newCounter(), newCounter()

	sum := &Summary{}
	var difficultyTotal, difficultyCount int
	for _, s := range recentSessions(p, now, opts.Window, opts.MaxSessions) {
		sum.Sessions++
		for _, se := range s.Exercises {
			e := lib.lookup(se)
			name := drillName(se, e)
			if name == "" {
				continue
			}
			sum.Performances++
			rating := se.PerformanceRating
			drills.add(name, rating)
			if e == nil {
				categories.add("General", rating)
				continue
			}
			categories.add(e.Category, rating)
			for _, skill := range e.TargetSkills {
				skills.add(skill, rating)
			}
			difficultyTotal += e.Difficulty
			difficultyCount++
		}
	}

	sum.Drills = drills.ranked()
	sum.Skills = skills.ranked()
	sum.Categories = categories.ranked()
	if difficultyCount > 0 {
		sum.AvgDifficulty = float64(difficultyTotal) / float64(difficultyCount)
	}
	return sum
}

// Recommend ranks the player's drill library against their recent history
// and returns at most opts.Limit drills. Ties break by name.
func Recommend(p *models.Player, now time.Time, opts Options) []Recommendation {
	opts = opts.withDefaults()
	sum := Summarize(p, now, opts)

	trained := make(map[string]int, len(sum.Drills))
	for _, d := range sum.Drills {
		trained[strings.ToLower(d.Name)] = d.Count
	}
	var goals []string
	if p.Profile != nil {
		goals = p.Profile.SkillGoals
	}

	recs := make([]Recommendation, 0, len(p.Exercises))
	for _, e := range p.Exercises {
		score, reason := scoreDrill(e, sum, goals, p.ExperienceLevel)
		recs = append(recs, Recommendation{
			ExerciseID:      e.ID,
			Name:            e.Name,
			Category:        e.Category,
			MatchPercentage: matchPercentage(score),
			Score:           score,
			TimesTrained:    trained[strings.ToLower(strings.TrimSpace(e.Name))],
			Reason:          reason,
		})
	}
	slices.SortStableFunc(recs, func(a, b Recommendation) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	if len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}
	return recs
}

// scoreDrill returns the drill's score and the reason with the largest share.
func scoreDrill(e *models.Exercise, sum *Summary, goals []string, experience string) (float64, string) {
	score := 0.5
	reason, best := "Recommended based on your profile", 0.0
	credit := func(points float64, why string) {
		score += points
		if points > best {
			reason, best = why, points
		}
	}

	for _, skill := range e.TargetSkills {
		sig, ok := sum.skill(skill)
		if !ok {
			continue
		}
		// Lower ratings earn more, up to 0.4 extra.
		credit(0.15+(5-sig.AvgRating)/10, fmt.Sprintf("Builds on %s, which you train often", sig.Name))
		if sig.Weak() {
			credit(0.2, fmt.Sprintf("Targets %s, where your ratings are low", sig.Name))
		}
	}
	for _, goal := range goals {
		if goal != "" && targets(e, goal) {
			credit(0.15, fmt.Sprintf("Matches your goal: %s", goal))
		}
	}
	if top := sum.TopCategory(); top != "" && strings.EqualFold(e.Category, top) {
		credit(0.1, fmt.Sprintf("In %s, your most trained category", e.Category))
	}
	if sum.AvgDifficulty > 0 && e.Difficulty == int(sum.AvgDifficulty)+1 {
		credit(0.1, "One step above your usual difficulty")
	}
	switch strings.ToLower(experience) {
	case "beginner":
		score += 0.05
	case "advanced":
		score += 0.1
	}
	return score, reason
}

func targets(e *models.Exercise, skill string) bool {
	skill = strings.ToLower(skill)
	for _, s := range e.TargetSkills {
		if strings.EqualFold(s, skill) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(e.Name), skill)
}

func matchPercentage(score float64) int {
	pct := int(math.Round(score * 100))
	return min(maxMatch, max(minMatch, pct))
}
