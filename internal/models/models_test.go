// ABOUTME: Tests for entity constructors, owning references, and level math.
// ABOUTME: Validates that Attach/Add helpers set parent ids.
package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{-50, 1},
		{99, 1},
		{100, 2},
		{250, 2},
		{399, 2},
		{400, 3},
		{900, 4},
		{10000, 11},
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestNormalizeAchievements(t *testing.T) {
	got := NormalizeAchievements([]string{"streak_7", "", "first_session", "streak_7"})
	want := []string{"first_session", "streak_7"}

	if len(got) != len(want) {
		t.Fatalf("NormalizeAchievements len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeAchievements[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestPlayerOwningReferences(t *testing.T) {
	p := NewPlayer(uuid.New(), "auth-1", "Sam")

	if p.CurrentLevel != 1 {
		t.Errorf("CurrentLevel = %d, want 1", p.CurrentLevel)
	}

	p.AttachProfile(NewProfile())
	p.AddGoal(NewPlayerGoal("passing", 3, 7))
	p.AddExercise(NewExercise("Wall Passing"))
	p.AddOwnedItem(NewOwnedAvatarItem("boots_red", "shoes"))

	if p.Profile.PlayerID != p.ID {
		t.Error("expected profile PlayerID to match")
	}
	if p.Goals[0].PlayerID != p.ID {
		t.Error("expected goal PlayerID to match")
	}
	if p.Exercises[0].PlayerID != p.ID {
		t.Error("expected exercise PlayerID to match")
	}
	if !p.OwnsItem("boots_red") {
		t.Error("expected boots_red to be owned")
	}
	if p.OwnsItem("boots_blue") {
		t.Error("expected boots_blue not to be owned")
	}
}

func TestSessionExercisePositions(t *testing.T) {
	s := NewTrainingSession("Technical").WithDuration(45)
	e := NewExercise("Cone Weaving")

	s.AddExercise(NewSessionExercise("Juggling"))
	s.AddExercise(NewSessionExercise("").ForExercise(e))

	if s.Exercises[1].Position != 1 {
		t.Errorf("Position = %d, want 1", s.Exercises[1].Position)
	}
	if s.Exercises[1].SessionID != s.ID {
		t.Error("expected SessionID to match")
	}
	if s.Exercises[1].ExerciseID == nil || *s.Exercises[1].ExerciseID != e.ID {
		t.Error("expected ExerciseID to reference the exercise")
	}
	if s.Exercises[1].ExerciseName != "Cone Weaving" {
		t.Errorf("ExerciseName = %s, want Cone Weaving", s.Exercises[1].ExerciseName)
	}
}

func TestPlanHierarchy(t *testing.T) {
	plan := NewTrainingPlan("Passing Block")
	week := NewPlanWeek(1)
	plan.AddWeek(week)

	rest := NewPlanDay(1, "Monday")
	rest.IsRestDay = true
	train := NewPlanDay(2, "Tuesday")
	train.AddSession(NewPlanSession("Technical"))
	week.AddDay(rest)
	week.AddDay(train)

	if week.PlanID != plan.ID {
		t.Error("expected week PlanID to match")
	}
	if train.WeekID != week.ID {
		t.Error("expected day WeekID to match")
	}
	if train.Sessions[0].DayID != train.ID {
		t.Error("expected session DayID to match")
	}
	if plan.SessionCount() != 1 {
		t.Errorf("SessionCount = %d, want 1", plan.SessionCount())
	}
}
