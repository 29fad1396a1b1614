// ABOUTME: Parsing layer from loosely-typed cloud records to typed entities.
// ABOUTME: All field-name normalization, defaults, and clamping decisions live here.
package graph

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/drillbook/internal/cloud"
	"github.com/harperreed/drillbook/internal/models"
)

// Bounds applied to numeric fields.
const (
	minDifficulty, maxDifficulty, defaultDifficulty = 1, 5, 3
	minRating, maxRating, defaultRating             = 1, 5, 3
	minIntensity, maxIntensity, defaultIntensity    = 1, 10, 5
	minPlanIntensity, maxPlanIntensity              = 1, 5
	defaultPlanIntensity                            = 3
	maxSessionMinutes                               = 600
	maxPlanSessionMinutes                           = 240
	defaultPlanSessionMinutes                       = 45
	minPreferredMinutes, maxPreferredMinutes        = 5, 240
	defaultPreferredMinutes                         = 30
	minPriority, maxPriority, defaultPriority       = 1, 5, 3
	maxSkillLevel                                   = 10
	maxPlanWeeks                                    = 52
)

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// parseID returns the first key that holds a valid, non-nil UUID, or a fresh one.
func parseID(r cloud.Record, keys ...string) uuid.UUID {
	if id, ok := lookupID(r, keys...); ok {
		return id
	}
	return uuid.New()
}

func lookupID(r cloud.Record, keys ...string) (uuid.UUID, bool) {
	for _, k := range keys {
		id, err := uuid.Parse(r.String("", k))
		if err == nil && id != uuid.Nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

// parseIDList keeps only entries that parse as UUIDs.
func parseIDList(r cloud.Record, keys ...string) []uuid.UUID {
	raw := r.Strings(keys...)
	if raw == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil && id != uuid.Nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func optionalString(r cloud.Record, keys ...string) *string {
	if !r.Has(keys...) {
		return nil
	}
	s := r.String("", keys...)
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(r cloud.Record, keys ...string) *int {
	if !r.Has(keys...) {
		return nil
	}
	v := nonNegative(r.Int(0, keys...))
	return &v
}

// playerFields is the identity and physical part of the profile record.
type playerFields struct {
	ID              uuid.UUID
	HasID           bool
	AuthID          string
	Name            string
	Age             int
	Position        string
	ExperienceLevel string
	DominantFoot    string
	HeightCm        float64
	WeightKg        float64
	CreatedAt       time.Time
}

func parsePlayer(r cloud.Record, now time.Time) playerFields {
	id, hasID := lookupID(r, "id", "playerId", "player_id")
	return playerFields{
		ID:              id,
		HasID:           hasID,
		AuthID:          r.String("", "firebaseUID", "firebase_uid", "authId", "auth_id"),
		Name:            r.String("Player", "name"),
		Age:             clamp(r.Int(0, "age"), 0, 120),
		Position:        r.String("", "position"),
		ExperienceLevel: r.String("Beginner", "experienceLevel", "experience_level"),
		DominantFoot:    r.String("Right", "dominantFoot", "dominant_foot", "preferredFoot"),
		HeightCm:        clampFloat(r.Float(0, "height", "heightCm", "height_cm"), 0, 300),
		WeightKg:        clampFloat(r.Float(0, "weight", "weightKg", "weight_kg"), 0, 500),
		CreatedAt:       r.Time(now, "createdAt", "created_at"),
	}
}

func parseProfile(r cloud.Record, now time.Time) *models.Profile {
	return &models.Profile{
		ID:            parseID(r, "profileId", "profile_id"),
		SkillGoals:    r.Strings("skillGoals", "skill_goals", "goals"),
		PhysicalGoals: r.Strings("physicalGoals", "physical_goals"),
		PreferredIntensity: clamp(r.Int(defaultIntensity,
			"preferredIntensity", "preferred_intensity"), minIntensity, maxIntensity),
		PreferredSessionMinutes: clamp(r.Int(defaultPreferredMinutes,
			"preferredSessionDuration", "preferred_session_duration", "preferredDuration"),
			minPreferredMinutes, maxPreferredMinutes),
		TrainingBackground: r.String("", "trainingBackground", "training_background", "playerBackground", "background"),
		CreatedAt:          r.Time(now, "profileCreatedAt", "createdAt", "created_at"),
	}
}

// ParseGamification reads the counters carried on a profile record. The level is
// derived from XP; a stored level is ignored so it can never disagree with XP.
func ParseGamification(r cloud.Record) models.Gamification {
	g := models.Gamification{
		TotalXP:              nonNegative(r.Int(0, "totalXP", "total_xp", "xp")),
		CurrentStreak:        nonNegative(r.Int(0, "currentStreak", "current_streak")),
		LongestStreak:        nonNegative(r.Int(0, "longestStreak", "longest_streak")),
		Coins:                nonNegative(r.Int(0, "coins", "coinBalance", "coin_balance")),
		TotalCoinsEarned:     nonNegative(r.Int(0, "totalCoinsEarned", "total_coins_earned")),
		StreakFreezes:        nonNegative(r.Int(0, "streakFreezes", "streakFreezeCount", "streak_freezes")),
		LastTrainingDate:     r.OptionalTime("lastTrainingDate", "last_training_date"),
		UnlockedAchievements: models.NormalizeAchievements(r.Strings("unlockedAchievements", "unlocked_achievements", "achievements")),
	}
	g.CurrentLevel = models.LevelForXP(g.TotalXP)
	if g.LongestStreak < g.CurrentStreak {
		g.LongestStreak = g.CurrentStreak
	}
	if g.TotalCoinsEarned < g.Coins {
		g.TotalCoinsEarned = g.Coins
	}
	return g
}

func parseAvatar(r cloud.Record, now time.Time) *models.AvatarConfig {
	return &models.AvatarConfig{
		ID:           parseID(r, "id"),
		SkinTone:     r.String("medium", "skinTone", "skin_tone"),
		HairStyle:    r.String("short", "hairStyle", "hair_style"),
		HairColor:    r.String("brown", "hairColor", "hair_color"),
		FaceStyle:    r.String("default", "faceStyle", "face_style", "face"),
		ShirtID:      r.String("", "shirtId", "shirt_id", "shirt"),
		ShortsID:     r.String("", "shortsId", "shorts_id", "shorts"),
		SocksID:      r.String("", "socksId", "socks_id", "socks"),
		ShoesID:      r.String("", "shoesId", "shoes_id", "shoes"),
		AccessoryIDs: r.Strings("accessoryIds", "accessory_ids", "accessories"),
		LastModified: r.Time(now, "lastModified", "last_modified", "updatedAt"),
	}
}

func parseOwnedItem(r cloud.Record, now time.Time) *models.OwnedAvatarItem {
	return &models.OwnedAvatarItem{
		ID:          parseID(r, "id"),
		ItemID:      r.String("", "itemId", "item_id"),
		Slot:        r.String("", "slot", "category", "equipSlot"),
		PurchasedAt: r.Time(now, "purchasedAt", "purchased_at", "purchaseDate"),
	}
}

func parseGoal(r cloud.Record, now time.Time) *models.PlayerGoal {
	return &models.PlayerGoal{
		ID:           parseID(r, "id", cloud.DocIDField),
		SkillName:    r.String("", "skillName", "skill_name", "name"),
		CurrentLevel: clampFloat(r.Float(0, "currentLevel", "current_level"), 0, maxSkillLevel),
		TargetLevel:  clampFloat(r.Float(maxSkillLevel, "targetLevel", "target_level"), 0, maxSkillLevel),
		Priority:     clamp(r.Int(defaultPriority, "priority"), minPriority, maxPriority),
		Status:       r.String(models.GoalActive, "status"),
		TargetDate:   r.OptionalTime("targetDate", "target_date", "deadline"),
		Notes:        r.String("", "progressNotes", "progress_notes", "notes"),
		CreatedAt:    r.Time(now, "createdAt", "created_at"),
	}
}

func parseExercise(r cloud.Record, now time.Time) *models.Exercise {
	videoID := r.String("", "youtubeVideoID", "youtube_video_id", "videoId")
	return &models.Exercise{
		ID:                   parseID(r, "id", cloud.DocIDField),
		Name:                 r.String("Untitled Drill", "name", "title"),
		Description:          r.String("", "description", "exerciseDescription"),
		Category:             r.String("General", "category"),
		Difficulty:           clamp(r.Int(defaultDifficulty, "difficulty"), minDifficulty, maxDifficulty),
		TargetSkills:         r.Strings("targetSkills", "target_skills", "skills"),
		Instructions:         r.String("", "instructions"),
		YouTubeVideoID:       videoID,
		IsYouTubeContent:     r.Bool(videoID != "", "isYouTubeContent", "is_youtube_content"),
		VideoTitle:           r.String("", "videoTitle", "video_title"),
		ChannelName:          r.String("", "channelName", "channel_name"),
		VideoDurationSeconds: nonNegative(r.Int(0, "videoDuration", "video_duration")),
		ThumbnailURL:         r.String("", "thumbnailURL", "thumbnail_url", "thumbnailUrl"),
		CommunityDrillID:     optionalString(r, "communityDrillId", "community_drill_id", "sharedDrillId"),
		CreatedAt:            r.Time(now, "createdAt", "created_at"),
	}
}

// parseSession returns the session and its nested exercise-performance records.
func parseSession(r cloud.Record, now time.Time) (*models.TrainingSession, []cloud.Record, error) {
	children, err := r.Records("exercises", "sessionExercises", "session_exercises")
	if err != nil {
		return nil, nil, err
	}
	s := &models.TrainingSession{
		ID:              parseID(r, "id", cloud.DocIDField),
		Date:            r.Time(now, "date", "sessionDate", "session_date"),
		DurationMinutes: clamp(r.Int(0, "duration", "durationMinutes", "duration_minutes"), 0, maxSessionMinutes),
		SessionType:     r.String("Training", "sessionType", "session_type", "type"),
		Intensity:       clamp(r.Int(defaultIntensity, "intensity"), minIntensity, maxIntensity),
		OverallRating:   clamp(r.Int(defaultRating, "overallRating", "overall_rating", "rating"), minRating, maxRating),
		Notes:           r.String("", "notes"),
	}
	return s, children, nil
}

func parseSessionExercise(r cloud.Record) *models.SessionExercise {
	se := &models.SessionExercise{
		ID:                parseID(r, "id"),
		ExerciseName:      r.String("", "exerciseName", "exercise_name", "name"),
		Sets:              nonNegative(r.Int(0, "sets")),
		Reps:              nonNegative(r.Int(0, "reps")),
		DurationMinutes:   clamp(r.Int(0, "duration", "durationMinutes"), 0, maxSessionMinutes),
		PerformanceRating: clamp(r.Int(defaultRating, "performanceRating", "performance_rating", "rating"), minRating, maxRating),
		Notes:             r.String("", "notes"),
	}
	if id, ok := lookupID(r, "exerciseId", "exercise_id"); ok {
		se.ExerciseID = &id
	}
	return se
}

// parsePlan returns the plan and its nested week records.
func parsePlan(r cloud.Record, now time.Time) (*models.TrainingPlan, []cloud.Record, error) {
	weeks, err := r.Records("weeks")
	if err != nil {
		return nil, nil, err
	}
	p := &models.TrainingPlan{
		ID:                 parseID(r, "id", cloud.DocIDField),
		Name:               r.String("Training Plan", "name"),
		Description:        r.String("", "description"),
		Difficulty:         r.String("Intermediate", "difficulty"),
		Category:           r.String("Technical", "category"),
		TargetRole:         r.String("", "targetRole", "target_role"),
		DurationWeeks:      clamp(r.Int(max(len(weeks), 1), "durationWeeks", "duration_weeks"), 1, maxPlanWeeks),
		IsActive:           r.Bool(false, "isActive", "is_active"),
		ProgressPercentage: clampFloat(r.Float(0, "progressPercentage", "progress_percentage"), 0, 100),
		StartedAt:          r.OptionalTime("startedAt", "started_at", "startDate"),
		CompletedAt:        r.OptionalTime("completedAt", "completed_at"),
		CreatedAt:          r.Time(now, "createdAt", "created_at"),
	}
	return p, weeks, nil
}

// parseWeek returns the week and its nested day records. index is its position.
func parseWeek(r cloud.Record, index int) (*models.PlanWeek, []cloud.Record, error) {
	days, err := r.Records("days")
	if err != nil {
		return nil, nil, err
	}
	w := &models.PlanWeek{
		ID:          parseID(r, "id"),
		WeekNumber:  max(r.Int(index+1, "weekNumber", "week_number"), 1),
		FocusArea:   r.String("", "focusArea", "focus_area"),
		Notes:       r.String("", "notes"),
		IsCompleted: r.Bool(false, "isCompleted", "is_completed"),
	}
	return w, days, nil
}

// parseDay returns the day and its nested session records.
func parseDay(r cloud.Record, index int) (*models.PlanDay, []cloud.Record, error) {
	sessions, err := r.Records("sessions")
	if err != nil {
		return nil, nil, err
	}
	d := &models.PlanDay{
		ID:          parseID(r, "id"),
		DayNumber:   clamp(r.Int(index+1, "dayNumber", "day_number"), 1, 7),
		DayOfWeek:   r.String("", "dayOfWeek", "day_of_week"),
		Date:        r.OptionalTime("date"),
		IsRestDay:   r.Bool(false, "isRestDay", "is_rest_day"),
		IsCompleted: r.Bool(false, "isCompleted", "is_completed"),
		IsSkipped:   r.Bool(false, "isSkipped", "is_skipped"),
		Notes:       r.String("", "notes"),
	}
	return d, sessions, nil
}

func parsePlanSession(r cloud.Record) *models.PlanSession {
	return &models.PlanSession{
		ID:                     parseID(r, "id"),
		SessionType:            r.String("Technical", "sessionType", "session_type"),
		DurationMinutes:        clamp(r.Int(defaultPlanSessionMinutes, "duration", "durationMinutes"), 0, maxPlanSessionMinutes),
		Intensity:              clamp(r.Int(defaultPlanIntensity, "intensity"), minPlanIntensity, maxPlanIntensity),
		Notes:                  r.String("", "notes"),
		IsCompleted:            r.Bool(false, "isCompleted", "is_completed"),
		IsSkipped:              r.Bool(false, "isSkipped", "is_skipped"),
		ActualDurationMinutes:  optionalInt(r, "actualDuration", "actual_duration"),
		ActualIntensity:        optionalInt(r, "actualIntensity", "actual_intensity"),
		CompletedAt:            r.OptionalTime("completedAt", "completed_at"),
		ExerciseIDs:            parseIDList(r, "exerciseIds", "exercise_ids"),
		SuggestedExerciseNames: r.Strings("suggestedExerciseNames", "suggested_exercise_names"),
	}
}

// recordError annotates a parse failure with the record kind and position.
func recordError(kind string, index int, err error) error {
	return fmt.Errorf("%s %d: %w", kind, index, err)
}
