// ABOUTME: Flatten converts a player graph back into cloud records.
// ABOUTME: Build(Flatten(p)) reproduces p apart from LastCloudSync.
package graph

import (
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/drillbook/internal/cloud"
	"github.com/harperreed/drillbook/internal/models"
)

// Flatten renders p as the snapshot a cloud backup would hold.
func Flatten(p *models.Player) *cloud.Snapshot {
	snap := &cloud.Snapshot{Profile: flattenProfile(p)}
	if p.Avatar != nil {
		snap.Avatar = flattenAvatar(p.Avatar)
	}
	for _, it := range p.OwnedItems {
		snap.OwnedItems = append(snap.OwnedItems, cloud.Record{
			"id":          it.ID.String(),
			"itemId":      it.ItemID,
			"slot":        it.Slot,
			"purchasedAt": stamp(it.PurchasedAt),
		})
	}
	for _, g := range p.Goals {
		snap.Goals = append(snap.Goals, flattenGoal(g))
	}
	for _, e := range p.Exercises {
		snap.Exercises = append(snap.Exercises, flattenExercise(e))
	}
	for _, s := range p.Sessions {
		snap.Sessions = append(snap.Sessions, flattenSession(s))
	}
	for _, tp := range p.Plans {
		snap.Plans = append(snap.Plans, flattenPlan(tp))
	}
	return snap
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// putTime sets key only for non-nil times.
func putTime(r cloud.Record, key string, t *time.Time) {
	if t != nil {
		r[key] = stamp(*t)
	}
}

// putStrings sets key only for non-nil slices so absence survives the trip.
func putStrings(r cloud.Record, key string, ss []string) {
	if ss != nil {
		r[key] = append([]string{}, ss...)
	}
}

func flattenProfile(p *models.Player) cloud.Record {
	g := p.Gamification
	r := cloud.Record{
		"id":               p.ID.String(),
		"firebaseUID":      p.AuthID,
		"name":             p.Name,
		"age":              p.Age,
		"position":         p.Position,
		"experienceLevel":  p.ExperienceLevel,
		"dominantFoot":     p.DominantFoot,
		"height":           p.HeightCm,
		"weight":           p.WeightKg,
		"createdAt":        stamp(p.CreatedAt),
		"totalXP":          g.TotalXP,
		"currentLevel":     g.CurrentLevel,
		"currentStreak":    g.CurrentStreak,
		"longestStreak":    g.LongestStreak,
		"coins":            g.Coins,
		"totalCoinsEarned": g.TotalCoinsEarned,
		"streakFreezes":    g.StreakFreezes,
	}
	putStrings(r, "unlockedAchievements", g.UnlockedAchievements)
	putTime(r, "lastTrainingDate", g.LastTrainingDate)
	if pr := p.Profile; pr != nil {
		r["profileId"] = pr.ID.String()
		r["preferredIntensity"] = pr.PreferredIntensity
		r["preferredSessionDuration"] = pr.PreferredSessionMinutes
		r["trainingBackground"] = pr.TrainingBackground
		r["profileCreatedAt"] = stamp(pr.CreatedAt)
		putStrings(r, "skillGoals", pr.SkillGoals)
		putStrings(r, "physicalGoals", pr.PhysicalGoals)
	}
	return r
}

func flattenAvatar(a *models.AvatarConfig) cloud.Record {
	r := cloud.Record{
		"id":           a.ID.String(),
		"skinTone":     a.SkinTone,
		"hairStyle":    a.HairStyle,
		"hairColor":    a.HairColor,
		"faceStyle":    a.FaceStyle,
		"shirtId":      a.ShirtID,
		"shortsId":     a.ShortsID,
		"socksId":      a.SocksID,
		"shoesId":      a.ShoesID,
		"lastModified": stamp(a.LastModified),
	}
	putStrings(r, "accessoryIds", a.AccessoryIDs)
	return r
}

func flattenGoal(g *models.PlayerGoal) cloud.Record {
	r := cloud.Record{
		"id":            g.ID.String(),
		"skillName":     g.SkillName,
		"currentLevel":  g.CurrentLevel,
		"targetLevel":   g.TargetLevel,
		"priority":      g.Priority,
		"status":        g.Status,
		"progressNotes": g.Notes,
		"createdAt":     stamp(g.CreatedAt),
	}
	putTime(r, "targetDate", g.TargetDate)
	return r
}

func flattenExercise(e *models.Exercise) cloud.Record {
	r := cloud.Record{
		"id":               e.ID.String(),
		"name":             e.Name,
		"description":      e.Description,
		"category":         e.Category,
		"difficulty":       e.Difficulty,
		"instructions":     e.Instructions,
		"youtubeVideoID":   e.YouTubeVideoID,
		"isYouTubeContent": e.IsYouTubeContent,
		"videoTitle":       e.VideoTitle,
		"channelName":      e.ChannelName,
		"videoDuration":    e.VideoDurationSeconds,
		"thumbnailURL":     e.ThumbnailURL,
		"createdAt":        stamp(e.CreatedAt),
	}
	putStrings(r, "targetSkills", e.TargetSkills)
	if e.CommunityDrillID != nil {
		r["communityDrillId"] = *e.CommunityDrillID
	}
	return r
}

func flattenSession(s *models.TrainingSession) cloud.Record {
	r := cloud.Record{
		"id":            s.ID.String(),
		"date":          stamp(s.Date),
		"duration":      s.DurationMinutes,
		"sessionType":   s.SessionType,
		"intensity":     s.Intensity,
		"overallRating": s.OverallRating,
		"notes":         s.Notes,
	}
	if s.Exercises != nil {
		children := make([]cloud.Record, 0, len(s.Exercises))
		for _, se := range s.Exercises {
			c := cloud.Record{
				"id":                se.ID.String(),
				"exerciseName":      se.ExerciseName,
				"sets":              se.Sets,
				"reps":              se.Reps,
				"duration":          se.DurationMinutes,
				"performanceRating": se.PerformanceRating,
				"notes":             se.Notes,
			}
			if se.ExerciseID != nil {
				c["exerciseId"] = se.ExerciseID.String()
			}
			children = append(children, c)
		}
		r["exercises"] = children
	}
	return r
}

func flattenPlan(tp *models.TrainingPlan) cloud.Record {
	r := cloud.Record{
		"id":                 tp.ID.String(),
		"name":               tp.Name,
		"description":        tp.Description,
		"difficulty":         tp.Difficulty,
		"category":           tp.Category,
		"targetRole":         tp.TargetRole,
		"durationWeeks":      tp.DurationWeeks,
		"isActive":           tp.IsActive,
		"progressPercentage": tp.ProgressPercentage,
		"createdAt":          stamp(tp.CreatedAt),
	}
	putTime(r, "startedAt", tp.StartedAt)
	putTime(r, "completedAt", tp.CompletedAt)
	if tp.Weeks == nil {
		return r
	}
	weeks := make([]cloud.Record, 0, len(tp.Weeks))
	for _, w := range tp.Weeks {
		wr := cloud.Record{
			"id":          w.ID.String(),
			"weekNumber":  w.WeekNumber,
			"focusArea":   w.FocusArea,
			"notes":       w.Notes,
			"isCompleted": w.IsCompleted,
		}
		if w.Days != nil {
			days := make([]cloud.Record, 0, len(w.Days))
			for _, d := range w.Days {
				days = append(days, flattenDay(d))
			}
			wr["days"] = days
		}
		weeks = append(weeks, wr)
	}
	r["weeks"] = weeks
	return r
}

func flattenDay(d *models.PlanDay) cloud.Record {
	r := cloud.Record{
		"id":          d.ID.String(),
		"dayNumber":   d.DayNumber,
		"dayOfWeek":   d.DayOfWeek,
		"isRestDay":   d.IsRestDay,
		"isCompleted": d.IsCompleted,
		"isSkipped":   d.IsSkipped,
		"notes":       d.Notes,
	}
	putTime(r, "date", d.Date)
	if d.Sessions == nil {
		return r
	}
	sessions := make([]cloud.Record, 0, len(d.Sessions))
	for _, s := range d.Sessions {
		sr := cloud.Record{
			"id":          s.ID.String(),
			"sessionType": s.SessionType,
			"duration":    s.DurationMinutes,
			"intensity":   s.Intensity,
			"notes":       s.Notes,
			"isCompleted": s.IsCompleted,
			"isSkipped":   s.IsSkipped,
		}
		if s.ActualDurationMinutes != nil {
			sr["actualDuration"] = *s.ActualDurationMinutes
		}
		if s.ActualIntensity != nil {
			sr["actualIntensity"] = *s.ActualIntensity
		}
		putTime(sr, "completedAt", s.CompletedAt)
		if s.ExerciseIDs != nil {
			sr["exerciseIds"] = idStrings(s.ExerciseIDs)
		}
		putStrings(sr, "suggestedExerciseNames", s.SuggestedExerciseNames)
		sessions = append(sessions, sr)
	}
	r["sessions"] = sessions
	return r
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
