// ABOUTME: Whole-graph persistence: one transaction to save, ordered queries to load.
// ABOUTME: A failed save rolls back every row it wrote.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/drillbook/internal/models"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveGraph inserts a player and every descendant in a single transaction.
// Nothing is written if any insert fails. It returns ErrPlayerExists when the
// player or its account is already stored. Ids already used by other rows are
// replaced in p, so p describes what was written.
func (d *DB) SaveGraph(ctx context.Context, p *models.Player) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save graph: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := claimPlayer(ctx, tx, p); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	if err := reassignTakenIDs(ctx, tx, p); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	if err := insertGraph(ctx, tx, p); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save graph: commit: %w", err)
	}
	return nil
}

func insertGraph(ctx context.Context, tx execer, p *models.Player) error {
	if err := insertPlayer(ctx, tx, p); err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	if p.Profile != nil {
		if err := insertProfile(ctx, tx, p.Profile); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
	}
	if p.Avatar != nil {
		if err := insertAvatar(ctx, tx, p.Avatar); err != nil {
			return fmt.Errorf("insert avatar: %w", err)
		}
	}
	for i, it := range p.OwnedItems {
		if err := insertOwnedItem(ctx, tx, it, i); err != nil {
			return fmt.Errorf("insert owned item %s: %w", it.ItemID, err)
		}
	}
	for i, g := range p.Goals {
		if err := insertGoal(ctx, tx, g, i); err != nil {
			return fmt.Errorf("insert goal: %w", err)
		}
	}
	for i, e := range p.Exercises {
		if err := insertExercise(ctx, tx, e, i); err != nil {
			return fmt.Errorf("insert exercise: %w", err)
		}
	}
	for i, s := range p.Sessions {
		if err := insertSession(ctx, tx, s, i); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
	}
	for i, plan := range p.Plans {
		if err := insertPlan(ctx, tx, plan, i); err != nil {
			return fmt.Errorf("insert plan: %w", err)
		}
	}
	return nil
}

func insertPlayer(ctx context.Context, tx execer, p *models.Player) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO players (id, auth_id, name, age, position, experience_level, dominant_foot,
			height_cm, weight_kg, total_xp, current_level, current_streak, longest_streak, coins,
			total_coins_earned, streak_freezes, last_training_date, unlocked_achievements,
			last_cloud_sync, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID.String(), p.AuthID, p.Name, p.Age, p.Position, p.ExperienceLevel, p.DominantFoot,
		p.HeightCm, p.WeightKg, p.TotalXP, p.CurrentLevel, p.CurrentStreak, p.LongestStreak, p.Coins,
		p.TotalCoinsEarned, p.StreakFreezes, nullTime(p.LastTrainingDate), encodeList(p.UnlockedAchievements),
		nullTime(p.LastCloudSync), formatTime(p.CreatedAt),
	)
	return err
}

func insertProfile(ctx context.Context, tx execer, pr *models.Profile) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO profiles (id, player_id, skill_goals, physical_goals, preferred_intensity,
			preferred_session_minutes, training_background, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		pr.ID.String(), pr.PlayerID.String(), encodeList(pr.SkillGoals), encodeList(pr.PhysicalGoals),
		pr.PreferredIntensity, pr.PreferredSessionMinutes, pr.TrainingBackground, formatTime(pr.CreatedAt),
	)
	return err
}

func insertAvatar(ctx context.Context, tx execer, a *models.AvatarConfig) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO avatars (id, player_id, skin_tone, hair_style, hair_color, face_style,
			shirt_id, shorts_id, socks_id, shoes_id, accessory_ids, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID.String(), a.PlayerID.String(), a.SkinTone, a.HairStyle, a.HairColor, a.FaceStyle,
		a.ShirtID, a.ShortsID, a.SocksID, a.ShoesID, encodeList(a.AccessoryIDs), formatTime(a.LastModified),
	)
	return err
}

func insertOwnedItem(ctx context.Context, tx execer, it *models.OwnedAvatarItem, pos int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO owned_items (id, player_id, item_id, slot, purchased_at, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`, it.ID.String(), it.PlayerID.String(), it.ItemID, it.Slot, formatTime(it.PurchasedAt), pos)
	return err
}

func insertGoal(ctx context.Context, tx execer, g *models.PlayerGoal, pos int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO goals (id, player_id, skill_name, current_level, target_level, priority,
			status, target_date, notes, created_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		g.ID.String(), g.PlayerID.String(), g.SkillName, g.CurrentLevel, g.TargetLevel, g.Priority,
		g.Status, nullTime(g.TargetDate), g.Notes, formatTime(g.CreatedAt), pos,
	)
	return err
}

func insertExercise(ctx context.Context, tx execer, e *models.Exercise, pos int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO exercises (id, player_id, name, description, category, difficulty, target_skills,
			instructions, youtube_video_id, is_youtube_content, video_title, channel_name,
			video_duration_seconds, thumbnail_url, community_drill_id, created_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID.String(), e.PlayerID.String(), e.Name, e.Description, e.Category, e.Difficulty,
		encodeList(e.TargetSkills), e.Instructions, e.YouTubeVideoID, e.IsYouTubeContent, e.VideoTitle,
		e.ChannelName, e.VideoDurationSeconds, e.ThumbnailURL, nullString(e.CommunityDrillID),
		formatTime(e.CreatedAt), pos,
	)
	return err
}

func insertSession(ctx context.Context, tx execer, s *models.TrainingSession, pos int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, player_id, date, duration_minutes, session_type, intensity,
			overall_rating, notes, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.ID.String(), s.PlayerID.String(), formatTime(s.Date), s.DurationMinutes, s.SessionType,
		s.Intensity, s.OverallRating, s.Notes, pos,
	)
	if err != nil {
		return err
	}
	for _, se := range s.Exercises {
		var exerciseID any
		if se.ExerciseID != nil {
			exerciseID = se.ExerciseID.String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO session_exercises (id, session_id, exercise_id, exercise_name, position,
				sets, reps, duration_minutes, performance_rating, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			se.ID.String(), se.SessionID.String(), exerciseID, se.ExerciseName, se.Position,
			se.Sets, se.Reps, se.DurationMinutes, se.PerformanceRating, se.Notes,
		)
		if err != nil {
			return fmt.Errorf("insert session exercise: %w", err)
		}
	}
	return nil
}

func insertPlan(ctx context.Context, tx execer, p *models.TrainingPlan, pos int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO plans (id, player_id, name, description, difficulty, category, target_role,
			duration_weeks, is_active, progress_percentage, started_at, completed_at, created_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID.String(), p.PlayerID.String(), p.Name, p.Description, p.Difficulty, p.Category,
		p.TargetRole, p.DurationWeeks, p.IsActive, p.ProgressPercentage, nullTime(p.StartedAt),
		nullTime(p.CompletedAt), formatTime(p.CreatedAt), pos,
	)
	if err != nil {
		return err
	}
	for wi, w := range p.Weeks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO plan_weeks (id, plan_id, week_number, focus_area, notes, is_completed, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, w.ID.String(), w.PlanID.String(), w.WeekNumber, w.FocusArea, w.Notes, w.IsCompleted, wi)
		if err != nil {
			return fmt.Errorf("insert week %d: %w", w.WeekNumber, err)
		}
		for di, day := range w.Days {
			if err := insertPlanDay(ctx, tx, day, di); err != nil {
				return fmt.Errorf("insert week %d day %d: %w", w.WeekNumber, day.DayNumber, err)
			}
		}
	}
	return nil
}

func insertPlanDay(ctx context.Context, tx execer, d *models.PlanDay, pos int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO plan_days (id, week_id, day_number, day_of_week, date, is_rest_day,
			is_completed, is_skipped, notes, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID.String(), d.WeekID.String(), d.DayNumber, d.DayOfWeek, nullTime(d.Date), d.IsRestDay,
		d.IsCompleted, d.IsSkipped, d.Notes, pos,
	)
	if err != nil {
		return err
	}
	for si, s := range d.Sessions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO plan_sessions (id, day_id, session_type, duration_minutes, intensity, notes,
				is_completed, is_skipped, actual_duration_minutes, actual_intensity, completed_at,
				exercise_ids, suggested_exercise_names, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			s.ID.String(), s.DayID.String(), s.SessionType, s.DurationMinutes, s.Intensity, s.Notes,
			s.IsCompleted, s.IsSkipped, nullInt(s.ActualDurationMinutes), nullInt(s.ActualIntensity),
			nullTime(s.CompletedAt), encodeIDs(s.ExerciseIDs), encodeList(s.SuggestedExerciseNames), si,
		)
		if err != nil {
			return fmt.Errorf("insert plan session: %w", err)
		}
	}
	return nil
}

// LoadPlayer returns the full graph for a player id or unique id prefix.
func (d *DB) LoadPlayer(ctx context.Context, idOrPrefix string) (*models.Player, error) {
	id, err := d.resolvePlayerID(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	return d.loadGraph(ctx, id)
}

func (d *DB) loadGraph(ctx context.Context, id string) (*models.Player, error) {
	p, err := d.scanPlayer(d.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	loaders := []struct {
		name string
		fn   func(context.Context, *models.Player) error
	}{
		{"profile", d.loadProfile},
		{"avatar", d.loadAvatar},
		{"owned items", d.loadOwnedItems},
		{"goals", d.loadGoals},
		{"exercises", d.loadExercises},
		{"sessions", d.loadSessions},
		{"plans", d.loadPlans},
	}
	for _, l := range loaders {
		if err := l.fn(ctx, p); err != nil {
			return nil, fmt.Errorf("load %s: %w", l.name, err)
		}
	}
	return p, nil
}

func (d *DB) loadProfile(ctx context.Context, p *models.Player) error {
	var pr models.Profile
	var id, playerID, createdAt string
	var skill, physical sql.NullString
	err := d.db.QueryRowContext(ctx, `
		SELECT id, player_id, skill_goals, physical_goals, preferred_intensity,
			preferred_session_minutes, training_background, created_at
		FROM profiles WHERE player_id = ?
	`, p.ID.String()).Scan(&id, &playerID, &skill, &physical, &pr.PreferredIntensity,
		&pr.PreferredSessionMinutes, &pr.TrainingBackground, &createdAt)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	pr.ID, _ = uuid.Parse(id)
	pr.SkillGoals = decodeList(skill)
	pr.PhysicalGoals = decodeList(physical)
	pr.CreatedAt = parseTime(createdAt)
	p.AttachProfile(&pr)
	return nil
}

func (d *DB) loadAvatar(ctx context.Context, p *models.Player) error {
	var a models.AvatarConfig
	var id, playerID, lastModified string
	var accessories sql.NullString
	err := d.db.QueryRowContext(ctx, `
		SELECT id, player_id, skin_tone, hair_style, hair_color, face_style, shirt_id, shorts_id,
			socks_id, shoes_id, accessory_ids, last_modified
		FROM avatars WHERE player_id = ?
	`, p.ID.String()).Scan(&id, &playerID, &a.SkinTone, &a.HairStyle, &a.HairColor, &a.FaceStyle,
		&a.ShirtID, &a.ShortsID, &a.SocksID, &a.ShoesID, &accessories, &lastModified)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	a.ID, _ = uuid.Parse(id)
	a.AccessoryIDs = decodeList(accessories)
	a.LastModified = parseTime(lastModified)
	p.AttachAvatar(&a)
	return nil
}

func (d *DB) loadOwnedItems(ctx context.Context, p *models.Player) error {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, item_id, slot, purchased_at FROM owned_items
		WHERE player_id = ? ORDER BY position
	`, p.ID.String())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OwnedAvatarItem
		var id, purchasedAt string
		if err := rows.Scan(&id, &it.ItemID, &it.Slot, &purchasedAt); err != nil {
			return fmt.Errorf("scan owned item: %w", err)
		}
		it.ID, _ = uuid.Parse(id)
		it.PurchasedAt = parseTime(purchasedAt)
		p.AddOwnedItem(&it)
	}
	return rows.Err()
}

func (d *DB) loadGoals(ctx context.Context, p *models.Player) error {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, skill_name, current_level, target_level, priority, status, target_date, notes, created_at
		FROM goals WHERE player_id = ? ORDER BY position
	`, p.ID.String())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g models.PlayerGoal
		var id, createdAt string
		var targetDate sql.NullString
		if err := rows.Scan(&id, &g.SkillName, &g.CurrentLevel, &g.TargetLevel, &g.Priority,
			&g.Status, &targetDate, &g.Notes, &createdAt); err != nil {
			return fmt.Errorf("scan goal: %w", err)
		}
		g.ID, _ = uuid.Parse(id)
		g.TargetDate = parseNullTime(targetDate)
		g.CreatedAt = parseTime(createdAt)
		p.AddGoal(&g)
	}
	return rows.Err()
}

func (d *DB) loadExercises(ctx context.Context, p *models.Player) error {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, description, category, difficulty, target_skills, instructions,
			youtube_video_id, is_youtube_content, video_title, channel_name,
			video_duration_seconds, thumbnail_url, community_drill_id, created_at
		FROM exercises WHERE player_id = ? ORDER BY position
	`, p.ID.String())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Exercise
		var id, createdAt string
		var skills, drillID sql.NullString
		if err := rows.Scan(&id, &e.Name, &e.Description, &e.Category, &e.Difficulty, &skills,
			&e.Instructions, &e.YouTubeVideoID, &e.IsYouTubeContent, &e.VideoTitle, &e.ChannelName,
			&e.VideoDurationSeconds, &e.ThumbnailURL, &drillID, &createdAt); err != nil {
			return fmt.Errorf("scan exercise: %w", err)
		}
		e.ID, _ = uuid.Parse(id)
		e.TargetSkills = decodeList(skills)
		if drillID.Valid {
			e.CommunityDrillID = &drillID.String
		}
		e.CreatedAt = parseTime(createdAt)
		p.AddExercise(&e)
	}
	return rows.Err()
}

func (d *DB) loadSessions(ctx context.Context, p *models.Player) error {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, date, duration_minutes, session_type, intensity, overall_rating, notes
		FROM sessions WHERE player_id = ? ORDER BY position
	`, p.ID.String())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.TrainingSession
		var id, date string
		if err := rows.Scan(&id, &date, &s.DurationMinutes, &s.SessionType, &s.Intensity,
			&s.OverallRating, &s.Notes); err != nil {
			return fmt.Errorf("scan session: %w", err)
		}
		s.ID, _ = uuid.Parse(id)
		s.Date = parseTime(date)
		p.AddSession(&s)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, s := range p.Sessions {
		if err := d.loadSessionExercises(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) loadSessionExercises(ctx context.Context, s *models.TrainingSession) error {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, exercise_id, exercise_name, sets, reps, duration_minutes, performance_rating, notes
		FROM session_exercises WHERE session_id = ? ORDER BY position
	`, s.ID.String())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var se models.SessionExercise
		var id string
		var exerciseID sql.NullString
		if err := rows.Scan(&id, &exerciseID, &se.ExerciseName, &se.Sets, &se.Reps,
			&se.DurationMinutes, &se.PerformanceRating, &se.Notes); err != nil {
			return fmt.Errorf("scan session exercise: %w", err)
		}
		se.ID, _ = uuid.Parse(id)
		if exerciseID.Valid {
			if eid, err := uuid.Parse(exerciseID.String); err == nil {
				se.ExerciseID = &eid
			}
		}
		s.AddExercise(&se)
	}
	return rows.Err()
}

func (d *DB) loadPlans(ctx context.Context, p *models.Player) error {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, description, difficulty, category, target_role, duration_weeks,
			is_active, progress_percentage, started_at, completed_at, created_at
		FROM plans WHERE player_id = ? ORDER BY position
	`, p.ID.String())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tp models.TrainingPlan
		var id, createdAt string
		var startedAt, completedAt sql.NullString
		if err := rows.Scan(&id, &tp.Name, &tp.Description, &tp.Difficulty, &tp.Category,
			&tp.TargetRole, &tp.DurationWeeks, &tp.IsActive, &tp.ProgressPercentage,
			&startedAt, &completedAt, &createdAt); err != nil {
			return fmt.Errorf("scan plan: %w", err)
		}
		tp.ID, _ = uuid.Parse(id)
		tp.StartedAt = parseNullTime(startedAt)
		tp.CompletedAt = parseNullTime(completedAt)
		tp.CreatedAt = parseTime(createdAt)
		p.AddPlan(&tp)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, tp := range p.Plans {
		if err := d.loadWeeks(ctx, tp); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) loadWeeks(ctx context.Context, tp *models.TrainingPlan) error {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, week_number, focus_area, notes, is_completed
		FROM plan_weeks WHERE plan_id = ? ORDER BY position
	`, tp.ID.String())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var w models.PlanWeek
		var id string
		if err := rows.Scan(&id, &w.WeekNumber, &w.FocusArea, &w.Notes, &w.IsCompleted); err != nil {
			return fmt.Errorf("scan week: %w", err)
		}
		w.ID, _ = uuid.Parse(id)
		tp.AddWeek(&w)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, w := range tp.Weeks {
		if err := d.loadDays(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) loadDays(ctx context.Context, w *models.PlanWeek) error {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, day_number, day_of_week, date, is_rest_day, is_completed, is_skipped, notes
		FROM plan_days WHERE week_id = ? ORDER BY position
	`, w.ID.String())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var day models.PlanDay
		var id string
		var date sql.NullString
		if err := rows.Scan(&id, &day.DayNumber, &day.DayOfWeek, &date, &day.IsRestDay,
			&day.IsCompleted, &day.IsSkipped, &day.Notes); err != nil {
			return fmt.Errorf("scan day: %w", err)
		}
		day.ID, _ = uuid.Parse(id)
		day.Date = parseNullTime(date)
		w.AddDay(&day)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, day := range w.Days {
		if err := d.loadPlanSessions(ctx, day); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) loadPlanSessions(ctx context.Context, day *models.PlanDay) error {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, session_type, duration_minutes, intensity, notes, is_completed, is_skipped,
			actual_duration_minutes, actual_intensity, completed_at, exercise_ids, suggested_exercise_names
		FROM plan_sessions WHERE day_id = ? ORDER BY position
	`, day.ID.String())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.PlanSession
		var id string
		var actualDuration, actualIntensity sql.NullInt64
		var completedAt, exerciseIDs, suggested sql.NullString
		if err := rows.Scan(&id, &s.SessionType, &s.DurationMinutes, &s.Intensity, &s.Notes,
			&s.IsCompleted, &s.IsSkipped, &actualDuration, &actualIntensity, &completedAt,
			&exerciseIDs, &suggested); err != nil {
			return fmt.Errorf("scan plan session: %w", err)
		}
		s.ID, _ = uuid.Parse(id)
		s.ActualDurationMinutes = parseNullInt(actualDuration)
		s.ActualIntensity = parseNullInt(actualIntensity)
		s.CompletedAt = parseNullTime(completedAt)
		s.ExerciseIDs = decodeIDs(exerciseIDs)
		s.SuggestedExerciseNames = decodeList(suggested)
		day.AddSession(&s)
	}
	return rows.Err()
}

// Column codecs. Times are RFC3339 with nanoseconds in UTC; string lists are
// JSON arrays, with NULL standing for an absent list.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func parseNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func encodeList(ss []string) any {
	if ss == nil {
		return nil
	}
	b, _ := json.Marshal(ss)
	return string(b)
}

func decodeList(s sql.NullString) []string {
	if !s.Valid {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s.String), &out); err != nil {
		return nil
	}
	return out
}

func encodeIDs(ids []uuid.UUID) any {
	if ids == nil {
		return nil
	}
	ss := make([]string, len(ids))
	for i, id := range ids {
		ss[i] = id.String()
	}
	return encodeList(ss)
}

func decodeIDs(s sql.NullString) []uuid.UUID {
	ss := decodeList(s)
	if ss == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(ss))
	for _, v := range ss {
		if id, err := uuid.Parse(v); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
