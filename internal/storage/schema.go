// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: One table per graph entity; children cascade from their owning parent.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		auth_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		age INTEGER NOT NULL DEFAULT 0,
		position TEXT NOT NULL DEFAULT '',
		experience_level TEXT NOT NULL DEFAULT '',
		dominant_foot TEXT NOT NULL DEFAULT '',
		height_cm REAL NOT NULL DEFAULT 0,
		weight_kg REAL NOT NULL DEFAULT 0,
		total_xp INTEGER NOT NULL DEFAULT 0,
		current_level INTEGER NOT NULL DEFAULT 1,
		current_streak INTEGER NOT NULL DEFAULT 0,
		longest_streak INTEGER NOT NULL DEFAULT 0,
		coins INTEGER NOT NULL DEFAULT 0,
		total_coins_earned INTEGER NOT NULL DEFAULT 0,
		streak_freezes INTEGER NOT NULL DEFAULT 0,
		last_training_date TEXT,
		unlocked_achievements TEXT,
		last_cloud_sync TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL UNIQUE,
		skill_goals TEXT,
		physical_goals TEXT,
		preferred_intensity INTEGER NOT NULL,
		preferred_session_minutes INTEGER NOT NULL,
		training_background TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS avatars (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL UNIQUE,
		skin_tone TEXT NOT NULL,
		hair_style TEXT NOT NULL,
		hair_color TEXT NOT NULL,
		face_style TEXT NOT NULL,
		shirt_id TEXT NOT NULL DEFAULT '',
		shorts_id TEXT NOT NULL DEFAULT '',
		socks_id TEXT NOT NULL DEFAULT '',
		shoes_id TEXT NOT NULL DEFAULT '',
		accessory_ids TEXT,
		last_modified TEXT NOT NULL,
		FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS owned_items (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		slot TEXT NOT NULL DEFAULT '',
		purchased_at TEXT NOT NULL,
		position INTEGER NOT NULL,
		UNIQUE (player_id, item_id),
		FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		skill_name TEXT NOT NULL,
		current_level REAL NOT NULL,
		target_level REAL NOT NULL,
		priority INTEGER NOT NULL,
		status TEXT NOT NULL,
		target_date TEXT,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		position INTEGER NOT NULL,
		FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS exercises (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		difficulty INTEGER NOT NULL,
		target_skills TEXT,
		instructions TEXT NOT NULL DEFAULT '',
		youtube_video_id TEXT NOT NULL DEFAULT '',
		is_youtube_content INTEGER NOT NULL DEFAULT 0,
		video_title TEXT NOT NULL DEFAULT '',
		channel_name TEXT NOT NULL DEFAULT '',
		video_duration_seconds INTEGER NOT NULL DEFAULT 0,
		thumbnail_url TEXT NOT NULL DEFAULT '',
		community_drill_id TEXT,
		created_at TEXT NOT NULL,
		position INTEGER NOT NULL,
		FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		date TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		session_type TEXT NOT NULL,
		intensity INTEGER NOT NULL,
		overall_rating INTEGER NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL,
		FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS session_exercises (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		exercise_id TEXT,
		exercise_name TEXT NOT NULL,
		position INTEGER NOT NULL,
		sets INTEGER NOT NULL DEFAULT 0,
		reps INTEGER NOT NULL DEFAULT 0,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		performance_rating INTEGER NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL,
		category TEXT NOT NULL,
		target_role TEXT NOT NULL DEFAULT '',
		duration_weeks INTEGER NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 0,
		progress_percentage REAL NOT NULL DEFAULT 0,
		started_at TEXT,
		completed_at TEXT,
		created_at TEXT NOT NULL,
		position INTEGER NOT NULL,
		FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS plan_weeks (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL,
		week_number INTEGER NOT NULL,
		focus_area TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		is_completed INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL,
		FOREIGN KEY (plan_id) REFERENCES plans(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS plan_days (
		id TEXT PRIMARY KEY,
		week_id TEXT NOT NULL,
		day_number INTEGER NOT NULL,
		day_of_week TEXT NOT NULL DEFAULT '',
		date TEXT,
		is_rest_day INTEGER NOT NULL DEFAULT 0,
		is_completed INTEGER NOT NULL DEFAULT 0,
		is_skipped INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL,
		FOREIGN KEY (week_id) REFERENCES plan_weeks(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS plan_sessions (
		id TEXT PRIMARY KEY,
		day_id TEXT NOT NULL,
		session_type TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		intensity INTEGER NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		is_completed INTEGER NOT NULL DEFAULT 0,
		is_skipped INTEGER NOT NULL DEFAULT 0,
		actual_duration_minutes INTEGER,
		actual_intensity INTEGER,
		completed_at TEXT,
		exercise_ids TEXT,
		suggested_exercise_names TEXT,
		position INTEGER NOT NULL,
		FOREIGN KEY (day_id) REFERENCES plan_days(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_players_auth ON players(auth_id);
	CREATE INDEX IF NOT EXISTS idx_owned_items_player ON owned_items(player_id, position);
	CREATE INDEX IF NOT EXISTS idx_goals_player ON goals(player_id, position);
	CREATE INDEX IF NOT EXISTS idx_exercises_player ON exercises(player_id, position);
	CREATE INDEX IF NOT EXISTS idx_sessions_player ON sessions(player_id, position);
	CREATE INDEX IF NOT EXISTS idx_session_exercises_session ON session_exercises(session_id, position);
	CREATE INDEX IF NOT EXISTS idx_plans_player ON plans(player_id, position);
	CREATE INDEX IF NOT EXISTS idx_plan_weeks_plan ON plan_weeks(plan_id, position);
	CREATE INDEX IF NOT EXISTS idx_plan_days_week ON plan_days(week_id, position);
	CREATE INDEX IF NOT EXISTS idx_plan_sessions_day ON plan_sessions(day_id, position);
	`

	_, err := d.db.Exec(schema)
	return err
}
