// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Drives rootCmd against temp SQLite and Badger directories.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/drillbook/internal/restore"
	"github.com/harperreed/drillbook/internal/storage"
)

const snapshotJSON = `{
  "profile": {
    "id": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
    "firebaseUID": "u1",
    "name": "Sam",
    "position": "Midfielder",
    "totalXP": 900,
    "coins": 40,
    "unlockedAchievements": ["first_session"]
  },
  "avatar": {"skinTone": "dark"},
  "ownedItems": [{"itemId": "shirt_red", "slot": "shirt"}],
  "goals": [{"skillName": "shooting", "targetLevel": 8}],
  "sessions": [
    {"date": "2025-03-10", "sessionType": "Technical", "duration": 60,
     "exercises": [{"exerciseName": "Cone Weave", "sets": 3}]}
  ],
  "plans": [
    {"name": "Preseason", "weeks": [{"days": [{"dayOfWeek": "Monday",
      "sessions": [{"sessionType": "Technical"}]}]}]}
  ]
}`

const playerPrefix = "7c9e6679"

// setupTestCLI points config, data, and cloud at a temp directory and signs in as u1.
func setupTestCLI(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	t.Setenv("DRILLBOOK_AUTH_SUBJECT", "u1")
	t.Setenv("DRILLBOOK_AUTH_TOKEN", "")

	snapPath := filepath.Join(tmpDir, "snapshot.json")
	if err := os.WriteFile(snapPath, []byte(snapshotJSON), 0600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	t.Cleanup(func() {
		_ = closeStores()
		dbPath, cloudFlag, cloudDir, logLevel, tokenFlag = "", "", "", "", ""
		exportOutput, exportFormat = "", "json"
		backupUser, backupReplace, importReplace = "", false, false
		migrateFrom, migrateDryRun = "", false
		recommendLimit, recommendDays = 3, 30
	})
	return tmpDir
}

// run executes the CLI with badger cloud storage under dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	full := append([]string{
		"--cloud", "badger",
		"--cloud-dir", filepath.Join(dir, "cloud"),
		"--log-level", "error",
	}, args...)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	_ = closeStores()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long note", 10, "this is..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"abc", 6, "abc   "},
		{"abcdef", 3, "abcdef"},
		{"", 2, "  "},
	}
	for _, tt := range tests {
		if got := padRight(tt.input, tt.length); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestRenderProgress(t *testing.T) {
	var buf bytes.Buffer
	renderProgress(&buf, restore.State{Progress: 0.5, Phase: "avatar"})

	got := buf.String()
	if !strings.HasPrefix(got, "\r") {
		t.Errorf("expected carriage return, got %q", got)
	}
	if !strings.Contains(got, " 50%") || !strings.Contains(got, "avatar") {
		t.Errorf("unexpected progress line %q", got)
	}
	if strings.Count(got, "█") != 10 {
		t.Errorf("expected half the bar filled, got %q", got)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if _, err := newLogger(lvl); err != nil {
			t.Errorf("newLogger(%q) failed: %v", lvl, err)
		}
	}
	if _, err := newLogger("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestRootCmdFlags(t *testing.T) {
	if rootCmd.Use != "drillbook" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "drillbook")
	}
	for _, name := range []string{"db", "cloud", "cloud-dir", "log-level"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected --%s persistent flag", name)
		}
	}
	if restoreCmd.Flags().Lookup("token") == nil {
		t.Error("Expected --token flag on restore command")
	}
	if f := exportCmd.Flags().Lookup("format"); f == nil || f.DefValue != "json" {
		t.Error("Expected --format flag defaulting to json")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"probe", "restore", "reconcile", "show", "delete", "export", "import",
		"backup", "cloud", "migrate", "recommend", "mcp", "version"}
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, name := range want {
		if !names[name] {
			t.Errorf("Expected %s command to be registered", name)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	dir := setupTestCLI(t)
	out := mustRun(t, dir, "version")
	if !strings.Contains(out, "drillbook") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestRestoreWorkflow(t *testing.T) {
	dir := setupTestCLI(t)
	snap := filepath.Join(dir, "snapshot.json")

	out := mustRun(t, dir, "probe", "u1")
	if !strings.Contains(out, "No cloud data") {
		t.Errorf("expected no data before import, got %q", out)
	}

	out = mustRun(t, dir, "cloud", "import", "u1", snap)
	if !strings.Contains(out, "Wrote 6 documents") {
		t.Errorf("unexpected import output %q", out)
	}

	out = mustRun(t, dir, "probe", "u1")
	if !strings.Contains(out, "Cloud data found") {
		t.Errorf("expected data after import, got %q", out)
	}

	out = mustRun(t, dir, "restore", "u1")
	if !strings.Contains(out, "Restored Sam") || !strings.Contains(out, "100%") {
		t.Errorf("unexpected restore output %q", out)
	}

	out = mustRun(t, dir, "show")
	if !strings.Contains(out, playerPrefix) || !strings.Contains(out, "Sam") {
		t.Errorf("unexpected show output %q", out)
	}

	out = mustRun(t, dir, "show", playerPrefix)
	for _, want := range []string{"Level 4", "shooting", "Technical", "Preseason"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, dir, "reconcile", "u1")
	if !strings.Contains(out, "Already up to date") {
		t.Errorf("expected no-op reconcile, got %q", out)
	}

	// A second restore conflicts with the stored player and changes nothing.
	if _, err := run(t, dir, "restore", "u1"); err == nil {
		t.Error("expected second restore to fail")
	}
	out = mustRun(t, dir, "show")
	if strings.Count(out, playerPrefix) != 1 {
		t.Errorf("expected exactly one player, got %q", out)
	}
}

func TestRestoreWrongSubject(t *testing.T) {
	dir := setupTestCLI(t)
	mustRun(t, dir, "cloud", "import", "u1", filepath.Join(dir, "snapshot.json"))

	t.Setenv("DRILLBOOK_AUTH_SUBJECT", "u2")
	_, err := run(t, dir, "restore", "u1")
	if err == nil || !strings.Contains(err.Error(), "not authenticated") {
		t.Errorf("expected not authenticated, got %v", err)
	}

	out := mustRun(t, dir, "show")
	if !strings.Contains(out, "No players found") {
		t.Errorf("expected nothing restored, got %q", out)
	}
}

func TestRestoreNoData(t *testing.T) {
	dir := setupTestCLI(t)
	_, err := run(t, dir, "restore", "u1")
	if err == nil || !strings.Contains(err.Error(), "no cloud data") {
		t.Errorf("expected no data error, got %v", err)
	}
}

func TestExportFormats(t *testing.T) {
	dir := setupTestCLI(t)
	mustRun(t, dir, "cloud", "import", "u1", filepath.Join(dir, "snapshot.json"))
	mustRun(t, dir, "restore", "u1")

	out := mustRun(t, dir, "export")
	if !strings.Contains(out, `"tool": "drillbook"`) {
		t.Errorf("unexpected JSON export %q", out)
	}

	out = mustRun(t, dir, "export", playerPrefix, "--format", "yaml")
	if !strings.Contains(out, "name: Sam") {
		t.Errorf("unexpected YAML export %q", out)
	}

	mdPath := filepath.Join(dir, "journal.md")
	mustRun(t, dir, "export", "--format", "markdown", "-o", mdPath)
	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.Contains(string(md), "# Training Journal") {
		t.Errorf("unexpected markdown %q", md)
	}

	if _, err := run(t, dir, "export", "--format", "csv"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := setupTestCLI(t)
	mustRun(t, dir, "cloud", "import", "u1", filepath.Join(dir, "snapshot.json"))
	mustRun(t, dir, "restore", "u1")

	backup := filepath.Join(dir, "backup.json")
	mustRun(t, dir, "export", "-o", backup)
	mustRun(t, dir, "delete", playerPrefix)

	out := mustRun(t, dir, "show")
	if !strings.Contains(out, "No players found") {
		t.Fatalf("expected empty db after delete, got %q", out)
	}

	mustRun(t, dir, "import", backup)
	out = mustRun(t, dir, "show", playerPrefix)
	if !strings.Contains(out, "Preseason") {
		t.Errorf("expected imported plan, got %q", out)
	}
}

func TestBackupThenRestoreElsewhere(t *testing.T) {
	dir := setupTestCLI(t)
	mustRun(t, dir, "cloud", "import", "u1", filepath.Join(dir, "snapshot.json"))
	mustRun(t, dir, "restore", "u1")

	out := mustRun(t, dir, "backup", playerPrefix, "--user", "u2")
	if !strings.Contains(out, "Backed up Sam to u2") {
		t.Errorf("unexpected backup output %q", out)
	}

	// Restore u2's copy into a fresh database.
	t.Setenv("DRILLBOOK_AUTH_SUBJECT", "u2")
	other := filepath.Join(dir, "other.db")
	mustRun(t, dir, "--db", other, "restore", "u2")

	db, err := storage.Open(other)
	if err != nil {
		t.Fatalf("open restored db: %v", err)
	}
	defer db.Close()

	p, err := db.LoadPlayer(t.Context(), playerPrefix)
	if err != nil {
		t.Fatalf("load restored player: %v", err)
	}
	if p.Name != "Sam" || len(p.Sessions) != 1 || len(p.Plans) != 1 || len(p.OwnedItems) != 1 {
		t.Errorf("unexpected restored graph: %s sessions=%d plans=%d items=%d",
			p.Name, len(p.Sessions), len(p.Plans), len(p.OwnedItems))
	}
}

func TestMigrateCmd(t *testing.T) {
	dir := setupTestCLI(t)
	mustRun(t, dir, "cloud", "import", "u1", filepath.Join(dir, "snapshot.json"))
	src := filepath.Join(dir, "src.db")
	mustRun(t, dir, "--db", src, "restore", "u1")

	if _, err := run(t, dir, "migrate"); err == nil {
		t.Error("expected error without --from")
	}

	dst := filepath.Join(dir, "dst.db")
	out := mustRun(t, dir, "--db", dst, "migrate", "--from", src, "--dry-run")
	if !strings.Contains(out, "Would copy 1 players") {
		t.Errorf("unexpected dry run output %q", out)
	}
	migrateDryRun = false

	out = mustRun(t, dir, "--db", dst, "migrate", "--from", src)
	if !strings.Contains(out, "Migrated 1 players") {
		t.Errorf("unexpected migrate output %q", out)
	}

	out = mustRun(t, dir, "--db", dst, "show")
	if !strings.Contains(out, playerPrefix) {
		t.Errorf("expected migrated player, got %q", out)
	}
}

// historySnapshot has a small drill library and two sessions from this week.
func historySnapshot() string {
	day := func(ago int) string { return time.Now().AddDate(0, 0, -ago).Format("2006-01-02") }
	return fmt.Sprintf(`{
  "profile": {"id": "4f1c2d3e-5a6b-4c7d-8e9f-0a1b2c3d4e5f", "name": "Riley"},
  "exercises": [
    {"name": "Wall Pass", "category": "Passing", "difficulty": 2, "targetSkills": ["passing"]},
    {"name": "Rondo", "category": "Passing", "difficulty": 3, "targetSkills": ["passing"]},
    {"name": "Cone Weave", "category": "Dribbling", "difficulty": 2, "targetSkills": ["dribbling"]}
  ],
  "sessions": [
    {"date": %q, "exercises": [
      {"exerciseName": "Wall Pass", "performanceRating": 2},
      {"exerciseName": "Cone Weave", "performanceRating": 5}]},
    {"date": %q, "exercises": [
      {"exerciseName": "Wall Pass", "performanceRating": 3},
      {"exerciseName": "Cone Weave", "performanceRating": 4}]}
  ]
}`, day(2), day(4))
}

func TestRecommendCmd(t *testing.T) {
	dir := setupTestCLI(t)
	snap := filepath.Join(dir, "history.json")
	if err := os.WriteFile(snap, []byte(historySnapshot()), 0600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	mustRun(t, dir, "cloud", "import", "u1", snap)
	mustRun(t, dir, "restore", "u1")

	out := mustRun(t, dir, "recommend", "4f1c2d3e")
	for _, want := range []string{
		"Recent training for Riley", "2 sessions",
		"Wall Pass x2 (avg 2.5)", "needs work", "Category:   Passing",
		"1. Rondo", "95%", "Builds on passing",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("recommend output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, dir, "recommend", "4f1c2d3e", "--limit", "1", "--days", "1")
	if !strings.Contains(out, "No sessions in this window") {
		t.Errorf("expected empty window, got %q", out)
	}
	if !strings.Contains(out, "1. ") || strings.Contains(out, "2. ") {
		t.Errorf("expected a single suggestion, got %q", out)
	}
	recommendLimit, recommendDays = 3, 30

	if _, err := run(t, dir, "recommend", "4f1c2d3e", "--limit", "0"); err == nil {
		t.Error("expected error for zero limit")
	}
	recommendLimit = 3

	if _, err := run(t, dir, "recommend", "ffffffff"); err == nil {
		t.Error("expected error for unknown player")
	}
}
