// ABOUTME: Export and import functionality for player graphs.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/drillbook/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for player graphs.
type ExportData struct {
	Version    string           `json:"version" yaml:"version"`
	ExportedAt time.Time        `json:"exported_at" yaml:"exported_at"`
	Tool       string           `json:"tool" yaml:"tool"`
	Players    []*models.Player `json:"players" yaml:"players"`
}

func newExport(players []*models.Player) *ExportData {
	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "drillbook",
		Players:    players,
	}
}

// GetAllData retrieves every player graph for export.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	rows, err := d.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	players := make([]*models.Player, 0, len(rows))
	for _, p := range rows {
		full, err := d.loadGraph(ctx, p.ID.String())
		if err != nil {
			return nil, fmt.Errorf("load player %s: %w", p.ID, err)
		}
		players = append(players, full)
	}
	return newExport(players), nil
}

// ExportPlayer retrieves one player graph for export.
func (d *DB) ExportPlayer(ctx context.Context, idOrPrefix string) (*ExportData, error) {
	p, err := d.LoadPlayer(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	return newExport([]*models.Player{p}), nil
}

func (d *DB) exportData(ctx context.Context, idOrPrefix string) (*ExportData, error) {
	if idOrPrefix == "" {
		return d.GetAllData(ctx)
	}
	return d.ExportPlayer(ctx, idOrPrefix)
}

// ImportData saves every player graph in an export, one transaction per player.
func (d *DB) ImportData(ctx context.Context, data *ExportData) error {
	for _, p := range data.Players {
		if err := d.SaveGraph(ctx, p); err != nil {
			return fmt.Errorf("import player %s: %w", p.ID, err)
		}
	}
	return nil
}

// ImportJSON imports data from JSON bytes.
func (d *DB) ImportJSON(ctx context.Context, data []byte) error {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return d.ImportData(ctx, &exportData)
}

// ExportJSON exports one player, or all players when idOrPrefix is empty, as JSON.
func (d *DB) ExportJSON(ctx context.Context, idOrPrefix string) ([]byte, error) {
	data, err := d.exportData(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports one player, or all players, as a readable YAML summary.
func (d *DB) ExportYAML(ctx context.Context, idOrPrefix string) ([]byte, error) {
	data, err := d.exportData(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string       `yaml:"version"`
		ExportedAt string       `yaml:"exported_at"`
		Tool       string       `yaml:"tool"`
		Players    []yamlPlayer `yaml:"players"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Players:    make([]yamlPlayer, 0, len(data.Players)),
	}

	for _, p := range data.Players {
		yp := yamlPlayer{
			ID:           p.ID.String()[:8],
			Name:         p.Name,
			Position:     p.Position,
			Level:        p.CurrentLevel,
			XP:           p.TotalXP,
			Coins:        p.Coins,
			Streak:       p.CurrentStreak,
			Achievements: p.UnlockedAchievements,
		}
		for _, it := range p.OwnedItems {
			yp.OwnedItems = append(yp.OwnedItems, it.ItemID)
		}
		for _, g := range p.Goals {
			yp.Goals = append(yp.Goals, yamlGoal{
				Skill:    g.SkillName,
				Current:  g.CurrentLevel,
				Target:   g.TargetLevel,
				Priority: g.Priority,
				Status:   g.Status,
			})
		}
		for _, s := range p.Sessions {
			ys := yamlSession{
				Date:            s.Date.Format("2006-01-02"),
				Type:            s.SessionType,
				DurationMinutes: s.DurationMinutes,
				Rating:          s.OverallRating,
			}
			for _, se := range s.Exercises {
				ys.Exercises = append(ys.Exercises, se.ExerciseName)
			}
			yp.Sessions = append(yp.Sessions, ys)
		}
		for _, tp := range p.Plans {
			yp.Plans = append(yp.Plans, yamlPlan{
				Name:     tp.Name,
				Weeks:    len(tp.Weeks),
				Sessions: tp.SessionCount(),
				Progress: tp.ProgressPercentage,
				Active:   tp.IsActive,
			})
		}
		yamlData.Players = append(yamlData.Players, yp)
	}

	return yaml.Marshal(yamlData)
}

type yamlPlayer struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	Position     string        `yaml:"position,omitempty"`
	Level        int           `yaml:"level"`
	XP           int           `yaml:"xp"`
	Coins        int           `yaml:"coins"`
	Streak       int           `yaml:"streak"`
	Achievements []string      `yaml:"achievements,omitempty"`
	OwnedItems   []string      `yaml:"owned_items,omitempty"`
	Goals        []yamlGoal    `yaml:"goals,omitempty"`
	Sessions     []yamlSession `yaml:"sessions,omitempty"`
	Plans        []yamlPlan    `yaml:"plans,omitempty"`
}

type yamlGoal struct {
	Skill    string  `yaml:"skill"`
	Current  float64 `yaml:"current"`
	Target   float64 `yaml:"target"`
	Priority int     `yaml:"priority"`
	Status   string  `yaml:"status"`
}

type yamlSession struct {
	Date            string   `yaml:"date"`
	Type            string   `yaml:"type"`
	DurationMinutes int      `yaml:"duration_minutes,omitempty"`
	Rating          int      `yaml:"rating"`
	Exercises       []string `yaml:"exercises,omitempty"`
}

type yamlPlan struct {
	Name     string  `yaml:"name"`
	Weeks    int     `yaml:"weeks"`
	Sessions int     `yaml:"sessions"`
	Progress float64 `yaml:"progress"`
	Active   bool    `yaml:"active"`
}

// ExportMarkdown renders one player, or all players, as a training journal.
func (d *DB) ExportMarkdown(ctx context.Context, idOrPrefix string) (string, error) {
	data, err := d.exportData(ctx, idOrPrefix)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Training Journal - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	for _, p := range data.Players {
		sb.WriteString(fmt.Sprintf("## %s\n\n", p.Name))
		sb.WriteString(fmt.Sprintf("Level %d, %d XP, %d coins, %d day streak (best %d)\n\n",
			p.CurrentLevel, p.TotalXP, p.Coins, p.CurrentStreak, p.LongestStreak))

		if len(p.Goals) > 0 {
			sb.WriteString("### Goals\n\n")
			sb.WriteString("| Skill | Current | Target | Status |\n")
			sb.WriteString("|-------|---------|--------|--------|\n")
			for _, g := range p.Goals {
				sb.WriteString(fmt.Sprintf("| %s | %.1f | %.1f | %s |\n",
					g.SkillName, g.CurrentLevel, g.TargetLevel, g.Status))
			}
			sb.WriteString("\n")
		}

		if len(p.Sessions) > 0 {
			sb.WriteString("### Sessions\n\n")
			sb.WriteString("| Date | Type | Duration | Rating | Notes |\n")
			sb.WriteString("|------|------|----------|--------|-------|\n")
			for _, s := range p.Sessions {
				duration := ""
				if s.DurationMinutes > 0 {
					duration = fmt.Sprintf("%d min", s.DurationMinutes)
				}
				sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %s |\n",
					s.Date.Format("2006-01-02 15:04"), s.SessionType, duration, s.OverallRating, s.Notes))
			}
			sb.WriteString("\n")
		}

		if len(p.Plans) > 0 {
			sb.WriteString("### Plans\n\n")
			for _, tp := range p.Plans {
				active := ""
				if tp.IsActive {
					active = " (active)"
				}
				sb.WriteString(fmt.Sprintf("- %s%s: %d weeks, %d sessions, %.0f%% complete\n",
					tp.Name, active, len(tp.Weeks), tp.SessionCount(), tp.ProgressPercentage))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}
