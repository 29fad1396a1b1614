// ABOUTME: Id checks run before a graph is inserted.
// ABOUTME: Refuses a second player per account and moves child ids held by other rows.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/drillbook/internal/models"
)

// ErrPlayerExists means the database already holds this player or another
// player for the same account.
var ErrPlayerExists = errors.New("player already exists")

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// claimPlayer fails if the account or the player id is already stored. A
// player id held by a different account is replaced with a fresh one.
func claimPlayer(ctx context.Context, q queryer, p *models.Player) error {
	if p.AuthID != "" {
		var existing string
		err := q.QueryRowContext(ctx, `SELECT id FROM players WHERE auth_id = ? LIMIT 1`, p.AuthID).Scan(&existing)
		switch {
		case err == nil:
			return fmt.Errorf("%w: auth id %s is player %s", ErrPlayerExists, p.AuthID, existing)
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check auth id: %w", err)
		}
	}

	var owner string
	err := q.QueryRowContext(ctx, `SELECT auth_id FROM players WHERE id = ?`, p.ID.String()).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("check player id: %w", err)
	case owner == p.AuthID:
		return fmt.Errorf("%w: %s", ErrPlayerExists, p.ID)
	}
	p.ID = uuid.New()
	return nil
}

func idTaken(ctx context.Context, q queryer, table string, id uuid.UUID) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check %s id: %w", table, err)
	}
	return true, nil
}

// reassignTakenIDs gives a fresh id to every row of p whose id another row
// already uses, then points children and exercise references at the new ids.
func reassignTakenIDs(ctx context.Context, q queryer, p *models.Player) error {
	var err error
	claim := func(table string, id *uuid.UUID) uuid.UUID {
		if err != nil {
			return *id
		}
		var taken bool
		if taken, err = idTaken(ctx, q, table, *id); taken {
			*id = uuid.New()
		}
		return *id
	}

	if p.Profile != nil {
		claim("profiles", &p.Profile.ID)
	}
	if p.Avatar != nil {
		claim("avatars", &p.Avatar.ID)
	}
	for _, it := range p.OwnedItems {
		claim("owned_items", &it.ID)
	}
	for _, g := range p.Goals {
		claim("goals", &g.ID)
	}
	moved := make(map[uuid.UUID]uuid.UUID)
	for _, e := range p.Exercises {
		old := e.ID
		if claim("exercises", &e.ID) != old {
			moved[old] = e.ID
		}
	}
	for _, s := range p.Sessions {
		claim("sessions", &s.ID)
		for _, se := range s.Exercises {
			claim("session_exercises", &se.ID)
		}
	}
	for _, plan := range p.Plans {
		claim("plans", &plan.ID)
		for _, w := range plan.Weeks {
			claim("plan_weeks", &w.ID)
			for _, d := range w.Days {
				claim("plan_days", &d.ID)
				for _, s := range d.Sessions {
					claim("plan_sessions", &s.ID)
				}
			}
		}
	}
	if err != nil {
		return err
	}
	relink(p, moved)
	return nil
}

// relink points every child at its parent's current id and rewrites exercise
// references listed in moved.
func relink(p *models.Player, moved map[uuid.UUID]uuid.UUID) {
	if p.Profile != nil {
		p.Profile.PlayerID = p.ID
	}
	if p.Avatar != nil {
		p.Avatar.PlayerID = p.ID
	}
	for _, it := range p.OwnedItems {
		it.PlayerID = p.ID
	}
	for _, g := range p.Goals {
		g.PlayerID = p.ID
	}
	for _, e := range p.Exercises {
		e.PlayerID = p.ID
	}
	for _, s := range p.Sessions {
		s.PlayerID = p.ID
		for _, se := range s.Exercises {
			se.SessionID = s.ID
			if se.ExerciseID != nil {
				if id, ok := moved[*se.ExerciseID]; ok {
					se.ExerciseID = &id
				}
			}
		}
	}
	for _, plan := range p.Plans {
		plan.PlayerID = p.ID
		for _, w := range plan.Weeks {
			w.PlanID = plan.ID
			for _, d := range w.Days {
				d.WeekID = w.ID
				for _, s := range d.Sessions {
					s.DayID = d.ID
					for i, id := range s.ExerciseIDs {
						if nid, ok := moved[id]; ok {
							s.ExerciseIDs[i] = nid
						}
					}
				}
			}
		}
	}
}
