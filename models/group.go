package models

import "time"

// Group is a 32-team pool inside a tournament. A full roster triggers
// bracket generation exactly once per group.
type Group struct {
	ID           string    `json:"id" db:"id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// TeamCount is derived from group_teams, not a column.
	TeamCount int `json:"team_count" db:"-"`

	Teams []Team `json:"teams,omitempty" db:"-"`
}
