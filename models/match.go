package models

import "time"

type BracketSide string

const (
	BracketWinners BracketSide = "winners"
	BracketLosers  BracketSide = "losers"
)

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "pending"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

// Match is one node of a group's double-elimination bracket. IDs are
// deterministic ({tournamentID}_{W|L}R{round}M{matchNumber}), so a replayed
// generation for the same group produces the same ids. The grand final and
// the bracket-reset match are winners-bracket rounds 6 and 7, flagged below,
// not a third bracket side.
type Match struct {
	ID                string      `json:"id" db:"id"`
	TournamentID      string      `json:"tournament_id" db:"tournament_id"`
	GroupID           string      `json:"group_id" db:"group_id"`
	Bracket           BracketSide `json:"bracket" db:"bracket"`
	Round             int         `json:"round_number" db:"round_number"`
	MatchNumber       int         `json:"match_number" db:"match_number"`
	Status            MatchStatus `json:"status" db:"status"`
	NextMatchWinnerID *string     `json:"next_match_winner_id,omitempty" db:"next_match_winner_id"`
	NextMatchLoserID  *string     `json:"next_match_loser_id,omitempty" db:"next_match_loser_id"`
	IsGrandFinal      bool        `json:"is_grand_final" db:"is_grand_final"`
	IsBracketReset    bool        `json:"is_bracket_reset" db:"is_bracket_reset"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
}
