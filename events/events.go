package events

// Stream and subject layout for the tournament event pipeline.
const (
	TournamentStream         = "TOURNAMENTS"
	TournamentStreamSubjects = "tournaments.>"

	// TeamAddedSubject fires after a team lands on a group roster.
	TeamAddedSubject = "tournaments.roster.team-added"
)

// TeamAdded is the payload carried on TeamAddedSubject.
type TeamAdded struct {
	TournamentID string `json:"tournament_id"`
	GroupID      string `json:"group_id"`
	TeamID       string `json:"team_id"`
}
