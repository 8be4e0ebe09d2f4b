package brackets

import (
	"github.com/Dosada05/tournament-brackets/models"
)

// Layout constants for the fixed 32-team double-elimination format.
const (
	RequiredTeams = 32
	TotalMatches  = 63
)

// Generator produces the complete match graph for one tournament group.
// Implementations must be pure: no I/O, no shared state, and identical
// output for identical inputs, so replayed notifications regenerate the
// exact same ids.
type Generator interface {
	GenerateMatches(tournamentID, groupID string) ([]models.Match, error)

	GetName() string
}
