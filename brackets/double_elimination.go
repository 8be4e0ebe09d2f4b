package brackets

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-brackets/models"
)

// Round layout for the 32-team double-elimination bracket.
//
// Winners rounds halve every round: 31 matches. The losers bracket
// alternates receiving rounds (which take dropouts from the winners
// bracket) with consolidation rounds (which pair up losers-bracket
// survivors), so each size repeats once before halving: 30 matches.
// Two grand-final matches on top make 63 total.
var (
	winnersRoundSizes = []int{16, 8, 4, 2, 1}
	losersRoundSizes  = []int{8, 8, 4, 4, 2, 2, 1, 1}
)

const (
	grandFinalRound   = 6
	bracketResetRound = 7
)

// loserDrop describes where one winners round drops its losers: the
// receiving losers round, that round's offset in the flat losers slice,
// and whether two winners matches share one losers match (round 1 only).
type loserDrop struct {
	losersRound int
	offset      int
	halve       bool
}

// Receiving losers rounds indexed by winners round. Consolidation rounds
// 3, 5 and 7 take no dropouts, hence the gaps. Offsets follow from the
// sizes {8, 8, 4, 4, 2, 2, 1, 1}.
var loserDrops = []loserDrop{
	{losersRound: 1, offset: 0, halve: true},
	{losersRound: 2, offset: 8},
	{losersRound: 4, offset: 20},
	{losersRound: 6, offset: 26},
	{losersRound: 8, offset: 29},
}

type DoubleElimination struct{}

func NewDoubleElimination() Generator {
	return &DoubleElimination{}
}

func (g *DoubleElimination) GetName() string {
	return "DoubleElimination"
}

// GenerateMatches builds the full 63-match graph for one group: winners
// bracket (31), losers bracket (30), then grand final and bracket reset,
// in that order. Every match starts pending.
func (g *DoubleElimination) GenerateMatches(tournamentID, groupID string) ([]models.Match, error) {
	if tournamentID == "" {
		return nil, errors.New("tournament id is required")
	}
	if groupID == "" {
		return nil, errors.New("group id is required")
	}

	winners := g.buildWinners(tournamentID, groupID)
	losers := g.buildLosers(tournamentID, groupID)
	grandFinal, reset := g.buildGrandFinal(tournamentID, groupID)

	g.linkLoserPaths(winners, losers)

	// Both bracket champions converge on the first grand-final match.
	winnersFinal := grandFinal.ID
	winners[len(winners)-1].NextMatchWinnerID = &winnersFinal
	losersFinal := grandFinal.ID
	losers[len(losers)-1].NextMatchWinnerID = &losersFinal

	matches := make([]models.Match, 0, TotalMatches)
	matches = append(matches, winners...)
	matches = append(matches, losers...)
	matches = append(matches, grandFinal, reset)

	if len(matches) != TotalMatches {
		return nil, fmt.Errorf("generated %d matches, want %d", len(matches), TotalMatches)
	}
	return matches, nil
}

func (g *DoubleElimination) buildWinners(tournamentID, groupID string) []models.Match {
	matches := make([]models.Match, 0, 31)
	for r, size := range winnersRoundSizes {
		round := r + 1
		for m := 0; m < size; m++ {
			match := models.Match{
				ID:           matchID(tournamentID, models.BracketWinners, round, m),
				TournamentID: tournamentID,
				GroupID:      groupID,
				Bracket:      models.BracketWinners,
				Round:        round,
				MatchNumber:  m,
				Status:       models.MatchStatusPending,
			}
			if r < len(winnersRoundSizes)-1 {
				next := matchID(tournamentID, models.BracketWinners, round+1, m/2)
				match.NextMatchWinnerID = &next
			}
			matches = append(matches, match)
		}
	}
	return matches
}

func (g *DoubleElimination) buildLosers(tournamentID, groupID string) []models.Match {
	matches := make([]models.Match, 0, 30)
	for r, size := range losersRoundSizes {
		round := r + 1
		for m := 0; m < size; m++ {
			match := models.Match{
				ID:           matchID(tournamentID, models.BracketLosers, round, m),
				TournamentID: tournamentID,
				GroupID:      groupID,
				Bracket:      models.BracketLosers,
				Round:        round,
				MatchNumber:  m,
				Status:       models.MatchStatusPending,
			}
			if r < len(losersRoundSizes)-1 {
				// Into a same-size round (receiving) the survivor keeps its
				// slot and waits for a winners-bracket dropout; into a
				// halved round (consolidation) two survivors pair up.
				next := m
				if losersRoundSizes[r+1] < size {
					next = m / 2
				}
				id := matchID(tournamentID, models.BracketLosers, round+1, next)
				match.NextMatchWinnerID = &id
			}
			matches = append(matches, match)
		}
	}
	return matches
}

// buildGrandFinal returns the grand final and the bracket-reset match.
// The reset match is always generated; match execution skips it when the
// winners-bracket champion takes the first grand final.
func (g *DoubleElimination) buildGrandFinal(tournamentID, groupID string) (models.Match, models.Match) {
	resetID := matchID(tournamentID, models.BracketWinners, bracketResetRound, 0)

	grandFinal := models.Match{
		ID:                matchID(tournamentID, models.BracketWinners, grandFinalRound, 0),
		TournamentID:      tournamentID,
		GroupID:           groupID,
		Bracket:           models.BracketWinners,
		Round:             grandFinalRound,
		MatchNumber:       0,
		Status:            models.MatchStatusPending,
		NextMatchWinnerID: &resetID,
		IsGrandFinal:      true,
	}
	reset := models.Match{
		ID:             resetID,
		TournamentID:   tournamentID,
		GroupID:        groupID,
		Bracket:        models.BracketWinners,
		Round:          bracketResetRound,
		MatchNumber:    0,
		Status:         models.MatchStatusPending,
		IsGrandFinal:   true,
		IsBracketReset: true,
	}
	return grandFinal, reset
}

func (g *DoubleElimination) linkLoserPaths(winners, losers []models.Match) {
	offset := 0
	for r, size := range winnersRoundSizes {
		drop := loserDrops[r]
		for m := 0; m < size; m++ {
			target := m
			if drop.halve {
				target = m / 2
			}
			id := losers[drop.offset+target].ID
			winners[offset+m].NextMatchLoserID = &id
		}
		offset += size
	}
}

func matchID(tournamentID string, bracket models.BracketSide, round, matchNumber int) string {
	prefix := "W"
	if bracket == models.BracketLosers {
		prefix = "L"
	}
	return fmt.Sprintf("%s_%sR%dM%d", tournamentID, prefix, round, matchNumber)
}
