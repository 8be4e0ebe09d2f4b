package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tournament-brackets/models"
	"github.com/Dosada05/tournament-brackets/repositories"
)

type MatchService interface {
	GetBracket(ctx context.Context, tournamentID, groupID string) ([]*models.Match, error)
	GetMatch(ctx context.Context, id string) (*models.Match, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	groupRepo repositories.GroupRepository
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	groupRepo repositories.GroupRepository,
) MatchService {
	return &matchService{
		matchRepo: matchRepo,
		groupRepo: groupRepo,
	}
}

// GetBracket returns the persisted bracket in bracket order (winners rounds,
// losers rounds, finals come last within winners by round number). The group
// lookup and the match listing are independent reads, so they run together.
func (s *matchService) GetBracket(ctx context.Context, tournamentID, groupID string) ([]*models.Match, error) {
	var matches []*models.Match

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if _, err := s.groupRepo.FindByTournamentAndGroup(gCtx, tournamentID, groupID); err != nil {
			if errors.Is(err, repositories.ErrGroupNotFound) {
				return ErrGroupNotFound
			}
			return fmt.Errorf("failed to get group %s: %w", groupID, err)
		}
		return nil
	})

	g.Go(func() error {
		listed, err := s.matchRepo.ListByGroup(gCtx, tournamentID, groupID)
		if err != nil {
			return fmt.Errorf("failed to list matches for group %s: %w", groupID, err)
		}
		matches = listed
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *matchService) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return match, nil
}
