package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/tournament-brackets/models"
	"github.com/Dosada05/tournament-brackets/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchService_GetBracket(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored bracket for an existing group", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return fullGroup(), nil
		}
		matchRepo.ListByGroupFunc = func(ctx context.Context, tournamentID, groupID string) ([]*models.Match, error) {
			return []*models.Match{
				{ID: tournamentID + "_WR1M0", TournamentID: tournamentID, GroupID: groupID},
				{ID: tournamentID + "_WR1M1", TournamentID: tournamentID, GroupID: groupID},
			}, nil
		}
		svc := NewMatchService(matchRepo, groupRepo)

		matches, err := svc.GetBracket(ctx, testTournamentID, testGroupID)

		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, testTournamentID+"_WR1M0", matches[0].ID)
	})

	t.Run("an existing group with no bracket yields an empty list", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return fullGroup(), nil
		}
		svc := NewMatchService(matchRepo, groupRepo)

		matches, err := svc.GetBracket(ctx, testTournamentID, testGroupID)

		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("an unknown group is not found", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return nil, repositories.ErrGroupNotFound
		}
		svc := NewMatchService(matchRepo, groupRepo)

		_, err := svc.GetBracket(ctx, testTournamentID, testGroupID)

		assert.ErrorIs(t, err, ErrGroupNotFound)
	})

	t.Run("a listing failure surfaces wrapped", func(t *testing.T) {
		boom := errors.New("connection reset")
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return fullGroup(), nil
		}
		matchRepo.ListByGroupFunc = func(ctx context.Context, tournamentID, groupID string) ([]*models.Match, error) {
			return nil, boom
		}
		svc := NewMatchService(matchRepo, groupRepo)

		_, err := svc.GetBracket(ctx, testTournamentID, testGroupID)

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})
}

func TestMatchService_GetMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a stored match", func(t *testing.T) {
		matchRepo := repositories.NewMatchRepositoryMock()
		matchRepo.GetByIDFunc = func(ctx context.Context, id string) (*models.Match, error) {
			return &models.Match{ID: id, Bracket: models.BracketWinners, Round: 1}, nil
		}
		svc := NewMatchService(matchRepo, repositories.NewGroupRepositoryMock())

		match, err := svc.GetMatch(ctx, testTournamentID+"_WR1M0")

		require.NoError(t, err)
		assert.Equal(t, testTournamentID+"_WR1M0", match.ID)
	})

	t.Run("maps a missing match", func(t *testing.T) {
		svc := NewMatchService(repositories.NewMatchRepositoryMock(), repositories.NewGroupRepositoryMock())

		_, err := svc.GetMatch(ctx, "nope")

		assert.ErrorIs(t, err, ErrMatchNotFound)
	})
}
