package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Dosada05/tournament-brackets/brackets"
	"github.com/Dosada05/tournament-brackets/metrics"
	"github.com/Dosada05/tournament-brackets/models"
	"github.com/Dosada05/tournament-brackets/repositories"
	"github.com/Dosada05/tournament-brackets/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTournamentID = "3f0fb6a7-9f1e-4f8a-8f74-2f2fd2f5d7a1"
	testGroupID      = "b14d2a5d-4b40-4f8e-93a2-6d4800a4f6a2"
)

// generatorMock lets subtests force bad generator output without touching
// the real layout code.
type generatorMock struct {
	GenerateMatchesFunc func(tournamentID, groupID string) ([]models.Match, error)

	GenerateMatchesCalls int
}

func (g *generatorMock) GenerateMatches(tournamentID, groupID string) ([]models.Match, error) {
	g.GenerateMatchesCalls++
	if g.GenerateMatchesFunc != nil {
		return g.GenerateMatchesFunc(tournamentID, groupID)
	}
	return brackets.NewDoubleElimination().GenerateMatches(tournamentID, groupID)
}

func (g *generatorMock) GetName() string { return "mock" }

// uploaderMock records archive uploads.
type uploaderMock struct {
	UploadFunc func(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error)

	UploadCalls []struct {
		Key         string
		ContentType string
	}
}

func (u *uploaderMock) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	u.UploadCalls = append(u.UploadCalls, struct {
		Key         string
		ContentType string
	}{key, contentType})
	if u.UploadFunc != nil {
		return u.UploadFunc(ctx, key, contentType, reader)
	}
	return &storage.UploadResult{Key: key}, nil
}

func (u *uploaderMock) GetPublicURL(key string) string { return "https://cdn.test/" + key }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fullGroup() *models.Group {
	return &models.Group{
		ID:           testGroupID,
		TournamentID: testTournamentID,
		Name:         "Group A",
		TeamCount:    brackets.RequiredTeams,
	}
}

func TestBracketService_HandleRosterChange(t *testing.T) {
	ctx := context.Background()

	t.Run("full roster generates and persists a complete bracket", func(t *testing.T) {
		// Setup
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		metr := metrics.NewMock()
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return fullGroup(), nil
		}
		svc := NewBracketService(groupRepo, matchRepo, brackets.NewDoubleElimination(), nil, nil, metr, testLogger())

		// Execute
		outcome, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, OutcomeBracketCreated, outcome)
		require.Len(t, matchRepo.CreateBulkCalls, 1, "exactly one bulk insert expected")
		assert.Len(t, matchRepo.CreateBulkCalls[0], brackets.TotalMatches)
		assert.Equal(t, 1, metr.BracketsGenerated())
		assert.Len(t, metr.PersistDurations(), 1)
	})

	t.Run("incomplete roster waits without calling the generator", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		gen := &generatorMock{}
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			g := fullGroup()
			g.TeamCount = brackets.RequiredTeams - 1
			return g, nil
		}
		svc := NewBracketService(groupRepo, matchRepo, gen, nil, nil, metrics.NewMock(), testLogger())

		outcome, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		require.NoError(t, err)
		assert.Equal(t, OutcomeWaitingForTeams, outcome)
		assert.Zero(t, gen.GenerateMatchesCalls)
		assert.Empty(t, matchRepo.CreateBulkCalls)
	})

	t.Run("oversized roster also waits", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		gen := &generatorMock{}
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			g := fullGroup()
			g.TeamCount = brackets.RequiredTeams + 1
			return g, nil
		}
		svc := NewBracketService(groupRepo, matchRepo, gen, nil, nil, metrics.NewMock(), testLogger())

		outcome, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		require.NoError(t, err)
		assert.Equal(t, OutcomeWaitingForTeams, outcome)
		assert.Zero(t, gen.GenerateMatchesCalls)
	})

	t.Run("replayed notification short-circuits on existing bracket", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		gen := &generatorMock{}
		metr := metrics.NewMock()
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return fullGroup(), nil
		}
		matchRepo.ExistsForGroupFunc = func(ctx context.Context, tournamentID, groupID string) (bool, error) {
			return true, nil
		}
		svc := NewBracketService(groupRepo, matchRepo, gen, nil, nil, metr, testLogger())

		outcome, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		require.NoError(t, err)
		assert.Equal(t, OutcomeAlreadyGenerated, outcome)
		assert.Zero(t, gen.GenerateMatchesCalls, "generator must not run for an existing bracket")
		assert.Zero(t, metr.BracketsGenerated())
	})

	t.Run("unknown group resolves without error", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return nil, repositories.ErrGroupNotFound
		}
		svc := NewBracketService(groupRepo, repositories.NewMatchRepositoryMock(), &generatorMock{}, nil, nil, metrics.NewMock(), testLogger())

		outcome, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		require.NoError(t, err, "a deleted group is an expected race, not a failure")
		assert.Equal(t, OutcomeGroupNotFound, outcome)
	})

	t.Run("group lookup failure surfaces wrapped", func(t *testing.T) {
		boom := errors.New("connection reset")
		groupRepo := repositories.NewGroupRepositoryMock()
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return nil, boom
		}
		svc := NewBracketService(groupRepo, repositories.NewMatchRepositoryMock(), &generatorMock{}, nil, nil, metrics.NewMock(), testLogger())

		outcome, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, outcome)
	})

	t.Run("existence check failure surfaces wrapped", func(t *testing.T) {
		boom := errors.New("query timeout")
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return fullGroup(), nil
		}
		matchRepo.ExistsForGroupFunc = func(ctx context.Context, tournamentID, groupID string) (bool, error) {
			return false, boom
		}
		svc := NewBracketService(groupRepo, matchRepo, &generatorMock{}, nil, nil, metrics.NewMock(), testLogger())

		_, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("generator failure is a bracket invariant defect", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		gen := &generatorMock{
			GenerateMatchesFunc: func(tournamentID, groupID string) ([]models.Match, error) {
				return nil, errors.New("broken layout")
			},
		}
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return fullGroup(), nil
		}
		svc := NewBracketService(groupRepo, matchRepo, gen, nil, nil, metrics.NewMock(), testLogger())

		_, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBracketInvariant)
		assert.Empty(t, matchRepo.CreateBulkCalls, "nothing may reach storage after a generator defect")
	})

	t.Run("generator miscount is caught before storage", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		gen := &generatorMock{
			GenerateMatchesFunc: func(tournamentID, groupID string) ([]models.Match, error) {
				return make([]models.Match, brackets.TotalMatches-1), nil
			},
		}
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return fullGroup(), nil
		}
		svc := NewBracketService(groupRepo, matchRepo, gen, nil, nil, metrics.NewMock(), testLogger())

		_, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBracketInvariant)
		assert.Empty(t, matchRepo.CreateBulkCalls)
	})

	t.Run("losing the storage race reports already generated", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		metr := metrics.NewMock()
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return fullGroup(), nil
		}
		matchRepo.CreateBulkFunc = func(ctx context.Context, matches []models.Match) ([]string, error) {
			return nil, repositories.ErrBracketAlreadyExists
		}
		svc := NewBracketService(groupRepo, matchRepo, brackets.NewDoubleElimination(), nil, nil, metr, testLogger())

		outcome, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		require.NoError(t, err, "the concurrent winner owns the bracket")
		assert.Equal(t, OutcomeAlreadyGenerated, outcome)
		assert.Zero(t, metr.BracketsGenerated())
	})

	t.Run("storage failure surfaces wrapped", func(t *testing.T) {
		boom := errors.New("deadlock detected")
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return fullGroup(), nil
		}
		matchRepo.CreateBulkFunc = func(ctx context.Context, matches []models.Match) ([]string, error) {
			return nil, boom
		}
		svc := NewBracketService(groupRepo, matchRepo, brackets.NewDoubleElimination(), nil, nil, metrics.NewMock(), testLogger())

		_, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("short created count is a persistence defect", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		metr := metrics.NewMock()
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return fullGroup(), nil
		}
		matchRepo.CreateBulkFunc = func(ctx context.Context, matches []models.Match) ([]string, error) {
			return make([]string, brackets.TotalMatches-1), nil
		}
		svc := NewBracketService(groupRepo, matchRepo, brackets.NewDoubleElimination(), nil, nil, metr, testLogger())

		_, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBracketPersistence)
		assert.Zero(t, metr.BracketsGenerated())
	})

	t.Run("snapshot is archived after a successful generation", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		uploader := &uploaderMock{}
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return fullGroup(), nil
		}
		svc := NewBracketService(groupRepo, matchRepo, brackets.NewDoubleElimination(), nil, uploader, metrics.NewMock(), testLogger())

		outcome, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		require.NoError(t, err)
		assert.Equal(t, OutcomeBracketCreated, outcome)
		require.Len(t, uploader.UploadCalls, 1)
		assert.Equal(t, "brackets/"+testTournamentID+"/"+testGroupID+".json", uploader.UploadCalls[0].Key)
		assert.Equal(t, "application/json", uploader.UploadCalls[0].ContentType)
	})

	t.Run("archive failure does not fail the operation", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		metr := metrics.NewMock()
		uploader := &uploaderMock{
			UploadFunc: func(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
				return nil, errors.New("bucket unavailable")
			},
		}
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			return fullGroup(), nil
		}
		svc := NewBracketService(groupRepo, matchRepo, brackets.NewDoubleElimination(), nil, uploader, metr, testLogger())

		outcome, err := svc.HandleRosterChange(ctx, testTournamentID, testGroupID)

		require.NoError(t, err, "archiving is best effort")
		assert.Equal(t, OutcomeBracketCreated, outcome)
		assert.Equal(t, 1, metr.BracketArchiveFailures())
		assert.Equal(t, 1, metr.BracketsGenerated())
	})
}

func TestBracketService_ReconcilePendingBrackets(t *testing.T) {
	ctx := context.Background()

	t.Run("drives every pending group and survives single failures", func(t *testing.T) {
		// Setup: two complete groups, the first one fails its existence
		// check, the second one generates normally.
		failingGroupID := "0a62c9e1-58f7-4f14-9c4a-222222222222"
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		metr := metrics.NewMock()

		groupRepo.ListRosterCompleteWithoutBracketFunc = func(ctx context.Context, requiredTeams int) ([]*models.Group, error) {
			assert.Equal(t, brackets.RequiredTeams, requiredTeams)
			failing := fullGroup()
			failing.ID = failingGroupID
			return []*models.Group{failing, fullGroup()}, nil
		}
		groupRepo.FindByTournamentAndGroupFunc = func(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
			g := fullGroup()
			g.ID = groupID
			return g, nil
		}
		matchRepo.ExistsForGroupFunc = func(ctx context.Context, tournamentID, groupID string) (bool, error) {
			if groupID == failingGroupID {
				return false, errors.New("query timeout")
			}
			return false, nil
		}
		svc := NewBracketService(groupRepo, matchRepo, brackets.NewDoubleElimination(), nil, nil, metr, testLogger())

		// Execute
		err := svc.ReconcilePendingBrackets(ctx)

		// Assert
		require.NoError(t, err, "one failing group must not abort the sweep")
		require.Len(t, matchRepo.CreateBulkCalls, 1)
		assert.Equal(t, 1, metr.BracketsGenerated())
	})

	t.Run("nothing pending is a no-op", func(t *testing.T) {
		groupRepo := repositories.NewGroupRepositoryMock()
		matchRepo := repositories.NewMatchRepositoryMock()
		groupRepo.ListRosterCompleteWithoutBracketFunc = func(ctx context.Context, requiredTeams int) ([]*models.Group, error) {
			return nil, nil
		}
		svc := NewBracketService(groupRepo, matchRepo, brackets.NewDoubleElimination(), nil, nil, metrics.NewMock(), testLogger())

		err := svc.ReconcilePendingBrackets(ctx)

		require.NoError(t, err)
		assert.Empty(t, groupRepo.FindByTournamentAndGroupCalls)
	})

	t.Run("listing failure aborts the sweep", func(t *testing.T) {
		boom := errors.New("relation missing")
		groupRepo := repositories.NewGroupRepositoryMock()
		groupRepo.ListRosterCompleteWithoutBracketFunc = func(ctx context.Context, requiredTeams int) ([]*models.Group, error) {
			return nil, boom
		}
		svc := NewBracketService(groupRepo, repositories.NewMatchRepositoryMock(), brackets.NewDoubleElimination(), nil, nil, metrics.NewMock(), testLogger())

		err := svc.ReconcilePendingBrackets(ctx)

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})
}
