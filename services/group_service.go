package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Dosada05/tournament-brackets/brackets"
	"github.com/Dosada05/tournament-brackets/metrics"
	"github.com/Dosada05/tournament-brackets/models"
	"github.com/Dosada05/tournament-brackets/repositories"
)

// RosterEventPublisher pushes roster change notifications to the broker.
// Declared here so the events package can depend on services without a cycle.
type RosterEventPublisher interface {
	PublishTeamAdded(ctx context.Context, tournamentID, groupID, teamID string) error
}

type CreateGroupInput struct {
	Name string `json:"name"`
}

type GroupService interface {
	CreateGroup(ctx context.Context, tournamentID string, input CreateGroupInput) (*models.Group, error)
	GetGroup(ctx context.Context, tournamentID, groupID string) (*models.Group, error)
	ListGroups(ctx context.Context, tournamentID string) ([]*models.Group, error)
	AddTeam(ctx context.Context, tournamentID, groupID, teamID string) (*models.Group, error)
	ListRoster(ctx context.Context, tournamentID, groupID string) ([]*models.Team, error)
}

type groupService struct {
	groupRepo      repositories.GroupRepository
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	publisher      RosterEventPublisher
	metrics        metrics.Metrics
	logger         *slog.Logger
}

// NewGroupService wires the roster write side. publisher may be nil when the
// broker is not configured; roster changes then rely on the reconcile sweep.
func NewGroupService(
	groupRepo repositories.GroupRepository,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	publisher RosterEventPublisher,
	m metrics.Metrics,
	logger *slog.Logger,
) GroupService {
	return &groupService{
		groupRepo:      groupRepo,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		publisher:      publisher,
		metrics:        m,
		logger:         logger,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, tournamentID string, input CreateGroupInput) (*models.Group, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrGroupNameEmpty
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrTournamentNotOpen
	}

	group := &models.Group{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		Name:         name,
	}

	if err := s.groupRepo.Create(ctx, nil, group); err != nil {
		switch {
		case errors.Is(err, repositories.ErrGroupNameConflict):
			return nil, ErrGroupNameConflict
		case errors.Is(err, repositories.ErrGroupTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to create group in tournament %s: %w", tournamentID, err)
	}
	return group, nil
}

func (s *groupService) GetGroup(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
	group, err := s.groupRepo.FindByTournamentAndGroup(ctx, tournamentID, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group %s: %w", groupID, err)
	}
	return group, nil
}

func (s *groupService) ListGroups(ctx context.Context, tournamentID string) ([]*models.Group, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}

	groups, err := s.groupRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for tournament %s: %w", tournamentID, err)
	}
	return groups, nil
}

// AddTeam inserts a team into a group roster and notifies the broker. The
// capacity check is advisory; the bracket watcher tolerates rosters that
// slip past it under concurrency.
func (s *groupService) AddTeam(ctx context.Context, tournamentID, groupID, teamID string) (*models.Group, error) {
	group, err := s.groupRepo.FindByTournamentAndGroup(ctx, tournamentID, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group %s: %w", groupID, err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrTournamentNotOpen
	}

	if group.TeamCount >= brackets.RequiredTeams {
		return nil, ErrGroupFull
	}

	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", teamID, err)
	}

	if err := s.groupRepo.AddTeam(ctx, nil, groupID, teamID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamAlreadyInGroup):
			return nil, ErrTeamAlreadyInGroup
		case errors.Is(err, repositories.ErrGroupNotFound):
			return nil, ErrGroupNotFound
		case errors.Is(err, repositories.ErrGroupTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to add team %s to group %s: %w", teamID, groupID, err)
	}
	group.TeamCount++

	s.publishTeamAdded(ctx, tournamentID, groupID, teamID)

	return group, nil
}

func (s *groupService) ListRoster(ctx context.Context, tournamentID, groupID string) ([]*models.Team, error) {
	if _, err := s.groupRepo.FindByTournamentAndGroup(ctx, tournamentID, groupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group %s: %w", groupID, err)
	}

	teams, err := s.groupRepo.ListTeams(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster for group %s: %w", groupID, err)
	}
	return teams, nil
}

// publishTeamAdded is best effort. The roster row is already committed; if
// the notification never reaches the broker the reconcile sweep picks the
// group up later.
func (s *groupService) publishTeamAdded(ctx context.Context, tournamentID, groupID, teamID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTeamAdded(ctx, tournamentID, groupID, teamID); err != nil {
		s.metrics.IncEventPublishFailure()
		s.logger.Error("failed to publish team added event",
			slog.String("tournament_id", tournamentID),
			slog.String("group_id", groupID),
			slog.String("team_id", teamID),
			slog.Any("error", err))
	}
}
