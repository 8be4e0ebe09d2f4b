package handlers

import (
	"context"
	"errors"

	"github.com/Dosada05/tournament-brackets/models"
	"github.com/Dosada05/tournament-brackets/services"
)

// Hand-rolled service mocks for handler tests. Only the funcs a test sets
// are callable; everything else fails loudly.

type groupServiceMock struct {
	CreateGroupFunc func(ctx context.Context, tournamentID string, input services.CreateGroupInput) (*models.Group, error)
	GetGroupFunc    func(ctx context.Context, tournamentID, groupID string) (*models.Group, error)
	ListGroupsFunc  func(ctx context.Context, tournamentID string) ([]*models.Group, error)
	AddTeamFunc     func(ctx context.Context, tournamentID, groupID, teamID string) (*models.Group, error)
	ListRosterFunc  func(ctx context.Context, tournamentID, groupID string) ([]*models.Team, error)

	AddTeamCalls []struct {
		TournamentID string
		GroupID      string
		TeamID       string
	}
}

func (m *groupServiceMock) CreateGroup(ctx context.Context, tournamentID string, input services.CreateGroupInput) (*models.Group, error) {
	if m.CreateGroupFunc != nil {
		return m.CreateGroupFunc(ctx, tournamentID, input)
	}
	return nil, errors.New("CreateGroup not configured")
}

func (m *groupServiceMock) GetGroup(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
	if m.GetGroupFunc != nil {
		return m.GetGroupFunc(ctx, tournamentID, groupID)
	}
	return nil, errors.New("GetGroup not configured")
}

func (m *groupServiceMock) ListGroups(ctx context.Context, tournamentID string) ([]*models.Group, error) {
	if m.ListGroupsFunc != nil {
		return m.ListGroupsFunc(ctx, tournamentID)
	}
	return nil, errors.New("ListGroups not configured")
}

func (m *groupServiceMock) AddTeam(ctx context.Context, tournamentID, groupID, teamID string) (*models.Group, error) {
	m.AddTeamCalls = append(m.AddTeamCalls, struct {
		TournamentID string
		GroupID      string
		TeamID       string
	}{tournamentID, groupID, teamID})
	if m.AddTeamFunc != nil {
		return m.AddTeamFunc(ctx, tournamentID, groupID, teamID)
	}
	return nil, errors.New("AddTeam not configured")
}

func (m *groupServiceMock) ListRoster(ctx context.Context, tournamentID, groupID string) ([]*models.Team, error) {
	if m.ListRosterFunc != nil {
		return m.ListRosterFunc(ctx, tournamentID, groupID)
	}
	return nil, errors.New("ListRoster not configured")
}

type matchServiceMock struct {
	GetBracketFunc func(ctx context.Context, tournamentID, groupID string) ([]*models.Match, error)
	GetMatchFunc   func(ctx context.Context, id string) (*models.Match, error)
}

func (m *matchServiceMock) GetBracket(ctx context.Context, tournamentID, groupID string) ([]*models.Match, error) {
	if m.GetBracketFunc != nil {
		return m.GetBracketFunc(ctx, tournamentID, groupID)
	}
	return nil, errors.New("GetBracket not configured")
}

func (m *matchServiceMock) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(ctx, id)
	}
	return nil, errors.New("GetMatch not configured")
}

var (
	_ services.GroupService = (*groupServiceMock)(nil)
	_ services.MatchService = (*matchServiceMock)(nil)
)
