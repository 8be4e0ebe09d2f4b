package repositories

import (
	"context"
	"sync"

	"github.com/Dosada05/tournament-brackets/models"
)

// GroupRepositoryMock is a mock implementation of GroupRepository for
// testing. It is safe for concurrent use.
type GroupRepositoryMock struct {
	mu sync.Mutex

	CreateFunc                           func(ctx context.Context, exec SQLExecutor, group *models.Group) error
	FindByTournamentAndGroupFunc         func(ctx context.Context, tournamentID, groupID string) (*models.Group, error)
	ListByTournamentFunc                 func(ctx context.Context, tournamentID string) ([]*models.Group, error)
	AddTeamFunc                          func(ctx context.Context, exec SQLExecutor, groupID, teamID string) error
	ListTeamsFunc                        func(ctx context.Context, groupID string) ([]*models.Team, error)
	ListRosterCompleteWithoutBracketFunc func(ctx context.Context, requiredTeams int) ([]*models.Group, error)

	CreateCalls                   []*models.Group
	FindByTournamentAndGroupCalls []struct {
		TournamentID string
		GroupID      string
	}
	AddTeamCalls []struct {
		GroupID string
		TeamID  string
	}
}

func NewGroupRepositoryMock() *GroupRepositoryMock {
	return &GroupRepositoryMock{}
}

func (m *GroupRepositoryMock) Create(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, group)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, exec, group)
	}
	return nil
}

func (m *GroupRepositoryMock) FindByTournamentAndGroup(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
	m.mu.Lock()
	m.FindByTournamentAndGroupCalls = append(m.FindByTournamentAndGroupCalls, struct {
		TournamentID string
		GroupID      string
	}{tournamentID, groupID})
	m.mu.Unlock()
	if m.FindByTournamentAndGroupFunc != nil {
		return m.FindByTournamentAndGroupFunc(ctx, tournamentID, groupID)
	}
	return nil, ErrGroupNotFound
}

func (m *GroupRepositoryMock) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Group, error) {
	if m.ListByTournamentFunc != nil {
		return m.ListByTournamentFunc(ctx, tournamentID)
	}
	return nil, nil
}

func (m *GroupRepositoryMock) AddTeam(ctx context.Context, exec SQLExecutor, groupID, teamID string) error {
	m.mu.Lock()
	m.AddTeamCalls = append(m.AddTeamCalls, struct {
		GroupID string
		TeamID  string
	}{groupID, teamID})
	m.mu.Unlock()
	if m.AddTeamFunc != nil {
		return m.AddTeamFunc(ctx, exec, groupID, teamID)
	}
	return nil
}

func (m *GroupRepositoryMock) ListTeams(ctx context.Context, groupID string) ([]*models.Team, error) {
	if m.ListTeamsFunc != nil {
		return m.ListTeamsFunc(ctx, groupID)
	}
	return nil, nil
}

func (m *GroupRepositoryMock) ListRosterCompleteWithoutBracket(ctx context.Context, requiredTeams int) ([]*models.Group, error) {
	if m.ListRosterCompleteWithoutBracketFunc != nil {
		return m.ListRosterCompleteWithoutBracketFunc(ctx, requiredTeams)
	}
	return nil, nil
}

// MatchRepositoryMock is a mock implementation of MatchRepository for
// testing. It is safe for concurrent use.
type MatchRepositoryMock struct {
	mu sync.Mutex

	CreateBulkFunc     func(ctx context.Context, matches []models.Match) ([]string, error)
	ExistsForGroupFunc func(ctx context.Context, tournamentID, groupID string) (bool, error)
	ListByGroupFunc    func(ctx context.Context, tournamentID, groupID string) ([]*models.Match, error)
	GetByIDFunc        func(ctx context.Context, id string) (*models.Match, error)

	CreateBulkCalls [][]models.Match
}

func NewMatchRepositoryMock() *MatchRepositoryMock {
	return &MatchRepositoryMock{}
}

func (m *MatchRepositoryMock) CreateBulk(ctx context.Context, matches []models.Match) ([]string, error) {
	m.mu.Lock()
	m.CreateBulkCalls = append(m.CreateBulkCalls, matches)
	m.mu.Unlock()
	if m.CreateBulkFunc != nil {
		return m.CreateBulkFunc(ctx, matches)
	}
	ids := make([]string, len(matches))
	for i, match := range matches {
		ids[i] = match.ID
	}
	return ids, nil
}

func (m *MatchRepositoryMock) ExistsForGroup(ctx context.Context, tournamentID, groupID string) (bool, error) {
	if m.ExistsForGroupFunc != nil {
		return m.ExistsForGroupFunc(ctx, tournamentID, groupID)
	}
	return false, nil
}

func (m *MatchRepositoryMock) ListByGroup(ctx context.Context, tournamentID, groupID string) ([]*models.Match, error) {
	if m.ListByGroupFunc != nil {
		return m.ListByGroupFunc(ctx, tournamentID, groupID)
	}
	return nil, nil
}

func (m *MatchRepositoryMock) GetByID(ctx context.Context, id string) (*models.Match, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrMatchNotFound
}

// TournamentRepositoryMock is a mock implementation of TournamentRepository
// for testing.
type TournamentRepositoryMock struct {
	mu sync.Mutex

	CreateFunc  func(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByIDFunc func(ctx context.Context, id string) (*models.Tournament, error)
	ListFunc    func(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateFunc  func(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error

	CreateCalls []*models.Tournament
	UpdateCalls []*models.Tournament
}

func NewTournamentRepositoryMock() *TournamentRepositoryMock {
	return &TournamentRepositoryMock{}
}

func (m *TournamentRepositoryMock) Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, tournament)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, exec, tournament)
	}
	return nil
}

func (m *TournamentRepositoryMock) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrTournamentNotFound
}

func (m *TournamentRepositoryMock) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *TournamentRepositoryMock) Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, tournament)
	m.mu.Unlock()
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, exec, tournament)
	}
	return nil
}

// TeamRepositoryMock is a mock implementation of TeamRepository for testing.
type TeamRepositoryMock struct {
	mu sync.Mutex

	CreateFunc  func(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByIDFunc func(ctx context.Context, id string) (*models.Team, error)
	ListFunc    func(ctx context.Context, limit, offset int) ([]models.Team, error)

	CreateCalls []*models.Team
}

func NewTeamRepositoryMock() *TeamRepositoryMock {
	return &TeamRepositoryMock{}
}

func (m *TeamRepositoryMock) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, team)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, exec, team)
	}
	return nil
}

func (m *TeamRepositoryMock) GetByID(ctx context.Context, id string) (*models.Team, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrTeamNotFound
}

func (m *TeamRepositoryMock) List(ctx context.Context, limit, offset int) ([]models.Team, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}

// Interface conformance checks.
var (
	_ GroupRepository      = (*GroupRepositoryMock)(nil)
	_ MatchRepository      = (*MatchRepositoryMock)(nil)
	_ TournamentRepository = (*TournamentRepositoryMock)(nil)
	_ TeamRepository       = (*TeamRepositoryMock)(nil)
)
