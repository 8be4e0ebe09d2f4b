package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/tournament-brackets/models"
)

var (
	ErrGroupNotFound          = errors.New("group not found")
	ErrGroupNameConflict      = errors.New("group name already exists in tournament")
	ErrGroupTournamentInvalid = errors.New("group tournament conflict or invalid")
	ErrGroupTeamInvalid       = errors.New("group team conflict or invalid")
	ErrTeamAlreadyInGroup     = errors.New("team already in group")
)

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	FindByTournamentAndGroup(ctx context.Context, tournamentID, groupID string) (*models.Group, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Group, error)
	AddTeam(ctx context.Context, exec SQLExecutor, groupID, teamID string) error
	ListTeams(ctx context.Context, groupID string) ([]*models.Team, error)
	ListRosterCompleteWithoutBracket(ctx context.Context, requiredTeams int) ([]*models.Group, error)
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO groups (id, tournament_id, name) VALUES ($1, $2, $3) RETURNING created_at`

	err := executor.QueryRowContext(ctx, query, group.ID, group.TournamentID, group.Name).Scan(&group.CreatedAt)
	return r.handleGroupError(err)
}

func (r *postgresGroupRepository) FindByTournamentAndGroup(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
	query := `
		SELECT g.id, g.tournament_id, g.name, g.created_at,
		       (SELECT COUNT(*) FROM group_teams gt WHERE gt.group_id = g.id) AS team_count
		FROM groups g
		WHERE g.tournament_id = $1 AND g.id = $2`

	group := &models.Group{}
	err := r.db.QueryRowContext(ctx, query, tournamentID, groupID).Scan(
		&group.ID,
		&group.TournamentID,
		&group.Name,
		&group.CreatedAt,
		&group.TeamCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group %s: %w", groupID, err)
	}
	return group, nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Group, error) {
	query := `
		SELECT g.id, g.tournament_id, g.name, g.created_at,
		       (SELECT COUNT(*) FROM group_teams gt WHERE gt.group_id = g.id) AS team_count
		FROM groups g
		WHERE g.tournament_id = $1
		ORDER BY g.created_at ASC, g.name ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.TournamentID, &g.Name, &g.CreatedAt, &g.TeamCount); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during group rows iteration: %w", err)
	}
	return groups, nil
}

func (r *postgresGroupRepository) AddTeam(ctx context.Context, exec SQLExecutor, groupID, teamID string) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO group_teams (group_id, team_id) VALUES ($1, $2)`

	_, err := executor.ExecContext(ctx, query, groupID, teamID)
	return r.handleGroupError(err)
}

func (r *postgresGroupRepository) ListTeams(ctx context.Context, groupID string) ([]*models.Team, error) {
	query := `
		SELECT t.id, t.name, t.created_at
		FROM teams t
		JOIN group_teams gt ON gt.team_id = t.id
		WHERE gt.group_id = $1
		ORDER BY gt.added_at ASC, t.id ASC`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams for group %s: %w", groupID, err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

// ListRosterCompleteWithoutBracket returns groups whose roster hit the
// required size but which have no bracket marker yet. Feeds the periodic
// sweep that re-drives lost roster notifications.
func (r *postgresGroupRepository) ListRosterCompleteWithoutBracket(ctx context.Context, requiredTeams int) ([]*models.Group, error) {
	query := `
		SELECT g.id, g.tournament_id, g.name, g.created_at, COUNT(gt.team_id) AS team_count
		FROM groups g
		JOIN group_teams gt ON gt.group_id = g.id
		LEFT JOIN group_brackets gb ON gb.tournament_id = g.tournament_id AND gb.group_id = g.id
		WHERE gb.group_id IS NULL
		GROUP BY g.id, g.tournament_id, g.name, g.created_at
		HAVING COUNT(gt.team_id) = $1
		ORDER BY g.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, requiredTeams)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster-complete groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.TournamentID, &g.Name, &g.CreatedAt, &g.TeamCount); err != nil {
			return nil, fmt.Errorf("failed to scan roster-complete group row: %w", err)
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during roster-complete group rows iteration: %w", err)
	}
	return groups, nil
}

func (r *postgresGroupRepository) handleGroupError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "groups_tournament_id_name_key":
			return ErrGroupNameConflict
		case "groups_tournament_id_fkey":
			return ErrGroupTournamentInvalid
		case "group_teams_pkey":
			return ErrTeamAlreadyInGroup
		case "group_teams_group_id_fkey":
			return ErrGroupNotFound
		case "group_teams_team_id_fkey":
			return ErrGroupTeamInvalid
		}
	}
	return err
}
