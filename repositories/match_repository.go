package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/Dosada05/tournament-brackets/models"
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchGroupInvalid    = errors.New("match group conflict or invalid")
	ErrBracketAlreadyExists = errors.New("bracket already exists for group")
)

type MatchRepository interface {
	CreateBulk(ctx context.Context, matches []models.Match) ([]string, error)
	ExistsForGroup(ctx context.Context, tournamentID, groupID string) (bool, error)
	ListByGroup(ctx context.Context, tournamentID, groupID string) ([]*models.Match, error)
	GetByID(ctx context.Context, id string) (*models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

// CreateBulk persists a generated bracket in a single transaction and
// returns the created ids in insertion order. The group_brackets marker
// row goes in first: its primary key is the real guard against concurrent
// duplicate generation, so the loser of that race gets
// ErrBracketAlreadyExists and no match rows.
func (r *postgresMatchRepository) CreateBulk(ctx context.Context, matches []models.Match) ([]string, error) {
	if len(matches) == 0 {
		return nil, errors.New("no matches to create")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CreateBulk failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	marker := `INSERT INTO group_brackets (tournament_id, group_id) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, marker, matches[0].TournamentID, matches[0].GroupID); err != nil {
		return nil, r.handleMatchError(err)
	}

	var query strings.Builder
	query.WriteString(`
		INSERT INTO matches
			(id, tournament_id, group_id, bracket, round_number, match_number,
			 status, next_match_winner_id, next_match_loser_id, is_grand_final, is_bracket_reset)
		VALUES `)

	const fieldsPerMatch = 11
	args := make([]interface{}, 0, len(matches)*fieldsPerMatch)
	for i, m := range matches {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("(")
		for p := 1; p <= fieldsPerMatch; p++ {
			if p > 1 {
				query.WriteString(", ")
			}
			query.WriteString("$")
			query.WriteString(strconv.Itoa(i*fieldsPerMatch + p))
		}
		query.WriteString(")")
		args = append(args,
			m.ID,
			m.TournamentID,
			m.GroupID,
			m.Bracket,
			m.Round,
			m.MatchNumber,
			m.Status,
			m.NextMatchWinnerID,
			m.NextMatchLoserID,
			m.IsGrandFinal,
			m.IsBracketReset,
		)
	}
	query.WriteString(" RETURNING id")

	rows, err := tx.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, r.handleMatchError(err)
	}

	ids := make([]string, 0, len(matches))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("CreateBulk failed to scan returned id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("CreateBulk rows iteration: %w", err)
	}
	rows.Close()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CreateBulk failed to commit: %w", err)
	}
	committed = true
	return ids, nil
}

func (r *postgresMatchRepository) ExistsForGroup(ctx context.Context, tournamentID, groupID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM matches WHERE tournament_id = $1 AND group_id = $2)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, tournamentID, groupID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check matches for group %s: %w", groupID, err)
	}
	return exists, nil
}

func (r *postgresMatchRepository) ListByGroup(ctx context.Context, tournamentID, groupID string) ([]*models.Match, error) {
	// bracket DESC puts winners ahead of losers; the grand final stays last
	// of the winners rounds by round number.
	query := `
		SELECT id, tournament_id, group_id, bracket, round_number, match_number,
		       status, next_match_winner_id, next_match_loser_id, is_grand_final, is_bracket_reset, created_at
		FROM matches
		WHERE tournament_id = $1 AND group_id = $2
		ORDER BY bracket DESC, round_number ASC, match_number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for group %s: %w", groupID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(
			&m.ID,
			&m.TournamentID,
			&m.GroupID,
			&m.Bracket,
			&m.Round,
			&m.MatchNumber,
			&m.Status,
			&m.NextMatchWinnerID,
			&m.NextMatchLoserID,
			&m.IsGrandFinal,
			&m.IsBracketReset,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `
		SELECT id, tournament_id, group_id, bracket, round_number, match_number,
		       status, next_match_winner_id, next_match_loser_id, is_grand_final, is_bracket_reset, created_at
		FROM matches
		WHERE id = $1`

	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.TournamentID,
		&match.GroupID,
		&match.Bracket,
		&match.Round,
		&match.MatchNumber,
		&match.Status,
		&match.NextMatchWinnerID,
		&match.NextMatchLoserID,
		&match.IsGrandFinal,
		&match.IsBracketReset,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %s: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "group_brackets_pkey", "matches_pkey":
			// A matches_pkey conflict means deterministic ids landed twice,
			// which the marker row already rules out; both read as the same
			// duplicate-bracket condition.
			return ErrBracketAlreadyExists
		case "matches_group_id_fkey", "group_brackets_group_id_fkey":
			return ErrMatchGroupInvalid
		}
	}
	return err
}
