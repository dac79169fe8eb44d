package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/betting-system/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTeamInvalid       = errors.New("match references an unknown team")
	ErrMatchTournamentInvalid = errors.New("match references an unknown tournament")
)

const matchColumns = `
	id, tournament_id, bracket_side, round_index, display_order,
	team_a_id, team_b_id,
	team_a_prev_match_id, team_a_prev_result, team_b_prev_match_id, team_b_prev_result,
	status, score_a, score_b, winner_id,
	is_betting_enabled, start_time, created_at,
	next_match_winner_id, next_match_loser_id, next_match_winner_slot`

// MatchSlotUpdate — присвоение одного слота, выполняемое резолвером
// продвижения. Slot = 1 (сторона A) или 2 (сторона B).
type MatchSlotUpdate struct {
	MatchID int
	Slot    int
	TeamID  *int
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, side *models.BracketSide, roundIndex *int) ([]*models.Match, error)
	ListFinished(ctx context.Context, tournamentID int) ([]*models.Match, error)
	FindDependents(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.Match, error)
	UpdateSlot(ctx context.Context, exec SQLExecutor, update MatchSlotUpdate) error
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, scoreA, scoreB int, winnerID int, status models.MatchStatus) error
	ClearResult(ctx context.Context, exec SQLExecutor, id int) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error
	SetBettingEnabled(ctx context.Context, id int, enabled bool) error
	UpdateNextMatchInfo(ctx context.Context, exec SQLExecutor, matchID int, nextWinnerID, nextLoserID, nextWinnerSlot *int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func scanMatch(row interface {
	Scan(dest ...interface{}) error
}) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.BracketSide, &m.RoundIndex, &m.DisplayOrder,
		&m.TeamAID, &m.TeamBID,
		&m.TeamAPrevMatchID, &m.TeamAPrevResult, &m.TeamBPrevMatchID, &m.TeamBPrevResult,
		&m.Status, &m.ScoreA, &m.ScoreB, &m.WinnerID,
		&m.IsBettingEnabled, &m.StartTime, &m.CreatedAt,
		&m.NextMatchWinnerID, &m.NextMatchLoserID, &m.NextMatchWinnerSlot,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO matches
			(tournament_id, bracket_side, round_index, display_order,
			 team_a_id, team_b_id,
			 team_a_prev_match_id, team_a_prev_result, team_b_prev_match_id, team_b_prev_result,
			 status, is_betting_enabled, start_time,
			 next_match_winner_id, next_match_loser_id, next_match_winner_slot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.BracketSide,
		match.RoundIndex,
		match.DisplayOrder,
		match.TeamAID,
		match.TeamBID,
		match.TeamAPrevMatchID,
		match.TeamAPrevResult,
		match.TeamBPrevMatchID,
		match.TeamBPrevResult,
		match.Status,
		match.IsBettingEnabled,
		match.StartTime,
		match.NextMatchWinnerID,
		match.NextMatchLoserID,
		match.NextMatchWinnerSlot,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, side *models.BracketSide, roundIndex *int) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholderIndex := 2

	if side != nil {
		queryBuilder.WriteString(" AND bracket_side = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *side)
		placeholderIndex++
	}
	if roundIndex != nil {
		queryBuilder.WriteString(" AND round_index = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *roundIndex)
	}

	queryBuilder.WriteString(" ORDER BY round_index ASC, bracket_side ASC, display_order ASC, id ASC")

	return r.queryMatches(ctx, r.db, queryBuilder.String(), args...)
}

func (r *postgresMatchRepository) ListFinished(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id = $1 AND status = $2
		ORDER BY round_index ASC, display_order ASC, id ASC`
	return r.queryMatches(ctx, r.db, query, tournamentID, models.MatchStatusFinished)
}

func (r *postgresMatchRepository) FindDependents(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.Match, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE team_a_prev_match_id = $1 OR team_b_prev_match_id = $1
		ORDER BY round_index ASC, display_order ASC, id ASC`
	return r.queryMatches(ctx, exec, query, matchID)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateSlot(ctx context.Context, exec SQLExecutor, update MatchSlotUpdate) error {
	if exec == nil {
		exec = r.db
	}
	var column string
	switch update.Slot {
	case 1:
		column = "team_a_id"
	case 2:
		column = "team_b_id"
	default:
		return fmt.Errorf("invalid slot %d for match %d (expected 1 or 2)", update.Slot, update.MatchID)
	}

	query := fmt.Sprintf(`UPDATE matches SET %s = $1 WHERE id = $2`, column)
	result, err := exec.ExecContext(ctx, query, update.TeamID, update.MatchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, scoreA, scoreB int, winnerID int, status models.MatchStatus) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		UPDATE matches
		SET score_a = $1, score_b = $2, winner_id = $3, status = $4
		WHERE id = $5`
	result, err := exec.ExecContext(ctx, query, scoreA, scoreB, winnerID, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ClearResult(ctx context.Context, exec SQLExecutor, id int) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		UPDATE matches
		SET score_a = NULL, score_b = NULL, winner_id = NULL, status = $1
		WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, models.MatchStatusScheduled, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error {
	if exec == nil {
		exec = r.db
	}
	query := `UPDATE matches SET status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetBettingEnabled(ctx context.Context, id int, enabled bool) error {
	query := `UPDATE matches SET is_betting_enabled = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, enabled, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateNextMatchInfo(ctx context.Context, exec SQLExecutor, matchID int, nextWinnerID, nextLoserID, nextWinnerSlot *int) error {
	if exec == nil {
		exec = r.db
	}
	query := `UPDATE matches SET next_match_winner_id = $1, next_match_loser_id = $2, next_match_winner_slot = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, nextWinnerID, nextLoserID, nextWinnerSlot, matchID)
	if err != nil {
		return fmt.Errorf("UpdateNextMatchInfo: failed to execute query for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "matches_team_a_id_fkey"), strings.Contains(msg, "matches_team_b_id_fkey"), strings.Contains(msg, "matches_winner_id_fkey"):
		return fmt.Errorf("%w: %v", ErrMatchTeamInvalid, err)
	case strings.Contains(msg, "matches_tournament_id_fkey"):
		return fmt.Errorf("%w: %v", ErrMatchTournamentInvalid, err)
	default:
		return err
	}
}
