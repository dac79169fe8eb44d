package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/betting-system/models"
	"github.com/lib/pq"
)

var (
	ErrBetNotFound     = errors.New("bet not found")
	ErrBetConflict     = errors.New("bet already exists for this user and match")
	ErrBetMatchInvalid = errors.New("bet references an unknown match")
	ErrBetUserInvalid  = errors.New("bet references an unknown user")
)

const betColumns = `
	id, user_id, match_id, predicted_winner_id, predicted_score_a, predicted_score_b,
	points_earned, is_perfect_pick, is_underdog_pick, created_at, updated_at`

type BetRepository interface {
	Upsert(ctx context.Context, bet *models.Bet) error
	GetByID(ctx context.Context, id int) (*models.Bet, error)
	GetByUserAndMatch(ctx context.Context, userID, matchID int) (*models.Bet, error)
	FindByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.Bet, error)
	ListByUser(ctx context.Context, userID int, tournamentID *int) ([]*models.Bet, error)
	UpdatePoints(ctx context.Context, exec SQLExecutor, betID int, points int, isPerfectPick bool) error
}

type postgresBetRepository struct {
	db *sql.DB
}

func NewPostgresBetRepository(db *sql.DB) BetRepository {
	return &postgresBetRepository{db: db}
}

func scanBet(row interface {
	Scan(dest ...interface{}) error
}) (*models.Bet, error) {
	b := &models.Bet{}
	err := row.Scan(
		&b.ID, &b.UserID, &b.MatchID,
		&b.PredictedWinnerID, &b.PredictedScoreA, &b.PredictedScoreB,
		&b.PointsEarned, &b.IsPerfectPick, &b.IsUnderdogPick,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Upsert создаёт ставку или обновляет прогноз существующей (одна ставка на
// пару пользователь+матч). Поля очков при обновлении прогноза сбрасываются:
// их выставляет только скоринговый движок.
func (r *postgresBetRepository) Upsert(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (user_id, match_id, predicted_winner_id, predicted_score_a, predicted_score_b)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, match_id) DO UPDATE
		SET predicted_winner_id = EXCLUDED.predicted_winner_id,
		    predicted_score_a = EXCLUDED.predicted_score_a,
		    predicted_score_b = EXCLUDED.predicted_score_b,
		    points_earned = 0,
		    is_perfect_pick = FALSE,
		    updated_at = NOW()
		RETURNING id, points_earned, is_perfect_pick, is_underdog_pick, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		bet.UserID,
		bet.MatchID,
		bet.PredictedWinnerID,
		bet.PredictedScoreA,
		bet.PredictedScoreB,
	).Scan(&bet.ID, &bet.PointsEarned, &bet.IsPerfectPick, &bet.IsUnderdogPick, &bet.CreatedAt, &bet.UpdatedAt)

	return r.handleBetError(err)
}

func (r *postgresBetRepository) GetByID(ctx context.Context, id int) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`
	bet, err := scanBet(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBetNotFound
		}
		return nil, fmt.Errorf("failed to scan bet by id %d: %w", id, err)
	}
	return bet, nil
}

func (r *postgresBetRepository) GetByUserAndMatch(ctx context.Context, userID, matchID int) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE user_id = $1 AND match_id = $2`
	bet, err := scanBet(r.db.QueryRowContext(ctx, query, userID, matchID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBetNotFound
		}
		return nil, fmt.Errorf("failed to scan bet for user %d match %d: %w", userID, matchID, err)
	}
	return bet, nil
}

func (r *postgresBetRepository) FindByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.Bet, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + betColumns + ` FROM bets WHERE match_id = $1 ORDER BY id ASC`
	return r.queryBets(ctx, exec, query, matchID)
}

func (r *postgresBetRepository) ListByUser(ctx context.Context, userID int, tournamentID *int) ([]*models.Bet, error) {
	if tournamentID != nil {
		query := `
			SELECT ` + betColumns + ` FROM bets
			WHERE user_id = $1
			  AND match_id IN (SELECT id FROM matches WHERE tournament_id = $2)
			ORDER BY id ASC`
		return r.queryBets(ctx, r.db, query, userID, *tournamentID)
	}
	query := `SELECT ` + betColumns + ` FROM bets WHERE user_id = $1 ORDER BY id ASC`
	return r.queryBets(ctx, r.db, query, userID)
}

func (r *postgresBetRepository) queryBets(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Bet, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	bets := make([]*models.Bet, 0)
	for rows.Next() {
		bet, scanErr := scanBet(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan bet row: %w", scanErr)
		}
		bets = append(bets, bet)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bet rows iteration: %w", err)
	}
	return bets, nil
}

// UpdatePoints перезаписывает начисление ставки значением движка.
// Вызывается только из пересчёта; ручные корректировки живут отдельно.
func (r *postgresBetRepository) UpdatePoints(ctx context.Context, exec SQLExecutor, betID int, points int, isPerfectPick bool) error {
	if exec == nil {
		exec = r.db
	}
	query := `UPDATE bets SET points_earned = $1, is_perfect_pick = $2, updated_at = NOW() WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, points, isPerfectPick, betID)
	if err != nil {
		return r.handleBetError(err)
	}
	return checkAffectedRows(result, ErrBetNotFound)
}

func (r *postgresBetRepository) handleBetError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505": // unique_violation
			return fmt.Errorf("%w: %v", ErrBetConflict, err)
		case pqErr.Constraint == "bets_match_id_fkey":
			return fmt.Errorf("%w: %v", ErrBetMatchInvalid, err)
		case pqErr.Constraint == "bets_user_id_fkey":
			return fmt.Errorf("%w: %v", ErrBetUserInvalid, err)
		}
	}
	return err
}
