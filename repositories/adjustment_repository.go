package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/betting-system/models"
)

var ErrAdjustmentNotFound = errors.New("point adjustment not found")

// AdjustmentRepository хранит ручные корректировки очков. Скоринговый
// движок сюда не пишет: корректировки суммируются поверх пересчитанной
// базы при чтении.
type AdjustmentRepository interface {
	Create(ctx context.Context, adjustment *models.PointAdjustment) error
	SumForBet(ctx context.Context, betID int) (int, error)
	SumForUserTournament(ctx context.Context, userID, tournamentID int) (int, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.PointAdjustment, error)
}

type postgresAdjustmentRepository struct {
	db *sql.DB
}

func NewPostgresAdjustmentRepository(db *sql.DB) AdjustmentRepository {
	return &postgresAdjustmentRepository{db: db}
}

func (r *postgresAdjustmentRepository) Create(ctx context.Context, adjustment *models.PointAdjustment) error {
	query := `
		INSERT INTO point_adjustments (reference, bet_id, user_id, tournament_id, delta, reason, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		adjustment.Reference,
		adjustment.BetID,
		adjustment.UserID,
		adjustment.TournamentID,
		adjustment.Delta,
		adjustment.Reason,
		adjustment.CreatedBy,
	).Scan(&adjustment.ID, &adjustment.CreatedAt)
}

func (r *postgresAdjustmentRepository) SumForBet(ctx context.Context, betID int) (int, error) {
	var sum int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(delta), 0) FROM point_adjustments WHERE bet_id = $1`, betID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum adjustments for bet %d: %w", betID, err)
	}
	return sum, nil
}

func (r *postgresAdjustmentRepository) SumForUserTournament(ctx context.Context, userID, tournamentID int) (int, error) {
	var sum int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(delta), 0) FROM point_adjustments WHERE user_id = $1 AND tournament_id = $2`,
		userID, tournamentID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum adjustments for user %d in tournament %d: %w", userID, tournamentID, err)
	}
	return sum, nil
}

func (r *postgresAdjustmentRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.PointAdjustment, error) {
	query := `
		SELECT id, reference, bet_id, user_id, tournament_id, delta, reason, created_by, created_at
		FROM point_adjustments
		WHERE tournament_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query adjustments for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	adjustments := make([]*models.PointAdjustment, 0)
	for rows.Next() {
		a := &models.PointAdjustment{}
		if scanErr := rows.Scan(&a.ID, &a.Reference, &a.BetID, &a.UserID, &a.TournamentID, &a.Delta, &a.Reason, &a.CreatedBy, &a.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan adjustment row: %w", scanErr)
		}
		adjustments = append(adjustments, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during adjustment rows iteration: %w", err)
	}
	return adjustments, nil
}
