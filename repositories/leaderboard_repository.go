package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/betting-system/models"
)

// LeaderboardRepository считает таблицу лидеров агрегирующим запросом:
// база — начисления движка по ставкам, поверх — сумма ручных корректировок.
type LeaderboardRepository interface {
	TournamentLeaderboard(ctx context.Context, tournamentID int) ([]*models.LeaderboardEntry, error)
	GlobalLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

type postgresLeaderboardRepository struct {
	db *sql.DB
}

func NewPostgresLeaderboardRepository(db *sql.DB) LeaderboardRepository {
	return &postgresLeaderboardRepository{db: db}
}

const tournamentLeaderboardQuery = `
	WITH base AS (
		SELECT b.user_id,
		       COALESCE(SUM(b.points_earned), 0)                        AS base_points,
		       COUNT(*) FILTER (WHERE b.is_perfect_pick)                AS perfect_picks,
		       COUNT(*) FILTER (WHERE b.points_earned > 0 AND NOT b.is_perfect_pick) AS correct_winners,
		       COUNT(*)                                                 AS bets_placed
		FROM bets b
		JOIN matches m ON m.id = b.match_id
		WHERE m.tournament_id = $1
		GROUP BY b.user_id
	), adj AS (
		SELECT user_id, COALESCE(SUM(delta), 0) AS adjustment_points
		FROM point_adjustments
		WHERE tournament_id = $1
		GROUP BY user_id
	)
	SELECT u.id,
	       u.nickname,
	       COALESCE(base.base_points, 0),
	       COALESCE(adj.adjustment_points, 0),
	       COALESCE(base.base_points, 0) + COALESCE(adj.adjustment_points, 0) AS total_points,
	       COALESCE(base.perfect_picks, 0),
	       COALESCE(base.correct_winners, 0),
	       COALESCE(base.bets_placed, 0)
	FROM users u
	LEFT JOIN base ON base.user_id = u.id
	LEFT JOIN adj ON adj.user_id = u.id
	WHERE base.user_id IS NOT NULL OR adj.user_id IS NOT NULL
	ORDER BY total_points DESC, COALESCE(base.perfect_picks, 0) DESC, u.id ASC`

func (r *postgresLeaderboardRepository) TournamentLeaderboard(ctx context.Context, tournamentID int) ([]*models.LeaderboardEntry, error) {
	rows, err := r.db.QueryContext(ctx, tournamentLeaderboardQuery, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()
	return scanLeaderboard(rows)
}

const globalLeaderboardQuery = `
	WITH base AS (
		SELECT b.user_id,
		       COALESCE(SUM(b.points_earned), 0)         AS base_points,
		       COUNT(*) FILTER (WHERE b.is_perfect_pick) AS perfect_picks,
		       COUNT(*) FILTER (WHERE b.points_earned > 0 AND NOT b.is_perfect_pick) AS correct_winners,
		       COUNT(*)                                  AS bets_placed
		FROM bets b
		GROUP BY b.user_id
	), adj AS (
		SELECT user_id, COALESCE(SUM(delta), 0) AS adjustment_points
		FROM point_adjustments
		GROUP BY user_id
	)
	SELECT u.id,
	       u.nickname,
	       COALESCE(base.base_points, 0),
	       COALESCE(adj.adjustment_points, 0),
	       COALESCE(base.base_points, 0) + COALESCE(adj.adjustment_points, 0) AS total_points,
	       COALESCE(base.perfect_picks, 0),
	       COALESCE(base.correct_winners, 0),
	       COALESCE(base.bets_placed, 0)
	FROM users u
	LEFT JOIN base ON base.user_id = u.id
	LEFT JOIN adj ON adj.user_id = u.id
	WHERE base.user_id IS NOT NULL OR adj.user_id IS NOT NULL
	ORDER BY total_points DESC, COALESCE(base.perfect_picks, 0) DESC, u.id ASC
	LIMIT $1`

func (r *postgresLeaderboardRepository) GlobalLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	rows, err := r.db.QueryContext(ctx, globalLeaderboardQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query global leaderboard: %w", err)
	}
	defer rows.Close()
	return scanLeaderboard(rows)
}

func scanLeaderboard(rows *sql.Rows) ([]*models.LeaderboardEntry, error) {
	entries := make([]*models.LeaderboardEntry, 0)
	rank := 0
	for rows.Next() {
		e := &models.LeaderboardEntry{}
		if err := rows.Scan(
			&e.UserID, &e.Nickname,
			&e.BasePoints, &e.AdjustmentPoints, &e.TotalPoints,
			&e.PerfectPicks, &e.CorrectWinners, &e.BetsPlaced,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		rank++
		e.Rank = rank
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during leaderboard rows iteration: %w", err)
	}
	return entries, nil
}
