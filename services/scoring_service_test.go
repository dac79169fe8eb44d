package services

import (
	"context"
	"testing"

	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/repositories"
	"github.com/Dosada05/betting-system/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pointsWrite struct {
	betID   int
	points  int
	perfect bool
}

func TestRecomputeMatch_OverwritesPoints(t *testing.T) {
	match := finishedMatch(1, 10, 20, 10) // 3:1 в пользу 10

	bets := []*models.Bet{
		// Точный счёт; очки, оставшиеся от прошлого пересчёта, должны
		// быть перезаписаны, а не добавлены.
		{ID: 100, MatchID: 1, PredictedWinnerID: 10, PredictedScoreA: 3, PredictedScoreB: 1, PointsEarned: 2},
		// Верный победитель, неверный счёт
		{ID: 101, MatchID: 1, PredictedWinnerID: 10, PredictedScoreA: 3, PredictedScoreB: 0},
		// Мимо
		{ID: 102, MatchID: 1, PredictedWinnerID: 20, PredictedScoreA: 1, PredictedScoreB: 3, PointsEarned: 5, IsPerfectPick: true},
	}

	var writes []pointsWrite
	betRepo := &fakeBetRepo{
		FindByMatchFunc: func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Bet, error) {
			return bets, nil
		},
		UpdatePointsFunc: func(ctx context.Context, exec repositories.SQLExecutor, betID int, points int, isPerfectPick bool) error {
			writes = append(writes, pointsWrite{betID: betID, points: points, perfect: isPerfectPick})
			return nil
		},
	}

	svc := NewScoringService(&fakeMatchRepo{}, betRepo)
	scores, err := svc.RecomputeMatch(context.Background(), nil, match)

	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, []pointsWrite{
		{betID: 100, points: scoring.PerfectScorePoints, perfect: true},
		{betID: 101, points: scoring.CorrectWinnerPoints, perfect: false},
		{betID: 102, points: 0, perfect: false},
	}, writes)
}

func TestRecomputeMatch_IntegrityErrorAbortsWithoutWrites(t *testing.T) {
	match := finishedMatch(1, 10, 20, 10)
	match.WinnerID = nil // завершён без победителя

	betRepo := &fakeBetRepo{
		FindByMatchFunc: func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Bet, error) {
			return []*models.Bet{{ID: 100, MatchID: 1, PredictedWinnerID: 10, PredictedScoreA: 3, PredictedScoreB: 1}}, nil
		},
		UpdatePointsFunc: func(ctx context.Context, exec repositories.SQLExecutor, betID int, points int, isPerfectPick bool) error {
			t.Fatal("no points must be written on integrity violation")
			return nil
		},
	}

	_, err := NewScoringService(&fakeMatchRepo{}, betRepo).RecomputeMatch(context.Background(), nil, match)
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestRecomputeMatch_RejectsUnfinished(t *testing.T) {
	match := &models.Match{ID: 1, Status: models.MatchStatusScheduled}
	_, err := NewScoringService(&fakeMatchRepo{}, &fakeBetRepo{}).RecomputeMatch(context.Background(), nil, match)
	assert.ErrorIs(t, err, ErrMatchNotFinished)
}

func TestResetMatch_ZeroesAllBets(t *testing.T) {
	var writes []pointsWrite
	betRepo := &fakeBetRepo{
		FindByMatchFunc: func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Bet, error) {
			return []*models.Bet{
				{ID: 100, PointsEarned: 5, IsPerfectPick: true},
				{ID: 101, PointsEarned: 2},
			}, nil
		},
		UpdatePointsFunc: func(ctx context.Context, exec repositories.SQLExecutor, betID int, points int, isPerfectPick bool) error {
			writes = append(writes, pointsWrite{betID: betID, points: points, perfect: isPerfectPick})
			return nil
		},
	}

	n, err := NewScoringService(&fakeMatchRepo{}, betRepo).ResetMatch(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []pointsWrite{{betID: 100}, {betID: 101}}, writes)
}

func TestRecomputeTournament_SkipsIntegrityFaults(t *testing.T) {
	good := finishedMatch(1, 10, 20, 10)
	broken := finishedMatch(2, 30, 40, 30)
	broken.WinnerID = intPtr(99) // победитель не из пары

	matchRepo := &fakeMatchRepo{
		ListFinishedFunc: func(ctx context.Context, tournamentID int) ([]*models.Match, error) {
			return []*models.Match{good, broken}, nil
		},
	}
	betRepo := &fakeBetRepo{
		FindByMatchFunc: func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Bet, error) {
			return []*models.Bet{{ID: 100 + matchID, MatchID: matchID, PredictedWinnerID: 10, PredictedScoreA: 3, PredictedScoreB: 1}}, nil
		},
	}

	recomputed, err := NewScoringService(matchRepo, betRepo).RecomputeTournament(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, recomputed)
}
