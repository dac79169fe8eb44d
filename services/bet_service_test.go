package services

import (
	"context"
	"testing"

	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bettableMatch() *models.Match {
	return &models.Match{
		ID:               1,
		TournamentID:     7,
		TeamAID:          intPtr(10),
		TeamBID:          intPtr(20),
		Status:           models.MatchStatusScheduled,
		IsBettingEnabled: true,
	}
}

func TestPlaceBet(t *testing.T) {
	tests := []struct {
		name    string
		match   *models.Match
		format  string
		input   PlaceBetInput
		wantErr error
	}{
		{
			name:   "valid bet",
			match:  bettableMatch(),
			format: "bo5",
			input:  PlaceBetInput{MatchID: 1, PredictedWinnerID: 10, PredictedScoreA: 3, PredictedScoreB: 1},
		},
		{
			name: "betting disabled",
			match: func() *models.Match {
				m := bettableMatch()
				m.IsBettingEnabled = false
				return m
			}(),
			format:  "bo5",
			input:   PlaceBetInput{MatchID: 1, PredictedWinnerID: 10, PredictedScoreA: 3, PredictedScoreB: 1},
			wantErr: ErrBettingClosed,
		},
		{
			name: "match already live",
			match: func() *models.Match {
				m := bettableMatch()
				m.Status = models.MatchStatusLive
				return m
			}(),
			format:  "bo5",
			input:   PlaceBetInput{MatchID: 1, PredictedWinnerID: 10, PredictedScoreA: 3, PredictedScoreB: 1},
			wantErr: ErrBettingClosed,
		},
		{
			name: "slots not seeded yet",
			match: func() *models.Match {
				m := bettableMatch()
				m.TeamBID = nil
				return m
			}(),
			format:  "bo5",
			input:   PlaceBetInput{MatchID: 1, PredictedWinnerID: 10, PredictedScoreA: 3, PredictedScoreB: 1},
			wantErr: ErrSlotsNotSeeded,
		},
		{
			name:    "predicted winner not in match",
			match:   bettableMatch(),
			format:  "bo5",
			input:   PlaceBetInput{MatchID: 1, PredictedWinnerID: 99, PredictedScoreA: 3, PredictedScoreB: 1},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "score impossible for format",
			match:   bettableMatch(),
			format:  "bo3",
			input:   PlaceBetInput{MatchID: 1, PredictedWinnerID: 10, PredictedScoreA: 3, PredictedScoreB: 1},
			wantErr: ErrInvalidScore,
		},
		{
			name:    "winner contradicts score",
			match:   bettableMatch(),
			format:  "bo5",
			input:   PlaceBetInput{MatchID: 1, PredictedWinnerID: 20, PredictedScoreA: 3, PredictedScoreB: 1},
			wantErr: ErrInvalidPrediction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matchRepo := &fakeMatchRepo{
				GetByIDFunc: func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
					return tt.match, nil
				},
			}
			tournamentRepo := &fakeTournamentRepo{
				GetFormatFunc: func(ctx context.Context, id int) (string, error) {
					return tt.format, nil
				},
			}

			var saved *models.Bet
			betRepo := &fakeBetRepo{
				UpsertFunc: func(ctx context.Context, bet *models.Bet) error {
					saved = bet
					return nil
				},
			}

			svc := NewBetService(betRepo, matchRepo, tournamentRepo, &fakeAdjustmentRepo{})
			bet, err := svc.PlaceBet(context.Background(), 42, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, saved)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, saved)
			assert.Equal(t, 42, bet.UserID)
			assert.Equal(t, tt.input.PredictedWinnerID, bet.PredictedWinnerID)
			// Очки выставляет только движок, при размещении их нет.
			assert.Zero(t, bet.PointsEarned)
		})
	}
}

func TestGetOwn_AttachesAdjustmentTotal(t *testing.T) {
	betRepo := &fakeBetRepo{
		GetByUserAndMatchFunc: func(ctx context.Context, userID, matchID int) (*models.Bet, error) {
			return &models.Bet{ID: 7, UserID: userID, MatchID: matchID, PointsEarned: 2}, nil
		},
	}
	adjustmentRepo := &fakeAdjustmentRepo{
		SumForBetFunc: func(ctx context.Context, betID int) (int, error) {
			require.Equal(t, 7, betID)
			return -1, nil
		},
	}

	svc := NewBetService(betRepo, &fakeMatchRepo{}, &fakeTournamentRepo{}, adjustmentRepo)
	bet, err := svc.GetOwn(context.Background(), 42, 10)

	require.NoError(t, err)
	assert.Equal(t, 2, bet.PointsEarned)
	assert.Equal(t, -1, bet.AdjustmentPoints)
}
