package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/repositories"
	"github.com/Dosada05/betting-system/scoring"
)

// PlaceBetInput — прогноз пользователя. Счёт привязан к сторонам A/B
// матча, а не к победителю.
type PlaceBetInput struct {
	MatchID           int `json:"match_id"`
	PredictedWinnerID int `json:"predicted_winner_id"`
	PredictedScoreA   int `json:"predicted_score_a"`
	PredictedScoreB   int `json:"predicted_score_b"`
}

type BetService interface {
	PlaceBet(ctx context.Context, userID int, input PlaceBetInput) (*models.Bet, error)
	GetOwn(ctx context.Context, userID, matchID int) (*models.Bet, error)
	ListByUser(ctx context.Context, userID int, tournamentID *int) ([]*models.Bet, error)
}

type betService struct {
	betRepo        repositories.BetRepository
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	adjustmentRepo repositories.AdjustmentRepository
}

func NewBetService(
	betRepo repositories.BetRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	adjustmentRepo repositories.AdjustmentRepository,
) BetService {
	return &betService{
		betRepo:        betRepo,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		adjustmentRepo: adjustmentRepo,
	}
}

// PlaceBet создаёт ставку или заменяет прогноз существующей. Ставить можно
// только на запланированный матч с открытым приёмом ставок и уже
// заполненными слотами; прогноз должен быть внутренне согласован
// (предсказанный победитель — участник матча, его сторона набирает
// победный счёт формата).
func (s *betService) PlaceBet(ctx context.Context, userID int, input PlaceBetInput) (*models.Bet, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, input.MatchID)
	if err != nil {
		return nil, err
	}

	if match.Status != models.MatchStatusScheduled || !match.IsBettingEnabled {
		return nil, fmt.Errorf("%w: match %d", ErrBettingClosed, match.ID)
	}
	if match.TeamAID == nil || match.TeamBID == nil {
		return nil, fmt.Errorf("%w: match %d", ErrSlotsNotSeeded, match.ID)
	}
	if !match.HasTeam(input.PredictedWinnerID) {
		return nil, fmt.Errorf("%w: team %d is not playing in match %d", ErrValidationFailed, input.PredictedWinnerID, match.ID)
	}

	format, err := s.tournamentRepo.GetFormat(ctx, match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament format: %w", err)
	}
	bestOf := scoring.ParseBestOf(format)
	if err := scoring.ValidateFinalScore(input.PredictedScoreA, input.PredictedScoreB, bestOf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScore, err)
	}

	// Предсказанный счёт должен называть победителем ту же команду.
	scoreWinnerID := *match.TeamAID
	if input.PredictedScoreB > input.PredictedScoreA {
		scoreWinnerID = *match.TeamBID
	}
	if scoreWinnerID != input.PredictedWinnerID {
		return nil, fmt.Errorf("%w: score %d-%d favors team %d", ErrInvalidPrediction,
			input.PredictedScoreA, input.PredictedScoreB, scoreWinnerID)
	}

	bet := &models.Bet{
		UserID:            userID,
		MatchID:           input.MatchID,
		PredictedWinnerID: input.PredictedWinnerID,
		PredictedScoreA:   input.PredictedScoreA,
		PredictedScoreB:   input.PredictedScoreB,
	}
	if err := s.betRepo.Upsert(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to save bet for user %d on match %d: %w", userID, input.MatchID, err)
	}
	return bet, nil
}

func (s *betService) GetOwn(ctx context.Context, userID, matchID int) (*models.Bet, error) {
	bet, err := s.betRepo.GetByUserAndMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	total, err := s.adjustmentRepo.SumForBet(ctx, bet.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum adjustments for bet %d: %w", bet.ID, err)
	}
	bet.AdjustmentPoints = total
	return bet, nil
}

func (s *betService) ListByUser(ctx context.Context, userID int, tournamentID *int) ([]*models.Bet, error) {
	bets, err := s.betRepo.ListByUser(ctx, userID, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets for user %d: %w", userID, err)
	}
	if bets == nil {
		return []*models.Bet{}, nil
	}
	return bets, nil
}
