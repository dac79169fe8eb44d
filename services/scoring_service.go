package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/repositories"
	"github.com/Dosada05/betting-system/scoring"
)

// ScoringService пересчитывает очки по ставкам на матч. Пересчёт всегда
// полный и перезаписывающий: ввод результата заново не накапливает очки,
// а выставляет их с нуля. Ручные корректировки живут в отдельной таблице
// и пересчётом не затрагиваются.
type ScoringService interface {
	RecomputeMatch(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) ([]scoring.BetScore, error)
	ResetMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (int, error)
	RecomputeTournament(ctx context.Context, tournamentID int) (int, error)
}

type scoringService struct {
	matchRepo repositories.MatchRepository
	betRepo   repositories.BetRepository
}

func NewScoringService(matchRepo repositories.MatchRepository, betRepo repositories.BetRepository) ScoringService {
	return &scoringService{matchRepo: matchRepo, betRepo: betRepo}
}

// RecomputeMatch начисляет очки по всем ставкам на завершённый матч.
// Ошибка целостности данных (нет победителя, победитель не из пары и т.п.)
// прерывает пересчёт целиком, ни одна ставка не обновляется частично —
// вызывать внутри транзакции.
func (s *scoringService) RecomputeMatch(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) ([]scoring.BetScore, error) {
	if match.Status != models.MatchStatusFinished {
		return nil, fmt.Errorf("%w: match %d has status %s", ErrMatchNotFinished, match.ID, match.Status)
	}

	bets, err := s.betRepo.FindByMatch(ctx, exec, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bets for match %d: %w", match.ID, err)
	}

	scores := make([]scoring.BetScore, 0, len(bets))
	for _, bet := range bets {
		result, scoreErr := scoring.ScoreBet(match, bet)
		if scoreErr != nil {
			var integrity *scoring.DataIntegrityError
			if errors.As(scoreErr, &integrity) {
				return nil, fmt.Errorf("%w: %v", ErrDataIntegrity, integrity)
			}
			return nil, fmt.Errorf("failed to score bet %d: %w", bet.ID, scoreErr)
		}
		if err := s.betRepo.UpdatePoints(ctx, exec, bet.ID, result.Points, result.IsPerfectPick); err != nil {
			return nil, fmt.Errorf("failed to persist points for bet %d: %w", bet.ID, err)
		}
		scores = append(scores, result)
	}
	return scores, nil
}

// ResetMatch обнуляет начисления по всем ставкам на матч. Используется при
// отмене результата: очки привязаны к результату, нет результата — нет очков.
func (s *scoringService) ResetMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (int, error) {
	bets, err := s.betRepo.FindByMatch(ctx, exec, matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to load bets for match %d: %w", matchID, err)
	}
	for _, bet := range bets {
		if err := s.betRepo.UpdatePoints(ctx, exec, bet.ID, 0, false); err != nil {
			return 0, fmt.Errorf("failed to reset points for bet %d: %w", bet.ID, err)
		}
	}
	return len(bets), nil
}

// RecomputeTournament пересчитывает очки по всем завершённым матчам турнира.
// Матчи с нарушенной целостностью пропускаются с логом, остальные
// пересчитываются; возвращает число пересчитанных матчей.
func (s *scoringService) RecomputeTournament(ctx context.Context, tournamentID int) (int, error) {
	matches, err := s.matchRepo.ListFinished(ctx, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to list finished matches for tournament %d: %w", tournamentID, err)
	}

	recomputed := 0
	for _, match := range matches {
		if _, err := s.RecomputeMatch(ctx, nil, match); err != nil {
			if errors.Is(err, ErrDataIntegrity) {
				log.Printf("Skipping recompute for match %d: %v", match.ID, err)
				continue
			}
			return recomputed, err
		}
		recomputed++
	}
	return recomputed, nil
}
