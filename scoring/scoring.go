// Package scoring реализует чистый скоринговый движок: превращение
// итогового счёта матча и прогноза ставки в начисленные очки. Никакого
// состояния и I/O — функции полностью детерминированы и повторно
// применимы к одному и тому же результату (идемпотентность пересчёта).
package scoring

import (
	"fmt"
	"strings"

	"github.com/Dosada05/betting-system/models"
)

// Константы политики начисления. Тарифы не складываются: начисляется
// максимальный применимый.
const (
	PerfectScorePoints  = 5
	CorrectWinnerPoints = 2

	defaultBestOf = 5
)

// Reason объясняет, почему ставка получила именно столько очков.
type Reason string

const (
	ReasonPerfectPick       Reason = "perfect_pick"
	ReasonCorrectWinner     Reason = "correct_winner"
	ReasonWrongPrediction   Reason = "wrong_prediction"
	ReasonInvalidPrediction Reason = "invalid_prediction"
)

// BetScore — результат скоринга одной ставки.
type BetScore struct {
	BetID         int
	Points        int
	IsPerfectPick bool
	Reason        Reason
}

// DataIntegrityError — завершённый матч находится в состоянии, из которого
// нельзя корректно начислить очки (нет победителя, победитель не совпадает
// ни с одной из команд, нет счёта). Не подменяется нулевым начислением.
type DataIntegrityError struct {
	MatchID int
	Detail  string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("match %d: data integrity violation: %s", e.MatchID, e.Detail)
}

// ParseBestOf извлекает best-of-N из строки формата турнира: ищет подстроки
// bo1/bo3/bo5/bo7 без учёта регистра, по умолчанию bo5.
func ParseBestOf(format string) int {
	f := strings.ToLower(format)
	switch {
	case strings.Contains(f, "bo1"):
		return 1
	case strings.Contains(f, "bo3"):
		return 3
	case strings.Contains(f, "bo5"):
		return 5
	case strings.Contains(f, "bo7"):
		return 7
	default:
		return defaultBestOf
	}
}

// WinsNeeded — число карт для победы: ceil(bestOf/2).
func WinsNeeded(bestOf int) int {
	return (bestOf + 1) / 2
}

// ValidateFinalScore проверяет, что итоговый счёт согласован с форматом:
// ровно одна сторона на пороге побед, другая строго меньше, обе неотрицательны.
func ValidateFinalScore(scoreA, scoreB, bestOf int) error {
	needed := WinsNeeded(bestOf)
	if scoreA < 0 || scoreB < 0 {
		return fmt.Errorf("scores must be non-negative, got %d-%d", scoreA, scoreB)
	}
	aWon := scoreA == needed && scoreB < needed
	bWon := scoreB == needed && scoreA < needed
	if !aWon && !bWon {
		return fmt.Errorf("score %d-%d is not a valid bo%d result (exactly one side must reach %d)", scoreA, scoreB, bestOf, needed)
	}
	return nil
}

// ScoreBet начисляет очки по одной ставке на завершённый матч.
//
// Возвращает DataIntegrityError, если матч завершён, но победитель не
// разрешим — такие матчи должны попадать к оператору, а не молча
// оцениваться в ноль. Ставка на команду, которой больше нет в матче
// (поздний пересев сетки), — не ошибка: 0 очков с ReasonInvalidPrediction.
func ScoreBet(match *models.Match, bet *models.Bet) (BetScore, error) {
	score := BetScore{BetID: bet.ID}

	if match.Status != models.MatchStatusFinished {
		return score, &DataIntegrityError{MatchID: match.ID, Detail: fmt.Sprintf("cannot score bets on a match with status %q", match.Status)}
	}
	if match.TeamAID == nil || match.TeamBID == nil {
		return score, &DataIntegrityError{MatchID: match.ID, Detail: "finished match has unassigned participant slot"}
	}
	if match.WinnerID == nil {
		return score, &DataIntegrityError{MatchID: match.ID, Detail: "finished match has no winner"}
	}
	if *match.WinnerID != *match.TeamAID && *match.WinnerID != *match.TeamBID {
		return score, &DataIntegrityError{MatchID: match.ID, Detail: fmt.Sprintf("winner %d is neither team %d nor team %d", *match.WinnerID, *match.TeamAID, *match.TeamBID)}
	}
	if match.ScoreA == nil || match.ScoreB == nil {
		return score, &DataIntegrityError{MatchID: match.ID, Detail: "finished match has no recorded score"}
	}

	if !match.HasTeam(bet.PredictedWinnerID) {
		// Устаревшая ставка: предсказанная команда уже не участвует.
		score.Reason = ReasonInvalidPrediction
		return score, nil
	}

	winnerCorrect := bet.PredictedWinnerID == *match.WinnerID
	// Счёт сверяется по идентичности сторон A/B, а не победитель/проигравший.
	scoreExact := bet.PredictedScoreA == *match.ScoreA && bet.PredictedScoreB == *match.ScoreB

	switch {
	case winnerCorrect && scoreExact:
		score.Points = PerfectScorePoints
		score.IsPerfectPick = true
		score.Reason = ReasonPerfectPick
	case winnerCorrect:
		score.Points = CorrectWinnerPoints
		score.Reason = ReasonCorrectWinner
	default:
		score.Reason = ReasonWrongPrediction
	}
	return score, nil
}
