package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/Dosada05/betting-system/brackets"
	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/repositories"
	"github.com/Dosada05/betting-system/scoring"
)

// FinalizeResultPayload рассылается в комнату турнира после финализации.
type FinalizeResultPayload struct {
	Match       *models.Match      `json:"match"`
	ScoredBets  int                `json:"scored_bets"`
	Propagation *PropagationResult `json:"propagation"`
}

type MatchService interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, side *models.BracketSide, roundIndex *int) ([]*models.Match, error)
	FinalizeResult(ctx context.Context, matchID, scoreA, scoreB int) (*FinalizeResultPayload, error)
	ReopenMatch(ctx context.Context, matchID int) (*models.Match, error)
	SetBettingEnabled(ctx context.Context, matchID int, enabled bool) error
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	scoring        ScoringService
	progression    ProgressionService
	hub            *brackets.Hub
	matchLocks     *keyedMutex
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	scoringService ScoringService,
	progression ProgressionService,
	hub *brackets.Hub,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		scoring:        scoringService,
		progression:    progression,
		hub:            hub,
		matchLocks:     newKeyedMutex(),
	}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachTeams(ctx, []*models.Match{match}); err != nil {
		log.Printf("Failed to attach teams to match %d: %v", id, err)
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, side *models.BracketSide, roundIndex *int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, side, roundIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	if err := s.attachTeams(ctx, matches); err != nil {
		log.Printf("Failed to attach teams for tournament %d matches: %v", tournamentID, err)
	}
	return matches, nil
}

// FinalizeResult вводит (или исправляет) итоговый счёт матча. Валидация
// счёта, запись результата, продвижение исхода в зависимые матчи и полный
// пересчёт очков по ставкам выполняются в одной транзакции: либо всё, либо
// ничего. Повторный ввод по уже завершённому матчу — это исправление:
// очки и слоты пересчитываются заново, а не накапливаются.
func (s *matchService) FinalizeResult(ctx context.Context, matchID, scoreA, scoreB int) (*FinalizeResultPayload, error) {
	unlock := s.matchLocks.Lock(matchID)
	defer unlock()

	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	if match.TeamAID == nil || match.TeamBID == nil {
		return nil, fmt.Errorf("%w: match %d", ErrSlotsNotSeeded, matchID)
	}

	format, err := s.tournamentRepo.GetFormat(ctx, match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament format: %w", err)
	}
	bestOf := scoring.ParseBestOf(format)
	if err := scoring.ValidateFinalScore(scoreA, scoreB, bestOf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScore, err)
	}

	winnerID := *match.TeamAID
	if scoreB > scoreA {
		winnerID = *match.TeamBID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	payload, txErr := s.finalizeInTx(ctx, tx, match, scoreA, scoreB, winnerID)
	if txErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Error during rollback for match %d: %v. Original error: %v", matchID, rbErr, txErr)
		}
		return nil, txErr
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit result of match %d: %w", matchID, err)
	}

	if s.hub != nil {
		s.hub.BroadcastTournament(match.TournamentID, brackets.EventMatchFinished, payload)
		if payload.ScoredBets > 0 {
			s.hub.BroadcastTournament(match.TournamentID, brackets.EventBetsScored, map[string]int{
				"match_id":    matchID,
				"scored_bets": payload.ScoredBets,
			})
		}
	}
	log.Printf("Match %d finalized %d:%d, winner %d, %d bets rescored, %d dependents updated",
		matchID, scoreA, scoreB, winnerID, payload.ScoredBets, len(payload.Propagation.UpdatedMatchIDs))
	return payload, nil
}

func (s *matchService) finalizeInTx(ctx context.Context, tx *sql.Tx, match *models.Match, scoreA, scoreB, winnerID int) (*FinalizeResultPayload, error) {
	if err := s.matchRepo.UpdateResult(ctx, tx, match.ID, scoreA, scoreB, winnerID, models.MatchStatusFinished); err != nil {
		return nil, fmt.Errorf("failed to store result of match %d: %w", match.ID, err)
	}

	updated, err := s.matchRepo.GetByID(ctx, tx, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload match %d: %w", match.ID, err)
	}

	propagation, err := s.progression.Propagate(ctx, tx, updated)
	if err != nil {
		return nil, err
	}

	scores, err := s.scoring.RecomputeMatch(ctx, tx, updated)
	if err != nil {
		return nil, err
	}

	return &FinalizeResultPayload{
		Match:       updated,
		ScoredBets:  len(scores),
		Propagation: propagation,
	}, nil
}

// ReopenMatch отменяет введённый результат: счёт и победитель очищаются,
// начисленные очки обнуляются, слоты зависимых матчей освобождаются (или
// помечаются как устаревшие, если зависимый уже начался).
func (s *matchService) ReopenMatch(ctx context.Context, matchID int) (*models.Match, error) {
	unlock := s.matchLocks.Lock(matchID)
	defer unlock()

	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusFinished {
		return nil, fmt.Errorf("%w: match %d has status %s", ErrMatchNotFinished, matchID, match.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	reopened, txErr := s.reopenInTx(ctx, tx, matchID)
	if txErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Error during rollback for match %d: %v. Original error: %v", matchID, rbErr, txErr)
		}
		return nil, txErr
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reopen of match %d: %w", matchID, err)
	}

	if s.hub != nil {
		s.hub.BroadcastTournament(reopened.TournamentID, brackets.EventBracketUpdated, reopened)
	}
	log.Printf("Match %d reopened, result cleared", matchID)
	return reopened, nil
}

func (s *matchService) reopenInTx(ctx context.Context, tx *sql.Tx, matchID int) (*models.Match, error) {
	if err := s.matchRepo.ClearResult(ctx, tx, matchID); err != nil {
		return nil, fmt.Errorf("failed to clear result of match %d: %w", matchID, err)
	}

	reopened, err := s.matchRepo.GetByID(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload match %d: %w", matchID, err)
	}

	if _, err := s.progression.Propagate(ctx, tx, reopened); err != nil {
		return nil, err
	}
	if _, err := s.scoring.ResetMatch(ctx, tx, matchID); err != nil {
		return nil, err
	}
	return reopened, nil
}

func (s *matchService) SetBettingEnabled(ctx context.Context, matchID int, enabled bool) error {
	return s.matchRepo.SetBettingEnabled(ctx, matchID, enabled)
}

// attachTeams подгружает команды для слотов одним запросом.
func (s *matchService) attachTeams(ctx context.Context, matches []*models.Match) error {
	idSet := make(map[int]struct{})
	for _, m := range matches {
		for _, id := range []*int{m.TeamAID, m.TeamBID, m.WinnerID} {
			if id != nil {
				idSet[*id] = struct{}{}
			}
		}
	}
	if len(idSet) == 0 {
		return nil
	}
	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	teams, err := s.teamRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.TeamAID != nil {
			m.TeamA = teams[*m.TeamAID]
		}
		if m.TeamBID != nil {
			m.TeamB = teams[*m.TeamBID]
		}
		if m.WinnerID != nil {
			m.Winner = teams[*m.WinnerID]
		}
	}
	return nil
}
