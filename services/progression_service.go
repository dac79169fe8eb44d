package services

import (
	"context"
	"fmt"
	"log"

	"github.com/Dosada05/betting-system/brackets"
	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/repositories"
)

const (
	slotA = 1
	slotB = 2
)

// StalePropagationWarning сигнализирует, что зависимый матч уже начался
// или завершён с устаревшей командой в слоте. Исправленная команда всё
// равно записывается, но результат и ставки такого матча требуют ручного
// пересмотра (переоткрытия и пересчёта).
type StalePropagationWarning struct {
	MatchID       int  `json:"match_id"`
	Slot          int  `json:"slot"`
	CurrentTeamID *int `json:"current_team_id,omitempty"`
	WantTeamID    *int `json:"want_team_id,omitempty"`
}

func (w StalePropagationWarning) String() string {
	return fmt.Sprintf("match %d slot %d was corrected after the match started (had %v, now %v)",
		w.MatchID, w.Slot, intPtrValue(w.CurrentTeamID), intPtrValue(w.WantTeamID))
}

// PropagationFailure — матч, продвижение которого не удалось при массовом
// прогоне. Остальные матчи прогона обрабатываются дальше.
type PropagationFailure struct {
	MatchID int    `json:"match_id"`
	Error   string `json:"error"`
}

// PropagationResult — итог одного прогона резолвера от матча-источника.
type PropagationResult struct {
	UpdatedMatchIDs []int                     `json:"updated_match_ids"`
	Warnings        []StalePropagationWarning `json:"warnings,omitempty"`
	Failures        []PropagationFailure      `json:"failures,omitempty"`
}

// ProgressionService продвигает исходы завершённых матчей в слоты зависимых
// матчей. Прогон идемпотентен: слот, уже содержащий нужную команду, не
// переписывается и не попадает в список обновлённых.
type ProgressionService interface {
	Propagate(ctx context.Context, exec repositories.SQLExecutor, source *models.Match) (*PropagationResult, error)
	ReconcileTournament(ctx context.Context, tournamentID int) (*PropagationResult, error)
}

type progressionService struct {
	matchRepo repositories.MatchRepository
}

func NewProgressionService(matchRepo repositories.MatchRepository) ProgressionService {
	return &progressionService{matchRepo: matchRepo}
}

// Propagate разносит исход source по слотам зависимых матчей. Если source
// не завершён (результат отменили), слоты зависимых очищаются. При
// исправлении результата слот перезаписывается даже у матча, который уже
// начался или завершён с устаревшей командой, — такой матч дополнительно
// помечается предупреждением, его результат и ставки пересматриваются
// вручную.
func (s *progressionService) Propagate(ctx context.Context, exec repositories.SQLExecutor, source *models.Match) (*PropagationResult, error) {
	// Завершённый матч обязан иметь победителя; угадывать исход нельзя.
	if source.Status == models.MatchStatusFinished && source.WinnerID == nil {
		return nil, fmt.Errorf("%w: match %d is finished without a winner", ErrDataIntegrity, source.ID)
	}

	dependents, err := s.matchRepo.FindDependents(ctx, exec, source.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find dependents of match %d: %w", source.ID, err)
	}

	result := &PropagationResult{UpdatedMatchIDs: make([]int, 0, len(dependents))}
	for _, dep := range dependents {
		updated := false
		for _, slot := range dependentSlots(dep, source.ID) {
			want := s.resolveIncoming(source, slot.result)

			if equalIntPtr(slot.current, want) {
				continue
			}
			if dep.Status != models.MatchStatusScheduled {
				result.Warnings = append(result.Warnings, StalePropagationWarning{
					MatchID:       dep.ID,
					Slot:          slot.number,
					CurrentTeamID: slot.current,
					WantTeamID:    want,
				})
			}

			err := s.matchRepo.UpdateSlot(ctx, exec, repositories.MatchSlotUpdate{
				MatchID: dep.ID,
				Slot:    slot.number,
				TeamID:  want,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to update slot %d of match %d: %w", slot.number, dep.ID, err)
			}
			updated = true
		}
		if updated {
			result.UpdatedMatchIDs = append(result.UpdatedMatchIDs, dep.ID)
		}
	}
	return result, nil
}

// resolveIncoming вычисляет команду, которая должна занять слот по исходу
// источника. Для незавершённого источника исход не определён и слот
// очищается. Проигравший выводится из пары участников, поэтому для
// источника с незаполненным слотом он тоже nil.
func (s *progressionService) resolveIncoming(source *models.Match, want models.SlotResult) *int {
	if source.Status != models.MatchStatusFinished {
		return nil
	}
	if want == models.SlotWinner {
		return source.WinnerID
	}
	return source.LoserID()
}

type dependentSlot struct {
	number  int
	result  models.SlotResult
	current *int
}

// dependentSlots возвращает слоты dep, ссылающиеся на sourceID. Матч может
// ссылаться на один источник обоими слотами (победитель и проигравший
// одного матча), тогда вернутся оба.
func dependentSlots(dep *models.Match, sourceID int) []dependentSlot {
	slots := make([]dependentSlot, 0, 2)
	if dep.TeamAPrevMatchID != nil && *dep.TeamAPrevMatchID == sourceID && dep.TeamAPrevResult != nil {
		slots = append(slots, dependentSlot{number: slotA, result: *dep.TeamAPrevResult, current: dep.TeamAID})
	}
	if dep.TeamBPrevMatchID != nil && *dep.TeamBPrevMatchID == sourceID && dep.TeamBPrevResult != nil {
		slots = append(slots, dependentSlot{number: slotB, result: *dep.TeamBPrevResult, current: dep.TeamBID})
	}
	return slots
}

// ReconcileTournament прогоняет резолвер по всем матчам турнира в
// топологическом порядке сетки. Используется для массового ремонта после
// ручных правок в БД: каждый завершённый матч продвигается заново, затем
// обновлённые зависимые перечитываются, чтобы их собственный исход
// продвинулся дальше по цепочке.
func (s *progressionService) ReconcileTournament(ctx context.Context, tournamentID int) (*PropagationResult, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}

	graph := brackets.NewGraph(matches)
	ordered, err := graph.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("%w: tournament %d: %w", ErrBracketInvalid, tournamentID, err)
	}

	total := &PropagationResult{UpdatedMatchIDs: make([]int, 0)}
	for _, match := range ordered {
		// Матч могли обновить предыдущие шаги прогона, перечитываем.
		fresh, err := s.matchRepo.GetByID(ctx, nil, match.ID)
		if err != nil {
			log.Printf("Reconcile: failed to reload match %d: %v", match.ID, err)
			total.Failures = append(total.Failures, PropagationFailure{MatchID: match.ID, Error: err.Error()})
			continue
		}
		res, err := s.Propagate(ctx, nil, fresh)
		if err != nil {
			// Сбой одного матча не останавливает массовый ремонт.
			log.Printf("Reconcile: propagation from match %d failed: %v", match.ID, err)
			total.Failures = append(total.Failures, PropagationFailure{MatchID: match.ID, Error: err.Error()})
			continue
		}
		total.UpdatedMatchIDs = append(total.UpdatedMatchIDs, res.UpdatedMatchIDs...)
		total.Warnings = append(total.Warnings, res.Warnings...)
	}

	if len(total.Warnings) > 0 || len(total.Failures) > 0 {
		log.Printf("Reconcile for tournament %d: %d slots updated, %d stale slots flagged, %d matches failed",
			tournamentID, len(total.UpdatedMatchIDs), len(total.Warnings), len(total.Failures))
	}
	return total, nil
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrValue(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
