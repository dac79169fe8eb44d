package services

import (
	"context"
	"testing"

	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedMatch(id, teamA, teamB, winner int) *models.Match {
	return &models.Match{
		ID:       id,
		TeamAID:  intPtr(teamA),
		TeamBID:  intPtr(teamB),
		WinnerID: intPtr(winner),
		ScoreA:   intPtr(3),
		ScoreB:   intPtr(1),
		Status:   models.MatchStatusFinished,
	}
}

func TestPropagate_WinnerAndLoser(t *testing.T) {
	source := finishedMatch(1, 10, 20, 10)

	winnerDest := &models.Match{
		ID:               2,
		Status:           models.MatchStatusScheduled,
		TeamAPrevMatchID: intPtr(1),
		TeamAPrevResult:  slotResultPtr(models.SlotWinner),
	}
	loserDest := &models.Match{
		ID:               3,
		Status:           models.MatchStatusScheduled,
		TeamBPrevMatchID: intPtr(1),
		TeamBPrevResult:  slotResultPtr(models.SlotLoser),
	}

	var updates []repositories.MatchSlotUpdate
	matchRepo := &fakeMatchRepo{
		FindDependentsFunc: func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Match, error) {
			return []*models.Match{winnerDest, loserDest}, nil
		},
		UpdateSlotFunc: func(ctx context.Context, exec repositories.SQLExecutor, update repositories.MatchSlotUpdate) error {
			updates = append(updates, update)
			return nil
		},
	}

	svc := NewProgressionService(matchRepo)
	result, err := svc.Propagate(context.Background(), nil, source)

	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.ElementsMatch(t, []int{2, 3}, result.UpdatedMatchIDs)
	require.Len(t, updates, 2)
	assert.Equal(t, repositories.MatchSlotUpdate{MatchID: 2, Slot: 1, TeamID: intPtr(10)}, updates[0])
	assert.Equal(t, repositories.MatchSlotUpdate{MatchID: 3, Slot: 2, TeamID: intPtr(20)}, updates[1])
}

func TestPropagate_Idempotent(t *testing.T) {
	source := finishedMatch(1, 10, 20, 10)

	dest := &models.Match{
		ID:               2,
		Status:           models.MatchStatusScheduled,
		TeamAID:          intPtr(10), // уже продвинут
		TeamAPrevMatchID: intPtr(1),
		TeamAPrevResult:  slotResultPtr(models.SlotWinner),
	}

	matchRepo := &fakeMatchRepo{
		FindDependentsFunc: func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Match, error) {
			return []*models.Match{dest}, nil
		},
		UpdateSlotFunc: func(ctx context.Context, exec repositories.SQLExecutor, update repositories.MatchSlotUpdate) error {
			t.Fatalf("slot must not be rewritten, got update %+v", update)
			return nil
		},
	}

	result, err := NewProgressionService(matchRepo).Propagate(context.Background(), nil, source)
	require.NoError(t, err)
	assert.Empty(t, result.UpdatedMatchIDs)
	assert.Empty(t, result.Warnings)
}

func TestPropagate_CorrectionOverwritesStartedDependent(t *testing.T) {
	// Исправленный результат: теперь победила команда 20, а зависимый
	// матч уже завершён с командой 10 в слоте. Слот перезаписывается,
	// матч помечается предупреждением для ручного пересмотра.
	source := finishedMatch(1, 10, 20, 20)

	dest := &models.Match{
		ID:               2,
		Status:           models.MatchStatusFinished,
		TeamAID:          intPtr(10),
		TeamBID:          intPtr(30),
		WinnerID:         intPtr(10),
		TeamAPrevMatchID: intPtr(1),
		TeamAPrevResult:  slotResultPtr(models.SlotWinner),
	}

	var updates []repositories.MatchSlotUpdate
	matchRepo := &fakeMatchRepo{
		FindDependentsFunc: func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Match, error) {
			return []*models.Match{dest}, nil
		},
		UpdateSlotFunc: func(ctx context.Context, exec repositories.SQLExecutor, update repositories.MatchSlotUpdate) error {
			updates = append(updates, update)
			return nil
		},
	}

	result, err := NewProgressionService(matchRepo).Propagate(context.Background(), nil, source)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, result.UpdatedMatchIDs)
	require.Len(t, updates, 1)
	assert.Equal(t, repositories.MatchSlotUpdate{MatchID: 2, Slot: 1, TeamID: intPtr(20)}, updates[0])

	require.Len(t, result.Warnings, 1)
	warning := result.Warnings[0]
	assert.Equal(t, 2, warning.MatchID)
	assert.Equal(t, 1, warning.Slot)
	assert.Equal(t, intPtr(10), warning.CurrentTeamID)
	assert.Equal(t, intPtr(20), warning.WantTeamID)
}

func TestPropagate_FinishedWithoutWinnerFails(t *testing.T) {
	source := &models.Match{
		ID:      1,
		TeamAID: intPtr(10),
		TeamBID: intPtr(20),
		Status:  models.MatchStatusFinished, // победитель потерян
	}

	matchRepo := &fakeMatchRepo{
		UpdateSlotFunc: func(ctx context.Context, exec repositories.SQLExecutor, update repositories.MatchSlotUpdate) error {
			t.Fatalf("no slot may be written from a corrupt source, got update %+v", update)
			return nil
		},
	}

	result, err := NewProgressionService(matchRepo).Propagate(context.Background(), nil, source)
	require.ErrorIs(t, err, ErrDataIntegrity)
	assert.Nil(t, result)
}

func TestPropagate_ReopenedSourceClearsSlots(t *testing.T) {
	source := &models.Match{
		ID:      1,
		TeamAID: intPtr(10),
		TeamBID: intPtr(20),
		Status:  models.MatchStatusScheduled, // результат отменили
	}

	dest := &models.Match{
		ID:               2,
		Status:           models.MatchStatusScheduled,
		TeamAID:          intPtr(10),
		TeamAPrevMatchID: intPtr(1),
		TeamAPrevResult:  slotResultPtr(models.SlotWinner),
	}

	var updates []repositories.MatchSlotUpdate
	matchRepo := &fakeMatchRepo{
		FindDependentsFunc: func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Match, error) {
			return []*models.Match{dest}, nil
		},
		UpdateSlotFunc: func(ctx context.Context, exec repositories.SQLExecutor, update repositories.MatchSlotUpdate) error {
			updates = append(updates, update)
			return nil
		},
	}

	result, err := NewProgressionService(matchRepo).Propagate(context.Background(), nil, source)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, result.UpdatedMatchIDs)
	require.Len(t, updates, 1)
	assert.Nil(t, updates[0].TeamID)
}

func TestPropagate_BothSlotsFromOneSource(t *testing.T) {
	// Гранд-финал из одного источника обоими слотами: победитель в A,
	// проигравший в B.
	source := finishedMatch(1, 10, 20, 10)

	dest := &models.Match{
		ID:               2,
		Status:           models.MatchStatusScheduled,
		TeamAPrevMatchID: intPtr(1),
		TeamAPrevResult:  slotResultPtr(models.SlotWinner),
		TeamBPrevMatchID: intPtr(1),
		TeamBPrevResult:  slotResultPtr(models.SlotLoser),
	}

	var updates []repositories.MatchSlotUpdate
	matchRepo := &fakeMatchRepo{
		FindDependentsFunc: func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Match, error) {
			return []*models.Match{dest}, nil
		},
		UpdateSlotFunc: func(ctx context.Context, exec repositories.SQLExecutor, update repositories.MatchSlotUpdate) error {
			updates = append(updates, update)
			return nil
		},
	}

	result, err := NewProgressionService(matchRepo).Propagate(context.Background(), nil, source)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, result.UpdatedMatchIDs)
	require.Len(t, updates, 2)
	assert.Equal(t, intPtr(10), updates[0].TeamID)
	assert.Equal(t, intPtr(20), updates[1].TeamID)
}

func TestReconcileTournament_TopologicalRepair(t *testing.T) {
	// Цепочка 1 -> 2 -> 3: матч 1 завершён, его исход потерян в матче 2.
	m1 := finishedMatch(1, 10, 20, 10)
	m1.RoundIndex = 1
	m2 := &models.Match{
		ID:               2,
		RoundIndex:       2,
		Status:           models.MatchStatusScheduled,
		TeamAPrevMatchID: intPtr(1),
		TeamAPrevResult:  slotResultPtr(models.SlotWinner),
	}
	m3 := &models.Match{
		ID:               3,
		RoundIndex:       3,
		Status:           models.MatchStatusScheduled,
		TeamAPrevMatchID: intPtr(2),
		TeamAPrevResult:  slotResultPtr(models.SlotWinner),
	}

	byID := map[int]*models.Match{1: m1, 2: m2, 3: m3}
	matchRepo := &fakeMatchRepo{
		ListByTournamentFunc: func(ctx context.Context, tournamentID int, side *models.BracketSide, roundIndex *int) ([]*models.Match, error) {
			return []*models.Match{m1, m2, m3}, nil
		},
		GetByIDFunc: func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
			return byID[id], nil
		},
		FindDependentsFunc: func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Match, error) {
			switch matchID {
			case 1:
				return []*models.Match{m2}, nil
			case 2:
				return []*models.Match{m3}, nil
			}
			return nil, nil
		},
		UpdateSlotFunc: func(ctx context.Context, exec repositories.SQLExecutor, update repositories.MatchSlotUpdate) error {
			target := byID[update.MatchID]
			if update.Slot == 1 {
				target.TeamAID = update.TeamID
			} else {
				target.TeamBID = update.TeamID
			}
			return nil
		},
	}

	result, err := NewProgressionService(matchRepo).ReconcileTournament(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, result.UpdatedMatchIDs)
	assert.Equal(t, intPtr(10), m2.TeamAID)
	// Матч 2 не завершён, дальше цепочка не продвигается.
	assert.Nil(t, m3.TeamAID)
}

func TestReconcileTournament_ContinuesPastCorruptMatch(t *testing.T) {
	// Матч 1 повреждён (завершён без победителя): его продвижение падает,
	// но прогон продолжает с матчем 2 и чинит матч 3.
	m1 := &models.Match{
		ID:         1,
		RoundIndex: 1,
		TeamAID:    intPtr(10),
		TeamBID:    intPtr(20),
		Status:     models.MatchStatusFinished,
	}
	m2 := finishedMatch(2, 30, 40, 30)
	m2.RoundIndex = 1
	m3 := &models.Match{
		ID:               3,
		RoundIndex:       2,
		Status:           models.MatchStatusScheduled,
		TeamBPrevMatchID: intPtr(2),
		TeamBPrevResult:  slotResultPtr(models.SlotWinner),
	}

	byID := map[int]*models.Match{1: m1, 2: m2, 3: m3}
	var updates []repositories.MatchSlotUpdate
	matchRepo := &fakeMatchRepo{
		ListByTournamentFunc: func(ctx context.Context, tournamentID int, side *models.BracketSide, roundIndex *int) ([]*models.Match, error) {
			return []*models.Match{m1, m2, m3}, nil
		},
		GetByIDFunc: func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
			return byID[id], nil
		},
		FindDependentsFunc: func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Match, error) {
			if matchID == 2 {
				return []*models.Match{m3}, nil
			}
			return nil, nil
		},
		UpdateSlotFunc: func(ctx context.Context, exec repositories.SQLExecutor, update repositories.MatchSlotUpdate) error {
			updates = append(updates, update)
			return nil
		},
	}

	result, err := NewProgressionService(matchRepo).ReconcileTournament(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Failures[0].MatchID)

	assert.Equal(t, []int{3}, result.UpdatedMatchIDs)
	require.Len(t, updates, 1)
	assert.Equal(t, repositories.MatchSlotUpdate{MatchID: 3, Slot: 2, TeamID: intPtr(30)}, updates[0])
}
