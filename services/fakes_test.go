package services

import (
	"context"

	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/repositories"
)

// Фейковые репозитории: каждый метод делегирует в настраиваемое поле,
// ненастроенный метод возвращает нулевые значения.

type fakeMatchRepo struct {
	CreateFunc              func(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error
	GetByIDFunc             func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error)
	ListByTournamentFunc    func(ctx context.Context, tournamentID int, side *models.BracketSide, roundIndex *int) ([]*models.Match, error)
	ListFinishedFunc        func(ctx context.Context, tournamentID int) ([]*models.Match, error)
	FindDependentsFunc      func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Match, error)
	UpdateSlotFunc          func(ctx context.Context, exec repositories.SQLExecutor, update repositories.MatchSlotUpdate) error
	UpdateResultFunc        func(ctx context.Context, exec repositories.SQLExecutor, id int, scoreA, scoreB int, winnerID int, status models.MatchStatus) error
	ClearResultFunc         func(ctx context.Context, exec repositories.SQLExecutor, id int) error
	UpdateStatusFunc        func(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MatchStatus) error
	SetBettingEnabledFunc   func(ctx context.Context, id int, enabled bool) error
	UpdateNextMatchInfoFunc func(ctx context.Context, exec repositories.SQLExecutor, matchID int, nextWinnerID, nextLoserID, nextWinnerSlot *int) error
}

func (f *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, match)
	}
	return nil
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, exec, id)
	}
	return nil, repositories.ErrMatchNotFound
}

func (f *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int, side *models.BracketSide, roundIndex *int) ([]*models.Match, error) {
	if f.ListByTournamentFunc != nil {
		return f.ListByTournamentFunc(ctx, tournamentID, side, roundIndex)
	}
	return nil, nil
}

func (f *fakeMatchRepo) ListFinished(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	if f.ListFinishedFunc != nil {
		return f.ListFinishedFunc(ctx, tournamentID)
	}
	return nil, nil
}

func (f *fakeMatchRepo) FindDependents(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Match, error) {
	if f.FindDependentsFunc != nil {
		return f.FindDependentsFunc(ctx, exec, matchID)
	}
	return nil, nil
}

func (f *fakeMatchRepo) UpdateSlot(ctx context.Context, exec repositories.SQLExecutor, update repositories.MatchSlotUpdate) error {
	if f.UpdateSlotFunc != nil {
		return f.UpdateSlotFunc(ctx, exec, update)
	}
	return nil
}

func (f *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, scoreA, scoreB int, winnerID int, status models.MatchStatus) error {
	if f.UpdateResultFunc != nil {
		return f.UpdateResultFunc(ctx, exec, id, scoreA, scoreB, winnerID, status)
	}
	return nil
}

func (f *fakeMatchRepo) ClearResult(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if f.ClearResultFunc != nil {
		return f.ClearResultFunc(ctx, exec, id)
	}
	return nil
}

func (f *fakeMatchRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MatchStatus) error {
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, exec, id, status)
	}
	return nil
}

func (f *fakeMatchRepo) SetBettingEnabled(ctx context.Context, id int, enabled bool) error {
	if f.SetBettingEnabledFunc != nil {
		return f.SetBettingEnabledFunc(ctx, id, enabled)
	}
	return nil
}

func (f *fakeMatchRepo) UpdateNextMatchInfo(ctx context.Context, exec repositories.SQLExecutor, matchID int, nextWinnerID, nextLoserID, nextWinnerSlot *int) error {
	if f.UpdateNextMatchInfoFunc != nil {
		return f.UpdateNextMatchInfoFunc(ctx, exec, matchID, nextWinnerID, nextLoserID, nextWinnerSlot)
	}
	return nil
}

type fakeBetRepo struct {
	UpsertFunc            func(ctx context.Context, bet *models.Bet) error
	GetByIDFunc           func(ctx context.Context, id int) (*models.Bet, error)
	GetByUserAndMatchFunc func(ctx context.Context, userID, matchID int) (*models.Bet, error)
	FindByMatchFunc       func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Bet, error)
	ListByUserFunc        func(ctx context.Context, userID int, tournamentID *int) ([]*models.Bet, error)
	UpdatePointsFunc      func(ctx context.Context, exec repositories.SQLExecutor, betID int, points int, isPerfectPick bool) error
}

func (f *fakeBetRepo) Upsert(ctx context.Context, bet *models.Bet) error {
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, bet)
	}
	return nil
}

func (f *fakeBetRepo) GetByID(ctx context.Context, id int) (*models.Bet, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrBetNotFound
}

func (f *fakeBetRepo) GetByUserAndMatch(ctx context.Context, userID, matchID int) (*models.Bet, error) {
	if f.GetByUserAndMatchFunc != nil {
		return f.GetByUserAndMatchFunc(ctx, userID, matchID)
	}
	return nil, repositories.ErrBetNotFound
}

func (f *fakeBetRepo) FindByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Bet, error) {
	if f.FindByMatchFunc != nil {
		return f.FindByMatchFunc(ctx, exec, matchID)
	}
	return nil, nil
}

func (f *fakeBetRepo) ListByUser(ctx context.Context, userID int, tournamentID *int) ([]*models.Bet, error) {
	if f.ListByUserFunc != nil {
		return f.ListByUserFunc(ctx, userID, tournamentID)
	}
	return nil, nil
}

func (f *fakeBetRepo) UpdatePoints(ctx context.Context, exec repositories.SQLExecutor, betID int, points int, isPerfectPick bool) error {
	if f.UpdatePointsFunc != nil {
		return f.UpdatePointsFunc(ctx, exec, betID, points, isPerfectPick)
	}
	return nil
}

type fakeTournamentRepo struct {
	CreateFunc        func(ctx context.Context, tournament *models.Tournament) error
	GetByIDFunc       func(ctx context.Context, id int) (*models.Tournament, error)
	GetFormatFunc     func(ctx context.Context, id int) (string, error)
	ListFunc          func(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	ListByStatusFunc  func(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error)
	UpdateStatusFunc  func(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error
	UpdateLogoKeyFunc func(ctx context.Context, id int, logoKey *string) error
	CreateStageFunc   func(ctx context.Context, exec repositories.SQLExecutor, stage *models.Stage) error
	ListStagesFunc    func(ctx context.Context, tournamentID int) ([]models.Stage, error)
}

func (f *fakeTournamentRepo) Create(ctx context.Context, tournament *models.Tournament) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, tournament)
	}
	return nil
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrTournamentNotFound
}

func (f *fakeTournamentRepo) GetFormat(ctx context.Context, id int) (string, error) {
	if f.GetFormatFunc != nil {
		return f.GetFormatFunc(ctx, id)
	}
	return "bo5", nil
}

func (f *fakeTournamentRepo) List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, status)
	}
	return nil, nil
}

func (f *fakeTournamentRepo) ListByStatus(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error) {
	if f.ListByStatusFunc != nil {
		return f.ListByStatusFunc(ctx, status)
	}
	return nil, nil
}

func (f *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, exec, id, status)
	}
	return nil
}

func (f *fakeTournamentRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	if f.UpdateLogoKeyFunc != nil {
		return f.UpdateLogoKeyFunc(ctx, id, logoKey)
	}
	return nil
}

func (f *fakeTournamentRepo) CreateStage(ctx context.Context, exec repositories.SQLExecutor, stage *models.Stage) error {
	if f.CreateStageFunc != nil {
		return f.CreateStageFunc(ctx, exec, stage)
	}
	return nil
}

func (f *fakeTournamentRepo) ListStages(ctx context.Context, tournamentID int) ([]models.Stage, error) {
	if f.ListStagesFunc != nil {
		return f.ListStagesFunc(ctx, tournamentID)
	}
	return nil, nil
}

type fakeAdjustmentRepo struct {
	CreateFunc               func(ctx context.Context, adjustment *models.PointAdjustment) error
	SumForBetFunc            func(ctx context.Context, betID int) (int, error)
	SumForUserTournamentFunc func(ctx context.Context, userID, tournamentID int) (int, error)
	ListByTournamentFunc     func(ctx context.Context, tournamentID int) ([]*models.PointAdjustment, error)
}

func (f *fakeAdjustmentRepo) Create(ctx context.Context, adjustment *models.PointAdjustment) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, adjustment)
	}
	return nil
}

func (f *fakeAdjustmentRepo) SumForBet(ctx context.Context, betID int) (int, error) {
	if f.SumForBetFunc != nil {
		return f.SumForBetFunc(ctx, betID)
	}
	return 0, nil
}

func (f *fakeAdjustmentRepo) SumForUserTournament(ctx context.Context, userID, tournamentID int) (int, error) {
	if f.SumForUserTournamentFunc != nil {
		return f.SumForUserTournamentFunc(ctx, userID, tournamentID)
	}
	return 0, nil
}

func (f *fakeAdjustmentRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.PointAdjustment, error) {
	if f.ListByTournamentFunc != nil {
		return f.ListByTournamentFunc(ctx, tournamentID)
	}
	return nil, nil
}

func intPtr(v int) *int { return &v }

func slotResultPtr(r models.SlotResult) *models.SlotResult { return &r }
