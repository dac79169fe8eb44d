package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/repositories"
	"github.com/Dosada05/betting-system/scoring"
	"golang.org/x/sync/errgroup"
)

const auditConcurrency = 4

// PointsDiscrepancy — расхождение между сохранёнными очками ставки и тем,
// что движок начислил бы по текущему результату матча.
type PointsDiscrepancy struct {
	BetID        int            `json:"bet_id"`
	MatchID      int            `json:"match_id"`
	UserID       int            `json:"user_id"`
	StoredPoints int            `json:"stored_points"`
	WantPoints   int            `json:"want_points"`
	Reason       scoring.Reason `json:"reason"`
}

// IntegrityFault — завершённый матч, по которому скоринг вообще невозможен.
type IntegrityFault struct {
	MatchID int    `json:"match_id"`
	Detail  string `json:"detail"`
}

// AuditReport — итог сверки одного турнира. Аудит только читает: найденные
// расхождения не исправляются, решение остаётся за администратором.
type AuditReport struct {
	TournamentID    int                 `json:"tournament_id"`
	MatchesAudited  int                 `json:"matches_audited"`
	BetsAudited     int                 `json:"bets_audited"`
	Discrepancies   []PointsDiscrepancy `json:"discrepancies,omitempty"`
	IntegrityFaults []IntegrityFault    `json:"integrity_faults,omitempty"`
}

func (r *AuditReport) Clean() bool {
	return len(r.Discrepancies) == 0 && len(r.IntegrityFaults) == 0
}

type DiagnosticsService interface {
	AuditTournament(ctx context.Context, tournamentID int) (*AuditReport, error)
	AuditActiveTournaments(ctx context.Context) ([]*AuditReport, error)
}

type diagnosticsService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	betRepo        repositories.BetRepository
}

func NewDiagnosticsService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	betRepo repositories.BetRepository,
) DiagnosticsService {
	return &diagnosticsService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		betRepo:        betRepo,
	}
}

// AuditTournament пересчитывает очки по каждой ставке каждого завершённого
// матча и сравнивает с сохранёнными. Матчи с нарушенной целостностью
// попадают в отчёт отдельным списком и сверку не прерывают.
func (s *diagnosticsService) AuditTournament(ctx context.Context, tournamentID int) (*AuditReport, error) {
	matches, err := s.matchRepo.ListFinished(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list finished matches for tournament %d: %w", tournamentID, err)
	}

	report := &AuditReport{TournamentID: tournamentID}
	for _, match := range matches {
		bets, err := s.betRepo.FindByMatch(ctx, nil, match.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load bets for match %d: %w", match.ID, err)
		}
		report.MatchesAudited++

		for _, bet := range bets {
			report.BetsAudited++
			want, scoreErr := scoring.ScoreBet(match, bet)
			if scoreErr != nil {
				var integrity *scoring.DataIntegrityError
				if errors.As(scoreErr, &integrity) {
					report.IntegrityFaults = append(report.IntegrityFaults, IntegrityFault{
						MatchID: integrity.MatchID,
						Detail:  integrity.Detail,
					})
					break // остальные ставки матча дадут тот же fault
				}
				return nil, fmt.Errorf("failed to audit bet %d: %w", bet.ID, scoreErr)
			}
			if bet.PointsEarned != want.Points || bet.IsPerfectPick != want.IsPerfectPick {
				report.Discrepancies = append(report.Discrepancies, PointsDiscrepancy{
					BetID:        bet.ID,
					MatchID:      match.ID,
					UserID:       bet.UserID,
					StoredPoints: bet.PointsEarned,
					WantPoints:   want.Points,
					Reason:       want.Reason,
				})
			}
		}
	}
	return report, nil
}

// AuditActiveTournaments сверяет все активные турниры, по несколько
// параллельно. Используется фоновым планировщиком.
func (s *diagnosticsService) AuditActiveTournaments(ctx context.Context) ([]*AuditReport, error) {
	tournaments, err := s.tournamentRepo.ListByStatus(ctx, models.TournamentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tournaments: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(auditConcurrency)

	var mu sync.Mutex
	reports := make([]*AuditReport, 0, len(tournaments))

	for _, t := range tournaments {
		tournamentID := t.ID
		g.Go(func() error {
			report, err := s.AuditTournament(gctx, tournamentID)
			if err != nil {
				return fmt.Errorf("audit of tournament %d failed: %w", tournamentID, err)
			}
			if !report.Clean() {
				log.Printf("Audit of tournament %d: %d discrepancies, %d integrity faults",
					tournamentID, len(report.Discrepancies), len(report.IntegrityFaults))
			}
			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}
