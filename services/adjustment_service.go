package services

import (
	"context"
	"fmt"
	"log"

	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/repositories"
	"github.com/google/uuid"
)

type CreateAdjustmentInput struct {
	TournamentID int    `json:"tournament_id"`
	UserID       int    `json:"user_id"`
	BetID        *int   `json:"bet_id,omitempty"`
	Delta        int    `json:"delta"`
	Reason       string `json:"reason"`
}

// AdjustmentService ведёт ручные корректировки очков. Корректировка —
// отдельная запись со ссылочным UUID: она суммируется поверх пересчитанной
// базы и никогда не записывается в points_earned ставки, иначе пересчёт
// движка её бы затёр.
type AdjustmentService interface {
	Create(ctx context.Context, createdBy int, input CreateAdjustmentInput) (*models.PointAdjustment, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.PointAdjustment, error)
}

type adjustmentService struct {
	adjustmentRepo repositories.AdjustmentRepository
	betRepo        repositories.BetRepository
	tournamentRepo repositories.TournamentRepository
}

func NewAdjustmentService(
	adjustmentRepo repositories.AdjustmentRepository,
	betRepo repositories.BetRepository,
	tournamentRepo repositories.TournamentRepository,
) AdjustmentService {
	return &adjustmentService{
		adjustmentRepo: adjustmentRepo,
		betRepo:        betRepo,
		tournamentRepo: tournamentRepo,
	}
}

func (s *adjustmentService) Create(ctx context.Context, createdBy int, input CreateAdjustmentInput) (*models.PointAdjustment, error) {
	if input.Delta == 0 || input.Reason == "" {
		return nil, ErrAdjustmentInvalid
	}
	if _, err := s.tournamentRepo.GetByID(ctx, input.TournamentID); err != nil {
		return nil, err
	}
	if input.BetID != nil {
		bet, err := s.betRepo.GetByID(ctx, *input.BetID)
		if err != nil {
			return nil, err
		}
		if bet.UserID != input.UserID {
			return nil, fmt.Errorf("%w: bet %d belongs to another user", ErrValidationFailed, *input.BetID)
		}
	}

	adjustment := &models.PointAdjustment{
		Reference:    uuid.New(),
		BetID:        input.BetID,
		UserID:       input.UserID,
		TournamentID: input.TournamentID,
		Delta:        input.Delta,
		Reason:       input.Reason,
		CreatedBy:    createdBy,
	}
	if err := s.adjustmentRepo.Create(ctx, adjustment); err != nil {
		return nil, fmt.Errorf("failed to create point adjustment: %w", err)
	}
	if total, err := s.adjustmentRepo.SumForUserTournament(ctx, input.UserID, input.TournamentID); err != nil {
		log.Printf("Failed to sum adjustments for user %d in tournament %d: %v", input.UserID, input.TournamentID, err)
	} else {
		log.Printf("Adjustment %s: %+d points for user %d in tournament %d (%s), total now %+d",
			adjustment.Reference, input.Delta, input.UserID, input.TournamentID, input.Reason, total)
	}
	return adjustment, nil
}

func (s *adjustmentService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.PointAdjustment, error) {
	adjustments, err := s.adjustmentRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustments for tournament %d: %w", tournamentID, err)
	}
	return adjustments, nil
}
