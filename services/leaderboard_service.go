package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/repositories"
)

const defaultGlobalLimit = 100

type LeaderboardService interface {
	TournamentLeaderboard(ctx context.Context, tournamentID int) ([]*models.LeaderboardEntry, error)
	GlobalLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

type leaderboardService struct {
	leaderboardRepo repositories.LeaderboardRepository
	tournamentRepo  repositories.TournamentRepository
}

func NewLeaderboardService(
	leaderboardRepo repositories.LeaderboardRepository,
	tournamentRepo repositories.TournamentRepository,
) LeaderboardService {
	return &leaderboardService{
		leaderboardRepo: leaderboardRepo,
		tournamentRepo:  tournamentRepo,
	}
}

func (s *leaderboardService) TournamentLeaderboard(ctx context.Context, tournamentID int) ([]*models.LeaderboardEntry, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	entries, err := s.leaderboardRepo.TournamentLeaderboard(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard for tournament %d: %w", tournamentID, err)
	}
	stamp(entries)
	return entries, nil
}

func (s *leaderboardService) GlobalLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultGlobalLimit
	}
	entries, err := s.leaderboardRepo.GlobalLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build global leaderboard: %w", err)
	}
	stamp(entries)
	return entries, nil
}

func stamp(entries []*models.LeaderboardEntry) {
	now := time.Now()
	for _, e := range entries {
		e.UpdatedAt = now
	}
}
