package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/Dosada05/betting-system/brackets"
	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/repositories"
	"github.com/Dosada05/betting-system/storage"
)

type CreateTournamentInput struct {
	Name         string    `json:"name"`
	Format       string    `json:"format"`
	SeedingTable *string   `json:"seeding_table,omitempty"`
	StartDate    time.Time `json:"start_date"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	Activate(ctx context.Context, id int) (*models.Tournament, error)
	Finish(ctx context.Context, id int) (*models.Tournament, error)
	UploadLogo(ctx context.Context, id int, contentType string, reader io.Reader) (string, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	bracketService BracketService
	uploader       storage.FileUploader
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	bracketService BracketService,
	uploader storage.FileUploader,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		bracketService: bracketService,
		uploader:       uploader,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.SeedingTable != nil {
		// Таблица посева выбирается явно при создании, опечатка в имени
		// должна всплыть здесь, а не при рассадке плей-офф.
		if _, err := brackets.SeedingTableByName(*input.SeedingTable); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSeedingTableUnknown, err)
		}
	}

	tournament := &models.Tournament{
		Name:         input.Name,
		Format:       input.Format,
		Status:       models.TournamentStatusDraft,
		SeedingTable: input.SeedingTable,
		StartDate:    input.StartDate,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stages, err := s.tournamentRepo.ListStages(ctx, id)
	if err != nil {
		log.Printf("Failed to load stages for tournament %d: %v", id, err)
	} else {
		tournament.Stages = stages
	}
	if tournament.LogoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*tournament.LogoKey)
		tournament.LogoURL = &url
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	if s.uploader != nil {
		for _, t := range tournaments {
			if t.LogoKey != nil {
				url := s.uploader.GetPublicURL(*t.LogoKey)
				t.LogoURL = &url
			}
		}
	}
	return tournaments, nil
}

// Activate открывает турнир для ставок. Ворота активации: сохранённая
// сетка обязана пройти полную валидацию графа, турнир с битой сеткой
// активировать нельзя.
func (s *tournamentService) Activate(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentStatusDraft {
		return nil, fmt.Errorf("%w: tournament %d has status %s", ErrTournamentNotDraft, id, tournament.Status)
	}

	violations, err := s.bracketService.ValidateBracket(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, fmt.Errorf("%w: %d violations, first: %v", ErrBracketInvalid, len(violations), violations[0])
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, models.TournamentStatusActive); err != nil {
		return nil, err
	}
	tournament.Status = models.TournamentStatusActive
	log.Printf("Tournament %d activated", id)
	return tournament, nil
}

func (s *tournamentService) Finish(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentStatusActive {
		return nil, fmt.Errorf("%w: tournament %d has status %s", ErrValidationFailed, id, tournament.Status)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, models.TournamentStatusFinished); err != nil {
		return nil, err
	}
	tournament.Status = models.TournamentStatusFinished
	return tournament, nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, id int, contentType string, reader io.Reader) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	}
	if _, err := s.tournamentRepo.GetByID(ctx, id); err != nil {
		return "", err
	}

	key := fmt.Sprintf("tournaments/%d/logo", id)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return "", fmt.Errorf("failed to upload tournament logo: %w", err)
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		return "", fmt.Errorf("failed to store logo key: %w", err)
	}
	return result.Location, nil
}
