package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/betting-system/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
)

const tournamentColumns = `id, name, format, status, seeding_table, start_date, created_at, logo_key`

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	GetFormat(ctx context.Context, id int) (string, error)
	List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	ListByStatus(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	CreateStage(ctx context.Context, exec SQLExecutor, stage *models.Stage) error
	ListStages(ctx context.Context, tournamentID int) ([]models.Stage, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func scanTournament(row interface {
	Scan(dest ...interface{}) error
}) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(&t.ID, &t.Name, &t.Format, &t.Status, &t.SeedingTable, &t.StartDate, &t.CreatedAt, &t.LogoKey)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, format, status, seeding_table, start_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		tournament.Name,
		tournament.Format,
		tournament.Status,
		tournament.SeedingTable,
		tournament.StartDate,
	).Scan(&tournament.ID, &tournament.CreatedAt)

	if err != nil && strings.Contains(err.Error(), "tournaments_name_key") {
		return fmt.Errorf("%w: %v", ErrTournamentNameConflict, err)
	}
	return err
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	tournament, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return tournament, nil
}

func (r *postgresTournamentRepository) GetFormat(ctx context.Context, id int) (string, error) {
	var format string
	err := r.db.QueryRowContext(ctx, `SELECT format FROM tournaments WHERE id = $1`, id).Scan(&format)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTournamentNotFound
		}
		return "", fmt.Errorf("failed to get format for tournament %d: %w", id, err)
	}
	return format, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY start_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) ListByStatus(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error) {
	return r.List(ctx, &status)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	if exec == nil {
		exec = r.db
	}
	result, err := exec.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) CreateStage(ctx context.Context, exec SQLExecutor, stage *models.Stage) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO stages (tournament_id, name, bracket_side, bracket_size, stage_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	return exec.QueryRowContext(ctx, query,
		stage.TournamentID, stage.Name, stage.BracketSide, stage.BracketSize, stage.StageOrder,
	).Scan(&stage.ID)
}

func (r *postgresTournamentRepository) ListStages(ctx context.Context, tournamentID int) ([]models.Stage, error) {
	query := `
		SELECT id, tournament_id, name, bracket_side, bracket_size, stage_order
		FROM stages WHERE tournament_id = $1 ORDER BY stage_order ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stages for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	stages := make([]models.Stage, 0)
	for rows.Next() {
		var s models.Stage
		if scanErr := rows.Scan(&s.ID, &s.TournamentID, &s.Name, &s.BracketSide, &s.BracketSize, &s.StageOrder); scanErr != nil {
			return nil, fmt.Errorf("failed to scan stage row: %w", scanErr)
		}
		stages = append(stages, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during stage rows iteration: %w", err)
	}
	return stages, nil
}
