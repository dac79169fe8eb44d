package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/Dosada05/betting-system/brackets"
	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/repositories"
)

// StageSpec описывает один этап генерируемой сетки. Для групповой стадии
// заполняется Groups, для остальных — плоский посев TeamIDs.
type StageSpec struct {
	Name      string             `json:"name"`
	Side      models.BracketSide `json:"side"`
	Generator string             `json:"generator"`
	TeamIDs   []int              `json:"team_ids,omitempty"`
	Groups    map[string][]int   `json:"groups,omitempty"`
}

const (
	GeneratorSingleElimination = "single_elimination"
	GeneratorDoubleElimination = "double_elimination"
	GeneratorGroups            = "groups"
)

type BracketService interface {
	GenerateAndSaveBracket(ctx context.Context, tournamentID int, stages []StageSpec) ([]*models.Match, error)
	ValidateBracket(ctx context.Context, tournamentID int) ([]brackets.ValidationError, error)
	ResolvePlayoffSeeding(ctx context.Context, tournamentID int, placements map[string][]int) ([]*models.Match, error)
}

type bracketService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	hub            *brackets.Hub
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
) BracketService {
	return &bracketService{
		db:             db,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		hub:            hub,
	}
}

func generatorByName(name string) (brackets.BracketGenerator, error) {
	switch name {
	case GeneratorSingleElimination:
		return brackets.NewSingleEliminationGenerator(), nil
	case GeneratorDoubleElimination:
		return brackets.NewDoubleEliminationGenerator(), nil
	case GeneratorGroups:
		return brackets.NewGroupStageGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: unknown bracket generator %q", ErrValidationFailed, name)
	}
}

// GenerateAndSaveBracket строит сетку по описанию этапов и сохраняет её
// одной транзакцией. Сгенерированный граф валидируется до записи: сетка
// с циклом, битой ссылкой или неполной конфигурацией слотов в БД не
// попадает. Турнир должен быть в статусе draft.
func (s *bracketService) GenerateAndSaveBracket(ctx context.Context, tournamentID int, stageSpecs []StageSpec) ([]*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentStatusDraft {
		return nil, fmt.Errorf("%w: tournament %d has status %s", ErrTournamentNotDraft, tournamentID, tournament.Status)
	}
	if len(stageSpecs) == 0 {
		return nil, fmt.Errorf("%w: at least one stage is required", ErrValidationFailed)
	}

	log.Printf("Starting bracket generation for tournament ID: %d, stages: %d", tournamentID, len(stageSpecs))

	plans := make([]stagePlan, 0, len(stageSpecs))

	for i, spec := range stageSpecs {
		generator, err := generatorByName(spec.Generator)
		if err != nil {
			return nil, err
		}
		stage := &models.Stage{
			TournamentID: tournamentID,
			Name:         spec.Name,
			BracketSide:  spec.Side,
			BracketSize:  stageSize(spec),
			StageOrder:   i + 1,
		}
		generated, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
			Tournament: tournament,
			Stage:      stage,
			TeamIDs:    spec.TeamIDs,
			Groups:     spec.Groups,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate stage %q for tournament %d: %w", spec.Name, tournamentID, err)
		}
		plans = append(plans, stagePlan{stage: stage, generated: generated})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	created, txErr := s.persistInTx(ctx, tx, tournament, plans)
	if txErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Error during rollback: %v. Original error: %v", rbErr, txErr)
		}
		return nil, txErr
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bracket of tournament %d: %w", tournamentID, err)
	}
	log.Printf("Transaction committed for tournament %d bracket: %d matches", tournamentID, len(created))

	if s.hub != nil {
		s.hub.BroadcastTournament(tournamentID, brackets.EventBracketUpdated, created)
	}
	return created, nil
}

type stagePlan struct {
	stage     *models.Stage
	generated []*brackets.BracketMatch
}

func (s *bracketService) persistInTx(ctx context.Context, tx *sql.Tx, tournament *models.Tournament, plans []stagePlan) ([]*models.Match, error) {
	uidToID := make(map[string]int)
	uidToBye := make(map[string]*int)
	created := make([]*models.Match, 0)

	for _, plan := range plans {
		if err := s.tournamentRepo.CreateStage(ctx, tx, plan.stage); err != nil {
			return nil, fmt.Errorf("failed to create stage %q: %w", plan.stage.Name, err)
		}

		// ПЕРВЫЙ ПРОХОД: создаём матчи. Генераторы выдают источники
		// раньше зависимых, поэтому ссылки разрешаются по ходу.
		for _, bm := range plan.generated {
			if bm.IsBye {
				// Участник проходит дальше без игры, запись не создаётся.
				uidToBye[bm.UID] = bm.ByeTeamID
				continue
			}

			match := &models.Match{
				TournamentID: tournament.ID,
				BracketSide:  bm.Side,
				RoundIndex:   bm.Round,
				DisplayOrder: bm.OrderInRound,
				TeamAID:      bm.TeamAID,
				TeamBID:      bm.TeamBID,
				Status:       models.MatchStatusScheduled,
				StartTime:    tournament.StartDate,
			}
			if err := linkSlot(match, slotA, bm.SourceAUID, bm.SourceAResult, uidToID, uidToBye); err != nil {
				return nil, err
			}
			if err := linkSlot(match, slotB, bm.SourceBUID, bm.SourceBResult, uidToID, uidToBye); err != nil {
				return nil, err
			}

			if err := s.matchRepo.Create(ctx, tx, match); err != nil {
				return nil, fmt.Errorf("failed to create match %s: %w", bm.UID, err)
			}
			uidToID[bm.UID] = match.ID
			created = append(created, match)
		}
	}

	// Граф валидируется целиком до фиксации транзакции.
	graph := brackets.NewGraph(created)
	violations := graph.Validate()
	for _, plan := range plans {
		violations = append(violations, graph.ValidateStages([]models.Stage{*plan.stage})...)
	}
	if len(violations) > 0 {
		return nil, fmt.Errorf("%w: %d violations, first: %v", ErrBracketInvalid, len(violations), violations[0])
	}

	// ВТОРОЙ ПРОХОД: материализуем прямые ссылки next_match_* из
	// обратных prev-связей.
	if err := s.materializeNextLinks(ctx, tx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// linkSlot превращает UID-ссылку шаблона в ссылку на id созданного матча.
// Ссылка на bye разрешается сразу в команду: bye-победитель известен на
// этапе генерации.
func linkSlot(match *models.Match, slot int, sourceUID *string, result *models.SlotResult, uidToID map[string]int, uidToBye map[string]*int) error {
	if sourceUID == nil {
		return nil
	}
	if byeTeam, ok := uidToBye[*sourceUID]; ok {
		if slot == slotA {
			match.TeamAID = byeTeam
		} else {
			match.TeamBID = byeTeam
		}
		return nil
	}
	sourceID, ok := uidToID[*sourceUID]
	if !ok {
		return fmt.Errorf("%w: match references unknown source %q", ErrBracketInvalid, *sourceUID)
	}
	if slot == slotA {
		match.TeamAPrevMatchID = &sourceID
		match.TeamAPrevResult = result
	} else {
		match.TeamBPrevMatchID = &sourceID
		match.TeamBPrevResult = result
	}
	return nil
}

func (s *bracketService) materializeNextLinks(ctx context.Context, tx *sql.Tx, matches []*models.Match) error {
	type nextInfo struct {
		winnerID   *int
		loserID    *int
		winnerSlot *int
	}
	next := make(map[int]*nextInfo)
	get := func(id int) *nextInfo {
		if next[id] == nil {
			next[id] = &nextInfo{}
		}
		return next[id]
	}

	for _, m := range matches {
		if m.TeamAPrevMatchID != nil && m.TeamAPrevResult != nil {
			info := get(*m.TeamAPrevMatchID)
			if *m.TeamAPrevResult == models.SlotWinner {
				id, slot := m.ID, slotA
				info.winnerID, info.winnerSlot = &id, &slot
			} else {
				id := m.ID
				info.loserID = &id
			}
		}
		if m.TeamBPrevMatchID != nil && m.TeamBPrevResult != nil {
			info := get(*m.TeamBPrevMatchID)
			if *m.TeamBPrevResult == models.SlotWinner {
				id, slot := m.ID, slotB
				info.winnerID, info.winnerSlot = &id, &slot
			} else {
				id := m.ID
				info.loserID = &id
			}
		}
	}

	for sourceID, info := range next {
		if err := s.matchRepo.UpdateNextMatchInfo(ctx, tx, sourceID, info.winnerID, info.loserID, info.winnerSlot); err != nil {
			return fmt.Errorf("failed to link next matches for match %d: %w", sourceID, err)
		}
	}
	return nil
}

// ValidateBracket перепроверяет сохранённую сетку турнира: структуру графа
// и соответствие этапов их заявленному размеру. Возвращает все нарушения
// разом, а не первое найденное.
func (s *bracketService) ValidateBracket(ctx context.Context, tournamentID int) ([]brackets.ValidationError, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	stages, err := s.tournamentRepo.ListStages(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages for tournament %d: %w", tournamentID, err)
	}

	graph := brackets.NewGraph(matches)
	violations := graph.Validate()
	violations = append(violations, graph.ValidateStages(stages)...)
	return violations, nil
}

// ResolvePlayoffSeeding рассаживает выходящих из групп по явной таблице
// посева турнира. placements — итоговые места в группах, placements["A"][0]
// это первое место группы A. Заполняются только прямо сеяные пустые слоты
// первого раунда плей-офф.
func (s *bracketService) ResolvePlayoffSeeding(ctx context.Context, tournamentID int, placements map[string][]int) ([]*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.SeedingTable == nil {
		return nil, fmt.Errorf("%w: tournament %d has no seeding table configured", ErrSeedingTableUnknown, tournamentID)
	}
	table, err := brackets.SeedingTableByName(*tournament.SeedingTable)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeedingTableUnknown, err)
	}
	pairs, err := table.Resolve(placements)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	targets, err := s.playoffFirstRound(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(targets) != len(pairs) {
		return nil, fmt.Errorf("%w: seeding table %q produces %d pairs, playoff first round has %d matches",
			ErrValidationFailed, table.Name, len(pairs), len(targets))
	}

	for i, pair := range pairs {
		match := targets[i]
		teamA, teamB := pair[0], pair[1]
		updates := []repositories.MatchSlotUpdate{
			{MatchID: match.ID, Slot: slotA, TeamID: &teamA},
			{MatchID: match.ID, Slot: slotB, TeamID: &teamB},
		}
		for _, u := range updates {
			if err := s.matchRepo.UpdateSlot(ctx, nil, u); err != nil {
				return nil, fmt.Errorf("failed to seed match %d: %w", match.ID, err)
			}
		}
		match.TeamAID, match.TeamBID = &teamA, &teamB
	}

	if s.hub != nil {
		s.hub.BroadcastTournament(tournamentID, brackets.EventBracketUpdated, targets)
	}
	log.Printf("Seeded %d playoff matches for tournament %d from table %s", len(targets), tournamentID, table.Name)
	return targets, nil
}

// playoffFirstRound — матчи первого раунда плей-офф без prev-ссылок,
// в порядке отображения. Для double elimination это верхняя сетка.
func (s *bracketService) playoffFirstRound(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	roundOne := 1
	for _, side := range []models.BracketSide{models.SideUpper, models.SideMain} {
		sideCopy := side
		matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, &sideCopy, &roundOne)
		if err != nil {
			return nil, fmt.Errorf("failed to list playoff matches for tournament %d: %w", tournamentID, err)
		}
		seedable := make([]*models.Match, 0, len(matches))
		for _, m := range matches {
			if m.TeamAPrevMatchID == nil && m.TeamBPrevMatchID == nil {
				seedable = append(seedable, m)
			}
		}
		if len(seedable) > 0 {
			return seedable, nil
		}
	}
	return nil, fmt.Errorf("%w: tournament %d has no seedable playoff matches", ErrNotFound, tournamentID)
}

func stageSize(spec StageSpec) int {
	if spec.Generator == GeneratorGroups {
		total := 0
		for _, teams := range spec.Groups {
			total += len(teams)
		}
		return total
	}
	return len(spec.TeamIDs)
}
