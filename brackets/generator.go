package brackets

import (
	"context"

	"github.com/Dosada05/betting-system/models"
)

// BracketMatch — шаблон матча, порождённый генератором, до сохранения в БД.
// Слоты либо засеяны напрямую (TeamAID/TeamBID), либо ссылаются на исход
// другого шаблонного матча по его UID.
type BracketMatch struct {
	UID          string
	Side         models.BracketSide
	Round        int
	OrderInRound int

	TeamAID *int
	TeamBID *int

	SourceAUID    *string
	SourceAResult *models.SlotResult
	SourceBUID    *string
	SourceBResult *models.SlotResult

	IsBye     bool
	ByeTeamID *int
}

type GenerateBracketParams struct {
	Tournament *models.Tournament
	Stage      *models.Stage
	// TeamIDs — посев в порядке затравки. Для групповой стадии
	// используется Groups вместо плоского списка.
	TeamIDs []int
	Groups  map[string][]int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}

func srcWinner(uid string) (*string, *models.SlotResult) {
	r := models.SlotWinner
	return &uid, &r
}

func srcLoser(uid string) (*string, *models.SlotResult) {
	r := models.SlotLoser
	return &uid, &r
}
