package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	TournamentStatusDraft    TournamentStatus = "draft"
	TournamentStatusActive   TournamentStatus = "active"
	TournamentStatusFinished TournamentStatus = "finished"
)

// Tournament представляет турнир.
//
// Format — строка формата матчей ("bo1"|"bo3"|"bo5"|"bo7", может быть частью
// более длинной строки, например "playoffs_bo5"). SeedingTable — имя явной
// таблицы посева группа→плей-офф (см. brackets.SeedingTable); выбирается
// организатором при создании, а не выводится из названий матчей.
type Tournament struct {
	ID           int              `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Format       string           `json:"format" db:"format"`
	Status       TournamentStatus `json:"status" db:"status"`
	SeedingTable *string          `json:"seeding_table,omitempty" db:"seeding_table"`
	StartDate    time.Time        `json:"start_date" db:"start_date"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	LogoKey      *string          `json:"-" db:"logo_key"`
	LogoURL      *string          `json:"logo_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Stages  []Stage `json:"stages,omitempty" db:"-"`
	Matches []Match `json:"matches,omitempty" db:"-"`
}

// Stage — этап турнира: именованный раздел сетки и его ожидаемый размер.
type Stage struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Name         string      `json:"name" db:"name"`
	BracketSide  BracketSide `json:"bracket_side" db:"bracket_side"`
	BracketSize  int         `json:"bracket_size" db:"bracket_size"`
	StageOrder   int         `json:"stage_order" db:"stage_order"`
}
