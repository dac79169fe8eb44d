package models

import "time"

// MatchStatus представляет статусы матча, соответствующие ENUM в БД.
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusFinished  MatchStatus = "finished"
)

// BracketSide — именованный раздел сетки, к которому привязан матч.
type BracketSide string

const (
	SideGroups     BracketSide = "groups"
	SideUpper      BracketSide = "upper"
	SideLower      BracketSide = "lower"
	SideMain       BracketSide = "main"
	SideGrandFinal BracketSide = "grand_final"
)

// SlotResult названный исход предыдущего матча, который заполняет слот.
type SlotResult string

const (
	SlotWinner SlotResult = "winner"
	SlotLoser  SlotResult = "loser"
)

// Match — центральная сущность: узел графа сетки.
//
// Слот участника (A или B) либо засеян напрямую (TeamXID задан, ссылки нет),
// либо выводится из исхода предыдущего матча: TeamXPrevMatchID указывает
// на матч-источник, TeamXPrevResult — какой его исход (winner/loser)
// занимает слот. Слот, заполняемый по ссылке, всегда перезаписывается
// резолвером продвижения после завершения источника.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`

	BracketSide  BracketSide `json:"bracket_side" db:"bracket_side"`
	RoundIndex   int         `json:"round_index" db:"round_index"`
	DisplayOrder int         `json:"display_order" db:"display_order"`

	TeamAID *int `json:"team_a_id,omitempty" db:"team_a_id"`
	TeamBID *int `json:"team_b_id,omitempty" db:"team_b_id"`

	TeamAPrevMatchID *int        `json:"team_a_prev_match_id,omitempty" db:"team_a_prev_match_id"`
	TeamAPrevResult  *SlotResult `json:"team_a_prev_result,omitempty" db:"team_a_prev_result"`
	TeamBPrevMatchID *int        `json:"team_b_prev_match_id,omitempty" db:"team_b_prev_match_id"`
	TeamBPrevResult  *SlotResult `json:"team_b_prev_result,omitempty" db:"team_b_prev_result"`

	Status   MatchStatus `json:"status" db:"status"`
	ScoreA   *int        `json:"score_a,omitempty" db:"score_a"`
	ScoreB   *int        `json:"score_b,omitempty" db:"score_b"`
	WinnerID *int        `json:"winner_id,omitempty" db:"winner_id"`

	IsBettingEnabled bool      `json:"is_betting_enabled" db:"is_betting_enabled"`
	StartTime        time.Time `json:"start_time" db:"start_time"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`

	// Материализованные прямые ссылки (избыточны, выводимы из prev-связей).
	NextMatchWinnerID   *int `json:"next_match_winner_id,omitempty" db:"next_match_winner_id"`
	NextMatchLoserID    *int `json:"next_match_loser_id,omitempty" db:"next_match_loser_id"`
	NextMatchWinnerSlot *int `json:"next_match_winner_slot,omitempty" db:"next_match_winner_slot"`

	// Опциональные связанные сущности (не мапятся напрямую)
	TeamA  *Team `json:"team_a,omitempty" db:"-"`
	TeamB  *Team `json:"team_b,omitempty" db:"-"`
	Winner *Team `json:"winner,omitempty" db:"-"`
}

// LoserID выводит проигравшего из winner_id и пар участников.
// Возвращает nil, если победитель не определён или вторая сторона пуста.
func (m *Match) LoserID() *int {
	if m.WinnerID == nil || m.TeamAID == nil || m.TeamBID == nil {
		return nil
	}
	if *m.WinnerID == *m.TeamAID {
		return m.TeamBID
	}
	if *m.WinnerID == *m.TeamBID {
		return m.TeamAID
	}
	return nil
}

// HasTeam сообщает, является ли teamID одним из текущих участников матча.
func (m *Match) HasTeam(teamID int) bool {
	if m.TeamAID != nil && *m.TeamAID == teamID {
		return true
	}
	if m.TeamBID != nil && *m.TeamBID == teamID {
		return true
	}
	return false
}
