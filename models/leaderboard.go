package models

import "time"

// LeaderboardEntry — строка таблицы лидеров турнира (или глобальной).
// TotalPoints = сумма points_earned по ставкам + сумма ручных корректировок.
type LeaderboardEntry struct {
	UserID           int       `json:"user_id" db:"user_id"`
	Nickname         *string   `json:"nickname,omitempty" db:"nickname"`
	TotalPoints      int       `json:"total_points" db:"total_points"`
	BasePoints       int       `json:"base_points" db:"base_points"`
	AdjustmentPoints int       `json:"adjustment_points" db:"adjustment_points"`
	PerfectPicks     int       `json:"perfect_picks" db:"perfect_picks"`
	CorrectWinners   int       `json:"correct_winners" db:"correct_winners"`
	BetsPlaced       int       `json:"bets_placed" db:"bets_placed"`
	Rank             int       `json:"rank" db:"rank"`
	UpdatedAt        time.Time `json:"updated_at" db:"-"`
}
