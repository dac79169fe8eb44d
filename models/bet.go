package models

import "time"

// Bet — прогноз пользователя на матч.
//
// Предсказанный счёт привязан к идентичности команд A/B, а не к
// победителю/проигравшему: прогноз "3-1" совпадает только если именно
// команда A набрала 3. PointsEarned и IsPerfectPick пересчитываются
// скоринговым движком при каждом (пере)вводе результата матча и
// полностью перезаписываются, а не накапливаются.
type Bet struct {
	ID      int `json:"id" db:"id"`
	UserID  int `json:"user_id" db:"user_id"`
	MatchID int `json:"match_id" db:"match_id"`

	PredictedWinnerID int `json:"predicted_winner_id" db:"predicted_winner_id"`
	PredictedScoreA   int `json:"predicted_score_a" db:"predicted_score_a"`
	PredictedScoreB   int `json:"predicted_score_b" db:"predicted_score_b"`

	PointsEarned  int  `json:"points_earned" db:"points_earned"`
	IsPerfectPick bool `json:"is_perfect_pick" db:"is_perfect_pick"`
	// Устанавливается внешним приложением, движок его не трогает.
	IsUnderdogPick bool `json:"is_underdog_pick" db:"is_underdog_pick"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Сумма ручных корректировок по ставке, заполняется на чтении.
	AdjustmentPoints int `json:"adjustment_points" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	User  *User  `json:"user,omitempty" db:"-"`
	Match *Match `json:"match,omitempty" db:"-"`
}
